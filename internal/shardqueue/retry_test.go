package shardqueue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func TestShardExecutor_RetriesRetryableErrors(t *testing.T) {
	cfg := Config{
		Shards:      1,
		QueueSize:   10,
		MaxAttempts: 3,
		BaseBackoff: 5 * time.Millisecond,
		Retryable:   func(err error) bool { return errors.Is(err, errTransient) },
	}
	exec := newTestExecutor(cfg)

	var attempts int32
	job := JobFunc(func(context.Context) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errTransient
		}
		return nil
	})

	if err := exec.Submit(context.Background(), "k1", job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := exec.Barrier(context.Background(), "k1"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	exec.Stop()

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestShardExecutor_PermanentErrorFailsFast(t *testing.T) {
	var handled atomic.Value
	cfg := Config{
		Shards:       1,
		QueueSize:    10,
		MaxAttempts:  5,
		BaseBackoff:  5 * time.Millisecond,
		Retryable:    func(error) bool { return false },
		ErrorHandler: func(err error) { handled.Store(err) },
	}
	exec := newTestExecutor(cfg)

	permanent := errors.New("bad request")
	var attempts int32
	_ = exec.Submit(context.Background(), "k1", JobFunc(func(context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return permanent
	}))
	_ = exec.Barrier(context.Background(), "k1")
	exec.Stop()

	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
	if err, _ := handled.Load().(error); !errors.Is(err, permanent) {
		t.Fatalf("error handler saw %v", handled.Load())
	}
}

func TestShardExecutor_ErrorHandlerPanicIsContained(t *testing.T) {
	cfg := Config{
		Shards:       1,
		QueueSize:    10,
		ErrorHandler: func(error) { panic("handler bug") },
	}
	exec := newTestExecutor(cfg)

	_ = exec.Submit(context.Background(), "k1", JobFunc(func(context.Context) error {
		return errors.New("boom")
	}))
	// The shard must survive the handler panic and keep serving jobs.
	var ran int32
	_ = exec.Submit(context.Background(), "k1", JobFunc(func(context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	}))
	_ = exec.Barrier(context.Background(), "k1")
	exec.Stop()

	if atomic.LoadInt32(&ran) != 1 {
		t.Fatal("shard did not survive error handler panic")
	}
}

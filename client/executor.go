package client

import (
	"context"

	"github.com/rbsteinm/SmartMap2/internal/shardqueue"
)

// executor abstracts the internal async job runner used by async APIs.
type executor interface {
	Submit(context.Context, string, shardqueue.Job) error
	Barrier(context.Context, string) error
	Stop()
}

// noExecutor runs jobs inline; installed by WithoutExecutor.
type noExecutor struct{}

func (noExecutor) Submit(ctx context.Context, _ string, j shardqueue.Job) error {
	return j.Run(ctx)
}

func (noExecutor) Barrier(context.Context, string) error { return nil }
func (noExecutor) Stop()                                 {}

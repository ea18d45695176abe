package client

import (
	"errors"

	"github.com/rbsteinm/SmartMap2/cache"
	"github.com/rbsteinm/SmartMap2/internal/shardqueue"
)

// ErrBackPressure is returned when the client's internal shard queue is full.
var ErrBackPressure = errors.New("back-pressure (queue full)")

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool { return errors.Is(err, ErrBackPressure) }

// Re-export the cache sentinel so callers compare against a single symbol.
var ErrNotFound = cache.ErrNotFound

func mapExecErr(err error) error {
	if errors.Is(err, shardqueue.ErrQueueFull) {
		return ErrBackPressure
	}
	return err
}

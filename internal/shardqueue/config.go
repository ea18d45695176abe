package shardqueue

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config groups all tunables. Values come from environment variables with
// the prefix "SQ_". Example: SQ_SHARDS=8 SQ_QUEUE_SIZE=256 .
type Config struct {
	Shards         int           `envconfig:"SHARDS"          default:"4"`
	QueueSize      int           `envconfig:"QUEUE_SIZE"      default:"128"`
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"100ms"`

	MaxAttempts int           `envconfig:"MAX_ATTEMPTS"  default:"8"`
	BaseBackoff time.Duration `envconfig:"BASE_BACKOFF"  default:"100ms"`
	MaxInterval time.Duration `envconfig:"MAX_INTERVAL"  default:"20s"`

	// ErrorHandler is called synchronously after a job fails for good.
	// Leave nil if you do not care.
	ErrorHandler func(error) `envconfig:"-"`

	// Retryable classifies a job error as worth retrying. When nil every
	// error is treated as permanent and fails the job on the first attempt.
	Retryable func(error) bool `envconfig:"-"`
}

// LoadConfig populates Config from environment variables (prefix SQ_).
func LoadConfig() (Config, error) {
	var c Config
	return c, envconfig.Process("SQ", &c)
}

package scheduler

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config groups all tunables.  Values are taken from environment variables with
// the prefix "SCHED_". Example: SCHED_WORKERS=4 SCHED_MAX_QUEUED=256 .
type Config struct {
	// Workers bounds the number of simultaneously in-flight operations.
	// Kept small to avoid tripping remote rate limits.
	Workers   int `envconfig:"WORKERS"    default:"2"`
	MaxQueued int `envconfig:"MAX_QUEUED" default:"1024"`

	// ErrorHandler is called synchronously after a task resolves with a
	// non-nil error. Leave nil if you do not care.
	ErrorHandler func(error) `envconfig:"-"`

	MaxAttempts int           `envconfig:"MAX_ATTEMPTS" default:"8"`
	BaseBackoff time.Duration `envconfig:"BASE_BACKOFF" default:"100ms"`
	MaxInterval time.Duration `envconfig:"MAX_INTERVAL" default:"20s"`
}

// LoadConfig populates Config from environment variables (prefix SCHED_).
func LoadConfig() (Config, error) {
	var c Config
	return c, envconfig.Process("SCHED", &c)
}

package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by LoadOptions.
const EnvPrefix = "TILER"

// Options are process-level settings taken from the environment. Command
// line flags override them.
type Options struct {
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
	LogDev       bool          `envconfig:"LOG_DEV" default:"false"`
	Instance     string        `envconfig:"INSTANCE" default:"tiler"`
	RuntimeDir   string        `envconfig:"RUNTIME_DIR"`
	ProbeTimeout time.Duration `envconfig:"PROBE_TIMEOUT" default:"100ms"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"5s"`
	MatchTimeout time.Duration `envconfig:"MATCH_TIMEOUT" default:"250ms"`
	Config       string        `envconfig:"CONFIG"`
}

// LoadOptions loads Options from TILER_* environment variables.
func LoadOptions() (Options, error) {
	var o Options
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return Options{}, fmt.Errorf("failed to load options: %w", err)
	}
	return o, nil
}

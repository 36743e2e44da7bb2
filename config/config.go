package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TASKGRAPH"

// Config holds the engine's environment-resolved defaults.
type Config struct {
	Workers int
	Timeout time.Duration
	JSONLog bool
}

// Load binds v to the TASKGRAPH_WORKERS, TASKGRAPH_TIMEOUT, and
// TASKGRAPH_JSON_LOG environment variables, falling back to an optional
// ~/.taskgraph.yaml file and finally to built-in defaults. v may be nil, in
// which case a fresh viper.Viper is constructed.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetDefault("workers", 1)
	v.SetDefault("timeout", "30s")
	v.SetDefault("json_log", false)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	if err := v.BindEnv("workers"); err != nil {
		return nil, fmt.Errorf("config: bind workers env: %w", err)
	}
	if err := v.BindEnv("timeout"); err != nil {
		return nil, fmt.Errorf("config: bind timeout env: %w", err)
	}
	if err := v.BindEnv("json_log"); err != nil {
		return nil, fmt.Errorf("config: bind json_log env: %w", err)
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".taskgraph")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("config: read ~/.taskgraph.yaml: %w", err)
			}
		}
	}

	workers := v.GetInt("workers")
	if workers < 1 {
		workers = 1
	}

	timeout := v.GetDuration("timeout")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Config{
		Workers: workers,
		Timeout: timeout,
		JSONLog: v.GetBool("json_log"),
	}, nil
}

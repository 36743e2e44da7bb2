// Package config binds the engine's environment-driven defaults (worker count,
// per-task timeout, log format) through viper, mirroring the reference
// command-line entry point's SetDefault/BindEnv/AutomaticEnv wiring.
package config

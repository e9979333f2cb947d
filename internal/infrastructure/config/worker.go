package config

import "time"

// WorkerConfig holds configuration of the long-running retry worker
type WorkerConfig struct {
	// PIDFile guards against two workers sweeping the same dead letters
	PIDFile string `mapstructure:"pid_file" validate:"required"`

	// SweepInterval is the pause between two retry sweeps
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
}

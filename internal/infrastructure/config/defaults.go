package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "riceops"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "riceops"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Planning defaults
	if cfg.Planning.PriceAsOf == "" {
		cfg.Planning.PriceAsOf = "activation"
	}
	d := &cfg.Planning.Distribution
	if d.DaysBeforeTask == 0 {
		d.DaysBeforeTask = 3
	}
	if d.SupervisorConfirmationWindow == 0 {
		d.SupervisorConfirmationWindow = 2
	}
	if d.FarmerConfirmationWindow == 0 {
		d.FarmerConfirmationWindow = 1
	}
	if d.GracePeriod == 0 {
		d.GracePeriod = 1
	}

	r := &cfg.Planning.Retry
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 5
	}
	if r.InitialDelay == 0 {
		r.InitialDelay = time.Minute
	}
	if r.MaxDelay == 0 {
		r.MaxDelay = time.Hour
	}
	if r.BatchSize == 0 {
		r.BatchSize = 50
	}
	if r.RatePerSecond == 0 {
		r.RatePerSecond = 2
	}

	// Worker defaults
	if cfg.Worker.PIDFile == "" {
		cfg.Worker.PIDFile = "/tmp/planengine-worker.pid"
	}
	if cfg.Worker.SweepInterval == 0 {
		cfg.Worker.SweepInterval = time.Minute
	}
}

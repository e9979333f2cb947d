package config

import "time"

// PlanningConfig holds activation engine configuration
type PlanningConfig struct {
	// PriceAsOf selects the price lookup date: activation or plan_start
	PriceAsOf string `mapstructure:"price_as_of" validate:"required,oneof=activation plan_start"`

	// Distribution holds the fallback windows used when system_settings has no usable value
	Distribution DistributionConfig `mapstructure:"distribution"`

	// SettingsCacheTTL bounds how long system_settings lookups are cached (0 = process lifetime)
	SettingsCacheTTL time.Duration `mapstructure:"settings_cache_ttl" validate:"min=0"`

	Retry RetryConfig `mapstructure:"retry"`
}

// DistributionConfig holds distribution windows, in days
type DistributionConfig struct {
	DaysBeforeTask               int `mapstructure:"days_before_task" validate:"min=0"`
	SupervisorConfirmationWindow int `mapstructure:"supervisor_confirmation_window" validate:"min=0"`
	FarmerConfirmationWindow     int `mapstructure:"farmer_confirmation_window" validate:"min=0"`
	GracePeriod                  int `mapstructure:"grace_period" validate:"min=0"`
}

// RetryConfig holds dead-letter replay configuration
type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts" validate:"min=1"`
	InitialDelay time.Duration `mapstructure:"initial_delay" validate:"min=0"`
	MaxDelay     time.Duration `mapstructure:"max_delay" validate:"gtefield=InitialDelay"`

	// BatchSize caps how many due records one sweep replays
	BatchSize int `mapstructure:"batch_size" validate:"min=1"`

	// RatePerSecond spaces out replays; 0 disables the limiter
	RatePerSecond float64 `mapstructure:"rate_per_second" validate:"min=0"`
}

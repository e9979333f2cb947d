package config

// MetricsConfig holds metrics collection configuration.
// The CLI is short-lived, so metrics are written to a node-exporter textfile
// instead of being served over HTTP.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active
	Enabled bool `mapstructure:"enabled"`

	// TextfilePath is where the registry is written after each command
	TextfilePath string `mapstructure:"textfile_path" validate:"required_if=Enabled true"`
}

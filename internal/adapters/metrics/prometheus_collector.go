package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// Namespace for all metrics
	namespace = "riceops"
	// Subsystem for the plan activation engine
	subsystem = "planning"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalActivationCollector is set by SetGlobalActivationCollector() when metrics are enabled
	globalActivationCollector ActivationMetricsRecorder
)

// ActivationMetricsRecorder records outcomes of the activation engines
type ActivationMetricsRecorder interface {
	RecordExpansion(outcome string, tasksCreated, materialsCreated int, skipped map[string]int, totalCost float64)
	RecordDistribution(outcome string, created, skippedExisting int)
	RecordRetry(engine, outcome string)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
	Registry.MustRegister(collectors.NewGoCollector())
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// Reset drops the registry and global collectors
func Reset() {
	Registry = nil
	globalActivationCollector = nil
}

// WriteTextfile dumps the registry in node-exporter textfile format.
// The file is read by the node-exporter textfile collector.
func WriteTextfile(path string) error {
	if Registry == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}

// SetGlobalActivationCollector sets the global activation metrics collector
func SetGlobalActivationCollector(collector ActivationMetricsRecorder) {
	globalActivationCollector = collector
}

// RecordExpansion records the outcome of a plan expansion run globally
func RecordExpansion(outcome string, tasksCreated, materialsCreated int, skipped map[string]int, totalCost float64) {
	if globalActivationCollector != nil {
		globalActivationCollector.RecordExpansion(outcome, tasksCreated, materialsCreated, skipped, totalCost)
	}
}

// RecordDistribution records the outcome of a distribution scheduling run globally
func RecordDistribution(outcome string, created, skippedExisting int) {
	if globalActivationCollector != nil {
		globalActivationCollector.RecordDistribution(outcome, created, skippedExisting)
	}
}

// RecordRetry records a dead-letter replay globally
func RecordRetry(engine, outcome string) {
	if globalActivationCollector != nil {
		globalActivationCollector.RecordRetry(engine, outcome)
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes shared by both engines
const (
	OutcomeSucceeded = "succeeded"
	OutcomeAborted   = "aborted"
	OutcomeFailed    = "failed"
)

// ActivationMetricsCollector handles plan expansion and distribution metrics
type ActivationMetricsCollector struct {
	runsTotal             *prometheus.CounterVec
	tasksCreated          prometheus.Counter
	taskMaterialsCreated  prometheus.Counter
	itemsSkipped          *prometheus.CounterVec
	distributionsCreated  prometheus.Counter
	distributionsExisting prometheus.Counter
	expansionCost         prometheus.Histogram
	retriesTotal          *prometheus.CounterVec
}

// NewActivationMetricsCollector creates a new activation metrics collector
func NewActivationMetricsCollector() *ActivationMetricsCollector {
	return &ActivationMetricsCollector{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "activation_runs_total",
				Help:      "Engine runs by engine and outcome",
			},
			[]string{"engine", "outcome"},
		),
		tasksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cultivation_tasks_created_total",
			Help:      "Cultivation tasks generated from approved plans",
		}),
		taskMaterialsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cultivation_task_materials_created_total",
			Help:      "Priced material lines attached to generated tasks",
		}),
		itemsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "expansion_items_skipped_total",
				Help:      "Items skipped or degraded during expansion by reason",
			},
			[]string{"reason"},
		),
		distributionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "distributions_created_total",
			Help:      "Bulk material distributions scheduled",
		}),
		distributionsExisting: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "distributions_skipped_existing_total",
			Help:      "Distribution slots skipped because an active distribution already exists",
		}),
		expansionCost: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "expansion_total_cost",
			Help:      "Estimated material cost of one plan expansion",
			Buckets:   prometheus.ExponentialBuckets(100000, 4, 8),
		}),
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "activation_retries_total",
				Help:      "Dead-letter replays by engine and outcome",
			},
			[]string{"engine", "outcome"},
		),
	}
}

// Register registers all activation metrics with the Prometheus registry
func (c *ActivationMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.runsTotal,
		c.tasksCreated,
		c.taskMaterialsCreated,
		c.itemsSkipped,
		c.distributionsCreated,
		c.distributionsExisting,
		c.expansionCost,
		c.retriesTotal,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordExpansion records one expansion run
func (c *ActivationMetricsCollector) RecordExpansion(outcome string, tasksCreated, materialsCreated int, skipped map[string]int, totalCost float64) {
	c.runsTotal.WithLabelValues("expansion", outcome).Inc()
	c.tasksCreated.Add(float64(tasksCreated))
	c.taskMaterialsCreated.Add(float64(materialsCreated))
	for reason, n := range skipped {
		if n > 0 {
			c.itemsSkipped.WithLabelValues(reason).Add(float64(n))
		}
	}
	if outcome == OutcomeSucceeded {
		c.expansionCost.Observe(totalCost)
	}
}

// RecordDistribution records one distribution scheduling run
func (c *ActivationMetricsCollector) RecordDistribution(outcome string, created, skippedExisting int) {
	c.runsTotal.WithLabelValues("distribution", outcome).Inc()
	c.distributionsCreated.Add(float64(created))
	c.distributionsExisting.Add(float64(skippedExisting))
}

// RecordRetry records one dead-letter replay
func (c *ActivationMetricsCollector) RecordRetry(engine, outcome string) {
	c.retriesTotal.WithLabelValues(engine, outcome).Inc()
}

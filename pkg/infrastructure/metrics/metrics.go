package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vsinha/disruption/pkg/domain/entities"
)

var (
	// Registry is the dedicated Prometheus registry for the planner
	Registry = prometheus.NewRegistry()

	// PlanRuns counts planning calls by operation and outcome
	PlanRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "disruption_plan_runs_total", Help: "Planning calls by operation and outcome."},
		[]string{"operation", "outcome"},
	)
	// PlanDuration records planning call durations in seconds
	PlanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "disruption_plan_duration_seconds", Help: "Planning call duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"operation"},
	)
	// PlannedLines counts plan rows by strategy
	PlannedLines = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "disruption_planned_lines_total", Help: "Planned order lines by strategy."},
		[]string{"strategy"},
	)
	// LateLines counts plan rows that miss their deadline
	LateLines = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "disruption_late_lines_total", Help: "Planned order lines arriving after their deadline."},
	)
	// OnTimePct is the on-time percentage of the last plan per operation
	OnTimePct = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "disruption_on_time_pct", Help: "On-time percentage of the most recent plan."},
		[]string{"operation"},
	)
	// CoverageAtRisk is the number of at-risk products in the last coverage pass
	CoverageAtRisk = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "disruption_coverage_at_risk_products", Help: "Products at risk in the most recent coverage pass."},
	)
)

var regOnce sync.Once

// RegisterDefault registers collectors to the dedicated registry
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(PlanRuns)
		Registry.MustRegister(PlanDuration)
		Registry.MustRegister(PlannedLines)
		Registry.MustRegister(LateLines)
		Registry.MustRegister(OnTimePct)
		Registry.MustRegister(CoverageAtRisk)
		Registry.MustRegister(collectors.NewGoCollector())
	})
}

// ObservePlan records the outcome of a planning operation
func ObservePlan(operation string, seconds float64, rows []entities.PlanRow, kpi entities.KPI) {
	PlanRuns.WithLabelValues(operation, "ok").Inc()
	PlanDuration.WithLabelValues(operation).Observe(seconds)
	for _, row := range rows {
		PlannedLines.WithLabelValues(row.Strategy.String()).Inc()
		if !row.OnTime() {
			LateLines.Inc()
		}
	}
	OnTimePct.WithLabelValues(operation).Set(kpi.OnTimePct)
}

// ObserveFailure records a failed planning operation
func ObserveFailure(operation string) {
	PlanRuns.WithLabelValues(operation, "error").Inc()
}

// WriteTextfile dumps the registry in the node-exporter textfile format
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

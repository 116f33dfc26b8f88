// Tracks run-wide statistics: steps taken, action firings and field totals.

package sim

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates statistics about the run for final reporting.
type Metrics struct {
	ReportSteps      int // report steps completed
	SubSteps         int // sub-steps taken over all report steps
	ActionsEvaluated int // eligible actions whose conditions were evaluated
	ActionsTriggered int
	OpenWells        int     // open wells at the last completed step
	ElapsedDays      float64 // simulated time at the last completed step

	// FieldTotals holds the cumulative field vectors (FOPT, FWIT, ...) in deck
	// units at the last completed step.
	FieldTotals map[string]float64
}

// NewMetrics returns an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{FieldTotals: make(map[string]float64)}
}

// fieldTotalKeywords are the vectors copied into Metrics.FieldTotals.
var fieldTotalKeywords = []string{"FOPT", "FWPT", "FGPT", "FWIT", "FGIT"}

// Print displays aggregated metrics at the end of the run.
func (m *Metrics) Print() {
	fmt.Println("=== Schedule Run Metrics ===")
	fmt.Printf("Report Steps         : %d\n", m.ReportSteps)
	fmt.Printf("Sub-steps            : %d\n", m.SubSteps)
	fmt.Printf("Simulated Time       : %.2f days\n", m.ElapsedDays)
	fmt.Printf("Open Wells           : %d\n", m.OpenWells)
	fmt.Printf("Actions Evaluated    : %d\n", m.ActionsEvaluated)
	fmt.Printf("Actions Triggered    : %d\n", m.ActionsTriggered)
	if m.ReportSteps > 0 {
		fmt.Printf("Sub-steps per Step   : %.2f\n", float64(m.SubSteps)/float64(m.ReportSteps))
	}
	for _, kw := range fieldTotalKeywords {
		fmt.Printf("%-21s: %.2f\n", kw, m.FieldTotals[kw])
	}
}

const metricsNamespace = "schedule_sim"

// promMetrics are the prometheus instruments of one run.
type promMetrics struct {
	ReportSteps      prometheus.Counter
	SubSteps         prometheus.Counter
	ActionsTriggered *prometheus.CounterVec
	StepSeconds      prometheus.Histogram
	FieldRate        *prometheus.GaugeVec
}

// newPromMetrics registers the run instruments on reg.
func newPromMetrics(reg prometheus.Registerer) *promMetrics {
	f := promauto.With(reg)
	return &promMetrics{
		ReportSteps: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "report_steps_total",
			Help:      "Report steps completed.",
		}),
		SubSteps: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sub_steps_total",
			Help:      "Time sub-steps taken.",
		}),
		ActionsTriggered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "actions_triggered_total",
			Help:      "Action firings by action name.",
		}, []string{"action"}),
		StepSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "report_step_duration_seconds",
			Help:      "Wall time spent on one report step.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		}),
		FieldRate: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "field_rate",
			Help:      "Field surface rate at the last sub-step, deck units per day.",
		}, []string{"vector"}),
	}
}

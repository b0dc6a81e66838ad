package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "pagetree"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	opDuration     *prom.HistogramVec
	opResults      *prom.CounterVec
	cascades       *prom.CounterVec
	treeViolations *prom.GaugeVec
	retries        *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the pagetree metrics on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		opDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of page operations including retries",
			Buckets:   prom.DefBuckets,
		}, []string{"operation"}),
		opResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "operation_results_total",
			Help:      "Page operation results by outcome",
		}, []string{"operation", "result"}),
		cascades: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_transitions_total",
			Help:      "State transitions applied to descendants by cascades",
		}, []string{"operation"}),
		treeViolations: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_violations",
			Help:      "Tree invariant violations found by the last check",
		}, []string{"site", "scope"}),
		retries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "operation_retries_total",
			Help:      "Operations retried after a concurrent modification",
		}, []string{"operation"}),
	}
	reg.MustRegister(pr.opDuration, pr.opResults, pr.cascades, pr.treeViolations, pr.retries)
	return pr
}

func (p *PrometheusRecorder) ObserveOperation(op string, d time.Duration) {
	if p == nil {
		return
	}
	p.opDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncOperationResult(op string, result ResultLabel) {
	if p == nil {
		return
	}
	p.opResults.WithLabelValues(op, string(result)).Inc()
}

func (p *PrometheusRecorder) AddCascade(op string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.cascades.WithLabelValues(op).Add(float64(n))
}

func (p *PrometheusRecorder) SetTreeViolations(site, scope string, n int) {
	if p == nil {
		return
	}
	p.treeViolations.WithLabelValues(site, scope).Set(float64(n))
}

func (p *PrometheusRecorder) IncRetry(op string) {
	if p == nil {
		return
	}
	p.retries.WithLabelValues(op).Inc()
}

package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry         *prom.Registry
	projectsResolved *prom.CounterVec
	resolveDuration  prom.Histogram
	cleanResults     *prom.CounterVec
	cleanRetries     prom.Counter
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		projectsResolved: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "buildlayout",
			Name:      "projects_resolved_total",
			Help:      "Subprojects resolved, by compiler target",
		}, []string{"target"}),
		resolveDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "buildlayout",
			Name:      "resolve_duration_seconds",
			Help:      "Duration of a full configuration pass",
			Buckets:   prom.DefBuckets,
		}),
		cleanResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "buildlayout",
			Name:      "clean_total",
			Help:      "Clean invocations by result",
		}, []string{"result"}),
		cleanRetries: prom.NewCounter(prom.CounterOpts{
			Namespace: "buildlayout",
			Name:      "clean_retries_total",
			Help:      "Delete attempts retried after a transient failure",
		}),
	}
	reg.MustRegister(pr.projectsResolved, pr.resolveDuration, pr.cleanResults, pr.cleanRetries)
	return pr
}

func (p *PrometheusRecorder) IncProjectResolved(target string) {
	if p == nil {
		return
	}
	p.projectsResolved.WithLabelValues(target).Inc()
}

func (p *PrometheusRecorder) ObserveResolveDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.resolveDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCleanResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.cleanResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncCleanRetry() {
	if p == nil {
		return
	}
	p.cleanRetries.Inc()
}

// Registry exposes the underlying registry, e.g. for tests.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

// WriteTextfile writes all registered metrics to path in the Prometheus text
// format. The write is atomic (temp file + rename).
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

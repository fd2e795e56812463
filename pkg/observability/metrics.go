package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors fed by workspace hooks.
type Metrics struct {
	Compilations    *prometheus.CounterVec
	CompileDuration *prometheus.HistogramVec
	Checks          *prometheus.CounterVec
	Refinements     *prometheus.CounterVec
	Reloads         prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m, err := NewMetricsWith(reg, reg)
	if err != nil {
		// A fresh registry holds no conflicting collectors.
		panic(err)
	}
	return m
}

// NewMetricsWith registers the collectors on reg and serves them from g.
func NewMetricsWith(reg prometheus.Registerer, g prometheus.Gatherer) (*Metrics, error) {
	m := &Metrics{
		Compilations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "causal_compilations_total",
				Help: "Total number of program compilations",
			},
			[]string{"theory", "result"},
		),
		CompileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "causal_compile_duration_seconds",
				Help:    "Duration of program compilations",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"theory"},
		),
		Checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "causal_homomorphism_checks_total",
				Help: "Total number of homomorphism validations",
			},
			[]string{"result"},
		),
		Refinements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "causal_refinements_total",
				Help: "Total number of generator refinements",
			},
			[]string{"theory", "result"},
		),
		Reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "causal_theory_reloads_total",
			Help: "Total number of theories reloaded after a source change",
		}),
		gatherer: g,
	}

	for _, c := range []prometheus.Collector{m.Compilations, m.CompileDuration, m.Checks, m.Refinements, m.Reloads} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCompile: func(_ context.Context, e *domain.CompileEvent) {
			m.Compilations.WithLabelValues(e.Theory, result(e.Err == nil)).Inc()
			m.CompileDuration.WithLabelValues(e.Theory).Observe(e.Duration.Seconds())
		},
		OnCheck: func(_ context.Context, e *domain.CheckEvent) {
			m.Checks.WithLabelValues(result(e.Err == nil && e.Failures == 0)).Inc()
		},
		OnRefine: func(_ context.Context, e *domain.RefineEvent) {
			m.Refinements.WithLabelValues(e.Theory, result(e.Err == nil)).Inc()
		},
		OnReload: func(context.Context, *domain.ReloadEvent) {
			m.Reloads.Inc()
		},
	}
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

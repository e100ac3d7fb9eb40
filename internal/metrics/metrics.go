// Package metrics exposes engine activity as Prometheus collectors.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/shablon/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors groups the engine metrics.
type Collectors struct {
	Resolutions     *prometheus.CounterVec
	ResolveDuration prometheus.Histogram
	Compilations    *prometheus.CounterVec
	DroppedRows     prometheus.Counter
	CompileDuration prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shablon_resolutions_total",
				Help: "Transition resolutions by template and outcome.",
			},
			[]string{"template_id", "outcome"},
		),
		ResolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shablon_resolve_duration_seconds",
			Help:    "Duration of transition resolutions.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		Compilations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shablon_compilations_total",
				Help: "Draft compilations by result.",
			},
			[]string{"result"},
		),
		DroppedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shablon_compile_dropped_rows_total",
			Help: "Draft variables and transitions dropped for unresolved references.",
		}),
		CompileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "shablon_compile_duration_seconds",
			Help: "Duration of draft compilations.",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.Resolutions, c.ResolveDuration, c.Compilations, c.DroppedRows, c.CompileDuration,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (c *Collectors) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResolve: func(_ context.Context, e *domain.ResolveEvent) {
			c.Resolutions.WithLabelValues(strconv.FormatInt(e.TemplateID, 10), string(e.Outcome)).Inc()
			c.ResolveDuration.Observe(e.Duration.Seconds())
		},
		OnCompile: func(_ context.Context, e *domain.CompileEvent) {
			result := "committed"
			if e.Err != nil {
				result = "failed"
			}
			c.Compilations.WithLabelValues(result).Inc()
			c.DroppedRows.Add(float64(e.Dropped))
			c.CompileDuration.Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the metrics of gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

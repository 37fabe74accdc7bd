package observability

import (
	"errors"
	"iter"
	"time"

	"github.com/aretw0/unparse/pkg/domain"
	"github.com/aretw0/unparse/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "unparse"

// Render outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeStopped = "stopped" // The consumer stopped before the end
)

// Metrics holds the render counters.
//
// Metrics:
//   - unparse_renders_total: walks by outcome (ok, error, stopped)
//   - unparse_chunks_total: chunks yielded
//   - unparse_bytes_total: bytes yielded
//   - unparse_errors_total: walk errors by kind (definition, layout, indentation, config, other)
//   - unparse_render_duration_seconds: walk duration, consumer time included
//   - unparse_cache_lookups_total: render cache lookups by result (hit, miss)
type Metrics struct {
	renders  *prometheus.CounterVec
	chunks   prometheus.Counter
	bytes    prometheus.Counter
	errors   *prometheus.CounterVec
	duration prometheus.Histogram
	cache    *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg.
// It panics if they are already registered there.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Total number of tree walks by outcome",
		}, []string{"outcome"}),
		chunks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Total number of chunks yielded",
		}),
		bytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_total",
			Help:      "Total number of bytes yielded",
		}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of walk errors by kind",
		}, []string{"kind"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of tree walks",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		cache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of render cache lookups by result",
		}, []string{"result"}),
	}
}

// Walk instruments a traversal. The returned WalkFunc yields exactly what
// next yields.
func (m *Metrics) Walk(next ports.WalkFunc) ports.WalkFunc {
	return func(d ports.Dispatcher, node domain.Node, prod domain.Production) iter.Seq2[string, error] {
		return func(yield func(string, error) bool) {
			start := time.Now()
			outcome := OutcomeOK
			defer func() {
				m.renders.WithLabelValues(outcome).Inc()
				m.duration.Observe(time.Since(start).Seconds())
			}()

			for chunk, err := range next(d, node, prod) {
				if err != nil {
					outcome = OutcomeError
					m.errors.WithLabelValues(ErrorKind(err)).Inc()
					yield("", err)
					return
				}
				m.chunks.Inc()
				m.bytes.Add(float64(len(chunk)))
				if !yield(chunk, nil) {
					outcome = OutcomeStopped
					return
				}
			}
		}
	}
}

// ObserveCache records a render cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}

// ErrorKind classifies an error for the errors_total label.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoDefinition):
		return "definition"
	case errors.Is(err, domain.ErrNoLayoutHandler):
		return "layout"
	case errors.Is(err, domain.ErrUnbalancedIndent):
		return "indentation"
	case errors.Is(err, domain.ErrInvalidConfig):
		return "config"
	default:
		return "other"
	}
}

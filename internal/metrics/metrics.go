package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provides observability for certificate rendering.
type Metrics struct {
	Generated      prometheus.Counter
	Failures       *prometheus.CounterVec
	RenderDuration prometheus.Histogram
	Swept          prometheus.Counter
}

// New creates the certificate metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Generated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "certificate_generated_total",
			Help: "Total number of certificates rendered and stored",
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "certificate_failures_total",
			Help: "Total number of failed certificate renderings by error kind",
		}, []string{"kind"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "certificate_render_duration_seconds",
			Help:    "Duration of the rendering pipeline, from intake to stored PDF",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		Swept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "certificate_swept_total",
			Help: "Total number of stored certificates deleted by the retention sweeper",
		}),
	}
	reg.MustRegister(m.Generated, m.Failures, m.RenderDuration, m.Swept)
	return m
}

// IncrementGenerated records a successful rendering.
func (m *Metrics) IncrementGenerated() {
	m.Generated.Inc()
}

// IncrementFailure records a failed rendering with its error kind.
func (m *Metrics) IncrementFailure(kind string) {
	m.Failures.WithLabelValues(kind).Inc()
}

// ObserveRender records the duration of a rendering.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRender(start time.Time) {
	m.RenderDuration.Observe(time.Since(start).Seconds())
}

// AddSwept records certificates removed by the retention sweeper.
func (m *Metrics) AddSwept(n int) {
	m.Swept.Add(float64(n))
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
	ErrorTotal      *prometheus.CounterVec

	// Follow-up metrics
	FollowUpsCreated   prometheus.Counter
	FollowUpsCompleted prometheus.Counter
	ImportRows         *prometheus.CounterVec

	// Public page metrics
	PublicViews     prometheus.Counter
	ViewLogFailures prometheus.Counter
}

// New creates all application metrics and registers them on reg.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "path", "status"}),
		RequestTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		ErrorTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Total number of HTTP responses with status >= 400",
		}, []string{"method", "path", "class"}),

		FollowUpsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "followups_created_total",
			Help:      "Total number of follow-ups created through the staff form",
		}),
		FollowUpsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "followups_completed_total",
			Help:      "Total number of follow-ups transitioned to done",
		}),
		ImportRows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Imported follow-up rows by outcome",
		}, []string{"result"}),

		PublicViews: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "public_views_total",
			Help:      "Total number of public follow-up pages served",
		}),
		ViewLogFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "public_view_log_failures_total",
			Help:      "Public page views whose audit row could not be written",
		}),
	}
}

// NewNop returns metrics registered on a private registry, for tests and
// tools that do not expose /metrics.
func NewNop() *Metrics {
	return New("followups", prometheus.NewRegistry())
}

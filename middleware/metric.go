package middleware

import (
	"strconv"
	"time"

	"storepos/events"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

func InitMetrics(reg prometheus.Registerer) {
	reg.MustRegister(HttpRequestsTotal, HttpRequestDuration)
}

func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "undefined"
		}

		HttpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HttpRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
	}
}

// POSMetrics counts checkout outcomes. It satisfies service.Recorder.
type POSMetrics struct {
	checkouts     *prometheus.CounterVec
	verifications *prometheus.CounterVec
	settlements   *prometheus.CounterVec
	unauthorized  prometheus.Counter
}

func NewPOSMetrics(reg prometheus.Registerer) *POSMetrics {
	m := &POSMetrics{
		checkouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_checkouts_total",
				Help: "Checkout attempts by channel, payment mode and result",
			},
			[]string{"channel", "mode", "result"},
		),
		verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_reservation_verifications_total",
				Help: "Reservation code verifications by result",
			},
			[]string{"result"},
		),
		settlements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_credit_settlements_total",
				Help: "Standalone credit settlements by result",
			},
			[]string{"result"},
		),
		unauthorized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_upstream_unauthorized_total",
			Help: "Storefront calls rejected for an invalid token",
		}),
	}
	reg.MustRegister(m.checkouts, m.verifications, m.settlements, m.unauthorized)
	return m
}

func (m *POSMetrics) Checkout(channel, mode, result string) {
	m.checkouts.WithLabelValues(channel, mode, result).Inc()
}

func (m *POSMetrics) Verification(result string) {
	m.verifications.WithLabelValues(result).Inc()
}

func (m *POSMetrics) Settlement(result string) {
	m.settlements.WithLabelValues(result).Inc()
}

// WatchAuth counts auth.changed events.
func (m *POSMetrics) WatchAuth(bus *events.Bus) func() {
	return bus.Subscribe(events.AuthChanged, func(events.Event) {
		m.unauthorized.Inc()
	})
}

package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
)

const unmatchedRoute = "unmatched"

// HTTPMetrics collects per-route request metrics for the API.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
	skip     map[string]struct{}
}

// NewHTTPMetrics registers the HTTP collectors on reg. Requests to any of the
// skip paths (typically the scrape and liveness endpoints) are not recorded.
func NewHTTPMetrics(reg prometheus.Registerer, skip ...string) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests handled, by route pattern and status.",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
		skip: make(map[string]struct{}, len(skip)),
	}
	for _, p := range skip {
		m.skip[p] = struct{}{}
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration, m.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler returns the fiber middleware.
func (m *HTTPMetrics) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := m.skip[c.Path()]; ok {
			return c.Next()
		}

		m.inFlight.Inc()
		defer m.inFlight.Dec()

		own := c.Route()
		start := time.Now()
		err := c.Next()

		// fiber strings alias the pooled request buffer; labels outlive it
		method := utils.CopyString(c.Method())
		path := routeLabel(c, own)
		status := strconv.Itoa(statusOf(c, err))

		m.requests.WithLabelValues(method, path, status).Inc()
		m.duration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		return err
	}
}

// routeLabel returns the registered pattern (/files/:id, not /files/42). Requests
// no handler matched share one label so arbitrary paths cannot add series.
// The route still being own after Next means no later route matched.
func routeLabel(c *fiber.Ctx, own *fiber.Route) string {
	r := c.Route()
	if r == nil || r == own || r.Path == "" {
		return unmatchedRoute
	}
	return r.Path
}

// statusOf resolves the status the error handler will eventually write.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

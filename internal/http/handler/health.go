package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Pinger is the part of *sql.DB the readiness check needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Welcome godoc
// @Summary Service banner
// @Tags ops
// @Produce json
// @Success 200 {object} messagePayload
// @Router / [get]
func Welcome() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(messagePayload{Message: "Welcome to the POD API"})
	}
}

// HealthCheck godoc
// @Summary Readiness check against the database
// @Tags ops
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// Liveness answers 200 while the process is up.
func Liveness() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Metrics exposes the registry in the Prometheus text format.
func Metrics(g prometheus.Gatherer) fiber.Handler {
	var h http.Handler = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	h = otelhttp.NewHandler(h, "metrics")
	return adaptor.HTTPHandler(h)
}

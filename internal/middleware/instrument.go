package middleware

import (
	"strconv"
	"time"

	"katalog/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Instrument records request counts and latency per route template.
// Errors are rendered here through the app's ErrorHandler so the recorded
// status is the one the client receives.
func Instrument(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		route := c.Route().Path
		m.RequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(c.Response().StatusCode())).Inc()
		m.RequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return nil
	}
}

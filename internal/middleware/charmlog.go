// Package middleware holds echo middleware shared by the control socket.
package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

// CharmLog logs each request through the package level charm logger.
// Failed requests are logged at warn, the rest at debug.
func CharmLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			fields := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"latency", time.Since(start).Round(time.Microsecond),
			}
			if err != nil || res.Status >= 500 {
				log.Warn("control request", append(fields, "err", err)...)
			} else {
				log.Debug("control request", fields...)
			}
			return nil
		}
	}
}

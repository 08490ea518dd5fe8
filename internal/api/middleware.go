package api

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestLogger writes the method and path of every request before routing.
// The line carries no level, so only a disabled logger drops it.
// Install it with Echo#Pre.
func RequestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			logger.Log().Msgf("Request: %s %s", req.Method, req.URL.Path)
			return next(c)
		}
	}
}

package middleware

import (
	"github.com/content-services/modulemd-backend/pkg/config"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AddRequestId stores the caller supplied request id, or a new one, in the
// context and echoes it back in the response headers.
func AddRequestId(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestId := c.Request().Header.Get(config.HeaderRequestId)
		if requestId == "" {
			requestId = uuid.NewString()
			c.Request().Header.Set(config.HeaderRequestId, requestId)
		}
		c.Set(config.HeaderRequestId, requestId)
		c.Response().Header().Set(config.HeaderRequestId, requestId)
		return next(c)
	}
}

package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"smartPricing/business/bandit"
)

// RequestID propagates X-Request-ID, generating one when absent, and stores
// it as the trace id on the request context.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, rid)

			c.SetRequest(req.WithContext(bandit.WithTraceID(req.Context(), rid)))
			return next(c)
		}
	}
}

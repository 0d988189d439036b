package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"smartPricing/business/bandit"
	"smartPricing/domain"
	"smartPricing/pkg/logger"
)

type errorResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusFor maps the domain error taxonomy to an HTTP status.
func StatusFor(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConcurrencyConflict),
		errors.Is(err, bandit.ErrSweepInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStorage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler is the echo.HTTPErrorHandler for the API.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := StatusFor(err)
	msg := err.Error()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	rid := bandit.TraceIDFromContext(c.Request().Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"trace_id", rid,
			"method", c.Request().Method,
			"path", c.Path(),
			"status", status,
			"error", err,
		)
		if status == http.StatusInternalServerError {
			msg = http.StatusText(status)
		}
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, errorResponse{Message: msg, RequestID: rid})
	}
	if werr != nil {
		logger.Error("failed to write error response", werr)
	}
}

package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidField),
		errors.Is(err, service.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail logs a service error under event and converts it to an HTTP error.
func fail(l *slog.Logger, event string, err error) error {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "reason", "internal error", "error", err)
		return echo.NewHTTPError(code, "internal server error").SetInternal(err)
	}
	l.Warn(event, "status", code, "reason", err.Error(), "error", err)
	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}

func badBody(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body").SetInternal(err)
}

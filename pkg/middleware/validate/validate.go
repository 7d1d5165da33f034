package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// MaxBody and MaxBodyLimit are the same size, for this middleware and for
// echo's BodyLimit.
const (
	MaxBody      = 1 << 20
	MaxBodyLimit = "1M"
)

// BlankFields rejects JSON object bodies whose top-level string values are
// empty after trimming. The body is restored for the handler.
func BlankFields(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		switch req.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			return next(c)
		}
		if req.Body == nil || !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
			return next(c)
		}

		body, err := io.ReadAll(http.MaxBytesReader(c.Response(), req.Body, MaxBody))
		_ = req.Body.Close()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return echo.ErrStatusRequestEntityTooLarge.WithInternal(err)
			}
			var he *echo.HTTPError
			if errors.As(err, &he) {
				return he
			}
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable body").SetInternal(err)
		}
		req.Body = io.NopCloser(bytes.NewReader(body))

		var fields map[string]any
		if json.Unmarshal(body, &fields) != nil {
			return next(c)
		}
		for _, v := range fields {
			if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "data contains empty or invalid field")
			}
		}
		return next(c)
	}
}

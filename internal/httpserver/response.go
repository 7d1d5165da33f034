package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/util"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Meta    *util.Meta `json:"meta,omitempty"`
	Error   string     `json:"error,omitempty"`
}

func respond(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, Envelope{Success: true, Message: message, Data: data})
}

func respondPage(c echo.Context, message string, data any, offset, limit int, total int64) error {
	meta := util.NewMeta(offset, limit, total)
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data, Meta: &meta})
}

// ErrorHandler renders errors in the envelope. Server errors carry the
// underlying error text.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var detail string

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = fmt.Sprint(he.Message)
		if he.Internal != nil && code >= http.StatusInternalServerError {
			detail = he.Internal.Error()
		}
	} else {
		detail = err.Error()
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, Envelope{Success: false, Message: message, Error: detail})
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-app/internal/logging"
)

const msgInternal = "Internal server error"

// internalError logs err and answers 500 without exposing any detail.
func internalError(c echo.Context, log logging.Logger, op string, err error) error {
	log.Error(c.Request().Context(), op, "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternal})
}

func validationFailed(c echo.Context, errs []fieldError) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
}

// HTTPErrorHandler replaces Echo's default so framework errors (unknown
// routes, recovered panics, oversized bodies) share the {"error": "..."}
// shape of the handlers.  Non-HTTP errors become a bare 500.
func HTTPErrorHandler(log logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := msgInternal
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok && code < 500 {
				msg = m
			} else if code < 500 {
				msg = http.StatusText(code)
			}
		}
		if code >= 500 {
			log.Error(c.Request().Context(), "unhandled error", "path", c.Path(), "err", err)
		}
		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, echo.Map{"error": msg})
		}
		if werr != nil {
			log.Warn(c.Request().Context(), "write error response", "err", werr)
		}
	}
}

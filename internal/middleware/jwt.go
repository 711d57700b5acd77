package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/todo-app/internal/logging"
	"github.com/iliyamo/todo-app/internal/model"
)

// TokenVerifier checks an access token and returns the user id it carries.
type TokenVerifier interface {
	Verify(raw string) (uint64, error)
}

// UserFinder resolves a user id; (nil, nil) means the user does not exist.
type UserFinder interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

const (
	msgNoToken      = "Access denied. No token provided."
	msgInvalidToken = "Invalid token."
)

// JWTAuth returns an Echo middleware that validates a Bearer access token,
// loads the user it was issued for and stores that user in the request
// context (see CurrentUser).  Requests without a token, with a bad or
// expired token, or whose user no longer exists are answered with 401 and
// never reach the next handler.
func JWTAuth(tokens TokenVerifier, users UserFinder, log logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if !strings.HasPrefix(auth, "Bearer ") || raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgNoToken})
			}

			uid, err := tokens.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgInvalidToken})
			}

			ctx := c.Request().Context()
			u, err := users.GetByID(ctx, uid)
			if err != nil {
				log.Error(ctx, "resolve token user", "user_id", uid, "err", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
			}
			// deleted after the token was issued
			if u == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgInvalidToken})
			}

			SetUser(c, u)
			return next(c)
		}
	}
}

package middleware

// identity.go holds the helpers that store and read the authenticated user
// on the Echo context.  JWTAuth is the only writer.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-app/internal/model"
)

const userContextKey = "user"

// SetUser attaches the resolved user to the request context.
func SetUser(c echo.Context, u *model.User) {
	c.Set(userContextKey, u)
}

// CurrentUser returns the user resolved by JWTAuth.  ok is false when the
// request did not pass through the middleware.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(userContextKey).(*model.User)
	return u, ok && u != nil
}

// userID returns the authenticated user's id as a string, or "" for
// anonymous requests.
func userID(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return strconv.FormatUint(u.ID, 10)
	}
	return ""
}

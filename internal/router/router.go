package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/todo-app/internal/config"
	"github.com/iliyamo/todo-app/internal/handler"    // handlers that implement the endpoints
	"github.com/iliyamo/todo-app/internal/logging"
	"github.com/iliyamo/todo-app/internal/middleware" // JWT auth, cache and request logging
)

// Deps is everything the HTTP layer needs, built by the composition root.
type Deps struct {
	Log         logging.Logger
	Auth        *handler.AuthHandler
	Todos       *handler.TodoHandler
	Tokens      middleware.TokenVerifier
	Users       middleware.UserFinder
	DB          handler.Pinger
	Cache       config.CacheConfig
	Redis       *redis.Client // nil disables the todo list cache
	CORSOrigins []string
}

// New returns a configured Echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.Recover())
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit("1M"))

	authMW := middleware.JWTAuth(d.Tokens, d.Users, d.Log)

	RegisterRoutes(e, d.DB)
	RegisterAuth(e, d.Auth, authMW)
	RegisterTodos(e, d.Todos, authMW, middleware.TodoListCache(d.Cache, d.Redis, d.Log))
	return e
}

// RegisterRoutes registers routes that do not require authentication and
// are not part of the API, currently only the health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the authentication endpoints.  Register and login
// are public; /api/auth/me requires a valid token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, authMW echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.GET("/me", a.Me, authMW)
}

// RegisterTodos registers the todo endpoints.  The whole group runs behind
// authMW, so no todo handler can be reached without a resolved user.
func RegisterTodos(e *echo.Echo, t *handler.TodoHandler, authMW, cacheMW echo.MiddlewareFunc) {
	g := e.Group("/api/todos", authMW, cacheMW)
	g.GET("", t.List)
	g.POST("", t.Create)
	g.PUT("/:id", t.Update)
	g.DELETE("/:id", t.Delete)
}

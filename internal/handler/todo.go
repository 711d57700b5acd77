package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-app/internal/logging"
	"github.com/iliyamo/todo-app/internal/middleware"
	"github.com/iliyamo/todo-app/internal/model"
)

// TodoStore is the ownership-scoped todo persistence.  Every method takes
// the owner id, which handlers always take from the authenticated user.
type TodoStore interface {
	Create(ctx context.Context, ownerID uint64, title, description string) (uint64, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Todo, error)
	Update(ctx context.Context, id, ownerID uint64, title, description string, completed bool) (int64, error)
	Delete(ctx context.Context, id, ownerID uint64) (int64, error)
}

// TodoHandler serves /api/todos.  All routes sit behind middleware.JWTAuth.
type TodoHandler struct {
	Todos TodoStore
	Log   logging.Logger
}

func NewTodoHandler(todos TodoStore, log logging.Logger) *TodoHandler {
	return &TodoHandler{Todos: todos, Log: log}
}

// todoReq is the body of POST.  Completed is not accepted on create.
// Descriptions are capped so that even four-byte characters fit the TEXT
// column.
type todoReq struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=10000"`
}

func (r *todoReq) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
}

// updateTodoReq is the body of PUT.  The pointer tells an omitted completed
// apart from false.
type updateTodoReq struct {
	todoReq
	Completed *bool `json:"completed" validate:"required"`
}

const msgTodoNotFound = "Todo not found"

// todoID parses :id.  Anything that is not a positive integer can never
// match a row, so callers answer it like a missing todo.
func todoID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// unauthenticated only fires if a route was mounted without JWTAuth.
func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token."})
}

// List handles GET /api/todos and returns the caller's todos, newest first.
func (h *TodoHandler) List(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	todos, err := h.Todos.ListByOwner(ctx, u.ID)
	if err != nil {
		return internalError(c, h.Log, "list todos", err)
	}
	return c.JSON(http.StatusOK, todos)
}

// Create handles POST /api/todos.
func (h *TodoHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	var req todoReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return invalid(c, h.Log, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Todos.Create(ctx, u.ID, req.Title, req.Description)
	if err != nil {
		return internalError(c, h.Log, "create todo", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Todo created successfully", "id": id})
}

// Update handles PUT /api/todos/:id.  A todo owned by someone else is
// reported exactly like a missing one.
func (h *TodoHandler) Update(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, ok := todoID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgTodoNotFound})
	}
	var req updateTodoReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return invalid(c, h.Log, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Todos.Update(ctx, id, u.ID, req.Title, req.Description, *req.Completed)
	if err != nil {
		return internalError(c, h.Log, "update todo", err)
	}
	if n == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgTodoNotFound})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Todo updated successfully"})
}

// Delete handles DELETE /api/todos/:id with the same ownership rule as Update.
func (h *TodoHandler) Delete(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, ok := todoID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgTodoNotFound})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Todos.Delete(ctx, id, u.ID)
	if err != nil {
		return internalError(c, h.Log, "delete todo", err)
	}
	if n == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgTodoNotFound})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Todo deleted successfully"})
}

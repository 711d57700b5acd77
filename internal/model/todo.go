package model

import "time"

// Todo is a task owned by exactly one user.  This struct corresponds to a
// row in the `todos` table and is also the response shape of GET /api/todos.
type Todo struct {
	ID          uint64    `json:"id"`          // todos.id
	UserID      uint64    `json:"user_id"`     // todos.user_id (owner)
	Title       string    `json:"title"`       // todos.title, never empty
	Description string    `json:"description"` // todos.description, "" when omitted
	Completed   bool      `json:"completed"`   // todos.completed
	CreatedAt   time.Time `json:"created_at"`  // todos.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // todos.updated_at, bumped on every update
}

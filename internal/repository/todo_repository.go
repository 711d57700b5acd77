package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/todo-app/internal/model"
)

// TodoRepo encapsulates all database queries related to todos.  Every
// method takes the owner's user id and includes it in the WHERE clause, so
// a caller can never read or change another user's rows.
type TodoRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewTodoRepo constructs a TodoRepo with the provided DB handle.
func NewTodoRepo(db *sql.DB) *TodoRepo {
	return &TodoRepo{db: db}
}

// Create inserts a new todo for ownerID and returns its ID.
func (r *TodoRepo) Create(ctx context.Context, ownerID uint64, title, description string) (uint64, error) {
	const q = "INSERT INTO todos (user_id, title, description) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, ownerID, title, description)
	if err != nil {
		return 0, fmt.Errorf("insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert todo: %w", err)
	}
	return uint64(id), nil
}

// ListByOwner returns all todos of ownerID, newest first.  The result is
// never nil so it serialises as [] when empty.
func (r *TodoRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Todo, error) {
	const q = `SELECT id, user_id, title, description, completed, created_at, updated_at
	           FROM todos WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	out := []model.Todo{}
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return out, nil
}

// Update overwrites title, description and completed of a todo owned by
// ownerID and bumps updated_at.  It returns the number of matched rows; 0
// means the todo does not exist or belongs to someone else, and the two
// cases are intentionally indistinguishable.
func (r *TodoRepo) Update(ctx context.Context, id, ownerID uint64, title, description string, completed bool) (int64, error) {
	const q = `UPDATE todos
	           SET title = ?, description = ?, completed = ?, updated_at = CURRENT_TIMESTAMP(6)
	           WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, q, title, description, completed, id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("update todo: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes a todo owned by ownerID and returns the number of deleted
// rows, with the same ownership semantics as Update.
func (r *TodoRepo) Delete(ctx context.Context, id, ownerID uint64) (int64, error) {
	const q = "DELETE FROM todos WHERE id = ? AND user_id = ?"
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete todo: %w", err)
	}
	return res.RowsAffected()
}

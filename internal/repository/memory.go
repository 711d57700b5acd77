package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/todo-app/internal/model"
	"github.com/iliyamo/todo-app/internal/utils"
)

// MemoryUserRepo is an in-process UserRepo with the same uniqueness and
// lookup semantics.  It backs handler and router tests.
type MemoryUserRepo struct {
	mu     sync.RWMutex
	nextID uint64
	byID   map[uint64]model.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byID: map[uint64]model.User{}}
}

func (r *MemoryUserRepo) Create(_ context.Context, username, email, password string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	username, email = strings.TrimSpace(username), NormalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username || u.Email == email {
			return 0, ErrConflict
		}
	}
	r.nextID++
	r.byID[r.nextID] = model.User{
		ID:           r.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	return r.nextID, nil
}

func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	email = NormalizeEmail(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id uint64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.byID[id]; ok {
		return &u, nil
	}
	return nil, nil
}

// Delete removes a user.  Tests use it to model an account that disappears
// while its tokens are still valid.
func (r *MemoryUserRepo) Delete(id uint64) {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
}

// MemoryTodoRepo is an in-process TodoRepo honouring the same owner scoping.
type MemoryTodoRepo struct {
	mu     sync.RWMutex
	nextID uint64
	rows   map[uint64]model.Todo
	now    func() time.Time
}

func NewMemoryTodoRepo() *MemoryTodoRepo {
	return &MemoryTodoRepo{rows: map[uint64]model.Todo{}, now: func() time.Time { return time.Now().UTC() }}
}

func (r *MemoryTodoRepo) Create(_ context.Context, ownerID uint64, title, description string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := r.now()
	r.rows[r.nextID] = model.Todo{
		ID:          r.nextID,
		UserID:      ownerID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return r.nextID, nil
}

func (r *MemoryTodoRepo) ListByOwner(_ context.Context, ownerID uint64) ([]model.Todo, error) {
	r.mu.RLock()
	out := []model.Todo{}
	for _, t := range r.rows {
		if t.UserID == ownerID {
			out = append(out, t)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryTodoRepo) Update(_ context.Context, id, ownerID uint64, title, description string, completed bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok || t.UserID != ownerID {
		return 0, nil
	}
	t.Title, t.Description, t.Completed = title, description, completed
	t.UpdatedAt = r.now()
	r.rows[id] = t
	return 1, nil
}

func (r *MemoryTodoRepo) Delete(_ context.Context, id, ownerID uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok || t.UserID != ownerID {
		return 0, nil
	}
	delete(r.rows, id)
	return 1, nil
}

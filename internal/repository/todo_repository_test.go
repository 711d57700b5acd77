package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var todoCols = []string{"id", "user_id", "title", "description", "completed", "created_at", "updated_at"}

func TestTodoRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTodoRepo(db)

	mock.ExpectExec(`^INSERT INTO todos \(user_id, title, description\) VALUES \(\?, \?, \?\)$`).
		WithArgs(uint64(1), "buy milk", "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := repo.Create(context.Background(), 1, "buy milk", "")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestTodoRepo_ListByOwner_ScopedAndOrdered(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTodoRepo(db)
	t1 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	mock.ExpectQuery(`(?s)FROM todos WHERE user_id = \? ORDER BY created_at DESC, id DESC`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(todoCols).
			AddRow(uint64(2), uint64(1), "second", "", false, t2, t2).
			AddRow(uint64(1), uint64(1), "first", "desc", true, t1, t2))

	todos, err := repo.ListByOwner(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, "second", todos[0].Title)
	assert.Equal(t, "first", todos[1].Title)
	assert.True(t, todos[1].Completed)
	assert.Equal(t, "desc", todos[1].Description)
}

func TestTodoRepo_ListByOwner_EmptyIsNotNil(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTodoRepo(db)

	mock.ExpectQuery(`FROM todos WHERE user_id = \?`).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(todoCols))

	todos, err := repo.ListByOwner(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

func TestTodoRepo_ListByOwner_DBError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTodoRepo(db)

	mock.ExpectQuery(`FROM todos`).WillReturnError(errors.New("timeout"))

	_, err := repo.ListByOwner(context.Background(), 5)
	assert.Error(t, err)
}

const updateTodoQ = `(?s)UPDATE todos\s+SET title = \?, description = \?, completed = \?, updated_at = CURRENT_TIMESTAMP\(6\)\s+WHERE id = \? AND user_id = \?`

func TestTodoRepo_Update_Owner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTodoRepo(db)

	mock.ExpectExec(updateTodoQ).
		WithArgs("buy milk", "", true, uint64(1), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Update(context.Background(), 1, 1, "buy milk", "", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTodoRepo_Update_OtherOwnerMatchesNothing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTodoRepo(db)

	mock.ExpectExec(updateTodoQ).
		WithArgs("hijack", "", false, uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.Update(context.Background(), 1, 2, "hijack", "", false)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTodoRepo_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTodoRepo(db)

	mock.ExpectExec(`^DELETE FROM todos WHERE id = \? AND user_id = \?$`).
		WithArgs(uint64(1), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE FROM todos WHERE id = \? AND user_id = \?$`).
		WithArgs(uint64(1), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.Delete(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Delete(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTodoRepo_Delete_DBError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTodoRepo(db)

	mock.ExpectExec(`DELETE FROM todos`).WillReturnError(errors.New("deadlock"))

	_, err := repo.Delete(context.Background(), 1, 1)
	assert.Error(t, err)
}

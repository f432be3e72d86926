package user

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/sentinel"
	id "inkwell/pkg/domain"
)

var userRowColumns = []string{"id", "email", "name", "role", "password_hash", "created_at"}

func newPostgresWithMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgres(db), mock
}

var (
	selectByEmail = regexp.QuoteMeta(`SELECT id, email, name, role, password_hash, created_at FROM users WHERE email = $1`)
	selectByID    = regexp.QuoteMeta(`SELECT id, email, name, role, password_hash, created_at FROM users WHERE id = $1`)
	insertUser    = regexp.QuoteMeta(`INSERT INTO users (id, email, name, role, password_hash, created_at) VALUES ($1, $2, $3, $4, $5, $6)`)
)

func TestPostgresFindByEmail(t *testing.T) {
	created := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		store, mock := newPostgresWithMock(t)
		userID := id.NewUserID()
		mock.ExpectQuery(selectByEmail).
			WithArgs("jane@example.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(userID.String(), "jane@example.com", "Jane", "admin", "aa:bb", created))

		user, err := store.FindByEmail(context.Background(), "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, id.RoleAdmin, user.Role)
		assert.Equal(t, "aa:bb", user.PasswordHash)
		assert.True(t, user.CreatedAt.Equal(created))
	})

	t.Run("null hash means no local password", func(t *testing.T) {
		store, mock := newPostgresWithMock(t)
		mock.ExpectQuery(selectByEmail).
			WithArgs("oauth@example.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(id.NewUserID().String(), "oauth@example.com", "O", "user", nil, created))

		user, err := store.FindByEmail(context.Background(), "oauth@example.com")
		require.NoError(t, err)
		assert.False(t, user.HasPassword())
	})

	t.Run("not found", func(t *testing.T) {
		store, mock := newPostgresWithMock(t)
		mock.ExpectQuery(selectByEmail).WithArgs("none@example.com").WillReturnError(sql.ErrNoRows)

		_, err := store.FindByEmail(context.Background(), "none@example.com")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("invalid record is rejected", func(t *testing.T) {
		store, mock := newPostgresWithMock(t)
		mock.ExpectQuery(selectByEmail).
			WithArgs("odd@example.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(id.NewUserID().String(), "odd@example.com", "Odd", "superuser", "aa:bb", created))

		_, err := store.FindByEmail(context.Background(), "odd@example.com")
		require.Error(t, err)
		assert.NotErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("driver error propagates", func(t *testing.T) {
		store, mock := newPostgresWithMock(t)
		boom := errors.New("connection reset")
		mock.ExpectQuery(selectByEmail).WithArgs("jane@example.com").WillReturnError(boom)

		_, err := store.FindByEmail(context.Background(), "jane@example.com")
		assert.ErrorIs(t, err, boom)
	})
}

func TestPostgresFindByID(t *testing.T) {
	store, mock := newPostgresWithMock(t)
	userID := id.NewUserID()
	mock.ExpectQuery(selectByID).
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(userID.String(), "jane@example.com", "Jane", "user", "aa:bb", time.Now()))

	user, err := store.FindByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
}

func TestPostgresInsert(t *testing.T) {
	user := newTestUser("new@example.com")

	t.Run("success", func(t *testing.T) {
		store, mock := newPostgresWithMock(t)
		mock.ExpectExec(insertUser).
			WithArgs(user.ID.String(), user.Email, user.Name, "user", "aa:bb", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Insert(context.Background(), user))
	})

	t.Run("unique violation maps to already used", func(t *testing.T) {
		store, mock := newPostgresWithMock(t)
		mock.ExpectExec(insertUser).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		err := store.Insert(context.Background(), user)
		assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
	})

	t.Run("empty hash stored as null", func(t *testing.T) {
		store, mock := newPostgresWithMock(t)
		noHash := newTestUser("nohash@example.com")
		noHash.PasswordHash = ""
		mock.ExpectExec(insertUser).
			WithArgs(noHash.ID.String(), noHash.Email, noHash.Name, "user", nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Insert(context.Background(), noHash))
	})
}

func TestPostgresUpdates(t *testing.T) {
	userID := id.NewUserID()

	t.Run("password hash", func(t *testing.T) {
		store, mock := newPostgresWithMock(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET password_hash = $2 WHERE id = $1`)).
			WithArgs(userID.String(), "cc:dd").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.UpdatePasswordHash(context.Background(), userID, "cc:dd"))
	})

	t.Run("role on missing user", func(t *testing.T) {
		store, mock := newPostgresWithMock(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET role = $2 WHERE id = $1`)).
			WithArgs(userID.String(), "admin").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.UpdateRole(context.Background(), userID, id.RoleAdmin)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestPostgresListAll(t *testing.T) {
	store, mock := newPostgresWithMock(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, name, role, password_hash, created_at FROM users ORDER BY created_at, email`)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(id.NewUserID().String(), "a@example.com", "A", "admin", "aa:bb", now).
			AddRow(id.NewUserID().String(), "b@example.com", "B", "user", nil, now))

	users, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email)
	assert.Equal(t, id.RoleUser, users[1].Role)
}

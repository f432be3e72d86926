package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/internal/auth/models"
	"inkwell/internal/sentinel"
	id "inkwell/pkg/domain"
)

const userColumns = `id, email, name, role, password_hash, created_at`

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, role, password_hash, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(user.ID), user.Email, user.Name, user.Role.String(), nullableHash(user.PasswordHash), user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email already registered: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, userID id.UserID, hash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`,
		uuid.UUID(userID), nullableHash(hash),
	)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	return requireRow(res, "update password hash")
}

func (s *PostgresStore) UpdateRole(ctx context.Context, userID id.UserID, role id.Role) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET role = $2 WHERE id = $1`,
		uuid.UUID(userID), role.String(),
	)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return requireRow(res, "update role")
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, email`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

// scanUser validates every record it reads.
func scanUser(row scanner) (*models.User, error) {
	var (
		userID    uuid.UUID
		email     string
		name      string
		role      string
		hash      sql.NullString
		createdAt time.Time
	)
	if err := row.Scan(&userID, &email, &name, &role, &hash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, err
	}

	user := &models.User{
		ID:           id.UserID(userID),
		Email:        email,
		Name:         name,
		Role:         id.Role(role),
		PasswordHash: hash.String,
		CreatedAt:    createdAt,
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("invalid user record: %w", err)
	}
	return user, nil
}

func requireRow(res sql.Result, op string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func nullableHash(hash string) sql.NullString {
	return sql.NullString{String: hash, Valid: hash != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pmaxcam/review-website/internal/domain"
	"github.com/pmaxcam/review-website/pkg/database"
	apperrors "github.com/pmaxcam/review-website/pkg/errors"
)

const (
	userColumns = `id, email, full_name, avatar_url, password_hash, created_at, last_login_at`

	usersEmailConstraint = "users_email_key"

	queryInsertUser = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	queryGetUserByID = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`

	queryGetUserByEmail = `
		SELECT ` + userColumns + `
		FROM users
		WHERE lower(email) = lower($1)`

	queryTouchLastLogin = `UPDATE users SET last_login_at = $1 WHERE id = $2`

	queryUpdatePassword = `UPDATE users SET password_hash = $1 WHERE id = $2`
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user profile row.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateUser", queryInsertUser)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, queryInsertUser,
		u.ID,
		u.Email,
		u.FullName,
		u.AvatarURL,
		u.PasswordHash,
		u.CreatedAt,
		u.LastLoginAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err, usersEmailConstraint) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (u *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, "GetUserByID", queryGetUserByID)
	defer func() { end(err) }()

	return r.scanUser(ctx, queryGetUserByID, id)
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (u *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, "GetUserByEmail", queryGetUserByEmail)
	defer func() { end(err) }()

	return r.scanUser(ctx, queryGetUserByEmail, email)
}

// TouchLastLogin records a successful sign-in.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) (err error) {
	ctx, end := database.TraceQuery(ctx, "TouchLastLogin", queryTouchLastLogin)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, queryTouchLastLogin, at, id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}

// UpdatePassword replaces the user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpdatePassword", queryUpdatePassword)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, queryUpdatePassword, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}

func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&u.AvatarURL,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}

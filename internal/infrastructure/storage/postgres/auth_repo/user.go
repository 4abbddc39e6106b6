// Package auth_repo provides the PostgreSQL implementation of the user
// repository.
package auth_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/auth"
	"bakehouse/internal/infrastructure/storage/postgres"
)

const usersTable = "sys_users"

var userColumns = []string{
	"id", "email", "name", "password_hash", "role", "is_active",
	"last_login_at", "failed_login_attempts", "locked_until",
	"created_at", "updated_at",
}

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ auth.UserRepository = (*UserRepo)(nil)

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	q := r.builder.Insert(usersTable).
		Columns(userColumns...).
		Values(user.ID, user.Email, user.Name, user.PasswordHash, user.Role, user.IsActive,
			user.LastLoginAt, user.FailedLoginAttempts, user.LockedUntil,
			user.CreatedAt, user.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.getBy(ctx, squirrel.Eq{"id": userID}, userID)
}

// GetByEmail retrieves user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email}, email)
}

func (r *UserRepo) getBy(ctx context.Context, cond squirrel.Eq, ref any) (*auth.User, error) {
	q := r.builder.Select(userColumns...).
		From(usersTable).
		Where(cond).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var user auth.User
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", ref)
		}
		return nil, apperror.NewDatabase(err)
	}

	return &user, nil
}

// Update rewrites user data.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	q := r.builder.Update(usersTable).
		Set("email", user.Email).
		Set("name", user.Name).
		Set("password_hash", user.PasswordHash).
		Set("role", user.Role).
		Set("is_active", user.IsActive).
		Set("last_login_at", user.LastLoginAt).
		Set("failed_login_attempts", user.FailedLoginAttempts).
		Set("locked_until", user.LockedUntil).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"id": user.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("user", user.ID)
	}
	return nil
}

// List retrieves all users ordered by email.
func (r *UserRepo) List(ctx context.Context) ([]*auth.User, error) {
	q := r.builder.Select(userColumns...).
		From(usersTable).
		OrderBy("email")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var users []*auth.User
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &users, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}

	return users, nil
}

// Exists checks if email is already registered.
func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	sql := `SELECT EXISTS (SELECT 1 FROM sys_users WHERE email = $1)`

	var exists bool
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, email).Scan(&exists); err != nil {
		return false, apperror.NewDatabase(err)
	}
	return exists, nil
}

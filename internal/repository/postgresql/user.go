package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, employee_id, email, password_hash, role, created_at, updated_at`

func (r *userRepositoryImpl) getOne(ctx context.Context, where string, arg string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + userColumns + " FROM users WHERE " + where

	var u user.User
	err := q.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.EmployeeID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "LOWER(email) = LOWER($1)", email)
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmployeeID implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) (user.User, error) {
	return r.getOne(ctx, "employee_id = $1", employeeID)
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (id, employee_id, email, password_hash, role, created_at, updated_at)
		VALUES (uuidv7(), $1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + userColumns

	var created user.User
	err := q.QueryRow(ctx, query, newUser.EmployeeID, newUser.Email, newUser.PasswordHash, newUser.Role).Scan(
		&created.ID, &created.EmployeeID, &created.Email, &created.PasswordHash, &created.Role,
		&created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (r *userRepositoryImpl) update(ctx context.Context, id string, set string, arg interface{}) error {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`UPDATE users SET %s = $2, updated_at = NOW() WHERE id = $1`, set)
	tag, err := q.Exec(ctx, query, id, arg)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return user.ErrUserEmailExists
		}
		return fmt.Errorf("failed to update user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// UpdateEmail implements user.UserRepository.
func (r *userRepositoryImpl) UpdateEmail(ctx context.Context, id string, email string) error {
	return r.update(ctx, id, "email", email)
}

// UpdatePassword implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.update(ctx, id, "password_hash", passwordHash)
}

// UpdateRole implements user.UserRepository.
func (r *userRepositoryImpl) UpdateRole(ctx context.Context, id string, role user.Role) error {
	return r.update(ctx, id, "role", role)
}

// DeleteByEmployeeID implements user.UserRepository.
func (r *userRepositoryImpl) DeleteByEmployeeID(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM users WHERE employee_id = $1`, employeeID); err != nil {
		return fmt.Errorf("failed to delete user of employee %s: %w", employeeID, err)
	}
	return nil
}

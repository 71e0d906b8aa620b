package user

import "context"

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	UpdateEmail(ctx context.Context, id string, email string) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateRole(ctx context.Context, id string, role Role) error
	DeleteByEmployeeID(ctx context.Context, employeeID string) error
}

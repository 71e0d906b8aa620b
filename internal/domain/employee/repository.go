package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByBadgeID(ctx context.Context, badgeID string) (Employee, error)
	GetByEmail(ctx context.Context, email string) (Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	Update(ctx context.Context, emp Employee) error
	Inactivate(ctx context.Context, id string, endingDate string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	GetActive(ctx context.Context) ([]Employee, error)
	GetByReportingManager(ctx context.Context, managerID string) ([]Employee, error)
}

// BadgeCounterRepository allocates sequential badge numbers.
type BadgeCounterRepository interface {
	// Next atomically increments the shared counter and returns the new value.
	Next(ctx context.Context) (int64, error)
}

package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// CreateEmployee creates the employee record and its login (admin only)
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	// GetEmployee retrieves a single employee by key (self, manager of, or admin)
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	// GetEmployeeByBadge retrieves a single employee by badge identifier
	GetEmployeeByBadge(ctx context.Context, badgeID string) (EmployeeResponse, error)

	// UpdateEmployee updates every attribute of an employee (admin only)
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// UpdateOwnProfile updates personal and contact fields of the caller
	UpdateOwnProfile(ctx context.Context, req UpdateProfileRequest) (EmployeeResponse, error)

	// InactivateEmployee marks the employee inactive and sets the ending date
	InactivateEmployee(ctx context.Context, req InactivateEmployeeRequest) (EmployeeResponse, error)

	// DeleteEmployee hard deletes the employee with its login and ledgers
	DeleteEmployee(ctx context.Context, id string) error

	// ListEmployees lists employees with filters (admin sees all, manager sees reportees)
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// ListReportees lists employees reporting to the given manager
	ListReportees(ctx context.Context, managerID string) ([]EmployeeResponse, error)
}

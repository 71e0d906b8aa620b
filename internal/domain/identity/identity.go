// Package identity describes who is behind a request once the JWT principal
// has been matched to an employee record.
package identity

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
)

var (
	ErrNoIdentity = errors.New("request has no resolved identity")
	ErrForbidden  = errors.New("you do not have access to this employee")
)

// Principal is the authenticated subject as carried by the access token.
type Principal struct {
	UserID     string
	Email      string
	EmployeeID string
	BadgeID    string
	Role       user.Role
}

type Identity struct {
	UserID      string
	Email       string
	Role        user.Role
	IsSuperuser bool
	// Nil for the superuser, which has no employee record.
	Employee *employee.Employee
}

// EmployeeID returns the employee key, or "" for the superuser.
func (i Identity) EmployeeID() string {
	if i.Employee == nil {
		return ""
	}
	return i.Employee.ID
}

// IsAdmin reports full access to the employee set.
func (i Identity) IsAdmin() bool {
	return i.IsSuperuser || i.Role == user.RoleAdmin
}

// IsReviewer reports whether the identity may accept or reject leave at all.
func (i Identity) IsReviewer() bool {
	return i.IsAdmin() || i.Role == user.RoleManager
}

// Manages reports whether emp reports directly to this identity.
func (i Identity) Manages(emp employee.Employee) bool {
	if i.Employee == nil || emp.ReportingManagerID == nil {
		return false
	}
	return *emp.ReportingManagerID == i.Employee.ID
}

// IsSelf reports whether emp is the identity's own record.
func (i Identity) IsSelf(emp employee.Employee) bool {
	return i.Employee != nil && i.Employee.ID == emp.ID
}

// CanAccess: admins see everyone, managers see themselves and their direct
// reports, employees see only themselves.
func (i Identity) CanAccess(emp employee.Employee) bool {
	if i.IsAdmin() {
		return true
	}
	if i.IsSelf(emp) {
		return true
	}
	return i.Role == user.RoleManager && i.Manages(emp)
}

// CanReview reports whether the identity may change the status of emp's
// leave. Nobody but the superuser reviews their own leave.
func (i Identity) CanReview(emp employee.Employee) bool {
	if i.IsSuperuser {
		return true
	}
	if i.IsSelf(emp) {
		return false
	}
	if i.Role == user.RoleAdmin {
		return true
	}
	return i.Role == user.RoleManager && i.Manages(emp)
}

// CanManagePayroll reports whether the identity may generate, edit or delete
// emp's payslips: admins for anyone, managers for their direct reports.
// Nobody but the superuser acts on their own payslips.
func (i Identity) CanManagePayroll(emp employee.Employee) bool {
	if i.IsSuperuser {
		return true
	}
	if i.IsSelf(emp) {
		return false
	}
	return i.Role == user.RoleAdmin || (i.Role == user.RoleManager && i.Manages(emp))
}

// CanWrite reports whether the identity may change emp's own ledgers
// (check-in, submitting leave). Managers do not act on behalf of reports.
func (i Identity) CanWrite(emp employee.Employee) bool {
	return i.IsAdmin() || i.IsSelf(emp)
}

// Check returns the identity in ctx if allow accepts it for emp, else ErrForbidden.
func Check(ctx context.Context, emp employee.Employee, allow func(Identity, employee.Employee) bool) (Identity, error) {
	id, err := FromContext(ctx)
	if err != nil {
		return Identity{}, err
	}
	if !allow(id, emp) {
		return id, ErrForbidden
	}
	return id, nil
}

type ctxKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}

// Resolver maps a principal (or a badge route parameter) to an identity.
type Resolver interface {
	Resolve(ctx context.Context, p Principal) (Identity, error)
	ResolveBadge(ctx context.Context, badgeID string) (employee.Employee, error)
	Invalidate(ctx context.Context, emp employee.Employee)
}

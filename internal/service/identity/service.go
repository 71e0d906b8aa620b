package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/cache"
	"golang.org/x/sync/singleflight"
)

type ResolverImpl struct {
	employee.EmployeeRepository
	cache          cache.Cache
	ttl            time.Duration
	superuserEmail string
	group          singleflight.Group
}

func NewResolver(employeeRepository employee.EmployeeRepository, c cache.Cache, ttl time.Duration, superuserEmail string) identity.Resolver {
	return &ResolverImpl{
		EmployeeRepository: employeeRepository,
		cache:              c,
		ttl:                ttl,
		superuserEmail:     strings.ToLower(strings.TrimSpace(superuserEmail)),
	}
}

func badgeKey(badgeID string) string {
	return "identity:badge:" + badgeID
}

// IsSuperuser reports whether email is the configured superuser account.
func (r *ResolverImpl) IsSuperuser(email string) bool {
	return r.superuserEmail != "" && strings.EqualFold(strings.TrimSpace(email), r.superuserEmail)
}

// Resolve implements identity.Resolver.
func (r *ResolverImpl) Resolve(ctx context.Context, p identity.Principal) (identity.Identity, error) {
	id := identity.Identity{
		UserID: p.UserID,
		Email:  p.Email,
		Role:   p.Role,
	}

	if r.IsSuperuser(p.Email) {
		id.IsSuperuser = true
		id.Role = user.RoleAdmin
		return id, nil
	}

	emp, err := r.lookup(ctx, p)
	if err != nil {
		return identity.Identity{}, err
	}
	id.Employee = &emp
	return id, nil
}

// lookup prefers the badge index and falls back to the employee key.
func (r *ResolverImpl) lookup(ctx context.Context, p identity.Principal) (employee.Employee, error) {
	if p.BadgeID != "" {
		emp, err := r.ResolveBadge(ctx, p.BadgeID)
		switch {
		case err == nil && (p.EmployeeID == "" || emp.ID == p.EmployeeID):
			return emp, nil
		case err != nil && !errors.Is(err, employee.ErrEmployeeNotFound):
			return employee.Employee{}, err
		}
	}

	if p.EmployeeID == "" {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return r.EmployeeRepository.GetByID(ctx, p.EmployeeID)
}

// ResolveBadge implements identity.Resolver.
func (r *ResolverImpl) ResolveBadge(ctx context.Context, badgeID string) (employee.Employee, error) {
	key := badgeKey(badgeID)

	var cached employee.Employee
	err := r.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("identity cache read failed", "key", key, "error", err)
	}

	// The lookup is shared by every waiter on key, so one caller's
	// cancellation must not fail the others.
	shared := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		emp, err := r.EmployeeRepository.GetByBadgeID(shared, badgeID)
		if err != nil {
			return employee.Employee{}, err
		}
		if err := r.cache.Set(shared, key, emp, r.ttl); err != nil {
			slog.Warn("identity cache write failed", "key", key, "error", err)
		}
		return emp, nil
	})
	if err != nil {
		return employee.Employee{}, err
	}
	return v.(employee.Employee), nil
}

// Invalidate implements identity.Resolver.
func (r *ResolverImpl) Invalidate(ctx context.Context, emp employee.Employee) {
	if emp.BadgeID == "" {
		return
	}
	if err := r.cache.Delete(ctx, badgeKey(emp.BadgeID)); err != nil {
		slog.Warn("identity cache invalidation failed", "badge_id", emp.BadgeID, "error", err)
	}
}

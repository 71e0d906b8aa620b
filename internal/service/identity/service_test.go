package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/cache"
	"github.com/cmlabs-hris/hris-ledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCache is a map-backed cache.Cache.
type memCache struct {
	mu      sync.Mutex
	entries map[string]employee.Employee
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]employee.Employee{}}
}

func (c *memCache) Get(ctx context.Context, key string, target interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	emp, ok := c.entries[key]
	if !ok {
		return cache.ErrMiss
	}
	*target.(*employee.Employee) = emp
	return nil
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value.(employee.Employee)
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func TestResolve_Superuser(t *testing.T) {
	r := NewResolver(testutil.NewEmployees(), newMemCache(), time.Minute, "Admin@Example.com")

	id, err := r.Resolve(context.Background(), identity.Principal{UserID: "u0", Email: "admin@example.com", Role: user.RoleEmployee})
	require.NoError(t, err)
	assert.True(t, id.IsSuperuser)
	assert.Equal(t, user.RoleAdmin, id.Role)
	assert.Nil(t, id.Employee, "superuser bypasses record lookup")
	assert.True(t, id.CanAccess(employee.Employee{ID: "anyone"}))
}

func TestResolve_PrefersBadgeThenFallsBackToKey(t *testing.T) {
	emp := testutil.Employee("e1", "BADGE1", "Asha", nil)
	repo := testutil.NewEmployees(emp)
	r := NewResolver(repo, newMemCache(), time.Minute, "admin@example.com")
	ctx := context.Background()

	id, err := r.Resolve(ctx, identity.Principal{UserID: "u1", Email: emp.Email, EmployeeID: "e1", BadgeID: "BADGE1", Role: user.RoleEmployee})
	require.NoError(t, err)
	assert.Equal(t, "e1", id.EmployeeID())
	assert.Equal(t, 1, repo.GetByBadgeCalls)

	// stale badge in the token: fall back to the employee key
	id, err = r.Resolve(ctx, identity.Principal{UserID: "u1", EmployeeID: "e1", BadgeID: "BADGE99", Role: user.RoleEmployee})
	require.NoError(t, err)
	assert.Equal(t, "e1", id.EmployeeID())

	id, err = r.Resolve(ctx, identity.Principal{UserID: "u1", EmployeeID: "e1", Role: user.RoleEmployee})
	require.NoError(t, err)
	assert.Equal(t, "BADGE1", id.Employee.BadgeID)
}

func TestResolve_NotFound(t *testing.T) {
	r := NewResolver(testutil.NewEmployees(), newMemCache(), time.Minute, "admin@example.com")

	_, err := r.Resolve(context.Background(), identity.Principal{UserID: "u1", EmployeeID: "missing", BadgeID: "BADGE7"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = r.Resolve(context.Background(), identity.Principal{UserID: "u1"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestResolveBadge_CachesAndInvalidates(t *testing.T) {
	emp := testutil.Employee("e1", "BADGE1", "Asha", nil)
	repo := testutil.NewEmployees(emp)
	c := newMemCache()
	r := NewResolver(repo, c, time.Minute, "")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := r.ResolveBadge(ctx, "BADGE1")
		require.NoError(t, err)
		assert.Equal(t, "e1", got.ID)
	}
	assert.Equal(t, 1, repo.GetByBadgeCalls, "later lookups are served from cache")

	r.Invalidate(ctx, emp)
	assert.Equal(t, []string{"identity:badge:BADGE1"}, c.deleted)

	_, err := r.ResolveBadge(ctx, "BADGE1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.GetByBadgeCalls)
}

// ctxRecordingEmployees records the context error seen by badge lookups.
type ctxRecordingEmployees struct {
	*testutil.Employees
	seen []error
}

func (r *ctxRecordingEmployees) GetByBadgeID(ctx context.Context, badgeID string) (employee.Employee, error) {
	r.seen = append(r.seen, ctx.Err())
	return r.Employees.GetByBadgeID(ctx, badgeID)
}

func TestResolveBadge_SharedLookupIgnoresCallerCancellation(t *testing.T) {
	emp := testutil.Employee("e1", "BADGE1", "Asha", nil)
	repo := &ctxRecordingEmployees{Employees: testutil.NewEmployees(emp)}
	r := NewResolver(repo, newMemCache(), time.Minute, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := r.ResolveBadge(ctx, "BADGE1")
	require.NoError(t, err)
	assert.Equal(t, "e1", got.ID)
	require.Len(t, repo.seen, 1)
	assert.NoError(t, repo.seen[0])
}

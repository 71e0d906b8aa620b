package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/master"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestEmployee(t *testing.T, ctx context.Context, repo employee.EmployeeRepository, badge, email string) employee.Employee {
	t.Helper()
	emp, err := repo.Create(ctx, employee.Employee{
		BadgeID:     badge,
		FirstName:   "Asha",
		LastName:    "Rao",
		Email:       email,
		Department:  "Engineering",
		JoiningDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		BasicSalary: decimal.NewFromInt(50000),
		Status:      employee.StatusActive,
	})
	require.NoError(t, err)
	return emp
}

func TestBadgeCounter_ConcurrentNextIsUnique(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewBadgeCounterRepository(setup.DB)

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[int64]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := repo.Next(ctx)
			assert.NoError(t, err)
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	for v := int64(1); v <= n; v++ {
		assert.True(t, seen[v], "badge number %d was not allocated", v)
	}

	next, err := repo.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(n+1), next)
}

func TestEmployeeRepository_CreateAndManagerJoin(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)

	manager := createTestEmployee(t, ctx, repo, "BADGE1", "manager@example.com")
	report := createTestEmployee(t, ctx, repo, "BADGE2", "report@example.com")

	report.ReportingManagerID = &manager.ID
	require.NoError(t, repo.Update(ctx, report))

	got, err := repo.GetByBadgeID(ctx, "BADGE2")
	require.NoError(t, err)
	require.NotNil(t, got.ManagerLabel())
	assert.Equal(t, "Asha (BADGE1)", *got.ManagerLabel())
	assert.True(t, got.BasicSalary.Equal(decimal.NewFromInt(50000)))

	reportees, err := repo.GetByReportingManager(ctx, manager.ID)
	require.NoError(t, err)
	require.Len(t, reportees, 1)
	assert.Equal(t, report.ID, reportees[0].ID)

	_, err = repo.Create(ctx, employee.Employee{
		BadgeID: "BADGE3", FirstName: "Dup", Email: "MANAGER@example.com",
		JoiningDate: time.Now(), Status: employee.StatusActive,
	})
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	_, err = repo.GetByID(ctx, "0190c0de-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	empRepo := postgresql.NewEmployeeRepository(setup.DB)
	userRepo := postgresql.NewUserRepository(setup.DB)

	emp := createTestEmployee(t, ctx, empRepo, "BADGE1", "asha@example.com")
	hash := "hash"
	created, err := userRepo.Create(ctx, user.User{EmployeeID: &emp.ID, Email: emp.Email, PasswordHash: &hash, Role: user.RoleEmployee})
	require.NoError(t, err)

	got, err := userRepo.GetByEmail(ctx, "ASHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = userRepo.Create(ctx, user.User{Email: "asha@example.com", Role: user.RoleEmployee})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	require.NoError(t, empRepo.Delete(ctx, emp.ID))
	_, err = userRepo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestLedgerRepository_VersionedSave(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	emp := createTestEmployee(t, ctx, postgresql.NewEmployeeRepository(setup.DB), "BADGE1", "asha@example.com")
	repo := postgresql.NewAttendanceLedgerRepository(setup.DB)

	doc, err := repo.Get(ctx, emp.ID)
	require.NoError(t, err)
	assert.False(t, doc.Exists())

	in := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	doc.Entries, _, err = attendance.Entries(doc.Entries).CheckIn(in, emp.Snapshot())
	require.NoError(t, err)

	saved, err := repo.Save(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Version)

	// a second writer holding the stale version loses
	_, err = repo.Save(ctx, doc)
	assert.ErrorIs(t, err, ledger.ErrVersionConflict)

	reloaded, err := repo.Get(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Entries, 1)
	assert.Equal(t, "2025-03-03", reloaded.Entries[0].Date)
	assert.Equal(t, "BADGE1", reloaded.Entries[0].BadgeID)

	reloaded.Entries = nil
	_, err = repo.Save(ctx, reloaded)
	require.NoError(t, err)

	docs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestCatalogueRepository_UniqueNames(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewCatalogueRepository(setup.DB)

	item, err := repo.Create(ctx, master.KindDepartment, "Engineering")
	require.NoError(t, err)
	assert.Equal(t, master.KindDepartment, item.Kind)

	_, err = repo.Create(ctx, master.KindDepartment, "Engineering")
	assert.ErrorIs(t, err, master.ErrItemNameExists)

	// same name in another catalogue is fine
	_, err = repo.Create(ctx, master.KindShift, "Engineering")
	assert.NoError(t, err)

	exists, err := repo.ExistsByName(ctx, master.KindDepartment, "Engineering")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, master.KindDepartment, item.ID))
	assert.ErrorIs(t, repo.Delete(ctx, master.KindDepartment, item.ID), master.ErrItemNotFound)
}

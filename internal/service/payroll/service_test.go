package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type fixture struct {
	svc       *PayrollServiceImpl
	ledgers   *testutil.Ledger[payroll.Slip]
	employees *testutil.Employees
	manager   employee.Employee
	emp       employee.Employee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	manager := testutil.Employee("m1", "BADGE1", "Meera", nil)
	manager.BasicSalary = decimal.NewFromInt(90000)
	emp := testutil.Employee("e1", "BADGE2", "Asha", &manager.ID)
	emp.BasicSalary = decimal.NewFromInt(50000)
	gone := testutil.Employee("e3", "BADGE4", "Kiran", &manager.ID)
	gone.Status = employee.StatusInactive

	f := &fixture{
		ledgers:   testutil.NewLedger[payroll.Slip](),
		employees: testutil.NewEmployees(manager, emp, gone),
		manager:   manager,
		emp:       emp,
	}
	svc := NewPayrollService(f.ledgers, f.employees, ist, 2).(*PayrollServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 3, 31, 18, 0, 0, 0, ist) }
	f.svc = svc
	return f
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestGenerate_ComputesNetAndCopiesBank(t *testing.T) {
	f := newFixture(t)
	admin := testutil.AsSuperuser(context.Background())

	slip, err := f.svc.Generate(admin, payroll.GenerateRequest{
		EmployeeID: "e1",
		PayDate:    "2025-03-31",
		Allowances: dec(5000),
		Deductions: dec(2000),
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(53000).Equal(slip.NetSalary))
	assert.Equal(t, "SBIN0001234", slip.IFSC)
	assert.Equal(t, payroll.DefaultPaymentMethod, slip.PaymentMethod)
	assert.Equal(t, "Pending", slip.Status)
	assert.Equal(t, "BADGE2", slip.BadgeID)

	_, err = f.svc.Generate(admin, payroll.GenerateRequest{EmployeeID: "e1", PayDate: "2025-03-31"})
	assert.ErrorIs(t, err, payroll.ErrPayslipExists)
	assert.Len(t, f.ledgers.Entries("e1"), 1)
}

func TestGenerate_Rules(t *testing.T) {
	f := newFixture(t)
	admin := testutil.AsSuperuser(context.Background())

	_, err := f.svc.Generate(admin, payroll.GenerateRequest{EmployeeID: "e3", PayDate: "2025-03-31"})
	assert.ErrorIs(t, err, payroll.ErrEmployeeInactive)

	_, err = f.svc.Generate(admin, payroll.GenerateRequest{EmployeeID: "e1", PayDate: "31-03-2025"})
	require.Error(t, err)

	_, err = f.svc.Generate(testutil.As(context.Background(), f.emp, user.RoleEmployee),
		payroll.GenerateRequest{EmployeeID: "e1", PayDate: "2025-03-31"})
	assert.ErrorIs(t, err, payroll.ErrUnauthorized)

	_, err = f.svc.Generate(admin, payroll.GenerateRequest{EmployeeID: "missing", PayDate: "2025-03-31"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestManagerPayroll_DirectReportsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other, err := f.employees.Create(ctx, testutil.Employee("", "BADGE5", "Ravi", nil))
	require.NoError(t, err)
	managerCtx := testutil.As(ctx, f.manager, user.RoleManager)

	slip, err := f.svc.Generate(managerCtx, payroll.GenerateRequest{
		EmployeeID: "e1",
		PayDate:    "2025-03-31",
		Allowances: dec(5000),
		Deductions: dec(2000),
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(53000).Equal(slip.NetSalary))

	edited, err := f.svc.Edit(managerCtx, payroll.EditRequest{
		EmployeeID:  "e1",
		SlipID:      slip.ID,
		PayDate:     "2025-03-31",
		BasicSalary: dec(50000),
		Allowances:  dec(6000),
		Deductions:  dec(2000),
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(54000).Equal(edited.NetSalary))

	require.NoError(t, f.svc.Delete(managerCtx, payroll.DeleteRequest{EmployeeID: "e1", PayDate: "2025-03-31"}))
	assert.Empty(t, f.ledgers.Entries("e1"))

	// not a direct report
	_, err = f.svc.Generate(managerCtx, payroll.GenerateRequest{EmployeeID: other.ID, PayDate: "2025-03-31"})
	assert.ErrorIs(t, err, payroll.ErrUnauthorized)
	err = f.svc.Delete(managerCtx, payroll.DeleteRequest{EmployeeID: other.ID, PayDate: "2025-03-31"})
	assert.ErrorIs(t, err, payroll.ErrUnauthorized)

	// nor their own payslip
	_, err = f.svc.Generate(managerCtx, payroll.GenerateRequest{EmployeeID: "m1", PayDate: "2025-03-31"})
	assert.ErrorIs(t, err, payroll.ErrUnauthorized)
	assert.Empty(t, f.ledgers.Entries(other.ID))
	assert.Empty(t, f.ledgers.Entries("m1"))

	// bulk generation stays with admins
	_, err = f.svc.GenerateBulk(managerCtx, payroll.BulkGenerateRequest{PayDate: "2025-03-31"})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}

func TestGenerateBulk_CollectsFailures(t *testing.T) {
	f := newFixture(t)
	admin := testutil.AsSuperuser(context.Background())
	f.ledgers.Put("m1", payroll.Slip{ID: "existing", PayDate: "2025-03-31"})

	resp, err := f.svc.GenerateBulk(admin, payroll.BulkGenerateRequest{PayDate: "2025-03-31"})
	require.NoError(t, err)
	require.Len(t, resp.Generated, 1)
	assert.Equal(t, "e1", resp.Generated[0].EmployeeID)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, "m1", resp.Failed[0].EmployeeID)

	resp, err = f.svc.GenerateBulk(admin, payroll.BulkGenerateRequest{
		EmployeeIDs: []string{"e3", "missing"},
		PayDate:     "2025-04-30",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Generated)
	assert.Len(t, resp.Failed, 2)
}

func TestEdit_OverrideAndRecompute(t *testing.T) {
	f := newFixture(t)
	admin := testutil.AsSuperuser(context.Background())

	slip, err := f.svc.Generate(admin, payroll.GenerateRequest{EmployeeID: "e1", PayDate: "2025-03-31"})
	require.NoError(t, err)

	edited, err := f.svc.Edit(admin, payroll.EditRequest{
		EmployeeID:        "e1",
		SlipID:            slip.ID,
		PayDate:           "2025-03-31",
		BasicSalary:       dec(50000),
		Allowances:        dec(1000),
		NetSalaryOverride: dec(45000),
		Status:            "Sent",
	})
	require.NoError(t, err)
	assert.True(t, edited.NetOverridden)
	assert.True(t, decimal.NewFromInt(45000).Equal(edited.NetSalary))
	assert.Equal(t, "Sent", edited.Status)

	edited, err = f.svc.Edit(admin, payroll.EditRequest{
		EmployeeID:  "e1",
		SlipID:      slip.ID,
		PayDate:     "2025-03-31",
		BasicSalary: dec(52000),
		Deductions:  dec(2000),
	})
	require.NoError(t, err)
	assert.False(t, edited.NetOverridden)
	assert.True(t, decimal.NewFromInt(50000).Equal(edited.NetSalary))

	_, err = f.svc.Edit(admin, payroll.EditRequest{EmployeeID: "e1", SlipID: "nope", PayDate: "2025-03-31", BasicSalary: dec(1)})
	assert.ErrorIs(t, err, payroll.ErrPayslipNotFound)
}

func TestDelete_ByPayDateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	admin := testutil.AsSuperuser(context.Background())

	_, err := f.svc.Generate(admin, payroll.GenerateRequest{EmployeeID: "e1", PayDate: "2025-03-31"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(admin, payroll.DeleteRequest{EmployeeID: "e1", PayDate: "2025-03-31"}))
	assert.Empty(t, f.ledgers.Entries("e1"))
	require.NoError(t, f.svc.Delete(admin, payroll.DeleteRequest{EmployeeID: "e1", PayDate: "2025-03-31"}))
}

func TestListing(t *testing.T) {
	f := newFixture(t)
	f.ledgers.Put("e1",
		payroll.Slip{ID: "jan", PayDate: "2025-01-31"},
		payroll.Slip{ID: "feb", PayDate: "2025-02-28"},
	)
	f.ledgers.Put("m1", payroll.Slip{ID: "own", PayDate: "2025-02-28"})

	own, err := f.svc.ListForEmployee(testutil.As(context.Background(), f.emp, user.RoleEmployee), "e1")
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, "feb", own[0].ID)

	_, err = f.svc.ListForEmployee(testutil.As(context.Background(), f.emp, user.RoleEmployee), "m1")
	assert.ErrorIs(t, err, payroll.ErrUnauthorized)

	managerCtx := testutil.As(context.Background(), f.manager, user.RoleManager)
	team, err := f.svc.ListForManagerTeam(managerCtx, "m1")
	require.NoError(t, err)
	require.Len(t, team, 2)
	assert.Equal(t, "feb", team[0].ID)

	// managers read their reports' slips
	reportSlips, err := f.svc.ListForEmployee(managerCtx, "e1")
	require.NoError(t, err)
	assert.Len(t, reportSlips, 2)
}

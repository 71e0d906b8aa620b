package employee

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/master"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/cache"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
	identityservice "github.com/cmlabs-hris/hris-ledger/internal/service/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc        *EmployeeServiceImpl
	employees  *testutil.Employees
	users      *testutil.Users
	tx         *testutil.TxManager
	attendance *testutil.Ledger[attendance.Entry]
	leaves     *testutil.Ledger[leave.Entry]
	payslips   *testutil.Ledger[payroll.Slip]
	admin      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalogue := testutil.NewCatalogue()
	_, err := catalogue.Create(context.Background(), master.KindDepartment, "Engineering")
	require.NoError(t, err)
	_, err = catalogue.Create(context.Background(), master.KindShift, "Day")
	require.NoError(t, err)

	f := &fixture{
		employees:  testutil.NewEmployees(),
		users:      testutil.NewUsers(),
		tx:         &testutil.TxManager{},
		attendance: testutil.NewLedger[attendance.Entry](),
		leaves:     testutil.NewLedger[leave.Entry](),
		payslips:   testutil.NewLedger[payroll.Slip](),
		admin:      testutil.AsSuperuser(context.Background()),
	}
	resolver := identityservice.NewResolver(f.employees, cache.NewRedisCache(nil), time.Minute, "admin@example.com")
	f.svc = NewEmployeeService(
		f.employees,
		&testutil.BadgeCounter{},
		f.users,
		catalogue,
		Ledgers{Attendance: f.attendance, Leave: f.leaves, Payslips: f.payslips},
		f.tx,
		resolver,
	).(*EmployeeServiceImpl)
	return f
}

func createRequest(firstName string, managerID *string) employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		Personal: employee.PersonalInfo{
			FirstName:   firstName,
			LastName:    "Rao",
			Email:       firstName + "@Example.com",
			PhoneNumber: "9876543210",
			Gender:      "Female",
		},
		Work: employee.WorkInfo{
			Department:         "Engineering",
			Shift:              "Day",
			ReportingManagerID: managerID,
			JoiningDate:        "2024-06-01",
			BasicSalary:        decimal.NewFromInt(60000),
		},
		Bank: employee.BankInfo{
			BankName:      "State Bank",
			AccountNumber: "1234567890",
			IFSC:          "sbin0001234",
		},
		Password: "correct-horse",
	}
}

func TestCreateEmployee_AllocatesBadgeAndLogin(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.CreateEmployee(f.admin, createRequest("Meera", nil))
	require.NoError(t, err)
	assert.Equal(t, "BADGE1", first.BadgeID)
	assert.Equal(t, "meera@example.com", first.Email)
	assert.Equal(t, "SBIN0001234", first.IFSC)
	assert.Equal(t, "active", first.Status)

	second, err := f.svc.CreateEmployee(f.admin, createRequest("Asha", &first.ID))
	require.NoError(t, err)
	assert.Equal(t, "BADGE2", second.BadgeID)
	require.NotNil(t, second.ReportingManager)
	assert.Equal(t, "Meera (BADGE1)", *second.ReportingManager)
	assert.Equal(t, 2, f.tx.Calls)

	login, err := f.users.GetByEmployeeID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleEmployee, login.Role)
	require.NotNil(t, login.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*login.PasswordHash), []byte("correct-horse")))
}

func TestCreateEmployee_Rejections(t *testing.T) {
	f := newFixture(t)

	req := createRequest("Meera", nil)
	req.Work.Department = "Sales"
	_, err := f.svc.CreateEmployee(f.admin, req)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "work.department")

	missing := "0190f2a4-7c1e-7b3a-9a2b-0123456789ab"
	_, err = f.svc.CreateEmployee(f.admin, createRequest("Asha", &missing))
	assert.ErrorIs(t, err, employee.ErrManagerNotFound)

	_, err = f.svc.CreateEmployee(f.admin, createRequest("Ravi", nil))
	require.NoError(t, err)
	_, err = f.svc.CreateEmployee(f.admin, createRequest("ravi", nil))
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	emp := testutil.Employee("e9", "BADGE9", "Kiran", nil)
	_, err = f.svc.CreateEmployee(testutil.As(context.Background(), emp, user.RoleManager), createRequest("Dev", nil))
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}

func TestDeleteEmployee_CascadesAndNeverReusesBadge(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.CreateEmployee(f.admin, createRequest("Meera", nil))
	require.NoError(t, err)
	f.attendance.Put(created.ID, attendance.Entry{Date: "2025-03-01"})
	f.leaves.Put(created.ID, leave.Entry{ID: "l1"})
	f.payslips.Put(created.ID, payroll.Slip{ID: "p1", PayDate: "2025-03-31"})

	require.NoError(t, f.svc.DeleteEmployee(f.admin, created.ID))

	_, err = f.employees.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	_, err = f.users.GetByEmployeeID(context.Background(), created.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.Empty(t, f.attendance.Entries(created.ID))
	assert.Empty(t, f.leaves.Entries(created.ID))
	assert.Empty(t, f.payslips.Entries(created.ID))

	next, err := f.svc.CreateEmployee(f.admin, createRequest("Asha", nil))
	require.NoError(t, err)
	assert.Equal(t, "BADGE2", next.BadgeID)
}

func TestDeleteEmployee_NotSelf(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.CreateEmployee(f.admin, createRequest("Meera", nil))
	require.NoError(t, err)

	emp, err := f.employees.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	err = f.svc.DeleteEmployee(testutil.As(context.Background(), emp, user.RoleAdmin), created.ID)
	assert.ErrorIs(t, err, employee.ErrCannotDeleteSelf)
}

func TestUpdateEmployee_SyncsLoginEmail(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.CreateEmployee(f.admin, createRequest("Meera", nil))
	require.NoError(t, err)

	req := createRequest("Meera", nil)
	update := employee.UpdateEmployeeRequest{
		ID:       created.ID,
		Personal: req.Personal,
		Work:     req.Work,
		Bank:     req.Bank,
	}
	update.Personal.Email = "meera.rao@example.com"
	update.Work.BasicSalary = decimal.NewFromInt(75000)

	updated, err := f.svc.UpdateEmployee(f.admin, update)
	require.NoError(t, err)
	assert.Equal(t, "BADGE1", updated.BadgeID)
	assert.Equal(t, "75000.00", updated.BasicSalary)

	login, err := f.users.GetByEmployeeID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "meera.rao@example.com", login.Email)
}

func TestUpdateOwnProfile(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.CreateEmployee(f.admin, createRequest("Meera", nil))
	require.NoError(t, err)
	emp, err := f.employees.GetByID(context.Background(), created.ID)
	require.NoError(t, err)

	phone := "9123456780"
	resp, err := f.svc.UpdateOwnProfile(testutil.As(context.Background(), emp, user.RoleEmployee), employee.UpdateProfileRequest{PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, resp.PhoneNumber)
	assert.Equal(t, "60000.00", resp.BasicSalary)

	_, err = f.svc.UpdateOwnProfile(f.admin, employee.UpdateProfileRequest{PhoneNumber: &phone})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestInactivateEmployee(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.CreateEmployee(f.admin, createRequest("Meera", nil))
	require.NoError(t, err)

	resp, err := f.svc.InactivateEmployee(f.admin, employee.InactivateEmployeeRequest{ID: created.ID, EndingDate: "2025-06-30"})
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)
	require.NotNil(t, resp.EndingDate)
	assert.Equal(t, "2025-06-30", *resp.EndingDate)

	_, err = f.svc.InactivateEmployee(f.admin, employee.InactivateEmployeeRequest{ID: created.ID, EndingDate: "2025-06-30"})
	assert.ErrorIs(t, err, employee.ErrEmployeeAlreadyInactive)
}

func TestAccessRules(t *testing.T) {
	f := newFixture(t)
	managerResp, err := f.svc.CreateEmployee(f.admin, createRequest("Meera", nil))
	require.NoError(t, err)
	reportResp, err := f.svc.CreateEmployee(f.admin, createRequest("Asha", &managerResp.ID))
	require.NoError(t, err)
	otherResp, err := f.svc.CreateEmployee(f.admin, createRequest("Ravi", nil))
	require.NoError(t, err)

	manager, err := f.employees.GetByID(context.Background(), managerResp.ID)
	require.NoError(t, err)
	report, err := f.employees.GetByID(context.Background(), reportResp.ID)
	require.NoError(t, err)
	managerCtx := testutil.As(context.Background(), manager, user.RoleManager)
	reportCtx := testutil.As(context.Background(), report, user.RoleEmployee)

	_, err = f.svc.GetEmployee(managerCtx, reportResp.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetEmployee(managerCtx, otherResp.ID)
	assert.ErrorIs(t, err, employee.ErrUnauthorized)
	_, err = f.svc.GetEmployee(reportCtx, managerResp.ID)
	assert.ErrorIs(t, err, employee.ErrUnauthorized)

	byBadge, err := f.svc.GetEmployeeByBadge(managerCtx, reportResp.BadgeID)
	require.NoError(t, err)
	assert.Equal(t, reportResp.ID, byBadge.ID)
	_, err = f.svc.GetEmployeeByBadge(managerCtx, "BADGE99")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	_, err = f.svc.GetEmployeeByBadge(managerCtx, "bad")
	assert.ErrorIs(t, err, employee.ErrInvalidBadgeID)

	list, err := f.svc.ListEmployees(managerCtx, employee.EmployeeFilter{})
	require.NoError(t, err)
	require.Len(t, list.Employees, 1)
	assert.Equal(t, reportResp.ID, list.Employees[0].ID)
	assert.Equal(t, "1-1 of 1", list.Showing)

	_, err = f.svc.ListEmployees(reportCtx, employee.EmployeeFilter{})
	assert.ErrorIs(t, err, employee.ErrUnauthorized)

	all, err := f.svc.ListEmployees(f.admin, employee.EmployeeFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalCount)
	assert.Equal(t, 2, all.TotalPages)
	assert.Len(t, all.Employees, 2)

	reportees, err := f.svc.ListReportees(managerCtx, managerResp.ID)
	require.NoError(t, err)
	assert.Len(t, reportees, 1)
}

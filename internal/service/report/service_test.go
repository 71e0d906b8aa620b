package report

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/report"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type fixture struct {
	svc        *ReportServiceImpl
	attendance *testutil.Ledger[attendance.Entry]
	leaves     *testutil.Ledger[leave.Entry]
	payslips   *testutil.Ledger[payroll.Slip]
	manager    employee.Employee
	emp        employee.Employee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	manager := testutil.Employee("m1", "BADGE1", "Meera", nil)
	emp := testutil.Employee("e1", "BADGE2", "Asha", &manager.ID)
	peer := testutil.Employee("e2", "BADGE3", "Ravi", &manager.ID)

	f := &fixture{
		attendance: testutil.NewLedger[attendance.Entry](),
		leaves:     testutil.NewLedger[leave.Entry](),
		payslips:   testutil.NewLedger[payroll.Slip](),
		manager:    manager,
		emp:        emp,
	}
	types := testutil.NewLeaveTypes(leave.LeaveType{ID: "lt1", Name: "Casual", TotalDays: 12})
	svc := NewReportService(testutil.NewEmployees(manager, emp, peer), f.attendance, f.leaves, types, f.payslips, ist).(*ReportServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, ist) }
	f.svc = svc
	return f
}

func present(date string) attendance.Entry {
	in := time.Date(2025, 3, 3, 9, 0, 0, 0, ist)
	out := in.Add(8 * time.Hour)
	return attendance.Entry{Date: date, CheckIn: &in, CheckOut: &out, OvertimeMinutes: 480, Overtime: "8 hr 0 min", Status: attendance.StatusPresent}
}

func TestAttendanceMonth(t *testing.T) {
	f := newFixture(t)
	f.attendance.Put("e1", present("2025-03-03"), present("2025-03-04"))

	resp, err := f.svc.AttendanceMonth(testutil.As(context.Background(), f.emp, user.RoleEmployee),
		attendance.RangeFilter{EmployeeID: "e1", Month: 3, Year: 2025})
	require.NoError(t, err)
	assert.Len(t, resp.Days, 31)
	assert.Equal(t, 2, resp.Summary.Present)
	assert.Equal(t, 7, resp.Summary.Absent)
	assert.Equal(t, 22, resp.Summary.Upcoming)
	assert.Equal(t, 960, resp.Summary.WorkedMinutes)

	_, err = f.svc.AttendanceMonth(testutil.As(context.Background(), f.emp, user.RoleEmployee),
		attendance.RangeFilter{EmployeeID: "m1", Month: 3, Year: 2025})
	assert.ErrorIs(t, err, report.ErrUnauthorized)
}

func TestLeaveSummary(t *testing.T) {
	f := newFixture(t)
	f.leaves.Put("e1",
		leave.Entry{ID: "1", LeaveTypeID: "lt1", RequestedDays: 3, Status: leave.StatusAccepted},
		leave.Entry{ID: "2", LeaveTypeID: "lt1", RequestedDays: 2, Status: leave.StatusPending},
		leave.Entry{ID: "3", LeaveTypeID: "lt1", RequestedDays: 4, Status: leave.StatusRejected},
	)

	resp, err := f.svc.LeaveSummary(testutil.As(context.Background(), f.manager, user.RoleManager), "e1")
	require.NoError(t, err)
	require.Len(t, resp.Balances, 1)
	assert.Equal(t, 5, resp.Balances[0].Used)
	require.NotNil(t, resp.Balances[0].Remaining)
	assert.Equal(t, 7, *resp.Balances[0].Remaining)
	assert.Equal(t, report.LeaveCounts{Pending: 1, Accepted: 1, Rejected: 1}, resp.Counts)
}

func TestPayrollMonth(t *testing.T) {
	f := newFixture(t)
	slip := func(id, date string, basic, allowances, deductions int64) payroll.Slip {
		s := payroll.Slip{
			ID:          id,
			PayDate:     date,
			BasicSalary: decimal.NewFromInt(basic),
			Allowances:  decimal.NewFromInt(allowances),
			Deductions:  decimal.NewFromInt(deductions),
			Status:      payroll.StatusSent,
		}
		s.Recompute()
		return s
	}
	f.payslips.Put("e1", slip("a", "2025-03-31", 50000, 5000, 1000), slip("b", "2025-02-28", 50000, 0, 0))
	f.payslips.Put("m1", slip("c", "2025-03-31", 90000, 0, 2000))

	resp, err := f.svc.PayrollMonth(testutil.AsSuperuser(context.Background()), report.MonthRequest{Month: 3, Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.SlipCount)
	assert.True(t, decimal.NewFromInt(142000).Equal(resp.Totals.NetSalary))
	assert.True(t, decimal.NewFromInt(3000).Equal(resp.Totals.Deductions))

	_, err = f.svc.PayrollMonth(testutil.As(context.Background(), f.manager, user.RoleManager), report.MonthRequest{Month: 3, Year: 2025})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	_, err = f.svc.PayrollMonth(testutil.AsSuperuser(context.Background()), report.MonthRequest{Month: 13, Year: 2025})
	require.Error(t, err)
}

func TestTeamOverview(t *testing.T) {
	f := newFixture(t)
	f.attendance.Put("e1", present("2025-03-03"))
	f.leaves.Put("e2",
		leave.Entry{ID: "1", Status: leave.StatusPending},
		leave.Entry{ID: "2", Status: leave.StatusPending},
	)

	resp, err := f.svc.TeamOverview(testutil.As(context.Background(), f.manager, user.RoleManager), "m1", report.MonthRequest{Month: 3, Year: 2025})
	require.NoError(t, err)
	require.Len(t, resp.Members, 2)
	assert.Equal(t, "BADGE2", resp.Members[0].BadgeID)
	assert.Equal(t, 1, resp.Members[0].Attendance.Present)
	assert.Equal(t, 0, resp.Members[0].PendingLeaves)
	assert.Equal(t, "BADGE3", resp.Members[1].BadgeID)
	assert.Equal(t, 9, resp.Members[1].Attendance.Absent)
	assert.Equal(t, 2, resp.Members[1].PendingLeaves)

	_, err = f.svc.TeamOverview(testutil.As(context.Background(), f.emp, user.RoleEmployee), "m1", report.MonthRequest{Month: 3, Year: 2025})
	assert.ErrorIs(t, err, report.ErrUnauthorized)
}

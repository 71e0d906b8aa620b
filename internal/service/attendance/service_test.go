package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type fixture struct {
	svc     *AttendanceServiceImpl
	ledgers *testutil.Ledger[attendance.Entry]
	clock   time.Time
	emp     employee.Employee
	manager employee.Employee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	manager := testutil.Employee("m1", "BADGE1", "Meera", nil)
	emp := testutil.Employee("e1", "BADGE2", "Asha", &manager.ID)

	f := &fixture{
		ledgers: testutil.NewLedger[attendance.Entry](),
		clock:   time.Date(2025, 3, 10, 9, 0, 0, 0, ist),
		emp:     emp,
		manager: manager,
	}
	svc := NewAttendanceService(f.ledgers, testutil.NewEmployees(manager, emp), ist).(*AttendanceServiceImpl)
	svc.now = func() time.Time { return f.clock }
	f.svc = svc
	return f
}

func (f *fixture) asEmployee() context.Context {
	return testutil.As(context.Background(), f.emp, user.RoleEmployee)
}

func TestCheckInCheckOut_FullDay(t *testing.T) {
	f := newFixture(t)
	ctx := f.asEmployee()

	in, err := f.svc.CheckIn(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", in.Entry.Date)
	assert.Equal(t, string(attendance.StatusPending), in.Entry.Status)
	assert.Equal(t, int64(0), in.ElapsedSeconds)

	f.clock = f.clock.Add(45 * time.Minute)
	status, err := f.svc.Status(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, status.CheckedIn)
	assert.Equal(t, int64(45*60), status.ElapsedSeconds)

	f.clock = time.Date(2025, 3, 10, 17, 30, 0, 0, ist)
	out, err := f.svc.CheckOut(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusPresent), out.Status)
	assert.Equal(t, "8 hr 30 min", out.Overtime)
	assert.Equal(t, 510, out.OvertimeMinutes)

	status, err = f.svc.Status(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, status.CheckedIn)
}

func TestCheckIn_SecondOpenEntryRejected(t *testing.T) {
	f := newFixture(t)
	ctx := f.asEmployee()

	_, err := f.svc.CheckIn(ctx, "e1")
	require.NoError(t, err)
	saves := f.ledgers.Saves

	_, err = f.svc.CheckIn(ctx, "e1")
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	assert.Equal(t, saves, f.ledgers.Saves, "no write on warning")
	assert.Len(t, f.ledgers.Entries("e1"), 1)
}

func TestCheckIn_SameDayAfterCheckOut(t *testing.T) {
	f := newFixture(t)
	ctx := f.asEmployee()

	_, err := f.svc.CheckIn(ctx, "e1")
	require.NoError(t, err)
	f.clock = f.clock.Add(time.Hour)
	_, err = f.svc.CheckOut(ctx, "e1")
	require.NoError(t, err)

	_, err = f.svc.CheckIn(ctx, "e1")
	assert.ErrorIs(t, err, attendance.ErrAttendanceExistsForDate)
}

func TestCheckIn_NextDayAfterForgottenCheckOut(t *testing.T) {
	f := newFixture(t)
	ctx := f.asEmployee()

	_, err := f.svc.CheckIn(ctx, "e1")
	require.NoError(t, err)

	f.clock = time.Date(2025, 3, 11, 9, 0, 0, 0, ist)
	status, err := f.svc.Status(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, status.CheckedIn, "yesterday's open entry is not today's session")

	_, err = f.svc.CheckOut(ctx, "e1")
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	in, err := f.svc.CheckIn(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", in.Entry.Date)

	f.clock = time.Date(2025, 3, 11, 17, 30, 0, 0, ist)
	out, err := f.svc.CheckOut(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", out.Date)
	assert.Equal(t, "8 hr 30 min", out.Overtime)

	entries := f.ledgers.Entries("e1")
	require.Len(t, entries, 2)
	assert.Equal(t, attendance.StatusAutoClosed, entries[0].Status)
	assert.Equal(t, 0, entries[0].OvertimeMinutes)
}

func TestCloseStale(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CheckIn(f.asEmployee(), "e1")
	require.NoError(t, err)

	closed, err := f.svc.CloseStale(context.Background(), f.clock)
	require.NoError(t, err)
	assert.Zero(t, closed, "entries opened today stay open")

	closed, err = f.svc.CloseStale(context.Background(), f.clock.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, attendance.StatusAutoClosed, f.ledgers.Entries("e1")[0].Status)

	closed, err = f.svc.CloseStale(context.Background(), f.clock.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Zero(t, closed)
}

func TestCheckOut_WithoutCheckIn(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CheckOut(f.asEmployee(), "e1")
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
	assert.Zero(t, f.ledgers.Saves)
}

func TestCheckIn_VersionConflictSurfaces(t *testing.T) {
	f := newFixture(t)
	f.ledgers.SaveFn = func(ctx context.Context, doc ledger.Document[attendance.Entry]) (ledger.Document[attendance.Entry], error) {
		return ledger.Document[attendance.Entry]{}, ledger.ErrVersionConflict
	}

	_, err := f.svc.CheckIn(f.asEmployee(), "e1")
	assert.ErrorIs(t, err, ledger.ErrVersionConflict)
}

func TestAuthorization(t *testing.T) {
	f := newFixture(t)

	// managers can read their reports but not check in for them
	managerCtx := testutil.As(context.Background(), f.manager, user.RoleManager)
	_, err := f.svc.CheckIn(managerCtx, "e1")
	assert.ErrorIs(t, err, attendance.ErrUnauthorized)
	_, err = f.svc.List(managerCtx, "e1")
	assert.NoError(t, err)

	// employees cannot read their manager
	_, err = f.svc.List(f.asEmployee(), "m1")
	assert.ErrorIs(t, err, attendance.ErrUnauthorized)

	_, err = f.svc.List(context.Background(), "e1")
	assert.ErrorIs(t, err, identity.ErrNoIdentity)

	_, err = f.svc.List(f.asEmployee(), "nobody")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = f.svc.CheckIn(testutil.AsSuperuser(context.Background()), "e1")
	assert.NoError(t, err)
}

func TestDeleteEntry_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := f.asEmployee()

	_, err := f.svc.CheckIn(ctx, "e1")
	require.NoError(t, err)

	req := attendance.DeleteEntryRequest{EmployeeID: "e1", Date: "2025-03-10"}
	require.NoError(t, f.svc.DeleteEntry(ctx, req))
	assert.Empty(t, f.ledgers.Entries("e1"))
	saves := f.ledgers.Saves

	require.NoError(t, f.svc.DeleteEntry(ctx, req))
	assert.Equal(t, saves, f.ledgers.Saves)
}

func TestListForRange_Marks(t *testing.T) {
	f := newFixture(t)
	ctx := f.asEmployee()

	// Present on the 3rd, open today (10th)
	in := time.Date(2025, 3, 3, 9, 0, 0, 0, ist)
	out := in.Add(8 * time.Hour)
	f.ledgers.Put("e1", attendance.Entry{Date: "2025-03-03", CheckIn: &in, CheckOut: &out, OvertimeMinutes: 480, Overtime: "8 hr 0 min", Status: attendance.StatusPresent})
	_, err := f.svc.CheckIn(ctx, "e1")
	require.NoError(t, err)

	month, err := f.svc.ListForRange(ctx, attendance.RangeFilter{EmployeeID: "e1", Month: 3, Year: 2025})
	require.NoError(t, err)
	require.Len(t, month.Days, 31)
	assert.Equal(t, attendance.MarkPresent, month.Days[2].Mark)
	assert.Equal(t, attendance.MarkPending, month.Days[9].Mark)
	assert.Equal(t, attendance.MarkAbsent, month.Days[0].Mark)
	assert.Equal(t, attendance.MarkUpcoming, month.Days[30].Mark)
	assert.Equal(t, 1, month.Summary.Present)
	assert.Equal(t, 1, month.Summary.Pending)
	assert.Equal(t, 8, month.Summary.Absent)
	assert.Equal(t, 21, month.Summary.Upcoming)
	assert.Equal(t, "8 hr 0 min", month.Summary.Worked)

	_, err = f.svc.ListForRange(ctx, attendance.RangeFilter{EmployeeID: "e1", Month: 13, Year: 2025})
	assert.Error(t, err)
}

func TestMarkAbsent(t *testing.T) {
	f := newFixture(t)
	ctx := f.asEmployee()

	_, err := f.svc.CheckIn(ctx, "e1")
	require.NoError(t, err)

	n, err := f.svc.MarkAbsent(context.Background(), f.clock)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the manager had no entry")

	entries := f.ledgers.Entries("m1")
	require.Len(t, entries, 1)
	assert.Equal(t, attendance.StatusAbsent, entries[0].Status)
	assert.Equal(t, "BADGE1", entries[0].BadgeID)

	n, err = f.svc.MarkAbsent(context.Background(), f.clock)
	require.NoError(t, err)
	assert.Zero(t, n)
}

package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/ledger"
)

type AttendanceServiceImpl struct {
	attendance.LedgerRepository
	employee.EmployeeRepository
	loc *time.Location
	now func() time.Time
}

func NewAttendanceService(ledgerRepository attendance.LedgerRepository, employeeRepository employee.EmployeeRepository, loc *time.Location) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		LedgerRepository:   ledgerRepository,
		EmployeeRepository: employeeRepository,
		loc:                loc,
		now:                time.Now,
	}
}

func (a *AttendanceServiceImpl) today() time.Time {
	return a.now().In(a.loc)
}

// target loads the employee and checks the caller against allow.
func (a *AttendanceServiceImpl) target(ctx context.Context, employeeID string, allow func(identity.Identity, employee.Employee) bool) (employee.Employee, error) {
	emp, err := a.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, err
	}
	if _, err := identity.Check(ctx, emp, allow); err != nil {
		if errors.Is(err, identity.ErrForbidden) {
			return employee.Employee{}, attendance.ErrUnauthorized
		}
		return employee.Employee{}, err
	}
	return emp, nil
}

func (a *AttendanceServiceImpl) save(ctx context.Context, doc attendance.Ledger) error {
	if _, err := a.LedgerRepository.Save(ctx, doc); err != nil {
		return fmt.Errorf("failed to save attendance ledger of %s: %w", doc.EmployeeID, err)
	}
	return nil
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, employeeID string) (attendance.CheckInResponse, error) {
	emp, err := a.target(ctx, employeeID, identity.Identity.CanWrite)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	doc, err := a.LedgerRepository.Get(ctx, emp.ID)
	if err != nil {
		return attendance.CheckInResponse{}, fmt.Errorf("failed to get attendance ledger: %w", err)
	}

	now := a.today()
	entries, entry, err := attendance.Entries(doc.Entries).CheckIn(now, emp.Snapshot())
	if err != nil {
		return attendance.CheckInResponse{}, err
	}
	doc.Entries = entries
	if err := a.save(ctx, doc); err != nil {
		return attendance.CheckInResponse{}, err
	}

	return attendance.CheckInResponse{
		Entry:          entry.ToResponse(a.loc),
		ElapsedSeconds: int64(entry.Elapsed(now).Seconds()),
	}, nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, employeeID string) (attendance.EntryResponse, error) {
	emp, err := a.target(ctx, employeeID, identity.Identity.CanWrite)
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	doc, err := a.LedgerRepository.Get(ctx, emp.ID)
	if err != nil {
		return attendance.EntryResponse{}, fmt.Errorf("failed to get attendance ledger: %w", err)
	}

	entries, entry, err := attendance.Entries(doc.Entries).CheckOut(a.today())
	if err != nil {
		return attendance.EntryResponse{}, err
	}
	doc.Entries = entries
	if err := a.save(ctx, doc); err != nil {
		return attendance.EntryResponse{}, err
	}

	return entry.ToResponse(a.loc), nil
}

// Status implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Status(ctx context.Context, employeeID string) (attendance.StatusResponse, error) {
	emp, err := a.target(ctx, employeeID, identity.Identity.CanAccess)
	if err != nil {
		return attendance.StatusResponse{}, err
	}

	doc, err := a.LedgerRepository.Get(ctx, emp.ID)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("failed to get attendance ledger: %w", err)
	}

	now := a.today()
	entries := attendance.Entries(doc.Entries)
	i, open := entries.OpenOn(now.Format(ledger.DateLayout))
	if !open {
		return attendance.StatusResponse{CheckedIn: false}, nil
	}

	resp := entries[i].ToResponse(a.loc)
	return attendance.StatusResponse{
		CheckedIn:      true,
		Entry:          &resp,
		ElapsedSeconds: int64(entries[i].Elapsed(now).Seconds()),
	}, nil
}

// DeleteEntry implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) DeleteEntry(ctx context.Context, req attendance.DeleteEntryRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	emp, err := a.target(ctx, req.EmployeeID, identity.Identity.CanWrite)
	if err != nil {
		return err
	}

	doc, err := a.LedgerRepository.Get(ctx, emp.ID)
	if err != nil {
		return fmt.Errorf("failed to get attendance ledger: %w", err)
	}

	entries, removed := attendance.Entries(doc.Entries).Remove(req.Date)
	if !removed {
		return nil
	}
	doc.Entries = entries
	return a.save(ctx, doc)
}

// ListForRange implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListForRange(ctx context.Context, filter attendance.RangeFilter) (attendance.MonthResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.MonthResponse{}, err
	}
	emp, err := a.target(ctx, filter.EmployeeID, identity.Identity.CanAccess)
	if err != nil {
		return attendance.MonthResponse{}, err
	}

	doc, err := a.LedgerRepository.Get(ctx, emp.ID)
	if err != nil {
		return attendance.MonthResponse{}, fmt.Errorf("failed to get attendance ledger: %w", err)
	}

	month := time.Month(filter.Month)
	rows := attendance.Entries(doc.Entries).DailyRows(filter.Year, month, a.today())
	return attendance.NewMonthResponse(emp.ID, filter.Year, month, rows, a.loc), nil
}

// List implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) List(ctx context.Context, employeeID string) ([]attendance.EntryResponse, error) {
	emp, err := a.target(ctx, employeeID, identity.Identity.CanAccess)
	if err != nil {
		return nil, err
	}

	doc, err := a.LedgerRepository.Get(ctx, emp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance ledger: %w", err)
	}

	entries := attendance.Entries(doc.Entries).NewestFirst()
	resp := make([]attendance.EntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, e.ToResponse(a.loc))
	}
	return resp, nil
}

// MarkAbsent implements attendance.AttendanceService. It runs without a
// caller identity and skips employees who had not joined yet on day.
func (a *AttendanceServiceImpl) MarkAbsent(ctx context.Context, day time.Time) (int, error) {
	day = day.In(a.loc)
	date := day.Format(ledger.DateLayout)

	employees, err := a.EmployeeRepository.GetActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get active employees: %w", err)
	}

	marked := 0
	var errs []error
	for _, emp := range employees {
		if emp.JoiningDate.Format(ledger.DateLayout) > date {
			continue
		}

		doc, err := a.LedgerRepository.Get(ctx, emp.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("employee %s: %w", emp.ID, err))
			continue
		}
		entries, changed := attendance.Entries(doc.Entries).MarkAbsent(date, emp.Snapshot())
		if !changed {
			continue
		}
		doc.Entries = entries
		if err := a.save(ctx, doc); err != nil {
			slog.Warn("failed to mark absent", "employee_id", emp.ID, "date", date, "error", err)
			errs = append(errs, err)
			continue
		}
		marked++
	}

	return marked, errors.Join(errs...)
}

// CloseStale implements attendance.AttendanceService. Entries still open on
// a day before day are auto-closed for every active employee.
func (a *AttendanceServiceImpl) CloseStale(ctx context.Context, day time.Time) (int, error) {
	date := day.In(a.loc).Format(ledger.DateLayout)

	employees, err := a.EmployeeRepository.GetActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get active employees: %w", err)
	}

	closed := 0
	var errs []error
	for _, emp := range employees {
		doc, err := a.LedgerRepository.Get(ctx, emp.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("employee %s: %w", emp.ID, err))
			continue
		}
		entries, n := attendance.Entries(doc.Entries).CloseStale(date)
		if n == 0 {
			continue
		}
		doc.Entries = entries
		if err := a.save(ctx, doc); err != nil {
			slog.Warn("failed to auto-close attendance", "employee_id", emp.ID, "before", date, "error", err)
			errs = append(errs, err)
			continue
		}
		closed += n
	}

	return closed, errors.Join(errs...)
}

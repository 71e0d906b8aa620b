package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/report"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// teamConcurrency bounds the per-member ledger reads of TeamOverview.
const teamConcurrency = 8

type ReportServiceImpl struct {
	employee.EmployeeRepository
	attendance attendance.LedgerRepository
	leaves     leave.LedgerRepository
	leaveTypes leave.LeaveTypeRepository
	payslips   payroll.LedgerRepository
	loc        *time.Location
	now        func() time.Time
}

func NewReportService(
	employeeRepository employee.EmployeeRepository,
	attendanceLedger attendance.LedgerRepository,
	leaveLedger leave.LedgerRepository,
	leaveTypes leave.LeaveTypeRepository,
	payslipLedger payroll.LedgerRepository,
	loc *time.Location,
) report.ReportService {
	return &ReportServiceImpl{
		EmployeeRepository: employeeRepository,
		attendance:         attendanceLedger,
		leaves:             leaveLedger,
		leaveTypes:         leaveTypes,
		payslips:           payslipLedger,
		loc:                loc,
		now:                time.Now,
	}
}

func (s *ReportServiceImpl) target(ctx context.Context, employeeID string, allow func(identity.Identity, employee.Employee) bool) (employee.Employee, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, err
	}
	if _, err := identity.Check(ctx, emp, allow); err != nil {
		if errors.Is(err, identity.ErrForbidden) {
			return employee.Employee{}, report.ErrUnauthorized
		}
		return employee.Employee{}, err
	}
	return emp, nil
}

func (s *ReportServiceImpl) monthRows(ctx context.Context, employeeID string, year int, month time.Month) ([]attendance.DayRow, error) {
	doc, err := s.attendance.Get(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance ledger of %s: %w", employeeID, err)
	}
	return attendance.Entries(doc.Entries).DailyRows(year, month, s.now().In(s.loc)), nil
}

// AttendanceMonth implements report.ReportService.
func (s *ReportServiceImpl) AttendanceMonth(ctx context.Context, filter attendance.RangeFilter) (attendance.MonthResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.MonthResponse{}, err
	}
	emp, err := s.target(ctx, filter.EmployeeID, identity.Identity.CanAccess)
	if err != nil {
		return attendance.MonthResponse{}, err
	}

	month := time.Month(filter.Month)
	rows, err := s.monthRows(ctx, emp.ID, filter.Year, month)
	if err != nil {
		return attendance.MonthResponse{}, err
	}
	return attendance.NewMonthResponse(emp.ID, filter.Year, month, rows, s.loc), nil
}

// LeaveSummary implements report.ReportService.
func (s *ReportServiceImpl) LeaveSummary(ctx context.Context, employeeID string) (report.LeaveSummaryResponse, error) {
	emp, err := s.target(ctx, employeeID, identity.Identity.CanAccess)
	if err != nil {
		return report.LeaveSummaryResponse{}, err
	}

	var (
		types []leave.LeaveType
		doc   leave.Ledger
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		types, err = s.leaveTypes.List(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		doc, err = s.leaves.Get(gCtx, emp.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return report.LeaveSummaryResponse{}, fmt.Errorf("failed to load leave data: %w", err)
	}

	entries := leave.Entries(doc.Entries)
	balances := leave.Balances(types, entries)
	resp := report.LeaveSummaryResponse{
		EmployeeID: emp.ID,
		Balances:   make([]leave.BalanceResponse, 0, len(balances)),
	}
	for _, b := range balances {
		resp.Balances = append(resp.Balances, b.ToResponse())
	}
	counts := entries.CountByStatus()
	resp.Counts = report.LeaveCounts{
		Pending:  counts[leave.StatusPending],
		Accepted: counts[leave.StatusAccepted],
		Rejected: counts[leave.StatusRejected],
	}
	return resp, nil
}

// PayrollMonth implements report.ReportService. Admin only.
func (s *ReportServiceImpl) PayrollMonth(ctx context.Context, req report.MonthRequest) (report.PayrollMonthResponse, error) {
	id, err := identity.FromContext(ctx)
	if err != nil {
		return report.PayrollMonthResponse{}, err
	}
	if !id.IsAdmin() {
		return report.PayrollMonthResponse{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return report.PayrollMonthResponse{}, err
	}

	docs, err := s.payslips.List(ctx)
	if err != nil {
		return report.PayrollMonthResponse{}, fmt.Errorf("failed to list payslip ledgers: %w", err)
	}

	prefix := fmt.Sprintf("%04d-%02d-", req.Year, req.Month)
	resp := report.PayrollMonthResponse{
		Month: req.Month,
		Year:  req.Year,
		Rows:  []report.PayrollRow{},
		Totals: report.PayrollTotals{
			BasicSalary: decimal.Zero,
			Allowances:  decimal.Zero,
			Deductions:  decimal.Zero,
			NetSalary:   decimal.Zero,
		},
	}
	for _, doc := range docs {
		for _, slip := range doc.Entries {
			if !strings.HasPrefix(slip.PayDate, prefix) {
				continue
			}
			resp.Rows = append(resp.Rows, report.PayrollRow{
				EmployeeID:   doc.EmployeeID,
				EmployeeName: slip.EmployeeName,
				BadgeID:      slip.BadgeID,
				PayDate:      slip.PayDate,
				BasicSalary:  slip.BasicSalary,
				Allowances:   slip.Allowances,
				Deductions:   slip.Deductions,
				NetSalary:    slip.NetSalary,
				Status:       string(slip.Status),
			})
			resp.Totals.BasicSalary = resp.Totals.BasicSalary.Add(slip.BasicSalary)
			resp.Totals.Allowances = resp.Totals.Allowances.Add(slip.Allowances)
			resp.Totals.Deductions = resp.Totals.Deductions.Add(slip.Deductions)
			resp.Totals.NetSalary = resp.Totals.NetSalary.Add(slip.NetSalary)
		}
	}
	sort.SliceStable(resp.Rows, func(i, j int) bool { return resp.Rows[i].BadgeID < resp.Rows[j].BadgeID })
	resp.SlipCount = len(resp.Rows)
	return resp, nil
}

// TeamOverview implements report.ReportService.
func (s *ReportServiceImpl) TeamOverview(ctx context.Context, managerID string, req report.MonthRequest) (report.TeamOverviewResponse, error) {
	if err := req.Validate(); err != nil {
		return report.TeamOverviewResponse{}, err
	}
	manager, err := s.target(ctx, managerID, identity.Identity.CanWrite)
	if err != nil {
		return report.TeamOverviewResponse{}, err
	}

	reports, err := s.EmployeeRepository.GetByReportingManager(ctx, manager.ID)
	if err != nil {
		return report.TeamOverviewResponse{}, fmt.Errorf("failed to get reportees: %w", err)
	}

	month := time.Month(req.Month)
	members := make([]report.TeamMemberRow, len(reports))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(teamConcurrency)
	for i, r := range reports {
		i, r := i, r
		g.Go(func() error {
			rows, err := s.monthRows(gCtx, r.ID, req.Year, month)
			if err != nil {
				return err
			}
			leaves, err := s.leaves.Get(gCtx, r.ID)
			if err != nil {
				return fmt.Errorf("failed to get leave ledger of %s: %w", r.ID, err)
			}

			summary := attendance.NewMonthResponse(r.ID, req.Year, month, rows, s.loc).Summary
			members[i] = report.TeamMemberRow{
				EmployeeID:    r.ID,
				EmployeeName:  r.FullName(),
				BadgeID:       r.BadgeID,
				Attendance:    summary,
				PendingLeaves: leave.Entries(leaves.Entries).CountByStatus()[leave.StatusPending],
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report.TeamOverviewResponse{}, err
	}

	return report.TeamOverviewResponse{
		ManagerID: manager.ID,
		Month:     req.Month,
		Year:      req.Year,
		Members:   members,
	}, nil
}

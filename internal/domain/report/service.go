package report

import (
	"context"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
)

type ReportService interface {
	AttendanceMonth(ctx context.Context, filter attendance.RangeFilter) (attendance.MonthResponse, error)
	LeaveSummary(ctx context.Context, employeeID string) (LeaveSummaryResponse, error)
	PayrollMonth(ctx context.Context, req MonthRequest) (PayrollMonthResponse, error)
	TeamOverview(ctx context.Context, managerID string, req MonthRequest) (TeamOverviewResponse, error)
}

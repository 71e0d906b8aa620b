package report

import (
	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// PERIOD
// ========================================

type MonthRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *MonthRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if r.Year < 1970 || r.Year > 9999 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 1970 and 9999",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// LEAVE SUMMARY
// ========================================

type LeaveCounts struct {
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

type LeaveSummaryResponse struct {
	EmployeeID string                  `json:"employee_id"`
	Balances   []leave.BalanceResponse `json:"balances"`
	Counts     LeaveCounts             `json:"counts"`
}

// ========================================
// PAYROLL MONTH
// ========================================

type PayrollRow struct {
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	BadgeID      string          `json:"badge_id"`
	PayDate      string          `json:"pay_date"`
	BasicSalary  decimal.Decimal `json:"basic_salary"`
	Allowances   decimal.Decimal `json:"allowances"`
	Deductions   decimal.Decimal `json:"deductions"`
	NetSalary    decimal.Decimal `json:"net_salary"`
	Status       string          `json:"status"`
}

type PayrollTotals struct {
	BasicSalary decimal.Decimal `json:"basic_salary"`
	Allowances  decimal.Decimal `json:"allowances"`
	Deductions  decimal.Decimal `json:"deductions"`
	NetSalary   decimal.Decimal `json:"net_salary"`
}

type PayrollMonthResponse struct {
	Month     int           `json:"month"`
	Year      int           `json:"year"`
	Rows      []PayrollRow  `json:"rows"`
	Totals    PayrollTotals `json:"totals"`
	SlipCount int           `json:"slip_count"`
}

// ========================================
// TEAM OVERVIEW
// ========================================

type TeamMemberRow struct {
	EmployeeID    string                     `json:"employee_id"`
	EmployeeName  string                     `json:"employee_name"`
	BadgeID       string                     `json:"badge_id"`
	Attendance    attendance.SummaryResponse `json:"attendance"`
	PendingLeaves int                        `json:"pending_leaves"`
}

type TeamOverviewResponse struct {
	ManagerID string          `json:"manager_id"`
	Month     int             `json:"month"`
	Year      int             `json:"year"`
	Members   []TeamMemberRow `json:"members"`
}

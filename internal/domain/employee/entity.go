package employee

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID          string
	BadgeID     string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Address     *string
	Gender      Gender
	DOB         *time.Time

	Department         string
	JobPosition        string
	JobRole            string
	JobLevel           string
	Shift              string
	WorkType           string
	EmploymentType     string
	ReportingManagerID *string
	JoiningDate        time.Time
	EndingDate         *time.Time
	BasicSalary        decimal.Decimal

	BankName      string
	AccountNumber string
	IFSC          string
	BankBranch    string

	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined
	ReportingManagerName  *string
	ReportingManagerBadge *string
}

type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
	Other  Gender = "Other"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// FullName joins first and last name.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// IsActive reports whether the employee is still employed.
func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}

// ManagerLabel renders the reporting manager as "FirstName (BADGEn)".
// Computed at read time from the joined manager row.
func (e Employee) ManagerLabel() *string {
	if e.ReportingManagerName == nil || e.ReportingManagerBadge == nil {
		return nil
	}
	label := DisplayLabel(*e.ReportingManagerName, *e.ReportingManagerBadge)
	return &label
}

// DisplayLabel formats a person reference the way lists and pickers show it.
func DisplayLabel(firstName, badgeID string) string {
	return fmt.Sprintf("%s (%s)", firstName, badgeID)
}

// Snapshot is the copy of employee attributes embedded into ledger entries at
// write time. It is never refreshed, so history keeps the state at event time.
type Snapshot struct {
	EmployeeName string `json:"employee_name"`
	BadgeID      string `json:"badge_id"`
	Department   string `json:"department,omitempty"`
	JobPosition  string `json:"job_position,omitempty"`
	JobRole      string `json:"job_role,omitempty"`
	Shift        string `json:"shift,omitempty"`
	WorkType     string `json:"work_type,omitempty"`
}

// Snapshot captures the fields ledgers embed.
func (e Employee) Snapshot() Snapshot {
	return Snapshot{
		EmployeeName: e.FullName(),
		BadgeID:      e.BadgeID,
		Department:   e.Department,
		JobPosition:  e.JobPosition,
		JobRole:      e.JobRole,
		Shift:        e.Shift,
		WorkType:     e.WorkType,
	}
}

// BadgePrefix is prepended to the allocated counter value.
const BadgePrefix = "BADGE"

// FormatBadgeID renders counter value n as a human-readable badge identifier.
func FormatBadgeID(n int64) string {
	return fmt.Sprintf("%s%d", BadgePrefix, n)
}

package leave

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
)

var validPaymentTypes = []string{string(Paid), string(Unpaid)}

type CreateLeaveTypeRequest struct {
	Name        string `json:"name"`
	PaymentType string `json:"payment_type"`
	TotalDays   int    `json:"total_days"`
}

func (r *CreateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}

	if !validator.IsInSlice(r.PaymentType, validPaymentTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "payment_type",
			Message: "payment_type must be Paid or Unpaid",
		})
	}

	if r.TotalDays < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "total_days",
			Message: "total_days must be zero (unlimited) or positive",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateLeaveTypeRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty"`
	PaymentType *string `json:"payment_type,omitempty"`
	TotalDays   *int    `json:"total_days,omitempty"`
}

func (r *UpdateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		r.Name = &trimmed
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not be empty",
			})
		} else if len(*r.Name) > 100 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 100 characters",
			})
		}
	}

	if r.PaymentType != nil && !validator.IsInSlice(*r.PaymentType, validPaymentTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "payment_type",
			Message: "payment_type must be Paid or Unpaid",
		})
	}

	if r.TotalDays != nil && *r.TotalDays < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "total_days",
			Message: "total_days must be zero (unlimited) or positive",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LeaveTypeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	PaymentType string `json:"payment_type"`
	TotalDays   int    `json:"total_days"`
	Unlimited   bool   `json:"unlimited"`
}

func (lt LeaveType) ToResponse() LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:          lt.ID,
		Name:        lt.Name,
		Icon:        lt.Icon,
		PaymentType: string(lt.PaymentType),
		TotalDays:   lt.TotalDays,
		Unlimited:   lt.IsUnlimited(),
	}
}

type SubmitLeaveRequest struct {
	EmployeeID  string  `json:"-"`
	LeaveTypeID string  `json:"leave_type_id"`
	FromDate    string  `json:"from_date"`
	ToDate      string  `json:"to_date"`
	Comment     *string `json:"comment,omitempty"`
}

func (r *SubmitLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id is required",
		})
	}

	fromOK, toOK := false, false
	if validator.IsEmpty(r.FromDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "from_date",
			Message: "from_date is required",
		})
	} else if _, fromOK = validator.IsValidDate(r.FromDate); !fromOK {
		errs = append(errs, validator.ValidationError{
			Field:   "from_date",
			Message: "from_date must be in YYYY-MM-DD format",
		})
	}
	if validator.IsEmpty(r.ToDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "to_date",
			Message: "to_date is required",
		})
	} else if _, toOK = validator.IsValidDate(r.ToDate); !toOK {
		errs = append(errs, validator.ValidationError{
			Field:   "to_date",
			Message: "to_date must be in YYYY-MM-DD format",
		})
	}
	if fromOK && toOK {
		if days, err := RequestedDays(r.FromDate, r.ToDate); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "to_date",
				Message: "to_date must not be before from_date",
			})
		} else if days > MaxRequestDays {
			errs = append(errs, validator.ValidationError{
				Field:   "to_date",
				Message: fmt.Sprintf("a leave request must not span more than %d days", MaxRequestDays),
			})
		}
	}

	if r.Comment != nil && len(*r.Comment) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "comment",
			Message: "comment must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateStatusRequest struct {
	EmployeeID string `json:"-"`
	EntryID    string `json:"-"`
	Status     string `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.EntryID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if !validator.IsInSlice(r.Status, []string{string(StatusAccepted), string(StatusRejected)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be Accepted or Rejected",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateCommentRequest struct {
	EmployeeID string `json:"-"`
	EntryID    string `json:"-"`
	Comment    string `json:"comment"`
}

func (r *UpdateCommentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.EntryID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if len(r.Comment) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "comment",
			Message: "comment must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DeleteLeaveRequest struct {
	EmployeeID string
	EntryID    string
}

func (r *DeleteLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.EntryID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LeaveFilter struct {
	Status      *string
	LeaveTypeID *string
}

func (f *LeaveFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{string(StatusPending), string(StatusAccepted), string(StatusRejected)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be Pending, Accepted or Rejected",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Matches reports whether e passes the filter.
func (f LeaveFilter) Matches(e Entry) bool {
	if f.Status != nil && string(e.Status) != *f.Status {
		return false
	}
	if f.LeaveTypeID != nil && e.LeaveTypeID != *f.LeaveTypeID {
		return false
	}
	return true
}

type LeaveEntryResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	LeaveTypeID   string  `json:"leave_type_id"`
	LeaveType     string  `json:"leave_type"`
	PaymentType   string  `json:"payment_type"`
	FromDate      string  `json:"from_date"`
	ToDate        string  `json:"to_date"`
	RequestedDays int     `json:"requested_days"`
	Status        string  `json:"status"`
	Comment       string  `json:"comment"`
	AppliedAt     string  `json:"applied_at"`
	ReviewedBy    *string `json:"reviewed_by,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	EmployeeName  string  `json:"employee_name"`
	BadgeID       string  `json:"badge_id"`
	Department    string  `json:"department,omitempty"`
	JobRole       string  `json:"job_role,omitempty"`
	Shift         string  `json:"shift,omitempty"`
	WorkType      string  `json:"work_type,omitempty"`
}

func (e Entry) ToResponse(employeeID string, loc *time.Location) LeaveEntryResponse {
	resp := LeaveEntryResponse{
		ID:            e.ID,
		EmployeeID:    employeeID,
		LeaveTypeID:   e.LeaveTypeID,
		LeaveType:     e.LeaveType,
		PaymentType:   e.PaymentType,
		FromDate:      e.FromDate,
		ToDate:        e.ToDate,
		RequestedDays: e.RequestedDays,
		Status:        string(e.Status),
		Comment:       e.Comment,
		AppliedAt:     e.AppliedAt.In(loc).Format(time.RFC3339),
		ReviewedBy:    e.ReviewedBy,
		EmployeeName:  e.EmployeeName,
		BadgeID:       e.BadgeID,
		Department:    e.Department,
		JobRole:       e.JobRole,
		Shift:         e.Shift,
		WorkType:      e.WorkType,
	}
	if e.ReviewedAt != nil {
		s := e.ReviewedAt.In(loc).Format(time.RFC3339)
		resp.ReviewedAt = &s
	}
	return resp
}

type SubmitLeaveResponse struct {
	Entry             LeaveEntryResponse `json:"entry"`
	AllotmentExceeded bool               `json:"allotment_exceeded"`
	Warning           string             `json:"warning,omitempty"`
}

type BalanceResponse struct {
	LeaveTypeID string `json:"leave_type_id"`
	LeaveType   string `json:"leave_type"`
	Icon        string `json:"icon"`
	PaymentType string `json:"payment_type"`
	TotalDays   int    `json:"total_days"`
	Used        int    `json:"used"`
	Remaining   *int   `json:"remaining"`
	Unlimited   bool   `json:"unlimited"`
}

func (b Balance) ToResponse() BalanceResponse {
	return BalanceResponse{
		LeaveTypeID: b.LeaveType.ID,
		LeaveType:   b.LeaveType.Name,
		Icon:        b.LeaveType.Icon,
		PaymentType: string(b.LeaveType.PaymentType),
		TotalDays:   b.LeaveType.TotalDays,
		Used:        b.Used,
		Remaining:   b.Remaining,
		Unlimited:   b.LeaveType.IsUnlimited(),
	}
}

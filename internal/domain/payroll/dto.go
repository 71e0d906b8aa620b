package payroll

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type GenerateRequest struct {
	EmployeeID    string           `json:"employee_id"`
	PayDate       string           `json:"pay_date"`
	Allowances    *decimal.Decimal `json:"allowances,omitempty"`
	Deductions    *decimal.Decimal `json:"deductions,omitempty"`
	PaymentMethod string           `json:"payment_method"`
	Status        string           `json:"status"`
}

func (r *GenerateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	errs = validateSlipFields(errs, &r.PayDate, r.Allowances, r.Deductions, &r.PaymentMethod, &r.Status)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BulkGenerateRequest struct {
	EmployeeIDs   []string         `json:"employee_ids,omitempty"` // Empty = all active employees
	PayDate       string           `json:"pay_date"`
	Allowances    *decimal.Decimal `json:"allowances,omitempty"`
	Deductions    *decimal.Decimal `json:"deductions,omitempty"`
	PaymentMethod string           `json:"payment_method"`
	Status        string           `json:"status"`
}

func (r *BulkGenerateRequest) Validate() error {
	var errs validator.ValidationErrors

	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "employee_ids must not contain empty values"})
			break
		}
	}
	errs = validateSlipFields(errs, &r.PayDate, r.Allowances, r.Deductions, &r.PaymentMethod, &r.Status)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ForEmployee derives the single-employee request.
func (r BulkGenerateRequest) ForEmployee(employeeID string) GenerateRequest {
	return GenerateRequest{
		EmployeeID:    employeeID,
		PayDate:       r.PayDate,
		Allowances:    r.Allowances,
		Deductions:    r.Deductions,
		PaymentMethod: r.PaymentMethod,
		Status:        r.Status,
	}
}

// validateSlipFields checks the fields shared by generate requests and fills
// in defaults for method and status.
func validateSlipFields(errs validator.ValidationErrors, payDate *string, allowances, deductions *decimal.Decimal, method, status *string) validator.ValidationErrors {
	if validator.IsEmpty(*payDate) {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "pay_date is required"})
	} else if _, ok := validator.IsValidDate(*payDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "pay_date must be in YYYY-MM-DD format"})
	}
	if allowances != nil && allowances.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "allowances", Message: "allowances must not be negative"})
	}
	if deductions != nil && deductions.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "deductions", Message: "deductions must not be negative"})
	}

	*method = strings.TrimSpace(*method)
	if *method == "" {
		*method = DefaultPaymentMethod
	} else if len(*method) > 50 {
		errs = append(errs, validator.ValidationError{Field: "payment_method", Message: "payment_method must not exceed 50 characters"})
	}

	if *status == "" {
		*status = string(StatusPending)
	} else if !validator.IsInSlice(*status, ValidStatuses) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be Pending, Unpaid or Sent"})
	}
	return errs
}

// OrZero treats an absent amount as zero.
func OrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

type EditRequest struct {
	EmployeeID        string           `json:"-"`
	SlipID            string           `json:"-"`
	PayDate           string           `json:"pay_date"`
	BasicSalary       *decimal.Decimal `json:"basic_salary"`
	Allowances        *decimal.Decimal `json:"allowances,omitempty"`
	Deductions        *decimal.Decimal `json:"deductions,omitempty"`
	NetSalaryOverride *decimal.Decimal `json:"net_salary_override,omitempty"`
	PaymentMethod     string           `json:"payment_method"`
	Status            string           `json:"status"`
	BankName          string           `json:"bank_name"`
	AccountNumber     string           `json:"account_number"`
	IFSC              string           `json:"ifsc"`
	BankBranch        string           `json:"bank_branch"`
}

func (r *EditRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(r.SlipID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if r.BasicSalary == nil {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "basic_salary is required"})
	} else if r.BasicSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "basic_salary must not be negative"})
	}
	if r.NetSalaryOverride != nil && r.NetSalaryOverride.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "net_salary_override", Message: "net_salary_override must not be negative"})
	}
	errs = validateSlipFields(errs, &r.PayDate, r.Allowances, r.Deductions, &r.PaymentMethod, &r.Status)

	if r.AccountNumber != "" && !validator.IsNumeric(r.AccountNumber) {
		errs = append(errs, validator.ValidationError{Field: "account_number", Message: "account_number must contain digits only"})
	}
	if r.IFSC != "" && !validator.IsValidIFSC(r.IFSC) {
		errs = append(errs, validator.ValidationError{Field: "ifsc", Message: "ifsc must be 4 letters, 0, then 6 letters or digits"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToEdit converts a validated request into the domain edit.
func (r EditRequest) ToEdit() Edit {
	return Edit{
		PayDate:       r.PayDate,
		BasicSalary:   OrZero(r.BasicSalary),
		Allowances:    OrZero(r.Allowances),
		Deductions:    OrZero(r.Deductions),
		NetOverride:   r.NetSalaryOverride,
		PaymentMethod: r.PaymentMethod,
		Status:        Status(r.Status),
		BankName:      r.BankName,
		AccountNumber: r.AccountNumber,
		IFSC:          strings.ToUpper(r.IFSC),
		BankBranch:    r.BankBranch,
	}
}

type DeleteRequest struct {
	EmployeeID string
	PayDate    string
}

func (r *DeleteRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if _, ok := validator.IsValidDate(r.PayDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "pay_date must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SlipResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  string          `json:"employee_name"`
	BadgeID       string          `json:"badge_id"`
	Department    string          `json:"department,omitempty"`
	JobPosition   string          `json:"job_position,omitempty"`
	PayDate       string          `json:"pay_date"`
	BasicSalary   decimal.Decimal `json:"basic_salary"`
	Allowances    decimal.Decimal `json:"allowances"`
	Deductions    decimal.Decimal `json:"deductions"`
	NetSalary     decimal.Decimal `json:"net_salary"`
	NetOverridden bool            `json:"net_overridden"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	BankName      string          `json:"bank_name"`
	AccountNumber string          `json:"account_number"`
	IFSC          string          `json:"ifsc"`
	BankBranch    string          `json:"bank_branch"`
	GeneratedAt   string          `json:"generated_at"`
	UpdatedAt     string          `json:"updated_at"`
}

func (s Slip) ToResponse(employeeID string, loc *time.Location) SlipResponse {
	return SlipResponse{
		ID:            s.ID,
		EmployeeID:    employeeID,
		EmployeeName:  s.EmployeeName,
		BadgeID:       s.BadgeID,
		Department:    s.Department,
		JobPosition:   s.JobPosition,
		PayDate:       s.PayDate,
		BasicSalary:   s.BasicSalary,
		Allowances:    s.Allowances,
		Deductions:    s.Deductions,
		NetSalary:     s.NetSalary,
		NetOverridden: s.NetOverridden,
		PaymentMethod: s.PaymentMethod,
		Status:        string(s.Status),
		BankName:      s.BankName,
		AccountNumber: s.AccountNumber,
		IFSC:          s.IFSC,
		BankBranch:    s.BankBranch,
		GeneratedAt:   s.GeneratedAt.In(loc).Format(time.RFC3339),
		UpdatedAt:     s.UpdatedAt.In(loc).Format(time.RFC3339),
	}
}

type BulkFailure struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

type BulkGenerateResponse struct {
	Generated []SlipResponse `json:"generated"`
	Failed    []BulkFailure  `json:"failed"`
}

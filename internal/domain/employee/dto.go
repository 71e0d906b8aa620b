package employee

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// SUB-FORMS
// ========================================

type PersonalInfo struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phone_number"`
	Address     *string `json:"address,omitempty"`
	Gender      string  `json:"gender"`
	DOB         *string `json:"dob,omitempty"`
}

func (p *PersonalInfo) validate(errs validator.ValidationErrors) validator.ValidationErrors {
	if validator.IsEmpty(p.FirstName) {
		errs = append(errs, validator.ValidationError{Field: "personal.first_name", Message: "first_name is required"})
	} else if len(p.FirstName) > 100 {
		errs = append(errs, validator.ValidationError{Field: "personal.first_name", Message: "first_name must not exceed 100 characters"})
	}

	if len(p.LastName) > 100 {
		errs = append(errs, validator.ValidationError{Field: "personal.last_name", Message: "last_name must not exceed 100 characters"})
	}

	if validator.IsEmpty(p.Email) {
		errs = append(errs, validator.ValidationError{Field: "personal.email", Message: "email is required"})
	} else if !validator.IsValidEmail(p.Email) {
		errs = append(errs, validator.ValidationError{Field: "personal.email", Message: "invalid email format"})
	}

	if !validator.IsEmpty(p.PhoneNumber) && !validator.IsValidPhoneNumber(p.PhoneNumber) {
		errs = append(errs, validator.ValidationError{Field: "personal.phone_number", Message: ErrInvalidPhoneNumber.Error()})
	}

	if p.Gender != "" && !validator.IsInSlice(p.Gender, []string{string(Male), string(Female), string(Other)}) {
		errs = append(errs, validator.ValidationError{Field: "personal.gender", Message: ErrInvalidGender.Error()})
	}

	if p.DOB != nil {
		if dob, ok := validator.IsValidDate(*p.DOB); !ok {
			errs = append(errs, validator.ValidationError{Field: "personal.dob", Message: "dob must be in YYYY-MM-DD format"})
		} else if dob.After(time.Now()) {
			errs = append(errs, validator.ValidationError{Field: "personal.dob", Message: ErrFutureDateNotAllowed.Error()})
		}
	}
	return errs
}

type WorkInfo struct {
	Department         string          `json:"department"`
	JobPosition        string          `json:"job_position"`
	JobRole            string          `json:"job_role"`
	JobLevel           string          `json:"job_level"`
	Shift              string          `json:"shift"`
	WorkType           string          `json:"work_type"`
	EmploymentType     string          `json:"employment_type"`
	ReportingManagerID *string         `json:"reporting_manager_id,omitempty"`
	JoiningDate        string          `json:"joining_date"`
	EndingDate         *string         `json:"ending_date,omitempty"`
	BasicSalary        decimal.Decimal `json:"basic_salary"`
}

func (w *WorkInfo) validate(errs validator.ValidationErrors) validator.ValidationErrors {
	if validator.IsEmpty(w.Department) {
		errs = append(errs, validator.ValidationError{Field: "work.department", Message: "department is required"})
	}

	joining, ok := validator.IsValidDate(w.JoiningDate)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "work.joining_date", Message: "joining_date must be in YYYY-MM-DD format"})
	}

	if w.EndingDate != nil {
		ending, endOK := validator.IsValidDate(*w.EndingDate)
		if !endOK {
			errs = append(errs, validator.ValidationError{Field: "work.ending_date", Message: "ending_date must be in YYYY-MM-DD format"})
		} else if ok && ending.Before(joining) {
			errs = append(errs, validator.ValidationError{Field: "work.ending_date", Message: "ending_date must not be before joining_date"})
		}
	}

	if w.ReportingManagerID != nil && !validator.IsValidUUID(*w.ReportingManagerID) {
		errs = append(errs, validator.ValidationError{Field: "work.reporting_manager_id", Message: "reporting_manager_id must be a valid employee key"})
	}

	if w.BasicSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "work.basic_salary", Message: "basic_salary must be non-negative"})
	}
	return errs
}

type BankInfo struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
	BankBranch    string `json:"bank_branch"`
}

func (b *BankInfo) validate(errs validator.ValidationErrors) validator.ValidationErrors {
	if !validator.IsEmpty(b.AccountNumber) && !validator.IsNumeric(b.AccountNumber) {
		errs = append(errs, validator.ValidationError{Field: "bank.account_number", Message: "account_number must be numeric"})
	}
	if !validator.IsEmpty(b.IFSC) && !validator.IsValidIFSC(b.IFSC) {
		errs = append(errs, validator.ValidationError{Field: "bank.ifsc", Message: "invalid IFSC code"})
	}
	return errs
}

// ========================================
// REQUESTS
// ========================================

type CreateEmployeeRequest struct {
	Personal PersonalInfo `json:"personal"`
	Work     WorkInfo     `json:"work"`
	Bank     BankInfo     `json:"bank"`
	Password string       `json:"password"`
	Role     string       `json:"role"` // employee, manager, admin
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = r.Personal.validate(errs)
	errs = r.Work.validate(errs)
	errs = r.Bank.validate(errs)

	if len(r.Password) < 8 {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password must be at least 8 characters"})
	}

	if r.Role == "" {
		r.Role = "employee"
	}
	if !validator.IsInSlice(r.Role, []string{"employee", "manager", "admin"}) {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role must be employee, manager or admin"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateEmployeeRequest struct {
	ID       string       `json:"-"`
	Personal PersonalInfo `json:"personal"`
	Work     WorkInfo     `json:"work"`
	Bank     BankInfo     `json:"bank"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	errs = r.Personal.validate(errs)
	errs = r.Work.validate(errs)
	errs = r.Bank.validate(errs)

	if r.Work.ReportingManagerID != nil && *r.Work.ReportingManagerID == r.ID {
		errs = append(errs, validator.ValidationError{Field: "work.reporting_manager_id", Message: ErrSelfReporting.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateProfileRequest is the self-service edit: personal and contact fields only.
type UpdateProfileRequest struct {
	PhoneNumber *string   `json:"phone_number,omitempty"`
	Address     *string   `json:"address,omitempty"`
	DOB         *string   `json:"dob,omitempty"`
	Gender      *string   `json:"gender,omitempty"`
	Bank        *BankInfo `json:"bank,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PhoneNumber != nil && !validator.IsValidPhoneNumber(*r.PhoneNumber) {
		errs = append(errs, validator.ValidationError{Field: "phone_number", Message: ErrInvalidPhoneNumber.Error()})
	}
	if r.Gender != nil && !validator.IsInSlice(*r.Gender, []string{string(Male), string(Female), string(Other)}) {
		errs = append(errs, validator.ValidationError{Field: "gender", Message: ErrInvalidGender.Error()})
	}
	if r.DOB != nil {
		if dob, ok := validator.IsValidDate(*r.DOB); !ok {
			errs = append(errs, validator.ValidationError{Field: "dob", Message: "dob must be in YYYY-MM-DD format"})
		} else if dob.After(time.Now()) {
			errs = append(errs, validator.ValidationError{Field: "dob", Message: ErrFutureDateNotAllowed.Error()})
		}
	}
	if r.Bank != nil {
		errs = r.Bank.validate(errs)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type InactivateEmployeeRequest struct {
	ID         string `json:"-"`
	EndingDate string `json:"ending_date"`
}

func (r *InactivateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if _, ok := validator.IsValidDate(r.EndingDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "ending_date", Message: "ending_date must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeFilter struct {
	Status             *string `json:"status,omitempty"`
	Department         *string `json:"department,omitempty"`
	ReportingManagerID *string `json:"reporting_manager_id,omitempty"`
	Search             *string `json:"search,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be a positive number"})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must not exceed 100"})
	}
	if f.Status != nil && !validator.IsInSlice(strings.ToLower(*f.Status), []string{string(StatusActive), string(StatusInactive)}) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be active or inactive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// RESPONSES
// ========================================

type EmployeeResponse struct {
	ID               string  `json:"id"`
	BadgeID          string  `json:"badge_id"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	FullName         string  `json:"full_name"`
	Email            string  `json:"email"`
	PhoneNumber      string  `json:"phone_number"`
	Address          *string `json:"address,omitempty"`
	Gender           string  `json:"gender,omitempty"`
	DOB              *string `json:"dob,omitempty"`
	Department       string  `json:"department"`
	JobPosition      string  `json:"job_position"`
	JobRole          string  `json:"job_role"`
	JobLevel         string  `json:"job_level"`
	Shift            string  `json:"shift"`
	WorkType         string  `json:"work_type"`
	EmploymentType   string  `json:"employment_type"`
	ReportingManager *string `json:"reporting_manager,omitempty"`
	ManagerID        *string `json:"reporting_manager_id,omitempty"`
	JoiningDate      string  `json:"joining_date"`
	EndingDate       *string `json:"ending_date,omitempty"`
	BasicSalary      string  `json:"basic_salary"`
	BankName         string  `json:"bank_name"`
	AccountNumber    string  `json:"account_number"`
	IFSC             string  `json:"ifsc"`
	BankBranch       string  `json:"bank_branch"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Showing    string             `json:"showing"`
	Employees  []EmployeeResponse `json:"employees"`
}

func datePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

// ToResponse maps the entity to its API shape.
func (e Employee) ToResponse() EmployeeResponse {
	return EmployeeResponse{
		ID:               e.ID,
		BadgeID:          e.BadgeID,
		FirstName:        e.FirstName,
		LastName:         e.LastName,
		FullName:         e.FullName(),
		Email:            e.Email,
		PhoneNumber:      e.PhoneNumber,
		Address:          e.Address,
		Gender:           string(e.Gender),
		DOB:              datePtrToString(e.DOB),
		Department:       e.Department,
		JobPosition:      e.JobPosition,
		JobRole:          e.JobRole,
		JobLevel:         e.JobLevel,
		Shift:            e.Shift,
		WorkType:         e.WorkType,
		EmploymentType:   e.EmploymentType,
		ReportingManager: e.ManagerLabel(),
		ManagerID:        e.ReportingManagerID,
		JoiningDate:      e.JoiningDate.Format("2006-01-02"),
		EndingDate:       datePtrToString(e.EndingDate),
		BasicSalary:      e.BasicSalary.StringFixed(2),
		BankName:         e.BankName,
		AccountNumber:    e.AccountNumber,
		IFSC:             e.IFSC,
		BankBranch:       e.BankBranch,
		Status:           string(e.Status),
		CreatedAt:        e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        e.UpdatedAt.Format(time.RFC3339),
	}
}

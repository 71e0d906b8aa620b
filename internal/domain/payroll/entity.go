package payroll

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// Status of a payslip
type Status string

const (
	StatusPending Status = "Pending"
	StatusUnpaid  Status = "Unpaid"
	StatusSent    Status = "Sent"
)

var ValidStatuses = []string{string(StatusPending), string(StatusUnpaid), string(StatusSent)}

const DefaultPaymentMethod = "Bank Transfer"

// Slip is one payslip inside an employee's payslip ledger. Bank details are
// a copy taken when the slip was generated.
type Slip struct {
	ID            string          `json:"id"`
	PayDate       string          `json:"pay_date"`
	BasicSalary   decimal.Decimal `json:"basic_salary"`
	Allowances    decimal.Decimal `json:"allowances"`
	Deductions    decimal.Decimal `json:"deductions"`
	NetSalary     decimal.Decimal `json:"net_salary"`
	NetOverridden bool            `json:"net_overridden"`
	PaymentMethod string          `json:"payment_method"`
	Status        Status          `json:"status"`
	BankName      string          `json:"bank_name"`
	AccountNumber string          `json:"account_number"`
	IFSC          string          `json:"ifsc"`
	BankBranch    string          `json:"bank_branch"`
	GeneratedAt   time.Time       `json:"generated_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	employee.Snapshot
}

type Ledger = ledger.Document[Slip]

// NetSalary = basic + allowances - deductions.
func NetSalary(basic, allowances, deductions decimal.Decimal) decimal.Decimal {
	return basic.Add(allowances).Sub(deductions)
}

// Recompute refreshes the net salary unless it was explicitly overridden.
func (s *Slip) Recompute() {
	if s.NetOverridden {
		return
	}
	s.NetSalary = NetSalary(s.BasicSalary, s.Allowances, s.Deductions)
}

// Edit carries every editable field of a slip. Applying it overwrites them all.
type Edit struct {
	PayDate       string
	BasicSalary   decimal.Decimal
	Allowances    decimal.Decimal
	Deductions    decimal.Decimal
	NetOverride   *decimal.Decimal
	PaymentMethod string
	Status        Status
	BankName      string
	AccountNumber string
	IFSC          string
	BankBranch    string
}

// Slips is the payslip array of one employee.
type Slips []Slip

func (ss Slips) Find(id string) (int, bool) {
	for i, s := range ss {
		if s.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (ss Slips) ForDate(payDate string) (int, bool) {
	for i, s := range ss {
		if s.PayDate == payDate {
			return i, true
		}
	}
	return -1, false
}

// Add appends slip after recomputing its net salary. One slip per pay date.
func (ss Slips) Add(slip Slip) (Slips, Slip, error) {
	if _, exists := ss.ForDate(slip.PayDate); exists {
		return ss, Slip{}, ErrPayslipExists
	}
	slip.Recompute()
	out := make(Slips, 0, len(ss)+1)
	out = append(out, ss...)
	return append(out, slip), slip, nil
}

// Apply overwrites the editable fields of slip id.
func (ss Slips) Apply(id string, e Edit, now time.Time) (Slips, Slip, error) {
	i, found := ss.Find(id)
	if !found {
		return ss, Slip{}, ErrPayslipNotFound
	}
	if j, clash := ss.ForDate(e.PayDate); clash && j != i {
		return ss, Slip{}, ErrPayslipExists
	}

	out := make(Slips, len(ss))
	copy(out, ss)

	s := out[i]
	s.PayDate = e.PayDate
	s.BasicSalary = e.BasicSalary
	s.Allowances = e.Allowances
	s.Deductions = e.Deductions
	s.PaymentMethod = e.PaymentMethod
	s.Status = e.Status
	s.BankName = e.BankName
	s.AccountNumber = e.AccountNumber
	s.IFSC = e.IFSC
	s.BankBranch = e.BankBranch
	s.UpdatedAt = now
	if e.NetOverride != nil {
		s.NetSalary = *e.NetOverride
		s.NetOverridden = true
	} else {
		s.NetOverridden = false
		s.Recompute()
	}
	out[i] = s
	return out, s, nil
}

// RemoveByDate drops the slip for payDate; false when none matched.
func (ss Slips) RemoveByDate(payDate string) (Slips, bool) {
	i, found := ss.ForDate(payDate)
	if !found {
		return ss, false
	}
	out := make(Slips, 0, len(ss)-1)
	out = append(out, ss[:i]...)
	return append(out, ss[i+1:]...), true
}

// InMonth returns the slips whose pay date falls in the given month.
func (ss Slips) InMonth(year int, month time.Month) Slips {
	var out Slips
	for _, s := range ss {
		d, err := time.Parse(ledger.DateLayout, s.PayDate)
		if err != nil {
			continue
		}
		if d.Year() == year && d.Month() == month {
			out = append(out, s)
		}
	}
	return out
}

// NewestFirst returns a copy sorted by pay date descending.
func (ss Slips) NewestFirst() Slips {
	out := make(Slips, len(ss))
	copy(out, ss)
	sort.SliceStable(out, func(i, j int) bool { return out[i].PayDate > out[j].PayDate })
	return out
}

package leave

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/ledger"
)

type PaymentType string

const (
	Paid   PaymentType = "Paid"
	Unpaid PaymentType = "Unpaid"
)

// LeaveType is a catalogue entry. TotalDays 0 means no cap.
type LeaveType struct {
	ID          string
	Name        string
	Icon        string
	PaymentType PaymentType
	TotalDays   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (lt LeaveType) IsUnlimited() bool {
	return lt.TotalDays == 0
}

// Icon returns the upper-cased initials of the first two words of name.
func Icon(name string) string {
	words := strings.Fields(name)
	if len(words) > 2 {
		words = words[:2]
	}
	var b strings.Builder
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

type Status string

const (
	StatusPending  Status = "Pending"
	StatusAccepted Status = "Accepted"
	StatusRejected Status = "Rejected"
)

// Entry is one leave request inside an employee's ledger. The leave type
// name and payment type are frozen at submission.
type Entry struct {
	ID            string     `json:"id"`
	LeaveTypeID   string     `json:"leave_type_id"`
	LeaveType     string     `json:"leave_type"`
	PaymentType   string     `json:"payment_type"`
	FromDate      string     `json:"from_date"`
	ToDate        string     `json:"to_date"`
	RequestedDays int        `json:"requested_days"`
	Status        Status     `json:"status"`
	Comment       string     `json:"comment"`
	AppliedAt     time.Time  `json:"applied_at"`
	ReviewedBy    *string    `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	IsManager     bool       `json:"is_manager"`
	employee.Snapshot
}

// countsTowardAllotment: rejected requests give their days back.
func (e Entry) countsTowardAllotment() bool {
	return e.Status == StatusPending || e.Status == StatusAccepted
}

type Ledger = ledger.Document[Entry]

// MaxRequestDays bounds a single leave request to one (leap) year.
const MaxRequestDays = 366

// RequestedDays is the inclusive day count between from and to. Both parse
// as UTC midnights, so the count is exact calendar days.
func RequestedDays(from, to string) (int, error) {
	f, err := time.Parse(ledger.DateLayout, from)
	if err != nil {
		return 0, ErrInvalidDate
	}
	t, err := time.Parse(ledger.DateLayout, to)
	if err != nil {
		return 0, ErrInvalidDate
	}
	if t.Before(f) {
		return 0, ErrInvalidDateRange
	}
	return int((t.Unix()-f.Unix())/86400) + 1, nil
}

// ExceedsAllotment reports whether adding requested days to used days goes
// over the type's cap.
func ExceedsAllotment(lt LeaveType, used, requested int) bool {
	if lt.IsUnlimited() {
		return false
	}
	return used+requested > lt.TotalDays
}

// Entries is the leave array of one employee.
type Entries []Entry

func (es Entries) Find(id string) (int, bool) {
	for i, e := range es {
		if e.ID == id {
			return i, true
		}
	}
	return -1, false
}

// UsedDays sums requested days of pending and accepted entries of a type.
func (es Entries) UsedDays(leaveTypeID string) int {
	used := 0
	for _, e := range es {
		if e.LeaveTypeID == leaveTypeID && e.countsTowardAllotment() {
			used += e.RequestedDays
		}
	}
	return used
}

// SetStatus moves a pending entry to Accepted or Rejected. Reviewed entries
// are terminal.
func (es Entries) SetStatus(id string, status Status, reviewer string, now time.Time) (Entries, Entry, error) {
	if status != StatusAccepted && status != StatusRejected {
		return es, Entry{}, ErrInvalidStatus
	}
	i, found := es.Find(id)
	if !found {
		return es, Entry{}, ErrLeaveRequestNotFound
	}
	if es[i].Status != StatusPending {
		return es, Entry{}, ErrLeaveRequestAlreadyProcessed
	}

	out := make(Entries, len(es))
	copy(out, es)
	reviewedAt := now
	out[i].Status = status
	out[i].ReviewedBy = &reviewer
	out[i].ReviewedAt = &reviewedAt
	return out, out[i], nil
}

// SetComment replaces the comment. A manager's own accepted leave is locked.
func (es Entries) SetComment(id string, comment string) (Entries, Entry, error) {
	i, found := es.Find(id)
	if !found {
		return es, Entry{}, ErrLeaveRequestNotFound
	}
	if es[i].IsManager && es[i].Status == StatusAccepted {
		return es, Entry{}, ErrCommentLocked
	}

	out := make(Entries, len(es))
	copy(out, es)
	out[i].Comment = comment
	return out, out[i], nil
}

// Remove drops the entry with id; false when it was already gone.
func (es Entries) Remove(id string) (Entries, bool) {
	i, found := es.Find(id)
	if !found {
		return es, false
	}
	out := make(Entries, 0, len(es)-1)
	out = append(out, es[:i]...)
	return append(out, es[i+1:]...), true
}

// CountByStatus tallies entries per status.
func (es Entries) CountByStatus() map[Status]int {
	counts := map[Status]int{StatusPending: 0, StatusAccepted: 0, StatusRejected: 0}
	for _, e := range es {
		counts[e.Status]++
	}
	return counts
}

type Balance struct {
	LeaveType LeaveType
	Used      int
	// Nil when the type is unlimited.
	Remaining *int
}

// Balances computes used and remaining days for each leave type.
func Balances(types []LeaveType, es Entries) []Balance {
	out := make([]Balance, 0, len(types))
	for _, lt := range types {
		b := Balance{LeaveType: lt, Used: es.UsedDays(lt.ID)}
		if !lt.IsUnlimited() {
			remaining := lt.TotalDays - b.Used
			b.Remaining = &remaining
		}
		out = append(out, b)
	}
	return out
}

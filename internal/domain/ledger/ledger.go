// Package ledger holds the pieces shared by the per-employee ledger documents
// (attendance, leave, payslips). Each document is one JSONB array per employee
// guarded by a version token.
package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrVersionConflict is returned when a document changed between read and write.
	ErrVersionConflict = errors.New("ledger was modified concurrently, reload and try again")
)

// Document is a per-employee ledger as stored. Version 0 means the document
// does not exist yet.
type Document[T any] struct {
	EmployeeID string
	Entries    []T
	Version    int64
	UpdatedAt  time.Time
}

// Exists reports whether the document was read from storage.
func (d Document[T]) Exists() bool {
	return d.Version > 0
}

// DateLayout is the canonical calendar date format used inside ledger entries.
const DateLayout = "2006-01-02"

// Repository reads and conditionally writes ledger documents of one kind.
//
// Get returns an empty document (Version 0) when none is stored. Save writes
// doc.Entries if the stored version still equals doc.Version and returns the
// document with its new version; an empty Entries slice removes the row.
type Repository[T any] interface {
	Get(ctx context.Context, employeeID string) (Document[T], error)
	GetMany(ctx context.Context, employeeIDs []string) ([]Document[T], error)
	List(ctx context.Context) ([]Document[T], error)
	Save(ctx context.Context, doc Document[T]) (Document[T], error)
	Delete(ctx context.Context, employeeID string) error
}

// ParseDate parses a YYYY-MM-DD ledger date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

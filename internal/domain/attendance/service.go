package attendance

import (
	"context"
	"time"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn opens today's entry for the employee
	CheckIn(ctx context.Context, employeeID string) (CheckInResponse, error)

	// CheckOut closes the employee's entry opened today
	CheckOut(ctx context.Context, employeeID string) (EntryResponse, error)

	// Status returns the open entry, if any, and its running time
	Status(ctx context.Context, employeeID string) (StatusResponse, error)

	// DeleteEntry removes one day; deleting a missing day is not an error
	DeleteEntry(ctx context.Context, req DeleteEntryRequest) error

	// ListForRange returns one row per day of the month
	ListForRange(ctx context.Context, filter RangeFilter) (MonthResponse, error)

	// List returns the raw entries, newest first
	List(ctx context.Context, employeeID string) ([]EntryResponse, error)

	// MarkAbsent records Absent rows on day for active employees without an entry
	MarkAbsent(ctx context.Context, day time.Time) (int, error)

	// CloseStale auto-closes entries left open on any day before day
	CloseStale(ctx context.Context, day time.Time) (int, error)
}

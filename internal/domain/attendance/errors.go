package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn        = errors.New("you have already checked in")
	ErrAttendanceExistsForDate = errors.New("attendance for today is already recorded")
	ErrNotCheckedIn            = errors.New("you have not checked in yet")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrUnauthorized       = errors.New("unauthorized to access this attendance record")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
)

package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/master"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/report"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth and identity
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrRefreshTokenRevoked),
		errors.Is(err, identity.ErrNoIdentity):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAccountInactive):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrWrongPassword):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// Authorization
	case errors.Is(err, identity.ErrForbidden),
		errors.Is(err, user.ErrAdminPrivilegeRequired),
		errors.Is(err, user.ErrManagerAccessRequired),
		errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, employee.ErrUnauthorized),
		errors.Is(err, attendance.ErrUnauthorized),
		errors.Is(err, leave.ErrUnauthorized),
		errors.Is(err, leave.ErrCannotReviewOwnLeave),
		errors.Is(err, payroll.ErrUnauthorized),
		errors.Is(err, report.ErrUnauthorized),
		errors.Is(err, employee.ErrCannotDeleteSelf):
		Forbidden(w, err.Error())

	// Concurrency
	case errors.Is(err, ledger.ErrVersionConflict):
		Conflict(w, err.Error())

	// Not found
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrManagerNotFound),
		errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, leave.ErrLeaveRequestNotFound),
		errors.Is(err, leave.ErrLeaveTypeNotFound),
		errors.Is(err, payroll.ErrPayslipNotFound),
		errors.Is(err, master.ErrItemNotFound),
		errors.Is(err, master.ErrUnknownCatalogue):
		NotFound(w, err.Error())

	// Conflicts with existing state
	case errors.Is(err, employee.ErrEmailExists),
		errors.Is(err, user.ErrUserEmailExists),
		errors.Is(err, employee.ErrBadgeIDExists),
		errors.Is(err, employee.ErrEmployeeAlreadyInactive),
		errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAttendanceExistsForDate),
		errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed),
		errors.Is(err, leave.ErrLeaveTypeNameExists),
		errors.Is(err, leave.ErrCommentLocked),
		errors.Is(err, payroll.ErrPayslipExists),
		errors.Is(err, master.ErrItemNameExists):
		Conflict(w, err.Error())

	// Well-formed but rejected input
	case errors.Is(err, leave.ErrAllotmentExceeded),
		errors.Is(err, payroll.ErrEmployeeInactive),
		errors.Is(err, employee.ErrSelfReporting):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, employee.ErrInvalidBadgeID),
		errors.Is(err, attendance.ErrInvalidDate),
		errors.Is(err, leave.ErrInvalidDate),
		errors.Is(err, leave.ErrInvalidDateRange),
		errors.Is(err, leave.ErrInvalidStatus):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

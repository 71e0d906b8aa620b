package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrLeaveTypeNotFound            = errors.New("leave type not found")
	ErrLeaveTypeNameExists          = errors.New("leave type name already exists")
	ErrInvalidDate                  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidDateRange             = errors.New("to_date must not be before from_date")
	ErrInvalidStatus                = errors.New("status must be Accepted or Rejected")
	ErrAllotmentExceeded            = errors.New("leave allotment exceeded")
	ErrCommentLocked                = errors.New("comment is locked once a manager's leave is accepted")
	ErrUnauthorized                 = errors.New("unauthorized to access this leave request")
	ErrCannotReviewOwnLeave         = errors.New("you cannot review your own leave request")
)

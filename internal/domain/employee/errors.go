package employee

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrBadgeIDExists           = errors.New("badge identifier already exists")
	ErrEmailExists             = errors.New("email already registered")
	ErrInvalidBadgeID          = errors.New("invalid badge identifier format")
	ErrInvalidPhoneNumber      = errors.New("phone number must be 10-15 digits")
	ErrInvalidGender           = errors.New("gender must be Male, Female or Other")
	ErrFutureDateNotAllowed    = errors.New("date cannot be in the future")
	ErrUnauthorized            = errors.New("unauthorized to access this employee")
	ErrEmployeeAlreadyInactive = errors.New("employee is already inactive")
	ErrCannotDeleteSelf        = errors.New("cannot delete your own employee record")
	ErrManagerNotFound         = errors.New("reporting manager not found")
	ErrSelfReporting           = errors.New("employee cannot report to themselves")
)

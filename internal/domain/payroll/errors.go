package payroll

import "errors"

var (
	ErrPayslipNotFound  = errors.New("payslip not found")
	ErrPayslipExists    = errors.New("payslip already exists for this pay date")
	ErrUnauthorized     = errors.New("unauthorized to access this payslip")
	ErrEmployeeInactive = errors.New("cannot generate a payslip for an inactive employee")
)

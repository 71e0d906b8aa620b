package payroll

import "github.com/cmlabs-hris/hris-ledger/internal/domain/ledger"

// LedgerRepository stores one payslip document per employee.
type LedgerRepository interface {
	ledger.Repository[Slip]
}

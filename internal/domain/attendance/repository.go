package attendance

import "github.com/cmlabs-hris/hris-ledger/internal/domain/ledger"

// LedgerRepository stores one attendance document per employee.
type LedgerRepository interface {
	ledger.Repository[Entry]
}

package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/ledger"
)

type LeaveTypeRepository interface {
	Create(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	GetByID(ctx context.Context, id string) (LeaveType, error)
	List(ctx context.Context) ([]LeaveType, error)
	Update(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	Delete(ctx context.Context, id string) error
}

// LedgerRepository stores one leave document per employee.
type LedgerRepository interface {
	ledger.Repository[Entry]
}

package leave

import "context"

type LeaveService interface {
	// Leave type catalogue
	CreateType(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetType(ctx context.Context, id string) (LeaveTypeResponse, error)
	ListTypes(ctx context.Context) ([]LeaveTypeResponse, error)
	UpdateType(ctx context.Context, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	DeleteType(ctx context.Context, id string) error

	// Ledger
	Submit(ctx context.Context, req SubmitLeaveRequest) (SubmitLeaveResponse, error)
	SetStatus(ctx context.Context, req UpdateStatusRequest) (LeaveEntryResponse, error)
	SetComment(ctx context.Context, req UpdateCommentRequest) (LeaveEntryResponse, error)
	Delete(ctx context.Context, req DeleteLeaveRequest) error
	UsedDays(ctx context.Context, employeeID string, leaveTypeID string) (int, error)
	Balances(ctx context.Context, employeeID string) ([]BalanceResponse, error)
	ListForEmployee(ctx context.Context, employeeID string) ([]LeaveEntryResponse, error)
	ListForManagerTeam(ctx context.Context, managerID string, filter LeaveFilter) ([]LeaveEntryResponse, error)
	ListAll(ctx context.Context, filter LeaveFilter) ([]LeaveEntryResponse, error)
}

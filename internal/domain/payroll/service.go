package payroll

import "context"

type PayrollService interface {
	Generate(ctx context.Context, req GenerateRequest) (SlipResponse, error)
	GenerateBulk(ctx context.Context, req BulkGenerateRequest) (BulkGenerateResponse, error)
	Edit(ctx context.Context, req EditRequest) (SlipResponse, error)
	Delete(ctx context.Context, req DeleteRequest) error
	ListForEmployee(ctx context.Context, employeeID string) ([]SlipResponse, error)
	ListForManagerTeam(ctx context.Context, managerID string) ([]SlipResponse, error)
}

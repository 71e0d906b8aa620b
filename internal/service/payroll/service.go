package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type PayrollServiceImpl struct {
	payroll.LedgerRepository
	employee.EmployeeRepository
	loc *time.Location
	now func() time.Time
	// bulkConcurrency bounds the ledger writes in flight during bulk generation.
	bulkConcurrency int
}

func NewPayrollService(ledgerRepository payroll.LedgerRepository, employeeRepository employee.EmployeeRepository, loc *time.Location, bulkConcurrency int) payroll.PayrollService {
	return &PayrollServiceImpl{
		LedgerRepository:   ledgerRepository,
		EmployeeRepository: employeeRepository,
		loc:                loc,
		now:                time.Now,
		bulkConcurrency:    bulkConcurrency,
	}
}

func requireAdmin(ctx context.Context) error {
	id, err := identity.FromContext(ctx)
	if err != nil {
		return err
	}
	if !id.IsAdmin() {
		return user.ErrAdminPrivilegeRequired
	}
	return nil
}

func (s *PayrollServiceImpl) target(ctx context.Context, employeeID string, allow func(identity.Identity, employee.Employee) bool) (employee.Employee, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, err
	}
	if _, err := identity.Check(ctx, emp, allow); err != nil {
		if errors.Is(err, identity.ErrForbidden) {
			return employee.Employee{}, payroll.ErrUnauthorized
		}
		return employee.Employee{}, err
	}
	return emp, nil
}

func (s *PayrollServiceImpl) save(ctx context.Context, doc payroll.Ledger) error {
	if _, err := s.LedgerRepository.Save(ctx, doc); err != nil {
		return fmt.Errorf("failed to save payslip ledger of %s: %w", doc.EmployeeID, err)
	}
	return nil
}

// Generate implements payroll.PayrollService.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GenerateRequest) (payroll.SlipResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SlipResponse{}, err
	}

	emp, err := s.target(ctx, req.EmployeeID, identity.Identity.CanManagePayroll)
	if err != nil {
		return payroll.SlipResponse{}, err
	}
	return s.generate(ctx, emp, req)
}

// generate adds one slip to emp's ledger. Callers have validated req.
func (s *PayrollServiceImpl) generate(ctx context.Context, emp employee.Employee, req payroll.GenerateRequest) (payroll.SlipResponse, error) {
	if !emp.IsActive() {
		return payroll.SlipResponse{}, payroll.ErrEmployeeInactive
	}

	doc, err := s.LedgerRepository.Get(ctx, emp.ID)
	if err != nil {
		return payroll.SlipResponse{}, fmt.Errorf("failed to get payslip ledger: %w", err)
	}

	now := s.now().In(s.loc)
	slips, slip, err := payroll.Slips(doc.Entries).Add(payroll.Slip{
		ID:            uuid.Must(uuid.NewV7()).String(),
		PayDate:       req.PayDate,
		BasicSalary:   emp.BasicSalary,
		Allowances:    payroll.OrZero(req.Allowances),
		Deductions:    payroll.OrZero(req.Deductions),
		PaymentMethod: req.PaymentMethod,
		Status:        payroll.Status(req.Status),
		BankName:      emp.BankName,
		AccountNumber: emp.AccountNumber,
		IFSC:          emp.IFSC,
		BankBranch:    emp.BankBranch,
		GeneratedAt:   now,
		UpdatedAt:     now,
		Snapshot:      emp.Snapshot(),
	})
	if err != nil {
		return payroll.SlipResponse{}, err
	}

	doc.Entries = slips
	if err := s.save(ctx, doc); err != nil {
		return payroll.SlipResponse{}, err
	}
	return slip.ToResponse(emp.ID, s.loc), nil
}

// GenerateBulk implements payroll.PayrollService. Each employee is generated
// independently; one failure does not stop the others.
func (s *PayrollServiceImpl) GenerateBulk(ctx context.Context, req payroll.BulkGenerateRequest) (payroll.BulkGenerateResponse, error) {
	if err := requireAdmin(ctx); err != nil {
		return payroll.BulkGenerateResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.BulkGenerateResponse{}, err
	}

	var emps []employee.Employee
	if len(req.EmployeeIDs) == 0 {
		active, err := s.EmployeeRepository.GetActive(ctx)
		if err != nil {
			return payroll.BulkGenerateResponse{}, fmt.Errorf("failed to get active employees: %w", err)
		}
		emps = active
	} else {
		for _, id := range req.EmployeeIDs {
			emps = append(emps, employee.Employee{ID: id})
		}
	}

	type result struct {
		slip *payroll.SlipResponse
		err  error
	}
	results := make([]result, len(emps))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.bulkConcurrency)
	for i, emp := range emps {
		i, emp := i, emp
		g.Go(func() error {
			if len(req.EmployeeIDs) > 0 {
				loaded, err := s.EmployeeRepository.GetByID(gCtx, emp.ID)
				if err != nil {
					results[i].err = err
					return nil
				}
				emp = loaded
			}
			slip, err := s.generate(gCtx, emp, req.ForEmployee(emp.ID))
			if err != nil {
				results[i].err = err
				return nil
			}
			results[i].slip = &slip
			return nil
		})
	}
	// Workers never return an error, failures are collected per employee.
	_ = g.Wait()

	resp := payroll.BulkGenerateResponse{
		Generated: []payroll.SlipResponse{},
		Failed:    []payroll.BulkFailure{},
	}
	for i, r := range results {
		if r.err != nil {
			slog.Warn("payslip generation failed", "employee_id", emps[i].ID, "pay_date", req.PayDate, "error", r.err)
			resp.Failed = append(resp.Failed, payroll.BulkFailure{EmployeeID: emps[i].ID, Error: r.err.Error()})
			continue
		}
		resp.Generated = append(resp.Generated, *r.slip)
	}
	return resp, nil
}

// Edit implements payroll.PayrollService.
func (s *PayrollServiceImpl) Edit(ctx context.Context, req payroll.EditRequest) (payroll.SlipResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SlipResponse{}, err
	}

	emp, err := s.target(ctx, req.EmployeeID, identity.Identity.CanManagePayroll)
	if err != nil {
		return payroll.SlipResponse{}, err
	}
	doc, err := s.LedgerRepository.Get(ctx, emp.ID)
	if err != nil {
		return payroll.SlipResponse{}, fmt.Errorf("failed to get payslip ledger: %w", err)
	}

	slips, slip, err := payroll.Slips(doc.Entries).Apply(req.SlipID, req.ToEdit(), s.now().In(s.loc))
	if err != nil {
		return payroll.SlipResponse{}, err
	}
	doc.Entries = slips
	if err := s.save(ctx, doc); err != nil {
		return payroll.SlipResponse{}, err
	}
	return slip.ToResponse(emp.ID, s.loc), nil
}

// Delete implements payroll.PayrollService.
func (s *PayrollServiceImpl) Delete(ctx context.Context, req payroll.DeleteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	emp, err := s.target(ctx, req.EmployeeID, identity.Identity.CanManagePayroll)
	if err != nil {
		return err
	}
	doc, err := s.LedgerRepository.Get(ctx, emp.ID)
	if err != nil {
		return fmt.Errorf("failed to get payslip ledger: %w", err)
	}
	slips, removed := payroll.Slips(doc.Entries).RemoveByDate(req.PayDate)
	if !removed {
		return nil
	}
	doc.Entries = slips
	return s.save(ctx, doc)
}

// ListForEmployee implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListForEmployee(ctx context.Context, employeeID string) ([]payroll.SlipResponse, error) {
	emp, err := s.target(ctx, employeeID, identity.Identity.CanAccess)
	if err != nil {
		return nil, err
	}
	doc, err := s.LedgerRepository.Get(ctx, emp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payslip ledger: %w", err)
	}

	slips := payroll.Slips(doc.Entries).NewestFirst()
	resp := make([]payroll.SlipResponse, 0, len(slips))
	for _, slip := range slips {
		resp = append(resp, slip.ToResponse(emp.ID, s.loc))
	}
	return resp, nil
}

// ListForManagerTeam implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListForManagerTeam(ctx context.Context, managerID string) ([]payroll.SlipResponse, error) {
	manager, err := s.target(ctx, managerID, identity.Identity.CanWrite)
	if err != nil {
		return nil, err
	}

	reports, err := s.EmployeeRepository.GetByReportingManager(ctx, manager.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reportees: %w", err)
	}
	ids := make([]string, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ID)
	}

	docs, err := s.LedgerRepository.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get team payslip ledgers: %w", err)
	}

	var resp []payroll.SlipResponse
	for _, doc := range docs {
		for _, slip := range doc.Entries {
			resp = append(resp, slip.ToResponse(doc.EmployeeID, s.loc))
		}
	}
	sort.SliceStable(resp, func(i, j int) bool {
		if resp[i].PayDate != resp[j].PayDate {
			return resp[i].PayDate > resp[j].PayDate
		}
		return resp[i].BadgeID < resp[j].BadgeID
	})
	if resp == nil {
		resp = []payroll.SlipResponse{}
	}
	return resp, nil
}

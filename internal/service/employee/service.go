package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/master"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

// Ledgers groups the per-employee documents removed together with the employee.
type Ledgers struct {
	Attendance attendance.LedgerRepository
	Leave      leave.LedgerRepository
	Payslips   payroll.LedgerRepository
}

type EmployeeServiceImpl struct {
	employee.EmployeeRepository
	badges    employee.BadgeCounterRepository
	users     user.UserRepository
	catalogue master.CatalogueRepository
	ledgers   Ledgers
	txManager database.TxManager
	resolver  identity.Resolver
}

func NewEmployeeService(
	employeeRepository employee.EmployeeRepository,
	badges employee.BadgeCounterRepository,
	users user.UserRepository,
	catalogue master.CatalogueRepository,
	ledgers Ledgers,
	txManager database.TxManager,
	resolver identity.Resolver,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		EmployeeRepository: employeeRepository,
		badges:             badges,
		users:              users,
		catalogue:          catalogue,
		ledgers:            ledgers,
		txManager:          txManager,
		resolver:           resolver,
	}
}

func requireAdmin(ctx context.Context) (identity.Identity, error) {
	id, err := identity.FromContext(ctx)
	if err != nil {
		return identity.Identity{}, err
	}
	if !id.IsAdmin() {
		return identity.Identity{}, user.ErrAdminPrivilegeRequired
	}
	return id, nil
}

func (s *EmployeeServiceImpl) authorize(ctx context.Context, emp employee.Employee) error {
	if _, err := identity.Check(ctx, emp, identity.Identity.CanAccess); err != nil {
		if errors.Is(err, identity.ErrForbidden) {
			return employee.ErrUnauthorized
		}
		return err
	}
	return nil
}

// checkCatalogues verifies every filled-in work attribute names an existing
// catalogue item.
func (s *EmployeeServiceImpl) checkCatalogues(ctx context.Context, w employee.WorkInfo) error {
	fields := []struct {
		field string
		kind  master.Kind
		value string
	}{
		{"work.department", master.KindDepartment, w.Department},
		{"work.job_position", master.KindJobPosition, w.JobPosition},
		{"work.job_role", master.KindJobRole, w.JobRole},
		{"work.work_type", master.KindWorkType, w.WorkType},
		{"work.employment_type", master.KindEmploymentType, w.EmploymentType},
		{"work.shift", master.KindShift, w.Shift},
	}

	var errs validator.ValidationErrors
	for _, f := range fields {
		if validator.IsEmpty(f.value) {
			continue
		}
		exists, err := s.catalogue.ExistsByName(ctx, f.kind, f.value)
		if err != nil {
			return fmt.Errorf("failed to check %s catalogue: %w", f.kind, err)
		}
		if !exists {
			errs = append(errs, validator.ValidationError{Field: f.field, Message: fmt.Sprintf("%q is not in the %s catalogue", f.value, f.kind)})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *EmployeeServiceImpl) checkManager(ctx context.Context, managerID *string) error {
	if managerID == nil {
		return nil
	}
	if _, err := s.EmployeeRepository.GetByID(ctx, *managerID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.ErrManagerNotFound
		}
		return err
	}
	return nil
}

// apply copies the sub-forms onto emp. Dates were validated by the caller.
func apply(emp *employee.Employee, p employee.PersonalInfo, w employee.WorkInfo, b employee.BankInfo) {
	emp.FirstName = strings.TrimSpace(p.FirstName)
	emp.LastName = strings.TrimSpace(p.LastName)
	emp.Email = strings.ToLower(strings.TrimSpace(p.Email))
	emp.PhoneNumber = p.PhoneNumber
	emp.Address = p.Address
	emp.Gender = employee.Gender(p.Gender)
	emp.DOB = parseDatePtr(p.DOB)

	emp.Department = w.Department
	emp.JobPosition = w.JobPosition
	emp.JobRole = w.JobRole
	emp.JobLevel = w.JobLevel
	emp.Shift = w.Shift
	emp.WorkType = w.WorkType
	emp.EmploymentType = w.EmploymentType
	emp.ReportingManagerID = w.ReportingManagerID
	emp.JoiningDate, _ = time.Parse(ledger.DateLayout, w.JoiningDate)
	emp.EndingDate = parseDatePtr(w.EndingDate)
	emp.BasicSalary = w.BasicSalary

	emp.BankName = b.BankName
	emp.AccountNumber = b.AccountNumber
	emp.IFSC = strings.ToUpper(b.IFSC)
	emp.BankBranch = b.BankBranch
}

func parseDatePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(ledger.DateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := s.checkCatalogues(ctx, req.Work); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := s.checkManager(ctx, req.Work.ReportingManagerID); err != nil {
		return employee.EmployeeResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	newEmployee := employee.Employee{Status: employee.StatusActive}
	apply(&newEmployee, req.Personal, req.Work, req.Bank)

	var created employee.Employee
	err = s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		n, err := s.badges.Next(txCtx)
		if err != nil {
			return fmt.Errorf("failed to allocate badge: %w", err)
		}
		newEmployee.BadgeID = employee.FormatBadgeID(n)

		created, err = s.EmployeeRepository.Create(txCtx, newEmployee)
		if err != nil {
			return err
		}

		employeeID := created.ID
		if _, err := s.users.Create(txCtx, user.User{
			EmployeeID:   &employeeID,
			Email:        created.Email,
			PasswordHash: &hashStr,
			Role:         user.Role(req.Role),
		}); err != nil {
			if errors.Is(err, user.ErrUserEmailExists) {
				return employee.ErrEmailExists
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("employee created", "employee_id", created.ID, "badge_id", created.BadgeID)
	return created.ToResponse(), nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := s.authorize(ctx, emp); err != nil {
		return employee.EmployeeResponse{}, err
	}
	return emp.ToResponse(), nil
}

// GetEmployeeByBadge implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployeeByBadge(ctx context.Context, badgeID string) (employee.EmployeeResponse, error) {
	if !validator.IsValidBadgeID(badgeID) {
		return employee.EmployeeResponse{}, employee.ErrInvalidBadgeID
	}
	emp, err := s.resolver.ResolveBadge(ctx, badgeID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := s.authorize(ctx, emp); err != nil {
		return employee.EmployeeResponse{}, err
	}
	return emp.ToResponse(), nil
}

// UpdateEmployee implements employee.EmployeeService. The badge and status
// are not editable here.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := s.checkCatalogues(ctx, req.Work); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := s.checkManager(ctx, req.Work.ReportingManagerID); err != nil {
		return employee.EmployeeResponse{}, err
	}

	previousEmail := emp.Email
	apply(&emp, req.Personal, req.Work, req.Bank)

	err = s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.EmployeeRepository.Update(txCtx, emp); err != nil {
			return err
		}
		if emp.Email == previousEmail {
			return nil
		}
		u, err := s.users.GetByEmployeeID(txCtx, emp.ID)
		if errors.Is(err, user.ErrUserNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if err := s.users.UpdateEmail(txCtx, u.ID, emp.Email); err != nil {
			if errors.Is(err, user.ErrUserEmailExists) {
				return employee.ErrEmailExists
			}
			return fmt.Errorf("failed to update user email: %w", err)
		}
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	s.resolver.Invalidate(ctx, emp)

	updated, err := s.EmployeeRepository.GetByID(ctx, emp.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return updated.ToResponse(), nil
}

// UpdateOwnProfile implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateOwnProfile(ctx context.Context, req employee.UpdateProfileRequest) (employee.EmployeeResponse, error) {
	id, err := identity.FromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if id.Employee == nil {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, id.Employee.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if req.PhoneNumber != nil {
		emp.PhoneNumber = *req.PhoneNumber
	}
	if req.Address != nil {
		emp.Address = req.Address
	}
	if req.DOB != nil {
		emp.DOB = parseDatePtr(req.DOB)
	}
	if req.Gender != nil {
		emp.Gender = employee.Gender(*req.Gender)
	}
	if req.Bank != nil {
		emp.BankName = req.Bank.BankName
		emp.AccountNumber = req.Bank.AccountNumber
		emp.IFSC = strings.ToUpper(req.Bank.IFSC)
		emp.BankBranch = req.Bank.BankBranch
	}

	if err := s.EmployeeRepository.Update(ctx, emp); err != nil {
		return employee.EmployeeResponse{}, err
	}
	s.resolver.Invalidate(ctx, emp)
	return emp.ToResponse(), nil
}

// InactivateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) InactivateEmployee(ctx context.Context, req employee.InactivateEmployeeRequest) (employee.EmployeeResponse, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !emp.IsActive() {
		return employee.EmployeeResponse{}, employee.ErrEmployeeAlreadyInactive
	}
	if err := s.EmployeeRepository.Inactivate(ctx, emp.ID, req.EndingDate); err != nil {
		return employee.EmployeeResponse{}, err
	}
	s.resolver.Invalidate(ctx, emp)

	updated, err := s.EmployeeRepository.GetByID(ctx, emp.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return updated.ToResponse(), nil
}

// DeleteEmployee implements employee.EmployeeService. The badge number is not
// returned to the counter.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	caller, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if caller.EmployeeID() == id {
		return employee.ErrCannotDeleteSelf
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.ledgers.Attendance.Delete(txCtx, emp.ID); err != nil {
			return fmt.Errorf("failed to delete attendance ledger: %w", err)
		}
		if err := s.ledgers.Leave.Delete(txCtx, emp.ID); err != nil {
			return fmt.Errorf("failed to delete leave ledger: %w", err)
		}
		if err := s.ledgers.Payslips.Delete(txCtx, emp.ID); err != nil {
			return fmt.Errorf("failed to delete payslip ledger: %w", err)
		}
		if err := s.users.DeleteByEmployeeID(txCtx, emp.ID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return s.EmployeeRepository.Delete(txCtx, emp.ID)
	})
	if err != nil {
		return err
	}

	s.resolver.Invalidate(ctx, emp)
	slog.Info("employee deleted", "employee_id", emp.ID, "badge_id", emp.BadgeID)
	return nil
}

// ListEmployees implements employee.EmployeeService. Managers only see their
// direct reports; employees may not list.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	id, err := identity.FromContext(ctx)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}
	switch {
	case id.IsAdmin():
	case id.Role == user.RoleManager && id.Employee != nil:
		managerID := id.Employee.ID
		filter.ReportingManagerID = &managerID
	default:
		return employee.ListEmployeeResponse{}, employee.ErrUnauthorized
	}

	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	emps, total, err := s.EmployeeRepository.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	resp := employee.ListEmployeeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Employees:  make([]employee.EmployeeResponse, 0, len(emps)),
	}
	for _, e := range emps {
		resp.Employees = append(resp.Employees, e.ToResponse())
	}

	start := (filter.Page-1)*filter.Limit + 1
	end := start + len(emps) - 1
	if len(emps) == 0 {
		start, end = 0, 0
	}
	resp.Showing = fmt.Sprintf("%d-%d of %d", start, end, total)
	return resp, nil
}

// ListReportees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListReportees(ctx context.Context, managerID string) ([]employee.EmployeeResponse, error) {
	manager, err := s.EmployeeRepository.GetByID(ctx, managerID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, manager); err != nil {
		return nil, err
	}

	reports, err := s.EmployeeRepository.GetByReportingManager(ctx, manager.ID)
	if err != nil {
		return nil, err
	}
	resp := make([]employee.EmployeeResponse, 0, len(reports))
	for _, r := range reports {
		resp = append(resp, r.ToResponse())
	}
	return resp, nil
}

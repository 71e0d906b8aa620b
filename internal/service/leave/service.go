package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/google/uuid"
)

type LeaveServiceImpl struct {
	leave.LeaveTypeRepository
	leave.LedgerRepository
	employee.EmployeeRepository
	user.UserRepository
	enforceAllotment bool
	loc              *time.Location
	now              func() time.Time
}

func NewLeaveService(
	leaveTypeRepository leave.LeaveTypeRepository,
	ledgerRepository leave.LedgerRepository,
	employeeRepository employee.EmployeeRepository,
	userRepository user.UserRepository,
	enforceAllotment bool,
	loc *time.Location,
) leave.LeaveService {
	return &LeaveServiceImpl{
		LeaveTypeRepository: leaveTypeRepository,
		LedgerRepository:    ledgerRepository,
		EmployeeRepository:  employeeRepository,
		UserRepository:      userRepository,
		enforceAllotment:    enforceAllotment,
		loc:                 loc,
		now:                 time.Now,
	}
}

func (l *LeaveServiceImpl) requireAdmin(ctx context.Context) error {
	id, err := identity.FromContext(ctx)
	if err != nil {
		return err
	}
	if !id.IsAdmin() {
		return user.ErrAdminPrivilegeRequired
	}
	return nil
}

// target loads the employee and checks the caller against allow.
func (l *LeaveServiceImpl) target(ctx context.Context, employeeID string, allow func(identity.Identity, employee.Employee) bool) (identity.Identity, employee.Employee, error) {
	emp, err := l.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return identity.Identity{}, employee.Employee{}, err
	}
	id, err := identity.Check(ctx, emp, allow)
	if err != nil {
		if errors.Is(err, identity.ErrForbidden) {
			return identity.Identity{}, employee.Employee{}, leave.ErrUnauthorized
		}
		return identity.Identity{}, employee.Employee{}, err
	}
	return id, emp, nil
}

func (l *LeaveServiceImpl) entries(ctx context.Context, employeeID string) (leave.Ledger, error) {
	doc, err := l.LedgerRepository.Get(ctx, employeeID)
	if err != nil {
		return leave.Ledger{}, fmt.Errorf("failed to get leave ledger: %w", err)
	}
	return doc, nil
}

func (l *LeaveServiceImpl) save(ctx context.Context, doc leave.Ledger) error {
	if _, err := l.LedgerRepository.Save(ctx, doc); err != nil {
		return fmt.Errorf("failed to save leave ledger of %s: %w", doc.EmployeeID, err)
	}
	return nil
}

// ========================================
// LEAVE TYPES
// ========================================

// CreateType implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateType(ctx context.Context, req leave.CreateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	if err := l.requireAdmin(ctx); err != nil {
		return leave.LeaveTypeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	created, err := l.LeaveTypeRepository.Create(ctx, leave.LeaveType{
		Name:        req.Name,
		Icon:        leave.Icon(req.Name),
		PaymentType: leave.PaymentType(req.PaymentType),
		TotalDays:   req.TotalDays,
	})
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}
	return created.ToResponse(), nil
}

// GetType implements leave.LeaveService.
func (l *LeaveServiceImpl) GetType(ctx context.Context, id string) (leave.LeaveTypeResponse, error) {
	lt, err := l.LeaveTypeRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}
	return lt.ToResponse(), nil
}

// ListTypes implements leave.LeaveService.
func (l *LeaveServiceImpl) ListTypes(ctx context.Context) ([]leave.LeaveTypeResponse, error) {
	types, err := l.LeaveTypeRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]leave.LeaveTypeResponse, 0, len(types))
	for _, lt := range types {
		resp = append(resp, lt.ToResponse())
	}
	return resp, nil
}

// UpdateType implements leave.LeaveService. Existing ledger entries keep the
// name they were submitted with.
func (l *LeaveServiceImpl) UpdateType(ctx context.Context, req leave.UpdateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	if err := l.requireAdmin(ctx); err != nil {
		return leave.LeaveTypeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	lt, err := l.LeaveTypeRepository.GetByID(ctx, req.ID)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}
	if req.Name != nil {
		lt.Name = *req.Name
		lt.Icon = leave.Icon(lt.Name)
	}
	if req.PaymentType != nil {
		lt.PaymentType = leave.PaymentType(*req.PaymentType)
	}
	if req.TotalDays != nil {
		lt.TotalDays = *req.TotalDays
	}

	updated, err := l.LeaveTypeRepository.Update(ctx, lt)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}
	return updated.ToResponse(), nil
}

// DeleteType implements leave.LeaveService.
func (l *LeaveServiceImpl) DeleteType(ctx context.Context, id string) error {
	if err := l.requireAdmin(ctx); err != nil {
		return err
	}
	return l.LeaveTypeRepository.Delete(ctx, id)
}

// ========================================
// LEDGER
// ========================================

// Submit implements leave.LeaveService.
func (l *LeaveServiceImpl) Submit(ctx context.Context, req leave.SubmitLeaveRequest) (leave.SubmitLeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.SubmitLeaveResponse{}, err
	}
	_, emp, err := l.target(ctx, req.EmployeeID, identity.Identity.CanWrite)
	if err != nil {
		return leave.SubmitLeaveResponse{}, err
	}

	lt, err := l.LeaveTypeRepository.GetByID(ctx, req.LeaveTypeID)
	if err != nil {
		return leave.SubmitLeaveResponse{}, err
	}

	requested, err := leave.RequestedDays(req.FromDate, req.ToDate)
	if err != nil {
		return leave.SubmitLeaveResponse{}, err
	}

	doc, err := l.entries(ctx, emp.ID)
	if err != nil {
		return leave.SubmitLeaveResponse{}, err
	}

	used := leave.Entries(doc.Entries).UsedDays(lt.ID)
	exceeded := leave.ExceedsAllotment(lt, used, requested)
	if exceeded {
		if l.enforceAllotment {
			return leave.SubmitLeaveResponse{}, leave.ErrAllotmentExceeded
		}
		slog.Warn("leave allotment exceeded",
			"employee_id", emp.ID,
			"leave_type", lt.Name,
			"total_days", lt.TotalDays,
			"used_days", used,
			"requested_days", requested,
		)
	}

	isManager := false
	if u, err := l.UserRepository.GetByEmployeeID(ctx, emp.ID); err == nil {
		isManager = u.Role == user.RoleManager
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return leave.SubmitLeaveResponse{}, fmt.Errorf("failed to get user of employee %s: %w", emp.ID, err)
	}

	entry := leave.Entry{
		ID:            uuid.Must(uuid.NewV7()).String(),
		LeaveTypeID:   lt.ID,
		LeaveType:     lt.Name,
		PaymentType:   string(lt.PaymentType),
		FromDate:      req.FromDate,
		ToDate:        req.ToDate,
		RequestedDays: requested,
		Status:        leave.StatusPending,
		AppliedAt:     l.now().In(l.loc),
		IsManager:     isManager,
		Snapshot:      emp.Snapshot(),
	}
	if req.Comment != nil {
		entry.Comment = *req.Comment
	}

	doc.Entries = append(doc.Entries, entry)
	if err := l.save(ctx, doc); err != nil {
		return leave.SubmitLeaveResponse{}, err
	}

	resp := leave.SubmitLeaveResponse{
		Entry:             entry.ToResponse(emp.ID, l.loc),
		AllotmentExceeded: exceeded,
	}
	if exceeded {
		resp.Warning = fmt.Sprintf("%s allotment exceeded: %d of %d days already used, %d requested",
			lt.Name, used, lt.TotalDays, requested)
	}
	return resp, nil
}

// SetStatus implements leave.LeaveService.
func (l *LeaveServiceImpl) SetStatus(ctx context.Context, req leave.UpdateStatusRequest) (leave.LeaveEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveEntryResponse{}, err
	}
	emp, err := l.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveEntryResponse{}, err
	}
	id, err := identity.FromContext(ctx)
	if err != nil {
		return leave.LeaveEntryResponse{}, err
	}
	if !id.CanReview(emp) {
		if id.IsSelf(emp) {
			return leave.LeaveEntryResponse{}, leave.ErrCannotReviewOwnLeave
		}
		return leave.LeaveEntryResponse{}, leave.ErrUnauthorized
	}

	doc, err := l.entries(ctx, emp.ID)
	if err != nil {
		return leave.LeaveEntryResponse{}, err
	}

	reviewer := id.Email
	if id.Employee != nil {
		reviewer = employee.DisplayLabel(id.Employee.FirstName, id.Employee.BadgeID)
	}
	entries, entry, err := leave.Entries(doc.Entries).SetStatus(req.EntryID, leave.Status(req.Status), reviewer, l.now().In(l.loc))
	if err != nil {
		return leave.LeaveEntryResponse{}, err
	}
	doc.Entries = entries
	if err := l.save(ctx, doc); err != nil {
		return leave.LeaveEntryResponse{}, err
	}
	return entry.ToResponse(emp.ID, l.loc), nil
}

// SetComment implements leave.LeaveService. Reviewers and the owner may comment.
func (l *LeaveServiceImpl) SetComment(ctx context.Context, req leave.UpdateCommentRequest) (leave.LeaveEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveEntryResponse{}, err
	}
	_, emp, err := l.target(ctx, req.EmployeeID, func(id identity.Identity, emp employee.Employee) bool {
		return id.IsSelf(emp) || id.CanReview(emp)
	})
	if err != nil {
		return leave.LeaveEntryResponse{}, err
	}

	doc, err := l.entries(ctx, emp.ID)
	if err != nil {
		return leave.LeaveEntryResponse{}, err
	}

	entries, entry, err := leave.Entries(doc.Entries).SetComment(req.EntryID, req.Comment)
	if err != nil {
		return leave.LeaveEntryResponse{}, err
	}
	doc.Entries = entries
	if err := l.save(ctx, doc); err != nil {
		return leave.LeaveEntryResponse{}, err
	}
	return entry.ToResponse(emp.ID, l.loc), nil
}

// Delete implements leave.LeaveService. Removing the last entry drops the
// whole ledger document.
func (l *LeaveServiceImpl) Delete(ctx context.Context, req leave.DeleteLeaveRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, emp, err := l.target(ctx, req.EmployeeID, identity.Identity.CanWrite)
	if err != nil {
		return err
	}

	doc, err := l.entries(ctx, emp.ID)
	if err != nil {
		return err
	}

	entries, removed := leave.Entries(doc.Entries).Remove(req.EntryID)
	if !removed {
		return nil
	}
	doc.Entries = entries
	return l.save(ctx, doc)
}

// UsedDays implements leave.LeaveService.
func (l *LeaveServiceImpl) UsedDays(ctx context.Context, employeeID string, leaveTypeID string) (int, error) {
	_, emp, err := l.target(ctx, employeeID, identity.Identity.CanAccess)
	if err != nil {
		return 0, err
	}
	doc, err := l.entries(ctx, emp.ID)
	if err != nil {
		return 0, err
	}
	return leave.Entries(doc.Entries).UsedDays(leaveTypeID), nil
}

// Balances implements leave.LeaveService.
func (l *LeaveServiceImpl) Balances(ctx context.Context, employeeID string) ([]leave.BalanceResponse, error) {
	_, emp, err := l.target(ctx, employeeID, identity.Identity.CanAccess)
	if err != nil {
		return nil, err
	}

	types, err := l.LeaveTypeRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := l.entries(ctx, emp.ID)
	if err != nil {
		return nil, err
	}

	balances := leave.Balances(types, doc.Entries)
	resp := make([]leave.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		resp = append(resp, b.ToResponse())
	}
	return resp, nil
}

// ListForEmployee implements leave.LeaveService.
func (l *LeaveServiceImpl) ListForEmployee(ctx context.Context, employeeID string) ([]leave.LeaveEntryResponse, error) {
	_, emp, err := l.target(ctx, employeeID, identity.Identity.CanAccess)
	if err != nil {
		return nil, err
	}
	doc, err := l.entries(ctx, emp.ID)
	if err != nil {
		return nil, err
	}
	return l.render([]leave.Ledger{doc}, leave.LeaveFilter{}), nil
}

// ListForManagerTeam implements leave.LeaveService.
func (l *LeaveServiceImpl) ListForManagerTeam(ctx context.Context, managerID string, filter leave.LeaveFilter) ([]leave.LeaveEntryResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	_, manager, err := l.target(ctx, managerID, identity.Identity.CanWrite)
	if err != nil {
		return nil, err
	}

	reports, err := l.EmployeeRepository.GetByReportingManager(ctx, manager.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reportees: %w", err)
	}
	ids := make([]string, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ID)
	}

	docs, err := l.LedgerRepository.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get team leave ledgers: %w", err)
	}
	return l.render(docs, filter), nil
}

// ListAll implements leave.LeaveService.
func (l *LeaveServiceImpl) ListAll(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveEntryResponse, error) {
	if err := l.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	docs, err := l.LedgerRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave ledgers: %w", err)
	}
	return l.render(docs, filter), nil
}

// render flattens ledgers into responses, most recently applied first.
func (l *LeaveServiceImpl) render(docs []leave.Ledger, filter leave.LeaveFilter) []leave.LeaveEntryResponse {
	type row struct {
		entry      leave.Entry
		employeeID string
	}
	var rows []row
	for _, doc := range docs {
		for _, e := range doc.Entries {
			if filter.Matches(e) {
				rows = append(rows, row{entry: e, employeeID: doc.EmployeeID})
			}
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].entry.AppliedAt.After(rows[j].entry.AppliedAt)
	})

	resp := make([]leave.LeaveEntryResponse, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, r.entry.ToResponse(r.employeeID, l.loc))
	}
	return resp
}

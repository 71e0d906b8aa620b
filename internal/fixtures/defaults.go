package fixtures

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/master"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

// ==========================================
// DEFAULT CATALOGUES
// ==========================================

// DefaultCatalogues returns the names seeded into each empty catalogue.
func DefaultCatalogues() map[master.Kind][]string {
	return map[master.Kind][]string{
		master.KindDepartment:     {"Engineering", "Human Resources", "Finance", "Operations", "Sales"},
		master.KindJobPosition:    {"Director", "Manager", "Team Lead", "Senior", "Junior", "Intern"},
		master.KindJobRole:        {"Developer", "Tester", "Designer", "Accountant", "Recruiter"},
		master.KindWorkType:       {"Office", "Remote", "Hybrid"},
		master.KindEmploymentType: {"Permanent", "Contract", "Probation", "Internship"},
		master.KindShift:          {"Day", "Night", "General"},
	}
}

// ==========================================
// DEFAULT LEAVE TYPES
// ==========================================

// DefaultLeaveTypes returns the yearly allotments seeded when no leave type
// exists. TotalDays 0 is uncapped.
func DefaultLeaveTypes() []leave.LeaveType {
	types := []leave.LeaveType{
		{Name: "Casual Leave", PaymentType: leave.Paid, TotalDays: 12},
		{Name: "Sick Leave", PaymentType: leave.Paid, TotalDays: 10},
		{Name: "Earned Leave", PaymentType: leave.Paid, TotalDays: 15},
		{Name: "Maternity Leave", PaymentType: leave.Paid, TotalDays: 182},
		{Name: "Paternity Leave", PaymentType: leave.Paid, TotalDays: 5},
		{Name: "Unpaid Leave", PaymentType: leave.Unpaid, TotalDays: 0},
	}
	for i := range types {
		types[i].Icon = leave.Icon(types[i].Name)
	}
	return types
}

// ==========================================
// SEEDER
// ==========================================

type Seeder struct {
	catalogue  master.CatalogueRepository
	leaveTypes leave.LeaveTypeRepository
	users      user.UserRepository
}

func NewSeeder(catalogue master.CatalogueRepository, leaveTypes leave.LeaveTypeRepository, users user.UserRepository) *Seeder {
	return &Seeder{catalogue: catalogue, leaveTypes: leaveTypes, users: users}
}

// SeedDefaults fills empty catalogues and the leave type table. Tables that
// already hold rows are left alone, so admin edits survive restarts.
func (s *Seeder) SeedDefaults(ctx context.Context) error {
	defaults := DefaultCatalogues()
	for _, kind := range master.Kinds {
		n, err := s.catalogue.Count(ctx, kind)
		if err != nil {
			return fmt.Errorf("count %s: %w", kind, err)
		}
		if n > 0 {
			continue
		}
		for _, name := range defaults[kind] {
			if _, err := s.catalogue.Create(ctx, kind, name); err != nil {
				return fmt.Errorf("seed %s %q: %w", kind, name, err)
			}
		}
		slog.Info("seeded catalogue", "kind", kind, "count", len(defaults[kind]))
	}

	existing, err := s.leaveTypes.List(ctx)
	if err != nil {
		return fmt.Errorf("list leave types: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, lt := range DefaultLeaveTypes() {
		if _, err := s.leaveTypes.Create(ctx, lt); err != nil {
			return fmt.Errorf("seed leave type %q: %w", lt.Name, err)
		}
	}
	slog.Info("seeded leave types", "count", len(DefaultLeaveTypes()))
	return nil
}

// EnsureSuperuser creates the login for the configured superuser email when
// it does not exist. The superuser has no employee record. An existing login
// keeps its password.
func (s *Seeder) EnsureSuperuser(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return fmt.Errorf("get superuser: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash superuser password: %w", err)
	}
	hashed := string(hash)
	if _, err := s.users.Create(ctx, user.User{
		Email:        email,
		PasswordHash: &hashed,
		Role:         user.RoleAdmin,
	}); err != nil {
		return fmt.Errorf("create superuser: %w", err)
	}
	slog.Info("created superuser login", "email", email)
	return nil
}

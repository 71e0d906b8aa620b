package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	e.id, e.badge_id, e.first_name, e.last_name, e.email, e.phone_number, e.address, e.gender, e.dob,
	e.department, e.job_position, e.job_role, e.job_level, e.shift, e.work_type, e.employment_type,
	e.reporting_manager_id, e.joining_date, e.ending_date, e.basic_salary,
	e.bank_name, e.account_number, e.ifsc, e.bank_branch, e.status, e.created_at, e.updated_at,
	m.first_name AS manager_name, m.badge_id AS manager_badge
`

const employeeFrom = `
	FROM employees e
	LEFT JOIN employees m ON m.id = e.reporting_manager_id
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.BadgeID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.PhoneNumber, &emp.Address,
		&emp.Gender, &emp.DOB, &emp.Department, &emp.JobPosition, &emp.JobRole, &emp.JobLevel,
		&emp.Shift, &emp.WorkType, &emp.EmploymentType, &emp.ReportingManagerID, &emp.JoiningDate,
		&emp.EndingDate, &emp.BasicSalary, &emp.BankName, &emp.AccountNumber, &emp.IFSC, &emp.BankBranch,
		&emp.Status, &emp.CreatedAt, &emp.UpdatedAt, &emp.ReportingManagerName, &emp.ReportingManagerBadge,
	)
	return emp, err
}

func (e *employeeRepositoryImpl) getOne(ctx context.Context, where string, arg interface{}) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := "SELECT " + employeeColumns + employeeFrom + " WHERE " + where

	emp, err := scanEmployee(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return e.getOne(ctx, "e.id = $1", id)
}

// GetByBadgeID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByBadgeID(ctx context.Context, badgeID string) (employee.Employee, error) {
	return e.getOne(ctx, "e.badge_id = $1", badgeID)
}

// GetByEmail implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return e.getOne(ctx, "LOWER(e.email) = LOWER($1)", email)
}

func mapEmployeeWriteError(err error) error {
	switch {
	case isUniqueViolation(err, "employees_email_key"):
		return employee.ErrEmailExists
	case isUniqueViolation(err, "employees_badge_id_key"):
		return employee.ErrBadgeIDExists
	case isForeignKeyViolation(err):
		return employee.ErrManagerNotFound
	}
	return err
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employees (
			id, badge_id, first_name, last_name, email, phone_number, address, gender, dob,
			department, job_position, job_role, job_level, shift, work_type, employment_type,
			reporting_manager_id, joining_date, ending_date, basic_salary,
			bank_name, account_number, ifsc, bank_branch, status, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19,
			$20, $21, $22, $23, $24, NOW(), NOW()
		)
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		newEmployee.BadgeID, newEmployee.FirstName, newEmployee.LastName, newEmployee.Email,
		newEmployee.PhoneNumber, newEmployee.Address, newEmployee.Gender, newEmployee.DOB,
		newEmployee.Department, newEmployee.JobPosition, newEmployee.JobRole, newEmployee.JobLevel,
		newEmployee.Shift, newEmployee.WorkType, newEmployee.EmploymentType,
		newEmployee.ReportingManagerID, newEmployee.JoiningDate, newEmployee.EndingDate, newEmployee.BasicSalary,
		newEmployee.BankName, newEmployee.AccountNumber, newEmployee.IFSC, newEmployee.BankBranch, newEmployee.Status,
	).Scan(&id)
	if err != nil {
		if mapped := mapEmployeeWriteError(err); mapped != err {
			return employee.Employee{}, mapped
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return e.GetByID(ctx, id)
}

// Update implements employee.EmployeeRepository. The badge identifier is immutable.
func (e *employeeRepositoryImpl) Update(ctx context.Context, emp employee.Employee) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees SET
			first_name = $2, last_name = $3, email = $4, phone_number = $5, address = $6, gender = $7, dob = $8,
			department = $9, job_position = $10, job_role = $11, job_level = $12, shift = $13,
			work_type = $14, employment_type = $15, reporting_manager_id = $16, joining_date = $17,
			ending_date = $18, basic_salary = $19, bank_name = $20, account_number = $21, ifsc = $22,
			bank_branch = $23, status = $24, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		emp.ID, emp.FirstName, emp.LastName, emp.Email, emp.PhoneNumber, emp.Address, emp.Gender, emp.DOB,
		emp.Department, emp.JobPosition, emp.JobRole, emp.JobLevel, emp.Shift,
		emp.WorkType, emp.EmploymentType, emp.ReportingManagerID, emp.JoiningDate,
		emp.EndingDate, emp.BasicSalary, emp.BankName, emp.AccountNumber, emp.IFSC,
		emp.BankBranch, emp.Status,
	)
	if err != nil {
		if mapped := mapEmployeeWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update employee with id %s: %w", emp.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// Inactivate implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Inactivate(ctx context.Context, id string, endingDate string) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET status = $2, ending_date = $3::date, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query, id, employee.StatusInactive, endingDate)
	if err != nil {
		return fmt.Errorf("failed to inactivate employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// Delete implements employee.EmployeeRepository. Reportees lose their manager.
func (e *employeeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, e.db)

	if _, err := q.Exec(ctx, `UPDATE employees SET reporting_manager_id = NULL, updated_at = NOW() WHERE reporting_manager_id = $1`, id); err != nil {
		return fmt.Errorf("failed to detach reportees of %s: %w", id, err)
	}

	tag, err := q.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, e.db)

	conditions := []string{"1 = 1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(e.first_name ILIKE $%d OR e.last_name ILIKE $%d OR e.email ILIKE $%d OR e.badge_id ILIKE $%d)", argIdx, argIdx, argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", argIdx))
		args = append(args, strings.ToLower(*filter.Status))
		argIdx++
	}
	if filter.Department != nil && *filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("e.department = $%d", argIdx))
		args = append(args, *filter.Department)
		argIdx++
	}
	if filter.ReportingManagerID != nil && *filter.ReportingManagerID != "" {
		conditions = append(conditions, fmt.Sprintf("e.reporting_manager_id = $%d", argIdx))
		args = append(args, *filter.ReportingManagerID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees e WHERE %s", whereClause)
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY e.created_at ASC LIMIT $%d OFFSET $%d`,
		employeeColumns, employeeFrom, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	employees, err := e.query(ctx, q, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// GetActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)
	query := "SELECT " + employeeColumns + employeeFrom + " WHERE e.status = $1 ORDER BY e.created_at ASC"
	return e.query(ctx, q, query, employee.StatusActive)
}

// GetByReportingManager implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByReportingManager(ctx context.Context, managerID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)
	query := "SELECT " + employeeColumns + employeeFrom + " WHERE e.reporting_manager_id = $1 ORDER BY e.created_at ASC"
	return e.query(ctx, q, query, managerID)
}

func (e *employeeRepositoryImpl) query(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]employee.Employee, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

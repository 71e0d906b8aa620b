package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveTypeRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepositoryImpl{db: db}
}

const leaveTypeColumns = `id, name, icon, payment_type, total_days, created_at, updated_at`

func scanLeaveType(row pgx.Row) (leave.LeaveType, error) {
	var lt leave.LeaveType
	err := row.Scan(&lt.ID, &lt.Name, &lt.Icon, &lt.PaymentType, &lt.TotalDays, &lt.CreatedAt, &lt.UpdatedAt)
	return lt, err
}

// Create implements leave.LeaveTypeRepository.
func (l *leaveTypeRepositoryImpl) Create(ctx context.Context, leaveType leave.LeaveType) (leave.LeaveType, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		INSERT INTO leave_types (id, name, icon, payment_type, total_days, created_at, updated_at)
		VALUES (uuidv7(), $1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + leaveTypeColumns

	created, err := scanLeaveType(q.QueryRow(ctx, query,
		leaveType.Name, leaveType.Icon, leaveType.PaymentType, leaveType.TotalDays,
	))
	if err != nil {
		if isUniqueViolation(err, "") {
			return leave.LeaveType{}, leave.ErrLeaveTypeNameExists
		}
		return leave.LeaveType{}, fmt.Errorf("failed to create leave type: %w", err)
	}
	return created, nil
}

// GetByID implements leave.LeaveTypeRepository.
func (l *leaveTypeRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, l.db)

	query := `SELECT ` + leaveTypeColumns + ` FROM leave_types WHERE id = $1`

	lt, err := scanLeaveType(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, fmt.Errorf("failed to get leave type %s: %w", id, err)
	}
	return lt, nil
}

// List implements leave.LeaveTypeRepository.
func (l *leaveTypeRepositoryImpl) List(ctx context.Context) ([]leave.LeaveType, error) {
	q := GetQuerier(ctx, l.db)

	rows, err := q.Query(ctx, `SELECT `+leaveTypeColumns+` FROM leave_types ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	defer rows.Close()

	var types []leave.LeaveType
	for rows.Next() {
		lt, err := scanLeaveType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave type: %w", err)
		}
		types = append(types, lt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return types, nil
}

// Update implements leave.LeaveTypeRepository.
func (l *leaveTypeRepositoryImpl) Update(ctx context.Context, leaveType leave.LeaveType) (leave.LeaveType, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		UPDATE leave_types
		SET name = $2, icon = $3, payment_type = $4, total_days = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + leaveTypeColumns

	updated, err := scanLeaveType(q.QueryRow(ctx, query,
		leaveType.ID, leaveType.Name, leaveType.Icon, leaveType.PaymentType, leaveType.TotalDays,
	))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		case isUniqueViolation(err, ""):
			return leave.LeaveType{}, leave.ErrLeaveTypeNameExists
		}
		return leave.LeaveType{}, fmt.Errorf("failed to update leave type %s: %w", leaveType.ID, err)
	}
	return updated, nil
}

// Delete implements leave.LeaveTypeRepository.
func (l *leaveTypeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, l.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM leave_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave type %s: %w", id, err)
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveTypeNotFound
	}
	return nil
}

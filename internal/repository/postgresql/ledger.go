package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// ledgerRepository stores per-employee JSONB arrays with a version column
// used for conditional writes.
type ledgerRepository[T any] struct {
	db    *database.DB
	table string
}

func NewAttendanceLedgerRepository(db *database.DB) attendance.LedgerRepository {
	return &ledgerRepository[attendance.Entry]{db: db, table: "attendance_ledgers"}
}

func NewLeaveLedgerRepository(db *database.DB) leave.LedgerRepository {
	return &ledgerRepository[leave.Entry]{db: db, table: "leave_ledgers"}
}

func NewPayslipLedgerRepository(db *database.DB) payroll.LedgerRepository {
	return &ledgerRepository[payroll.Slip]{db: db, table: "payslip_ledgers"}
}

func (r *ledgerRepository[T]) scan(row pgx.Row) (ledger.Document[T], error) {
	var (
		doc     ledger.Document[T]
		entries []byte
	)
	if err := row.Scan(&doc.EmployeeID, &entries, &doc.Version, &doc.UpdatedAt); err != nil {
		return ledger.Document[T]{}, err
	}
	if err := json.Unmarshal(entries, &doc.Entries); err != nil {
		return ledger.Document[T]{}, fmt.Errorf("decode %s entries for %s: %w", r.table, doc.EmployeeID, err)
	}
	return doc, nil
}

// Get implements ledger.Repository.
func (r *ledgerRepository[T]) Get(ctx context.Context, employeeID string) (ledger.Document[T], error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT employee_id, entries, version, updated_at
		FROM %s
		WHERE employee_id = $1
	`, r.table)

	doc, err := r.scan(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Document[T]{EmployeeID: employeeID}, nil
		}
		return ledger.Document[T]{}, fmt.Errorf("failed to get %s: %w", r.table, err)
	}
	return doc, nil
}

// GetMany implements ledger.Repository. Employees without a document are omitted.
func (r *ledgerRepository[T]) GetMany(ctx context.Context, employeeIDs []string) ([]ledger.Document[T], error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT employee_id, entries, version, updated_at
		FROM %s
		WHERE employee_id = ANY($1::uuid[])
		ORDER BY employee_id
	`, r.table)

	return r.collect(q.Query(ctx, query, employeeIDs))
}

// List implements ledger.Repository.
func (r *ledgerRepository[T]) List(ctx context.Context) ([]ledger.Document[T], error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT employee_id, entries, version, updated_at
		FROM %s
		ORDER BY employee_id
	`, r.table)

	return r.collect(q.Query(ctx, query))
}

func (r *ledgerRepository[T]) collect(rows pgx.Rows, err error) ([]ledger.Document[T], error) {
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.table, err)
	}
	defer rows.Close()

	var docs []ledger.Document[T]
	for rows.Next() {
		doc, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.table, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Save implements ledger.Repository.
func (r *ledgerRepository[T]) Save(ctx context.Context, doc ledger.Document[T]) (ledger.Document[T], error) {
	q := GetQuerier(ctx, r.db)

	if len(doc.Entries) == 0 {
		if !doc.Exists() {
			return ledger.Document[T]{EmployeeID: doc.EmployeeID}, nil
		}
		query := fmt.Sprintf(`DELETE FROM %s WHERE employee_id = $1 AND version = $2`, r.table)
		tag, err := q.Exec(ctx, query, doc.EmployeeID, doc.Version)
		if err != nil {
			return ledger.Document[T]{}, fmt.Errorf("failed to delete %s: %w", r.table, err)
		}
		if tag.RowsAffected() == 0 {
			return ledger.Document[T]{}, ledger.ErrVersionConflict
		}
		return ledger.Document[T]{EmployeeID: doc.EmployeeID}, nil
	}

	entries, err := json.Marshal(doc.Entries)
	if err != nil {
		return ledger.Document[T]{}, fmt.Errorf("encode %s entries: %w", r.table, err)
	}

	var query string
	args := []interface{}{doc.EmployeeID, string(entries)}
	if !doc.Exists() {
		query = fmt.Sprintf(`
			INSERT INTO %s (employee_id, entries, version, updated_at)
			VALUES ($1, $2::jsonb, 1, NOW())
			ON CONFLICT (employee_id) DO NOTHING
			RETURNING version, updated_at
		`, r.table)
	} else {
		query = fmt.Sprintf(`
			UPDATE %s
			SET entries = $2::jsonb, version = version + 1, updated_at = NOW()
			WHERE employee_id = $1 AND version = $3
			RETURNING version, updated_at
		`, r.table)
		args = append(args, doc.Version)
	}

	var (
		version   int64
		updatedAt time.Time
	)
	if err := q.QueryRow(ctx, query, args...).Scan(&version, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Document[T]{}, ledger.ErrVersionConflict
		}
		if isForeignKeyViolation(err) {
			return ledger.Document[T]{}, fmt.Errorf("%s owner %s does not exist: %w", r.table, doc.EmployeeID, err)
		}
		return ledger.Document[T]{}, fmt.Errorf("failed to save %s: %w", r.table, err)
	}

	doc.Version = version
	doc.UpdatedAt = updatedAt
	return doc, nil
}

// Delete implements ledger.Repository. It removes the document regardless of version.
func (r *ledgerRepository[T]) Delete(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`DELETE FROM %s WHERE employee_id = $1`, r.table)
	if _, err := q.Exec(ctx, query, employeeID); err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.table, err)
	}
	return nil
}

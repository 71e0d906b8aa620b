package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
)

type badgeCounterRepositoryImpl struct {
	db *database.DB
}

func NewBadgeCounterRepository(db *database.DB) employee.BadgeCounterRepository {
	return &badgeCounterRepositoryImpl{db: db}
}

// Next implements employee.BadgeCounterRepository. The single-row upsert takes
// a row lock, so concurrent callers always get distinct values.
func (r *badgeCounterRepositoryImpl) Next(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO badge_counter (id, value) VALUES (1, 1)
		ON CONFLICT (id) DO UPDATE SET value = badge_counter.value + 1
		RETURNING value
	`
	var value int64
	if err := q.QueryRow(ctx, query).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to allocate badge number: %w", err)
	}
	return value, nil
}

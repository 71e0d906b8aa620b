package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/master"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type catalogueRepositoryImpl struct {
	db *database.DB
}

// NewCatalogueRepository serves every catalogue kind; each kind has its own
// table with the same shape.
func NewCatalogueRepository(db *database.DB) master.CatalogueRepository {
	return &catalogueRepositoryImpl{db: db}
}

func table(kind master.Kind) (string, error) {
	t := kind.Table()
	if t == "" {
		return "", master.ErrUnknownCatalogue
	}
	return t, nil
}

func scanItem(kind master.Kind, row pgx.Row) (master.Item, error) {
	item := master.Item{Kind: kind}
	err := row.Scan(&item.ID, &item.Name, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

// Create implements master.CatalogueRepository.
func (r *catalogueRepositoryImpl) Create(ctx context.Context, kind master.Kind, name string) (master.Item, error) {
	t, err := table(kind)
	if err != nil {
		return master.Item{}, err
	}
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, created_at, updated_at)
		VALUES (uuidv7(), $1, NOW(), NOW())
		RETURNING id, name, created_at, updated_at
	`, t)

	item, err := scanItem(kind, q.QueryRow(ctx, query, name))
	if err != nil {
		if isUniqueViolation(err, "") {
			return master.Item{}, master.ErrItemNameExists
		}
		return master.Item{}, fmt.Errorf("failed to create %s item: %w", kind, err)
	}
	return item, nil
}

// GetByID implements master.CatalogueRepository.
func (r *catalogueRepositoryImpl) GetByID(ctx context.Context, kind master.Kind, id string) (master.Item, error) {
	t, err := table(kind)
	if err != nil {
		return master.Item{}, err
	}
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT id, name, created_at, updated_at FROM %s WHERE id = $1`, t)

	item, err := scanItem(kind, q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return master.Item{}, master.ErrItemNotFound
		}
		return master.Item{}, fmt.Errorf("failed to get %s item: %w", kind, err)
	}
	return item, nil
}

// List implements master.CatalogueRepository.
func (r *catalogueRepositoryImpl) List(ctx context.Context, kind master.Kind) ([]master.Item, error) {
	t, err := table(kind)
	if err != nil {
		return nil, err
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, fmt.Sprintf(`SELECT id, name, created_at, updated_at FROM %s ORDER BY name ASC`, t))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	defer rows.Close()

	var items []master.Item
	for rows.Next() {
		item, err := scanItem(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s item: %w", kind, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update implements master.CatalogueRepository.
func (r *catalogueRepositoryImpl) Update(ctx context.Context, kind master.Kind, id string, name string) (master.Item, error) {
	t, err := table(kind)
	if err != nil {
		return master.Item{}, err
	}
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, created_at, updated_at
	`, t)

	item, err := scanItem(kind, q.QueryRow(ctx, query, id, name))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return master.Item{}, master.ErrItemNotFound
		case isUniqueViolation(err, ""):
			return master.Item{}, master.ErrItemNameExists
		}
		return master.Item{}, fmt.Errorf("failed to update %s item: %w", kind, err)
	}
	return item, nil
}

// Delete implements master.CatalogueRepository.
func (r *catalogueRepositoryImpl) Delete(ctx context.Context, kind master.Kind, id string) error {
	t, err := table(kind)
	if err != nil {
		return err
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s item: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return master.ErrItemNotFound
	}
	return nil
}

// ExistsByName implements master.CatalogueRepository.
func (r *catalogueRepositoryImpl) ExistsByName(ctx context.Context, kind master.Kind, name string) (bool, error) {
	t, err := table(kind)
	if err != nil {
		return false, err
	}
	q := GetQuerier(ctx, r.db)

	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE name = $1)`, t)
	if err := q.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s item: %w", kind, err)
	}
	return exists, nil
}

// Count implements master.CatalogueRepository.
func (r *catalogueRepositoryImpl) Count(ctx context.Context, kind master.Kind) (int64, error) {
	t, err := table(kind)
	if err != nil {
		return 0, err
	}
	q := GetQuerier(ctx, r.db)

	var n int64
	if err := q.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, t)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", kind, err)
	}
	return n, nil
}

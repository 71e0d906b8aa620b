package master

import "context"

type CatalogueRepository interface {
	Create(ctx context.Context, kind Kind, name string) (Item, error)
	GetByID(ctx context.Context, kind Kind, id string) (Item, error)
	List(ctx context.Context, kind Kind) ([]Item, error)
	Update(ctx context.Context, kind Kind, id string, name string) (Item, error)
	Delete(ctx context.Context, kind Kind, id string) error
	ExistsByName(ctx context.Context, kind Kind, name string) (bool, error)
	Count(ctx context.Context, kind Kind) (int64, error)
}

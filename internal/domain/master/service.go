package master

import "context"

type MasterService interface {
	Create(ctx context.Context, req CreateItemRequest) (ItemResponse, error)
	List(ctx context.Context, kind Kind) ([]ItemResponse, error)
	Update(ctx context.Context, req UpdateItemRequest) (ItemResponse, error)
	Delete(ctx context.Context, kind Kind, id string) error
}

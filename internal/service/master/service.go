package master

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/master"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/cache"
)

const listTTL = 10 * time.Minute

type masterServiceImpl struct {
	master.CatalogueRepository
	cache cache.Cache
}

func NewMasterService(catalogueRepository master.CatalogueRepository, c cache.Cache) master.MasterService {
	return &masterServiceImpl{
		CatalogueRepository: catalogueRepository,
		cache:               c,
	}
}

func listKey(kind master.Kind) string {
	return "catalogue:" + string(kind)
}

func requireAdmin(ctx context.Context) error {
	id, err := identity.FromContext(ctx)
	if err != nil {
		return err
	}
	if !id.IsAdmin() {
		return user.ErrAdminPrivilegeRequired
	}
	return nil
}

func (s *masterServiceImpl) invalidate(ctx context.Context, kind master.Kind) {
	if err := s.cache.Delete(ctx, listKey(kind)); err != nil {
		slog.Warn("catalogue cache invalidation failed", "kind", kind, "error", err)
	}
}

func (s *masterServiceImpl) Create(ctx context.Context, req master.CreateItemRequest) (master.ItemResponse, error) {
	if err := requireAdmin(ctx); err != nil {
		return master.ItemResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return master.ItemResponse{}, err
	}
	if _, err := master.ParseKind(string(req.Kind)); err != nil {
		return master.ItemResponse{}, err
	}

	item, err := s.CatalogueRepository.Create(ctx, req.Kind, req.Name)
	if err != nil {
		return master.ItemResponse{}, err
	}
	s.invalidate(ctx, req.Kind)
	return item.ToResponse(), nil
}

func (s *masterServiceImpl) List(ctx context.Context, kind master.Kind) ([]master.ItemResponse, error) {
	if _, err := master.ParseKind(string(kind)); err != nil {
		return nil, err
	}

	var cached []master.ItemResponse
	err := s.cache.Get(ctx, listKey(kind), &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("catalogue cache read failed", "kind", kind, "error", err)
	}

	items, err := s.CatalogueRepository.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	resp := make([]master.ItemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, it.ToResponse())
	}

	if err := s.cache.Set(ctx, listKey(kind), resp, listTTL); err != nil {
		slog.Warn("catalogue cache write failed", "kind", kind, "error", err)
	}
	return resp, nil
}

// Update renames an item. Employees keep the name they were saved with.
func (s *masterServiceImpl) Update(ctx context.Context, req master.UpdateItemRequest) (master.ItemResponse, error) {
	if err := requireAdmin(ctx); err != nil {
		return master.ItemResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return master.ItemResponse{}, err
	}
	if _, err := master.ParseKind(string(req.Kind)); err != nil {
		return master.ItemResponse{}, err
	}

	item, err := s.CatalogueRepository.Update(ctx, req.Kind, req.ID, req.Name)
	if err != nil {
		return master.ItemResponse{}, err
	}
	s.invalidate(ctx, req.Kind)
	return item.ToResponse(), nil
}

func (s *masterServiceImpl) Delete(ctx context.Context, kind master.Kind, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if _, err := master.ParseKind(string(kind)); err != nil {
		return err
	}

	if err := s.CatalogueRepository.Delete(ctx, kind, id); err != nil {
		return err
	}
	s.invalidate(ctx, kind)
	return nil
}

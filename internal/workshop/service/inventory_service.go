package service

import (
	"context"
	"fmt"

	"github.com/gearbox/workshop/internal/workshop/entity"
	"github.com/gearbox/workshop/internal/workshop/repository"
	"github.com/google/uuid"
)

// InventoryService manages the part catalog and physical stock units.
// Consumption itself lives on TicketService since it mutates the ticket's
// parts set.
type InventoryService struct {
	repo *repository.PartRepository
}

func NewInventoryService(repo *repository.PartRepository) *InventoryService {
	return &InventoryService{repo: repo}
}

// CreateDescriptionRequest is the catalog entry payload.
type CreateDescriptionRequest struct {
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price" binding:"required,gt=0"`
}

// UpdateDescriptionRequest is a partial catalog update.
type UpdateDescriptionRequest struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
}

// CreateUnitRequest binds a new physical unit to a catalog entry.
type CreateUnitRequest struct {
	DescID string `json:"desc_id" binding:"required"`
}

// CreateDescription adds a catalog entry. Manager only.
func (s *InventoryService) CreateDescription(ctx context.Context, caller Principal, req CreateDescriptionRequest) (*entity.PartDescription, error) {
	if err := require(ActionCreateCatalogEntry, caller); err != nil {
		return nil, err
	}
	desc := &entity.PartDescription{
		ID:    uuid.New().String(),
		Name:  req.Name,
		Price: req.Price,
	}
	if err := s.repo.CreateDescription(ctx, desc); err != nil {
		return nil, fmt.Errorf("create catalog entry: %w", err)
	}
	return desc, nil
}

// ListDescriptions returns the catalog.
func (s *InventoryService) ListDescriptions(ctx context.Context) ([]entity.PartDescription, error) {
	return s.repo.FindAllDescriptions(ctx)
}

// GetDescription returns one catalog entry.
func (s *InventoryService) GetDescription(ctx context.Context, id string) (*entity.PartDescription, error) {
	desc, err := s.repo.FindDescriptionByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("%w: catalog entry %s", ErrNotFound, id)
		}
		return nil, err
	}
	return desc, nil
}

// UpdateDescription applies the non-nil fields. Manager only.
func (s *InventoryService) UpdateDescription(ctx context.Context, caller Principal, id string, req UpdateDescriptionRequest) (*entity.PartDescription, error) {
	if err := require(ActionUpdateCatalogEntry, caller); err != nil {
		return nil, err
	}
	desc, err := s.GetDescription(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		desc.Name = *req.Name
	}
	if req.Price != nil {
		desc.Price = *req.Price
	}
	if err := s.repo.UpdateDescription(ctx, desc); err != nil {
		return nil, fmt.Errorf("update catalog entry: %w", err)
	}
	return desc, nil
}

// DeleteDescription removes a catalog entry. Manager only.
func (s *InventoryService) DeleteDescription(ctx context.Context, caller Principal, id string) error {
	if err := require(ActionDeleteCatalogEntry, caller); err != nil {
		return err
	}
	if err := s.repo.DeleteDescription(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return fmt.Errorf("%w: catalog entry %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}

// CreateUnit adds one physical unit of stock against an existing catalog
// entry. Manager only.
func (s *InventoryService) CreateUnit(ctx context.Context, caller Principal, req CreateUnitRequest) (*entity.Part, error) {
	if err := require(ActionCreateUnit, caller); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindDescriptionByID(ctx, req.DescID); err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("%w: catalog entry %s", ErrNotFound, req.DescID)
		}
		return nil, err
	}

	part := &entity.Part{
		ID:            uuid.New().String(),
		DescriptionID: req.DescID,
	}
	if err := s.repo.CreateUnit(ctx, part); err != nil {
		return nil, fmt.Errorf("create physical unit: %w", err)
	}
	return s.GetUnit(ctx, part.ID)
}

// GetUnit returns one physical unit with its catalog description.
func (s *InventoryService) GetUnit(ctx context.Context, id string) (*entity.Part, error) {
	part, err := s.repo.FindUnitByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("%w: part %s", ErrNotFound, id)
		}
		return nil, err
	}
	return part, nil
}

// RemapUnit reassigns a physical unit to a different catalog entry.
// Manager only.
func (s *InventoryService) RemapUnit(ctx context.Context, caller Principal, partID, descID string) (*entity.Part, error) {
	if err := require(ActionRemapUnit, caller); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindDescriptionByID(ctx, descID); err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("%w: catalog entry %s", ErrNotFound, descID)
		}
		return nil, err
	}
	if err := s.repo.UpdateUnitDescription(ctx, partID, descID); err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("%w: part %s", ErrNotFound, partID)
		}
		return nil, err
	}
	return s.GetUnit(ctx, partID)
}

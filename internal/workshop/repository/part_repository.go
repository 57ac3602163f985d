package repository

import (
	"context"
	"errors"

	"github.com/gearbox/workshop/internal/workshop/entity"
	"gorm.io/gorm"
)

// PartRepository persists catalog entries and physical part units.
type PartRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) *PartRepository {
	return &PartRepository{db: db}
}

// FindAllDescriptions lists the catalog.
func (r *PartRepository) FindAllDescriptions(ctx context.Context) ([]entity.PartDescription, error) {
	var descs []entity.PartDescription
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&descs).Error
	return descs, err
}

// FindDescriptionByID looks up one catalog entry.
func (r *PartRepository) FindDescriptionByID(ctx context.Context, id string) (*entity.PartDescription, error) {
	var desc entity.PartDescription
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&desc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &desc, nil
}

// CreateDescription inserts a catalog entry.
func (r *PartRepository) CreateDescription(ctx context.Context, desc *entity.PartDescription) error {
	return r.db.WithContext(ctx).Create(desc).Error
}

// UpdateDescription saves a catalog entry.
func (r *PartRepository) UpdateDescription(ctx context.Context, desc *entity.PartDescription) error {
	return r.db.WithContext(ctx).Save(desc).Error
}

// DeleteDescription removes a catalog entry.
func (r *PartRepository) DeleteDescription(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.PartDescription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateUnit inserts a physical unit bound to a catalog entry.
func (r *PartRepository) CreateUnit(ctx context.Context, part *entity.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

// FindUnitByID looks up one physical unit with its description preloaded.
func (r *PartRepository) FindUnitByID(ctx context.Context, id string) (*entity.Part, error) {
	var part entity.Part
	err := r.db.WithContext(ctx).
		Preload("Description").
		Where("id = ?", id).
		First(&part).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &part, nil
}

// UpdateUnitDescription re-maps a physical unit to another catalog entry.
func (r *PartRepository) UpdateUnitDescription(ctx context.Context, partID, descID string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Part{}).
		Where("id = ?", partID).
		Update("description_id", descID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Consume attaches a free physical unit to a ticket. The write is
// conditional on the unit still being unconsumed, which is what serializes
// two concurrent consumes of the same unit: exactly one update matches, the
// other observes zero affected rows and reports ErrConflict.
func (r *PartRepository) Consume(ctx context.Context, partID, ticketID string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Part{}).
		Where("id = ? AND ticket_id IS NULL", partID).
		Update("ticket_id", ticketID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

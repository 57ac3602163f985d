package repository

import (
	"context"
	"errors"

	"github.com/gearbox/workshop/internal/workshop/entity"
	"gorm.io/gorm"
)

// MechanicRepository persists mechanics.
type MechanicRepository struct {
	db *gorm.DB
}

func NewMechanicRepository(db *gorm.DB) *MechanicRepository {
	return &MechanicRepository{db: db}
}

// FindAll lists all mechanics.
func (r *MechanicRepository) FindAll(ctx context.Context) ([]entity.Mechanic, error) {
	var mechanics []entity.Mechanic
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&mechanics).Error
	return mechanics, err
}

// FindByID looks up one mechanic.
func (r *MechanicRepository) FindByID(ctx context.Context, id string) (*entity.Mechanic, error) {
	var mechanic entity.Mechanic
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&mechanic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &mechanic, nil
}

// FindByEmail looks up a mechanic by login email.
func (r *MechanicRepository) FindByEmail(ctx context.Context, email string) (*entity.Mechanic, error) {
	var mechanic entity.Mechanic
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&mechanic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &mechanic, nil
}

// Create inserts a mechanic.
func (r *MechanicRepository) Create(ctx context.Context, mechanic *entity.Mechanic) error {
	return r.db.WithContext(ctx).Create(mechanic).Error
}

// Update saves a mechanic.
func (r *MechanicRepository) Update(ctx context.Context, mechanic *entity.Mechanic) error {
	return r.db.WithContext(ctx).Save(mechanic).Error
}

// UpdateRole changes the role column only.
func (r *MechanicRepository) UpdateRole(ctx context.Context, id string, role entity.Role) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Mechanic{}).
		Where("id = ?", id).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a mechanic and its assignment edges.
func (r *MechanicRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mechanic_id = ?", id).
			Delete(&entity.TicketMechanic{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entity.Mechanic{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

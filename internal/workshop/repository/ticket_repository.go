package repository

import (
	"context"
	"errors"

	"github.com/gearbox/workshop/internal/workshop/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TicketRepository persists service tickets, their assignment edges and the
// completion pricing write.
type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// FindAll lists tickets with nested customer and mechanic summaries.
func (r *TicketRepository) FindAll(ctx context.Context) ([]entity.ServiceTicket, error) {
	var tickets []entity.ServiceTicket
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Mechanics").
		Order("created_at DESC").
		Find(&tickets).Error
	return tickets, err
}

// FindByID looks up one ticket with associations preloaded.
func (r *TicketRepository) FindByID(ctx context.Context, id string) (*entity.ServiceTicket, error) {
	var ticket entity.ServiceTicket
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Mechanics").
		Where("id = ?", id).
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// Create inserts a ticket.
func (r *TicketRepository) Create(ctx context.Context, ticket *entity.ServiceTicket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

// UpdateStatus persists a plain status change (no pricing involved).
func (r *TicketRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.ServiceTicket{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete transitions a ticket into Complete and, if it was not already
// Complete, prices it as laborFee plus the sum of the attached units'
// catalog prices. The ticket row is locked for the duration and the status
// write is conditional, so two concurrent completions cannot both charge
// labor. Re-entering Complete is a pricing no-op.
func (r *TicketRepository) Complete(ctx context.Context, id string, laborFee float64) (*entity.ServiceTicket, error) {
	var ticket entity.ServiceTicket
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&ticket).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if ticket.Status == entity.StatusComplete {
			return nil
		}

		var partsTotal float64
		if err := tx.Model(&entity.Part{}).
			Joins("JOIN part_descriptions ON part_descriptions.id = parts.description_id").
			Where("parts.ticket_id = ?", id).
			Select("COALESCE(SUM(part_descriptions.price), 0)").
			Scan(&partsTotal).Error; err != nil {
			return err
		}

		price := laborFee + partsTotal
		result := tx.Model(&entity.ServiceTicket{}).
			Where("id = ? AND status <> ?", id, entity.StatusComplete).
			Updates(map[string]interface{}{
				"status": entity.StatusComplete,
				"price":  price,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			ticket.Status = entity.StatusComplete
			ticket.Price = &price
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Assign adds a mechanic to the ticket's assignment set and moves the ticket
// to Assigned. The add is idempotent: re-assigning the same mechanic leaves
// a single edge.
func (r *TicketRepository) Assign(ctx context.Context, ticketID, mechanicID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge := entity.TicketMechanic{
			ServiceTicketID: ticketID,
			MechanicID:      mechanicID,
		}
		if err := tx.Where(
			"service_ticket_id = ? AND mechanic_id = ?", ticketID, mechanicID,
		).FirstOrCreate(&edge).Error; err != nil {
			return err
		}
		return tx.Model(&entity.ServiceTicket{}).
			Where("id = ?", ticketID).
			Update("status", entity.StatusAssigned).Error
	})
}

// RemoveAssignment deletes the assignment edge. ErrNotAssigned signals that
// both entities exist but the mechanic was never on this ticket.
func (r *TicketRepository) RemoveAssignment(ctx context.Context, ticketID, mechanicID string) error {
	result := r.db.WithContext(ctx).
		Where("service_ticket_id = ? AND mechanic_id = ?", ticketID, mechanicID).
		Delete(&entity.TicketMechanic{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotAssigned
	}
	return nil
}

// FindParts lists the physical units attached to a ticket with their
// catalog descriptions preloaded.
func (r *TicketRepository) FindParts(ctx context.Context, ticketID string) ([]entity.Part, error) {
	var parts []entity.Part
	err := r.db.WithContext(ctx).
		Preload("Description").
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Find(&parts).Error
	return parts, err
}

package repository

import (
	"context"
	"errors"

	"github.com/gearbox/workshop/internal/workshop/entity"
	"gorm.io/gorm"
)

// AttachmentRepository persists ticket attachment metadata. The binary
// payload lives in object storage, keyed by ObjectKey.
type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create inserts an attachment record.
func (r *AttachmentRepository) Create(ctx context.Context, att *entity.TicketAttachment) error {
	return r.db.WithContext(ctx).Create(att).Error
}

// FindByTicket lists attachments of one ticket.
func (r *AttachmentRepository) FindByTicket(ctx context.Context, ticketID string) ([]entity.TicketAttachment, error) {
	var atts []entity.TicketAttachment
	err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at DESC").
		Find(&atts).Error
	return atts, err
}

// FindByID looks up one attachment.
func (r *AttachmentRepository) FindByID(ctx context.Context, id string) (*entity.TicketAttachment, error) {
	var att entity.TicketAttachment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&att).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &att, nil
}

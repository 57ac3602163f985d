package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/gearbox/workshop/internal/workshop/entity"
	"github.com/gearbox/workshop/internal/workshop/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// AttachmentService stores ticket photos and documents in object storage
// and their metadata in the database.
type AttachmentService struct {
	repo        *repository.AttachmentRepository
	tickets     *repository.TicketRepository
	minioClient *minio.Client
	bucketName  string
}

func NewAttachmentService(
	repo *repository.AttachmentRepository,
	tickets *repository.TicketRepository,
	minioClient *minio.Client,
	bucketName string,
) *AttachmentService {
	return &AttachmentService{
		repo:        repo,
		tickets:     tickets,
		minioClient: minioClient,
		bucketName:  bucketName,
	}
}

// Upload stores the payload and records the attachment against the ticket.
func (s *AttachmentService) Upload(ctx context.Context, caller Principal, ticketID string, reader io.Reader, fileName string, fileSize int64, contentType string) (*entity.TicketAttachment, error) {
	if err := require(ActionUploadAttachment, caller); err != nil {
		return nil, err
	}
	if _, err := s.tickets.FindByID(ctx, ticketID); err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
		}
		return nil, err
	}

	objectKey := fmt.Sprintf("tickets/%s/%s%s",
		time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName))

	if s.minioClient != nil {
		_, err := s.minioClient.PutObject(ctx, s.bucketName, objectKey, reader, fileSize, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return nil, fmt.Errorf("upload file: %w", err)
		}
	}

	att := &entity.TicketAttachment{
		ID:          uuid.New().String(),
		TicketID:    ticketID,
		FileName:    fileName,
		ObjectKey:   objectKey,
		Size:        fileSize,
		ContentType: contentType,
		UploadedBy:  caller.ID,
	}
	if err := s.repo.Create(ctx, att); err != nil {
		return nil, fmt.Errorf("create attachment: %w", err)
	}
	return att, nil
}

// List returns a ticket's attachments.
func (s *AttachmentService) List(ctx context.Context, ticketID string) ([]entity.TicketAttachment, error) {
	if _, err := s.tickets.FindByID(ctx, ticketID); err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
		}
		return nil, err
	}
	return s.repo.FindByTicket(ctx, ticketID)
}

// Download opens the stored payload of one attachment.
func (s *AttachmentService) Download(ctx context.Context, id string) (*entity.TicketAttachment, io.ReadCloser, error) {
	att, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, nil, fmt.Errorf("%w: attachment %s", ErrNotFound, id)
		}
		return nil, nil, err
	}
	if s.minioClient == nil {
		return nil, nil, fmt.Errorf("object storage not configured")
	}
	object, err := s.minioClient.GetObject(ctx, s.bucketName, att.ObjectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("open object: %w", err)
	}
	return att, object, nil
}

package service

import (
	"errors"

	"github.com/gearbox/workshop/internal/config"
	"github.com/gearbox/workshop/internal/workshop/entity"
	"github.com/gearbox/workshop/internal/workshop/repository"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

// Error taxonomy. Services detect and report these before any mutation;
// handlers map them onto HTTP status families.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrConflict        = errors.New("conflict")
	// ErrNotAssigned is the distinct "was not assigned" outcome of
	// remove-mechanic; it maps to 404 but carries its own message.
	ErrNotAssigned = errors.New("mechanic was not assigned to ticket")
)

// Principal is the authenticated caller: id and role as embedded in the
// credential at issuance time. The resolver does not re-check that the
// principal still exists in storage.
type Principal struct {
	ID   string
	Role entity.Role
}

// Services bundles the domain services.
type Services struct {
	Auth       *AuthService
	Customer   *CustomerService
	Mechanic   *MechanicService
	Ticket     *TicketService
	Inventory  *InventoryService
	Report     *ReportService
	Attachment *AttachmentService
}

// NewServices creates the service bundle.
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config) *Services {
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			// Attachments degrade to metadata-only without object storage.
			minioClient = nil
		}
	}

	return &Services{
		Auth:       NewAuthService(repos.Customer, repos.Mechanic, rdb, cfg),
		Customer:   NewCustomerService(repos.Customer),
		Mechanic:   NewMechanicService(repos.Mechanic),
		Ticket:     NewTicketService(repos.Ticket, repos.Customer, repos.Mechanic, repos.Part, cfg.Workshop.LaborFee),
		Inventory:  NewInventoryService(repos.Part),
		Report:     NewReportService(repos.Report),
		Attachment: NewAttachmentService(repos.Attachment, repos.Ticket, minioClient, cfg.MinIO.Bucket),
	}
}

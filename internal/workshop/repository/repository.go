package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Sentinel outcomes the service layer maps onto the error taxonomy.
var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional write finds the row already
	// in an incompatible state, e.g. a part unit already consumed.
	ErrConflict = errors.New("conflicting state")
	// ErrNotAssigned distinguishes "mechanic exists but is not on this
	// ticket" from a missing entity.
	ErrNotAssigned = errors.New("mechanic not assigned to ticket")
)

// Repositories bundles the per-entity repositories.
type Repositories struct {
	Customer   *CustomerRepository
	Mechanic   *MechanicRepository
	Ticket     *TicketRepository
	Part       *PartRepository
	Report     *ReportRepository
	Attachment *AttachmentRepository
}

// NewRepositories creates the repository bundle over one DB handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Customer:   NewCustomerRepository(db),
		Mechanic:   NewMechanicRepository(db),
		Ticket:     NewTicketRepository(db),
		Part:       NewPartRepository(db),
		Report:     NewReportRepository(db),
		Attachment: NewAttachmentRepository(db),
	}
}

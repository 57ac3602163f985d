package entity

import (
	"time"
)

// Ticket statuses. Complete and Cancelled are terminal for pricing purposes:
// the price is computed exactly once, on the first transition into Complete.
const (
	StatusPending       = "Pending"
	StatusAssigned      = "Assigned"
	StatusInProgress    = "In Progress"
	StatusAwaitingParts = "Awaiting Parts"
	StatusComplete      = "Complete"
	StatusCancelled     = "Cancelled"
)

// AllowedStatuses is the closed status enumeration, in lifecycle order.
var AllowedStatuses = []string{
	StatusPending,
	StatusAssigned,
	StatusInProgress,
	StatusAwaitingParts,
	StatusComplete,
	StatusCancelled,
}

// ValidStatus reports whether s is a member of the status enumeration.
func ValidStatus(s string) bool {
	for _, allowed := range AllowedStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}

// ServiceTicket is the central entity: one customer's vehicle issue, worked
// by zero or more mechanics, consuming zero or more physical parts.
type ServiceTicket struct {
	ID               string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CustomerID       string    `json:"customer_id" gorm:"type:uuid;not null;index"`
	VIN              string    `json:"vin" gorm:"size:50;not null;column:vin"`
	IssueDescription string    `json:"issue_description" gorm:"size:2000;not null"`
	Status           string    `json:"status" gorm:"size:20;not null;default:Pending"`
	// Price stays NULL until the ticket first completes, then never changes.
	Price     *float64  `json:"price" gorm:"type:decimal(12,2)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Customer  *Customer  `json:"customer,omitempty" gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	Mechanics []Mechanic `json:"mechanics,omitempty" gorm:"many2many:ticket_mechanics;"`
	Parts     []Part     `json:"parts,omitempty" gorm:"foreignKey:TicketID"`
}

func (ServiceTicket) TableName() string {
	return "service_tickets"
}

// TicketResponse is the documented response shape with nested summaries.
type TicketResponse struct {
	ID               string            `json:"id"`
	CustomerID       string            `json:"customer_id"`
	VIN              string            `json:"vin"`
	IssueDescription string            `json:"issue_description"`
	Status           string            `json:"status"`
	Price            *float64          `json:"price"`
	Customer         *CustomerSummary  `json:"customer,omitempty"`
	Mechanics        []MechanicSummary `json:"mechanics"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ToResponse flattens preloaded associations into the response shape.
func (t *ServiceTicket) ToResponse() TicketResponse {
	resp := TicketResponse{
		ID:               t.ID,
		CustomerID:       t.CustomerID,
		VIN:              t.VIN,
		IssueDescription: t.IssueDescription,
		Status:           t.Status,
		Price:            t.Price,
		Mechanics:        make([]MechanicSummary, 0, len(t.Mechanics)),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
	if t.Customer != nil {
		summary := t.Customer.Summary()
		resp.Customer = &summary
	}
	for i := range t.Mechanics {
		resp.Mechanics = append(resp.Mechanics, t.Mechanics[i].Summary())
	}
	return resp
}

// TicketAttachment records a photo or document uploaded against a ticket.
// The payload itself lives in object storage under ObjectKey.
type TicketAttachment struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TicketID    string    `json:"ticket_id" gorm:"type:uuid;not null;index"`
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	ObjectKey   string    `json:"-" gorm:"size:512;not null"`
	Size        int64     `json:"size" gorm:"not null;default:0"`
	ContentType string    `json:"content_type" gorm:"size:120"`
	UploadedBy  string    `json:"uploaded_by" gorm:"type:uuid;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (TicketAttachment) TableName() string {
	return "ticket_attachments"
}

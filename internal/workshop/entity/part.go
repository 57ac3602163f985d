package entity

import (
	"time"
)

// PartDescription is a catalog entry: a named, priced part type independent
// of physical stock. Stock is the set of Part rows referencing it.
type PartDescription struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Price     float64   `json:"price" gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Parts []Part `json:"parts,omitempty" gorm:"foreignKey:DescriptionID"`
}

func (PartDescription) TableName() string {
	return "part_descriptions"
}

// Part is one physical unit of stock. A NULL TicketID means the unit is on
// the shelf; a non-NULL TicketID means it has been consumed by that ticket
// and is never available again. Stock is a deduction model over rows, not a
// counter on the catalog entry.
type Part struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	DescriptionID string    `json:"description_id" gorm:"type:uuid;not null;index"`
	TicketID      *string   `json:"ticket_id" gorm:"type:uuid;index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Description *PartDescription `json:"description,omitempty" gorm:"foreignKey:DescriptionID"`
}

func (Part) TableName() string {
	return "parts"
}

// Consumed reports whether the unit has been attached to a ticket.
func (p *Part) Consumed() bool {
	return p.TicketID != nil
}

// TicketPart is the per-unit line in a ticket's parts listing.
type TicketPart struct {
	PartID      string `json:"part_id"`
	Description string `json:"description"`
}

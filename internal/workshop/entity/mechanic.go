package entity

import (
	"time"
)

// Role is the closed set of principal roles. Authorization decisions are
// membership checks against the capability table in the service package,
// never free-form string comparison in handlers.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMechanic Role = "mechanic"
	RoleManager  Role = "manager"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleMechanic, RoleManager:
		return true
	}
	return false
}

// Mechanic works tickets. Role is mutable administrative data on the row,
// not a separate account type: a manager is a mechanic with elevated role.
type Mechanic struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	FirstName    string    `json:"first_name" gorm:"size:160;not null"`
	LastName     string    `json:"last_name" gorm:"size:160;not null"`
	Email        string    `json:"email" gorm:"size:360;uniqueIndex;not null"`
	Salary       float64   `json:"salary" gorm:"type:decimal(12,2);not null;default:0"`
	Address      string    `json:"address" gorm:"size:500;not null"`
	PasswordHash string    `json:"-" gorm:"size:120;not null;column:password"`
	Role         Role      `json:"role" gorm:"size:20;not null;default:mechanic"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Tickets []ServiceTicket `json:"tickets,omitempty" gorm:"many2many:ticket_mechanics;"`
}

func (Mechanic) TableName() string {
	return "mechanics"
}

// MechanicSummary is the nested shape embedded in ticket responses.
type MechanicSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (m *Mechanic) Summary() MechanicSummary {
	return MechanicSummary{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
	}
}

// TicketMechanic is the assignment edge between a ticket and a mechanic.
// The composite primary key de-duplicates assignments: adding the same
// mechanic twice is an idempotent no-op.
type TicketMechanic struct {
	ServiceTicketID string    `json:"service_ticket_id" gorm:"primaryKey;type:uuid"`
	MechanicID      string    `json:"mechanic_id" gorm:"primaryKey;type:uuid"`
	CreatedAt       time.Time `json:"created_at"`
}

func (TicketMechanic) TableName() string {
	return "ticket_mechanics"
}

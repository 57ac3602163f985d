package entity

import (
	"time"
)

// Customer owns service tickets and logs in with email + password.
type Customer struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	FirstName    string    `json:"first_name" gorm:"size:160;not null"`
	LastName     string    `json:"last_name" gorm:"size:160;not null"`
	Email        string    `json:"email" gorm:"size:360;uniqueIndex;not null"`
	Phone        string    `json:"phone" gorm:"size:100;uniqueIndex;not null"`
	Address      string    `json:"address" gorm:"size:500;not null"`
	Username     string    `json:"username" gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:120;not null;column:password"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Tickets []ServiceTicket `json:"tickets,omitempty" gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

func (Customer) TableName() string {
	return "customers"
}

// CustomerSummary is the nested shape embedded in ticket responses.
type CustomerSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (c *Customer) Summary() CustomerSummary {
	return CustomerSummary{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
	}
}

package repository

import (
	"context"

	"gorm.io/gorm"
)

// ReportRepository runs the read-side aggregate queries. Both reports are
// full point-in-time scans; nothing is materialized.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// TopSpender is a customer with the total of its priced tickets.
type TopSpender struct {
	CustomerID string  `json:"customer_id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Total      float64 `json:"total"`
}

// TopSpenders groups tickets by owning customer and sums the prices of
// completed tickets, descending. Unpriced (incomplete) tickets are excluded
// from the sum.
func (r *ReportRepository) TopSpenders(ctx context.Context) ([]TopSpender, error) {
	var spenders []TopSpender
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.id AS customer_id,
			c.first_name,
			c.last_name,
			c.email,
			SUM(t.price) AS total
		FROM customers c
		JOIN service_tickets t ON t.customer_id = c.id
		WHERE t.price IS NOT NULL
		GROUP BY c.id, c.first_name, c.last_name, c.email
		ORDER BY total DESC
	`).Scan(&spenders).Error
	return spenders, err
}

// TopMechanic is a mechanic with its assigned-ticket count.
type TopMechanic struct {
	MechanicID  string `json:"mechanic_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	TicketCount int64  `json:"ticket_count"`
}

// TopMechanics groups assignment edges by mechanic and counts tickets,
// descending.
func (r *ReportRepository) TopMechanics(ctx context.Context) ([]TopMechanic, error) {
	var mechanics []TopMechanic
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			m.id AS mechanic_id,
			m.first_name,
			m.last_name,
			m.email,
			COUNT(tm.service_ticket_id) AS ticket_count
		FROM mechanics m
		JOIN ticket_mechanics tm ON tm.mechanic_id = m.id
		GROUP BY m.id, m.first_name, m.last_name, m.email
		ORDER BY ticket_count DESC
	`).Scan(&mechanics).Error
	return mechanics, err
}

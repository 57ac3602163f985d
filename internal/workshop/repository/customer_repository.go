package repository

import (
	"context"
	"errors"

	"github.com/gearbox/workshop/internal/workshop/entity"
	"gorm.io/gorm"
)

// CustomerRepository persists customers.
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// FindAll lists all customers.
func (r *CustomerRepository) FindAll(ctx context.Context) ([]entity.Customer, error) {
	var customers []entity.Customer
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&customers).Error
	return customers, err
}

// FindByID looks up one customer.
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindByEmail looks up a customer by login email.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// Create inserts a customer.
func (r *CustomerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// Update saves a customer.
func (r *CustomerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// Delete removes a customer together with the tickets it owns: assignment
// edges go with the tickets, and the physical units those tickets consumed
// are removed too. A consumed unit never returns to stock.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ticketIDs []string
		if err := tx.Model(&entity.ServiceTicket{}).
			Where("customer_id = ?", id).
			Pluck("id", &ticketIDs).Error; err != nil {
			return err
		}
		if len(ticketIDs) > 0 {
			if err := tx.Where("service_ticket_id IN ?", ticketIDs).
				Delete(&entity.TicketMechanic{}).Error; err != nil {
				return err
			}
			if err := tx.Where("ticket_id IN ?", ticketIDs).
				Delete(&entity.Part{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", ticketIDs).
				Delete(&entity.ServiceTicket{}).Error; err != nil {
				return err
			}
		}
		result := tx.Where("id = ?", id).Delete(&entity.Customer{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

package service

import (
	"context"
	"fmt"

	"github.com/gearbox/workshop/internal/workshop/entity"
	"github.com/gearbox/workshop/internal/workshop/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CustomerService manages customer accounts.
type CustomerService struct {
	repo *repository.CustomerRepository
}

func NewCustomerService(repo *repository.CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

// CreateCustomerRequest is the signup payload.
type CreateCustomerRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
	Address   string `json:"address" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
}

// UpdateCustomerRequest is a partial update; nil fields are left untouched.
type UpdateCustomerRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// Create hashes the password and inserts the customer.
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*entity.Customer, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	customer := &entity.Customer{
		ID:           uuid.New().String(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Username:     req.Username,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

// List returns all customers.
func (s *CustomerService) List(ctx context.Context) ([]entity.Customer, error) {
	return s.repo.FindAll(ctx)
}

// Get returns one customer.
func (s *CustomerService) Get(ctx context.Context, id string) (*entity.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, id)
		}
		return nil, err
	}
	return customer, nil
}

// Update applies the non-nil fields.
func (s *CustomerService) Update(ctx context.Context, id string, req UpdateCustomerRequest) (*entity.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		customer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		customer.LastName = *req.LastName
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return customer, nil
}

// Delete removes the customer and cascades to its tickets.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return fmt.Errorf("%w: customer %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}

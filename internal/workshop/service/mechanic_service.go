package service

import (
	"context"
	"fmt"

	"github.com/gearbox/workshop/internal/workshop/entity"
	"github.com/gearbox/workshop/internal/workshop/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MechanicService manages mechanic accounts and their role tag.
type MechanicService struct {
	repo *repository.MechanicRepository
}

func NewMechanicService(repo *repository.MechanicRepository) *MechanicService {
	return &MechanicService{repo: repo}
}

// CreateMechanicRequest is the signup payload.
type CreateMechanicRequest struct {
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Salary    float64 `json:"salary"`
	Address   string  `json:"address" binding:"required"`
	Password  string  `json:"password" binding:"required,min=8"`
}

// UpdateMechanicRequest is a partial update; nil fields are left untouched.
type UpdateMechanicRequest struct {
	FirstName *string  `json:"first_name"`
	LastName  *string  `json:"last_name"`
	Email     *string  `json:"email"`
	Salary    *float64 `json:"salary"`
	Address   *string  `json:"address"`
}

// Create hashes the password and inserts the mechanic with the default
// mechanic role. Promotion to manager goes through ChangeRole.
func (s *MechanicService) Create(ctx context.Context, req CreateMechanicRequest) (*entity.Mechanic, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	mechanic := &entity.Mechanic{
		ID:           uuid.New().String(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Salary:       req.Salary,
		Address:      req.Address,
		PasswordHash: string(hash),
		Role:         entity.RoleMechanic,
	}
	if err := s.repo.Create(ctx, mechanic); err != nil {
		return nil, fmt.Errorf("create mechanic: %w", err)
	}
	return mechanic, nil
}

// List returns all mechanics.
func (s *MechanicService) List(ctx context.Context) ([]entity.Mechanic, error) {
	return s.repo.FindAll(ctx)
}

// Get returns one mechanic.
func (s *MechanicService) Get(ctx context.Context, id string) (*entity.Mechanic, error) {
	mechanic, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("%w: mechanic %s", ErrNotFound, id)
		}
		return nil, err
	}
	return mechanic, nil
}

// Update applies the non-nil fields.
func (s *MechanicService) Update(ctx context.Context, id string, req UpdateMechanicRequest) (*entity.Mechanic, error) {
	mechanic, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		mechanic.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		mechanic.LastName = *req.LastName
	}
	if req.Email != nil {
		mechanic.Email = *req.Email
	}
	if req.Salary != nil {
		mechanic.Salary = *req.Salary
	}
	if req.Address != nil {
		mechanic.Address = *req.Address
	}

	if err := s.repo.Update(ctx, mechanic); err != nil {
		return nil, fmt.Errorf("update mechanic: %w", err)
	}
	return mechanic, nil
}

// ChangeRole updates the role column. Manager only; the role must be one of
// mechanic or manager (the customer role belongs to customer accounts).
func (s *MechanicService) ChangeRole(ctx context.Context, caller Principal, id string, role entity.Role) error {
	if err := require(ActionChangeRole, caller); err != nil {
		return err
	}
	if role != entity.RoleMechanic && role != entity.RoleManager {
		return fmt.Errorf("%w: role must be mechanic or manager", ErrInvalidInput)
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		if err == repository.ErrNotFound {
			return fmt.Errorf("%w: mechanic %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}

// Delete removes a mechanic and its assignment edges.
func (s *MechanicService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return fmt.Errorf("%w: mechanic %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gearbox/workshop/internal/workshop/entity"
	"github.com/gearbox/workshop/internal/workshop/repository"
	"github.com/google/uuid"
)

// placeholderDescription stands in for a consumed unit whose catalog row
// has gone missing. The listing degrades instead of failing.
const placeholderDescription = "Description N/A"

// TicketService owns the ticket lifecycle: status transitions with
// completion pricing, the mechanic assignment set, and part consumption.
type TicketService struct {
	tickets   *repository.TicketRepository
	customers *repository.CustomerRepository
	mechanics *repository.MechanicRepository
	parts     *repository.PartRepository
	laborFee  float64
}

func NewTicketService(
	tickets *repository.TicketRepository,
	customers *repository.CustomerRepository,
	mechanics *repository.MechanicRepository,
	parts *repository.PartRepository,
	laborFee float64,
) *TicketService {
	return &TicketService{
		tickets:   tickets,
		customers: customers,
		mechanics: mechanics,
		parts:     parts,
		laborFee:  laborFee,
	}
}

// CreateTicketRequest is the ticket creation payload.
type CreateTicketRequest struct {
	CustomerID       string `json:"customer_id" binding:"required"`
	VIN              string `json:"vin" binding:"required"`
	IssueDescription string `json:"issue_description" binding:"required"`
}

// Create opens a ticket in Pending for an existing customer.
func (s *TicketService) Create(ctx context.Context, req CreateTicketRequest) (*entity.ServiceTicket, error) {
	if _, err := s.customers.FindByID(ctx, req.CustomerID); err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, req.CustomerID)
		}
		return nil, err
	}

	ticket := &entity.ServiceTicket{
		ID:               uuid.New().String(),
		CustomerID:       req.CustomerID,
		VIN:              req.VIN,
		IssueDescription: req.IssueDescription,
		Status:           entity.StatusPending,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return s.Get(ctx, ticket.ID)
}

// List returns all tickets with nested summaries.
func (s *TicketService) List(ctx context.Context) ([]entity.ServiceTicket, error) {
	return s.tickets.FindAll(ctx)
}

// Get returns one ticket with nested summaries.
func (s *TicketService) Get(ctx context.Context, id string) (*entity.ServiceTicket, error) {
	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("%w: ticket %s", ErrNotFound, id)
		}
		return nil, err
	}
	return ticket, nil
}

// SetStatus moves a ticket to newStatus. Mechanics and managers only. The
// status must be in the enumeration; beyond that any status may replace any
// other (the shop corrects mistakes by overwriting, so the diagram is not
// enforced as hard edges). The first transition into Complete prices the
// ticket as laborFee + sum of attached unit prices, atomically with the
// status write; re-entering Complete never reprices.
func (s *TicketService) SetStatus(ctx context.Context, caller Principal, id, newStatus string) (*entity.ServiceTicket, error) {
	if err := require(ActionSetTicketStatus, caller); err != nil {
		return nil, err
	}
	if !entity.ValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: %q is not one of: %s",
			ErrInvalidStatus, newStatus, strings.Join(entity.AllowedStatuses, ", "))
	}

	if newStatus == entity.StatusComplete {
		if _, err := s.tickets.Complete(ctx, id, s.laborFee); err != nil {
			if err == repository.ErrNotFound {
				return nil, fmt.Errorf("%w: ticket %s", ErrNotFound, id)
			}
			return nil, fmt.Errorf("complete ticket: %w", err)
		}
		return s.Get(ctx, id)
	}

	if err := s.tickets.UpdateStatus(ctx, id, newStatus); err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("%w: ticket %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("update status: %w", err)
	}
	return s.Get(ctx, id)
}

// AssignMechanic adds a mechanic to the ticket's assignment set and moves
// the ticket to Assigned. Manager only. The add is idempotent.
func (s *TicketService) AssignMechanic(ctx context.Context, caller Principal, ticketID, mechanicID string) error {
	if err := require(ActionAssignMechanic, caller); err != nil {
		return err
	}
	if _, err := s.tickets.FindByID(ctx, ticketID); err != nil {
		if err == repository.ErrNotFound {
			return fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
		}
		return err
	}
	if _, err := s.mechanics.FindByID(ctx, mechanicID); err != nil {
		if err == repository.ErrNotFound {
			return fmt.Errorf("%w: mechanic %s", ErrNotFound, mechanicID)
		}
		return err
	}
	if err := s.tickets.Assign(ctx, ticketID, mechanicID); err != nil {
		return fmt.Errorf("assign mechanic: %w", err)
	}
	return nil
}

// RemoveMechanic detaches a mechanic from the ticket's assignment set.
// Manager only. A mechanic that exists but was never assigned yields the
// distinct ErrNotAssigned outcome, not a generic not-found.
func (s *TicketService) RemoveMechanic(ctx context.Context, caller Principal, ticketID, mechanicID string) error {
	if err := require(ActionRemoveMechanic, caller); err != nil {
		return err
	}
	if _, err := s.tickets.FindByID(ctx, ticketID); err != nil {
		if err == repository.ErrNotFound {
			return fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
		}
		return err
	}
	if _, err := s.mechanics.FindByID(ctx, mechanicID); err != nil {
		if err == repository.ErrNotFound {
			return fmt.Errorf("%w: mechanic %s", ErrNotFound, mechanicID)
		}
		return err
	}
	if err := s.tickets.RemoveAssignment(ctx, ticketID, mechanicID); err != nil {
		if err == repository.ErrNotAssigned {
			return fmt.Errorf("%w: mechanic %s on ticket %s", ErrNotAssigned, mechanicID, ticketID)
		}
		return fmt.Errorf("remove mechanic: %w", err)
	}
	return nil
}

// ConsumePart attaches a physical unit to a ticket, taking it out of
// stock. Manager only. A unit already attached anywhere reports Conflict
// and the attempted write changes nothing.
func (s *TicketService) ConsumePart(ctx context.Context, caller Principal, ticketID, partID string) error {
	if err := require(ActionConsumePart, caller); err != nil {
		return err
	}
	if _, err := s.tickets.FindByID(ctx, ticketID); err != nil {
		if err == repository.ErrNotFound {
			return fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
		}
		return err
	}
	part, err := s.parts.FindUnitByID(ctx, partID)
	if err != nil {
		if err == repository.ErrNotFound {
			return fmt.Errorf("%w: part %s", ErrNotFound, partID)
		}
		return err
	}
	if part.Consumed() {
		return fmt.Errorf("%w: part %s is out of stock", ErrConflict, partID)
	}

	// The conditional update re-checks the unconsumed state, so a consume
	// racing past the read above still loses cleanly.
	if err := s.parts.Consume(ctx, partID, ticketID); err != nil {
		if err == repository.ErrConflict {
			return fmt.Errorf("%w: part %s is out of stock", ErrConflict, partID)
		}
		return fmt.Errorf("consume part: %w", err)
	}
	return nil
}

// ListParts returns each attached unit's id and catalog name. A unit whose
// catalog row is missing gets the placeholder description rather than
// failing the listing.
func (s *TicketService) ListParts(ctx context.Context, ticketID string) ([]entity.TicketPart, error) {
	if _, err := s.tickets.FindByID(ctx, ticketID); err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
		}
		return nil, err
	}

	parts, err := s.tickets.FindParts(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}

	listing := make([]entity.TicketPart, 0, len(parts))
	for i := range parts {
		desc := placeholderDescription
		if parts[i].Description != nil {
			desc = parts[i].Description.Name
		}
		listing = append(listing, entity.TicketPart{
			PartID:      parts[i].ID,
			Description: desc,
		})
	}
	return listing, nil
}

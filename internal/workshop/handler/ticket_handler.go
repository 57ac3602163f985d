package handler

import (
	"github.com/gearbox/workshop/internal/workshop/entity"
	"github.com/gearbox/workshop/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// TicketHandler serves the ticket lifecycle: creation, status transitions,
// mechanic assignment and part consumption.
type TicketHandler struct {
	svc *service.TicketService
}

func NewTicketHandler(svc *service.TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

// Create handles POST /tickets.
func (h *TicketHandler) Create(c *gin.Context) {
	var req service.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid ticket payload: "+err.Error())
		return
	}

	ticket, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, ticket.ToResponse())
}

// List handles GET /tickets.
func (h *TicketHandler) List(c *gin.Context) {
	tickets, err := h.svc.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	responses := make([]entity.TicketResponse, 0, len(tickets))
	for i := range tickets {
		responses = append(responses, tickets[i].ToResponse())
	}
	Success(c, responses)
}

// Get handles GET /tickets/:id.
func (h *TicketHandler) Get(c *gin.Context) {
	ticket, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ticket.ToResponse())
}

// StatusRequest carries the target status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus handles PUT /tickets/:id/status (mechanic or manager).
func (h *TicketHandler) SetStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid status payload: "+err.Error())
		return
	}

	ticket, err := h.svc.SetStatus(c.Request.Context(), principalFrom(c), c.Param("id"), req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ticket.ToResponse())
}

// AssignMechanic handles PUT /tickets/:id/assign-mechanic/:mechanicID
// (manager only).
func (h *TicketHandler) AssignMechanic(c *gin.Context) {
	ticketID := c.Param("id")
	mechanicID := c.Param("mechanicID")

	err := h.svc.AssignMechanic(c.Request.Context(), principalFrom(c), ticketID, mechanicID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{
		"message": "mechanic " + mechanicID + " assigned to ticket " + ticketID + ", status set to Assigned",
	})
}

// RemoveMechanic handles PUT /tickets/:id/remove-mechanic/:mechanicID
// (manager only).
func (h *TicketHandler) RemoveMechanic(c *gin.Context) {
	ticketID := c.Param("id")
	mechanicID := c.Param("mechanicID")

	err := h.svc.RemoveMechanic(c.Request.Context(), principalFrom(c), ticketID, mechanicID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{
		"message": "mechanic " + mechanicID + " removed from ticket " + ticketID,
	})
}

// ConsumePart handles PUT /tickets/:id/parts/:partID (manager only): the
// physical unit is taken out of stock and attached to the ticket.
func (h *TicketHandler) ConsumePart(c *gin.Context) {
	ticketID := c.Param("id")
	partID := c.Param("partID")

	err := h.svc.ConsumePart(c.Request.Context(), principalFrom(c), ticketID, partID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{
		"message": "part " + partID + " added to ticket " + ticketID,
	})
}

// ListParts handles GET /tickets/:id/parts.
func (h *TicketHandler) ListParts(c *gin.Context) {
	parts, err := h.svc.ListParts(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, parts)
}

package handler

import (
	"github.com/gearbox/workshop/internal/workshop/entity"
	"github.com/gearbox/workshop/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// MechanicHandler serves mechanic CRUD and role changes.
type MechanicHandler struct {
	svc *service.MechanicService
}

func NewMechanicHandler(svc *service.MechanicService) *MechanicHandler {
	return &MechanicHandler{svc: svc}
}

// Create handles POST /mechanics (public signup).
func (h *MechanicHandler) Create(c *gin.Context) {
	var req service.CreateMechanicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid mechanic payload: "+err.Error())
		return
	}

	mechanic, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, mechanic)
}

// List handles GET /mechanics.
func (h *MechanicHandler) List(c *gin.Context) {
	mechanics, err := h.svc.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, mechanics)
}

// Get handles GET /mechanics/:id.
func (h *MechanicHandler) Get(c *gin.Context) {
	mechanic, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, mechanic)
}

// Update handles PUT /mechanics/:id.
func (h *MechanicHandler) Update(c *gin.Context) {
	var req service.UpdateMechanicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid mechanic payload: "+err.Error())
		return
	}

	mechanic, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, mechanic)
}

// ChangeRoleRequest carries the new role tag.
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ChangeRole handles PUT /mechanics/:id/role (manager only).
func (h *MechanicHandler) ChangeRole(c *gin.Context) {
	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid role payload: "+err.Error())
		return
	}

	err := h.svc.ChangeRole(c.Request.Context(), principalFrom(c), c.Param("id"), entity.Role(req.Role))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"message": "role updated"})
}

// Delete handles DELETE /mechanics/:id.
func (h *MechanicHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"message": "mechanic deleted"})
}

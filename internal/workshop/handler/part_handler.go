package handler

import (
	"github.com/gearbox/workshop/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// PartHandler serves the part catalog and physical stock units.
type PartHandler struct {
	svc *service.InventoryService
}

func NewPartHandler(svc *service.InventoryService) *PartHandler {
	return &PartHandler{svc: svc}
}

// CreateDescription handles POST /parts (manager only).
func (h *PartHandler) CreateDescription(c *gin.Context) {
	var req service.CreateDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid part payload: "+err.Error())
		return
	}

	desc, err := h.svc.CreateDescription(c.Request.Context(), principalFrom(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, desc)
}

// ListDescriptions handles GET /parts.
func (h *PartHandler) ListDescriptions(c *gin.Context) {
	descs, err := h.svc.ListDescriptions(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, descs)
}

// GetDescription handles GET /parts/:id.
func (h *PartHandler) GetDescription(c *gin.Context) {
	desc, err := h.svc.GetDescription(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, desc)
}

// UpdateDescription handles PUT /parts/:id (manager only).
func (h *PartHandler) UpdateDescription(c *gin.Context) {
	var req service.UpdateDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid part payload: "+err.Error())
		return
	}

	desc, err := h.svc.UpdateDescription(c.Request.Context(), principalFrom(c), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, desc)
}

// DeleteDescription handles DELETE /parts/:id (manager only).
func (h *PartHandler) DeleteDescription(c *gin.Context) {
	err := h.svc.DeleteDescription(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"message": "catalog entry deleted"})
}

// CreateUnit handles POST /parts/units (manager only): one new physical
// unit of stock against an existing catalog entry.
func (h *PartHandler) CreateUnit(c *gin.Context) {
	var req service.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid unit payload: "+err.Error())
		return
	}

	part, err := h.svc.CreateUnit(c.Request.Context(), principalFrom(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, part)
}

// GetUnit handles GET /parts/units/:id.
func (h *PartHandler) GetUnit(c *gin.Context) {
	part, err := h.svc.GetUnit(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, part)
}

// RemapRequest carries the new catalog entry for a physical unit.
type RemapRequest struct {
	DescID string `json:"desc_id" binding:"required"`
}

// RemapUnit handles PUT /parts/units/:id/description (manager only).
func (h *PartHandler) RemapUnit(c *gin.Context) {
	var req RemapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid remap payload: "+err.Error())
		return
	}

	part, err := h.svc.RemapUnit(c.Request.Context(), principalFrom(c), c.Param("id"), req.DescID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, part)
}

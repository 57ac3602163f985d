package handler

import (
	"github.com/gearbox/workshop/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// CustomerHandler serves customer CRUD.
type CustomerHandler struct {
	svc *service.CustomerService
}

func NewCustomerHandler(svc *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

// Create handles POST /customers (public signup).
func (h *CustomerHandler) Create(c *gin.Context) {
	var req service.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid customer payload: "+err.Error())
		return
	}

	customer, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, customer)
}

// List handles GET /customers.
func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.svc.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, customers)
}

// Get handles GET /customers/:id.
func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, customer)
}

// Update handles PUT /customers/:id.
func (h *CustomerHandler) Update(c *gin.Context) {
	var req service.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid customer payload: "+err.Error())
		return
	}

	customer, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, customer)
}

// Delete handles DELETE /customers/:id. Owned tickets go with the customer.
func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"message": "customer deleted"})
}

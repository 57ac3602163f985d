package handler

import (
	"errors"

	"github.com/gearbox/workshop/internal/middleware"
	"github.com/gearbox/workshop/internal/workshop/entity"
	"github.com/gearbox/workshop/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP handlers.
type Handlers struct {
	Auth       *AuthHandler
	Customer   *CustomerHandler
	Mechanic   *MechanicHandler
	Ticket     *TicketHandler
	Part       *PartHandler
	Report     *ReportHandler
	Attachment *AttachmentHandler
}

// NewHandlers creates the handler bundle.
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc.Auth),
		Customer:   NewCustomerHandler(svc.Customer),
		Mechanic:   NewMechanicHandler(svc.Mechanic),
		Ticket:     NewTicketHandler(svc.Ticket),
		Part:       NewPartHandler(svc.Inventory),
		Report:     NewReportHandler(svc.Report),
		Attachment: NewAttachmentHandler(svc.Attachment),
	}
}

// Response is the common response envelope. Code is the business code; the
// HTTP status is code/100 for errors and 200/201 for success.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes an error envelope; the HTTP status is code/100.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// HandleError maps the service error taxonomy onto status-code families.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		Forbidden(c, err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNotAssigned):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidStatus):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		Conflict(c, err.Error())
	default:
		InternalError(c, "internal error")
	}
}

// principalFrom reads the JWT-resolved caller out of the gin context.
func principalFrom(c *gin.Context) service.Principal {
	return service.Principal{
		ID:   c.GetString(middleware.CtxPrincipalID),
		Role: entity.Role(c.GetString(middleware.CtxRole)),
	}
}

package handler

import (
	"time"

	"github.com/gearbox/workshop/internal/middleware"
	"github.com/gearbox/workshop/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler serves login, token refresh and logout.
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// LoginCustomer handles POST /customers/login.
func (h *AuthHandler) LoginCustomer(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid login payload: "+err.Error())
		return
	}

	pair, err := h.svc.LoginCustomer(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, pair)
}

// LoginMechanic handles POST /mechanics/login.
func (h *AuthHandler) LoginMechanic(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid login payload: "+err.Error())
		return
	}

	pair, err := h.svc.LoginMechanic(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, pair)
}

// RefreshRequest carries the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid refresh payload: "+err.Error())
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, pair)
}

// Logout handles POST /auth/logout: the presented access token is revoked
// until its natural expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	jti := c.GetString(middleware.CtxTokenID)
	expiry, _ := c.Get(middleware.CtxTokenExpiry)
	expiresAt, _ := expiry.(time.Time)

	if err := h.svc.Logout(c.Request.Context(), jti, expiresAt); err != nil {
		InternalError(c, "logout failed")
		return
	}
	Success(c, gin.H{"message": "logged out"})
}

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"clubledger/internal/domain/auth"
	"clubledger/internal/infrastructure/http/v1/dto"
	"clubledger/internal/infrastructure/http/v1/middleware"
)

// AuthService is the account surface used over HTTP.
type AuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.User, error)
	Login(ctx context.Context, creds auth.Credentials) (*auth.Token, *auth.User, error)
	Me(ctx context.Context, userID string) (*auth.User, error)
	ListUsers(ctx context.Context) ([]auth.User, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service AuthService
	// exposeResetCode returns reset codes in the response. Development only.
	exposeResetCode bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service AuthService, exposeResetCode bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler:     base,
		service:         service,
		exposeResetCode: exposeResetCode,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromUser(user))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLoginResponse(token, user))
}

// Logout handles POST /auth/logout. Tokens are stateless; the client drops it.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), h.GetUserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromUser(user))
}

// ListUsers handles GET /auth/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	response := make([]*dto.UserResponse, len(users))
	for i := range users {
		response[i] = dto.FromUser(&users[i])
	}

	c.JSON(http.StatusOK, gin.H{"items": response})
}

// RequestPasswordReset handles POST /auth/request-reset
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.PasswordResetRequest
	if !h.BindJSON(c, &req) {
		return
	}

	code, err := h.service.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.PasswordResetResponse{Sent: true}
	if h.exposeResetCode {
		resp.Code = code
	}
	c.JSON(http.StatusOK, resp)
}

// ResetPassword handles POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "password updated"})
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)
	public.POST("/request-reset", h.RequestPasswordReset)
	public.POST("/reset-password", h.ResetPassword)

	protected.POST("/logout", h.Logout)
	protected.GET("/me", h.Me)
	protected.GET("/users", middleware.RequireRole(auth.RoleAdmin), h.ListUsers)
}

package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"clubledger/internal/core/id"
	"clubledger/internal/domain/catalogs/club"
	"clubledger/internal/infrastructure/http/v1/dto"
)

// ClubService is the club surface used over HTTP.
type ClubService interface {
	Create(ctx context.Context, ownerID id.ID, in club.CreateInput) (*club.Club, error)
	Get(ctx context.Context, ownerID, clubID id.ID) (*club.Club, error)
	List(ctx context.Context, ownerID id.ID) ([]club.Club, error)
}

// ClubHandler handles /clubs.
type ClubHandler struct {
	*BaseHandler
	service ClubService
}

// NewClubHandler creates a new club handler.
func NewClubHandler(base *BaseHandler, service ClubService) *ClubHandler {
	return &ClubHandler{BaseHandler: base, service: service}
}

// List handles GET /clubs.
func (h *ClubHandler) List(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	clubs, err := h.service.List(c.Request.Context(), ownerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if clubs == nil {
		clubs = []club.Club{}
	}
	h.OK(c, gin.H{"items": clubs})
}

// Create handles POST /clubs.
func (h *ClubHandler) Create(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}
	var req dto.CreateClubRequest
	if !h.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), ownerID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, created)
}

// Get handles GET /clubs/:id.
func (h *ClubHandler) Get(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}
	clubID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	found, err := h.service.Get(c.Request.Context(), ownerID, clubID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, found)
}

package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"clubledger/internal/core/id"
	"clubledger/internal/domain"
	"clubledger/internal/infrastructure/http/v1/dto"
)

// ClubCRUDService is the service surface behind ClubCRUDHandler.
type ClubCRUDService[T domain.Record] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, clubID, entityID id.ID) (T, error)
	Delete(ctx context.Context, clubID, entityID id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)
}

// ClubCRUDHandler provides generic HTTP handlers for club-owned records.
type ClubCRUDHandler[T domain.Record, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service      ClubCRUDService[T]
	defaultOrder string

	createClub func(req *CreateDTO) string
	mapCreate  func(req *CreateDTO, clubID id.ID) T
	updateClub func(req *UpdateDTO) string
	edit       func(ctx context.Context, clubID, entityID id.ID, req *UpdateDTO) (T, error)
}

// ClubCRUDConfig configures a ClubCRUDHandler. Edit may be nil for
// records without a generic update.
type ClubCRUDConfig[T domain.Record, CreateDTO any, UpdateDTO any] struct {
	Service      ClubCRUDService[T]
	DefaultOrder string

	CreateClub func(req *CreateDTO) string
	MapCreate  func(req *CreateDTO, clubID id.ID) T
	UpdateClub func(req *UpdateDTO) string
	Edit       func(ctx context.Context, clubID, entityID id.ID, req *UpdateDTO) (T, error)
}

// NewClubCRUDHandler creates a new generic handler.
func NewClubCRUDHandler[T domain.Record, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg ClubCRUDConfig[T, CreateDTO, UpdateDTO],
) *ClubCRUDHandler[T, CreateDTO, UpdateDTO] {
	return &ClubCRUDHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		defaultOrder: cfg.DefaultOrder,
		createClub:   cfg.CreateClub,
		mapCreate:    cfg.MapCreate,
		updateClub:   cfg.UpdateClub,
		edit:         cfg.Edit,
	}
}

// List handles GET /{entity}?club= with search, category, date and paging.
func (h *ClubCRUDHandler[T, CreateDTO, UpdateDTO]) List(c *gin.Context) {
	sc, ok := h.ResolveScope(c)
	if !ok {
		return
	}

	filter := domain.DefaultListFilter()
	filter.ClubIDs = sc.IDs()
	filter.Search = c.Query("search")
	filter.Category = c.Query("category")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", h.defaultOrder)

	var err error
	if filter.From, err = h.ParseDateQuery(c, "from", false); err != nil {
		h.Error(c, err)
		return
	}
	if filter.To, err = h.ParseDateQuery(c, "to", true); err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromListResult(result, func(e T) T { return e }))
}

// Get handles GET /{entity}/:id?club=.
func (h *ClubCRUDHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	clubID, ok := h.ResolveClub(c, "")
	if !ok {
		return
	}
	entityID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	entity, err := h.service.GetByID(c.Request.Context(), clubID, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entity)
}

// Create handles POST /{entity}.
func (h *ClubCRUDHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}
	clubID, ok := h.ResolveClub(c, h.createClub(&req))
	if !ok {
		return
	}

	entity := h.mapCreate(&req, clubID)
	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entity)
}

// Update handles PUT /{entity}/:id.
func (h *ClubCRUDHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	entityID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}
	clubID, ok := h.ResolveClub(c, h.updateClub(&req))
	if !ok {
		return
	}

	updated, err := h.edit(c.Request.Context(), clubID, entityID, &req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, updated)
}

// Delete handles DELETE /{entity}/:id?club=.
func (h *ClubCRUDHandler[T, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	clubID, ok := h.ResolveClub(c, "")
	if !ok {
		return
	}
	entityID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), clubID, entityID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// CanUpdate reports whether Update is wired.
func (h *ClubCRUDHandler[T, CreateDTO, UpdateDTO]) CanUpdate() bool {
	return h.edit != nil && h.updateClub != nil
}

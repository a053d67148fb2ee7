package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"clubledger/internal/core/id"
	"clubledger/internal/domain"
	"clubledger/internal/domain/documents/sale"
	"clubledger/internal/infrastructure/http/v1/dto"
)

// SaleService is the sale surface used over HTTP.
type SaleService interface {
	CompleteSaleAtomically(ctx context.Context, s *sale.Sale) (*sale.Sale, error)
	GetByID(ctx context.Context, clubID, saleID id.ID) (*sale.Sale, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*sale.Sale], error)
}

// SaleHandler handles /sales.
type SaleHandler struct {
	*BaseHandler
	service SaleService
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service SaleService) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service}
}

// Create handles POST /sales.
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	clubID, ok := h.ResolveClub(c, req.Club)
	if !ok {
		return
	}

	s, err := h.service.CompleteSaleAtomically(c.Request.Context(), req.ToEntity(clubID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, s)
}

// List handles GET /sales?club=.
func (h *SaleHandler) List(c *gin.Context) {
	sc, ok := h.ResolveScope(c)
	if !ok {
		return
	}

	filter := domain.DefaultListFilter()
	filter.ClubIDs = sc.IDs()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-created_at")

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
	h.OK(c, dto.FromListResult(result, func(s *sale.Sale) *sale.Sale { return s }))
}

// Get handles GET /sales/:id?club=.
func (h *SaleHandler) Get(c *gin.Context) {
	clubID, ok := h.ResolveClub(c, "")
	if !ok {
		return
	}
	saleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), clubID, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

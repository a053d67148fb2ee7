package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"clubledger/internal/core/id"
	"clubledger/internal/domain/catalogs/product"
	"clubledger/internal/infrastructure/http/v1/dto"
)

// ProductService is the catalog surface used over HTTP.
type ProductService interface {
	ClubCRUDService[*product.Product]
	UpdatePrices(ctx context.Context, clubID, productID id.ID, upd product.PriceUpdate) (*product.Product, error)
}

// ProductHandler handles /products.
type ProductHandler struct {
	*ClubCRUDHandler[*product.Product, dto.CreateProductRequest, struct{}]
	service ProductService
}

// NewProductHandler creates the product handler.
func NewProductHandler(base *BaseHandler, service ProductService) *ProductHandler {
	crud := NewClubCRUDHandler(base, ClubCRUDConfig[*product.Product, dto.CreateProductRequest, struct{}]{
		Service:      service,
		DefaultOrder: "name",
		CreateClub:   func(r *dto.CreateProductRequest) string { return r.Club },
		MapCreate: func(r *dto.CreateProductRequest, clubID id.ID) *product.Product {
			return r.ToEntity(clubID)
		},
	})
	return &ProductHandler{ClubCRUDHandler: crud, service: service}
}

// UpdatePrices handles PATCH /products/:id/prices.
func (h *ProductHandler) UpdatePrices(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePricesRequest
	if !h.BindJSON(c, &req) {
		return
	}
	clubID, ok := h.ResolveClub(c, req.Club)
	if !ok {
		return
	}

	p, err := h.service.UpdatePrices(c.Request.Context(), clubID, productID, req.ToUpdate())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

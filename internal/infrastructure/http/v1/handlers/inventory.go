package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/domain/audit"
	"clubledger/internal/domain/registers/inventory"
	"clubledger/internal/infrastructure/http/v1/dto"
)

// InventoryService is the ledger surface used over HTTP.
type InventoryService interface {
	Adjust(ctx context.Context, in inventory.AdjustInput) (*inventory.AdjustResult, error)
	EditMovement(ctx context.Context, in inventory.EditInput) (*inventory.EditResult, error)
	DeleteMovement(ctx context.Context, clubID, movementID id.ID) (*inventory.DeleteResult, error)
	History(ctx context.Context, clubID, productID id.ID, limit, offset int) ([]entity.InventoryMovement, error)
	Records(ctx context.Context, clubIDs []id.ID) ([]inventory.StockItem, error)
	LowStock(ctx context.Context, clubIDs []id.ID, threshold int64) ([]inventory.StockItem, error)
	MovementAudit(ctx context.Context, clubID, movementID id.ID) ([]audit.Revision, error)
}

// InventoryHandler handles /inventory.
type InventoryHandler struct {
	*BaseHandler
	service InventoryService
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service InventoryService) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Adjust handles POST /inventory/adjust.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustRequest
	if !h.BindJSON(c, &req) {
		return
	}
	clubID, ok := h.ResolveClub(c, req.Club)
	if !ok {
		return
	}

	res, err := h.service.Adjust(c.Request.Context(), req.ToInput(clubID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, res)
}

// History handles GET /inventory/movements/:productId?club=.
func (h *InventoryHandler) History(c *gin.Context) {
	clubID, ok := h.ResolveClub(c, "")
	if !ok {
		return
	}
	productID, ok := h.ParseIDParam(c, "productId")
	if !ok {
		return
	}

	items, err := h.service.History(c.Request.Context(), clubID, productID,
		h.ParseIntQuery(c, "limit", 50), h.ParseIntQuery(c, "offset", 0))
	if err != nil {
		h.Error(c, err)
		return
	}
	if items == nil {
		items = []entity.InventoryMovement{}
	}
	h.OK(c, gin.H{"items": items})
}

// Audit handles GET /inventory/audit/:movementId?club=.
func (h *InventoryHandler) Audit(c *gin.Context) {
	clubID, ok := h.ResolveClub(c, "")
	if !ok {
		return
	}
	movementID, ok := h.ParseEntityParam(c, "movementId", "inventory_movement")
	if !ok {
		return
	}

	revs, err := h.service.MovementAudit(c.Request.Context(), clubID, movementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if revs == nil {
		revs = []audit.Revision{}
	}
	h.OK(c, gin.H{"items": revs})
}

// EditMovement handles PATCH /inventory/movements/:movementId.
func (h *InventoryHandler) EditMovement(c *gin.Context) {
	movementID, ok := h.ParseEntityParam(c, "movementId", "inventory_movement")
	if !ok {
		return
	}
	var req dto.EditMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}
	clubID, ok := h.ResolveClub(c, req.Club)
	if !ok {
		return
	}

	res, err := h.service.EditMovement(c.Request.Context(), req.ToInput(clubID, movementID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// DeleteMovement handles DELETE /inventory/movements/:movementId?club=.
func (h *InventoryHandler) DeleteMovement(c *gin.Context) {
	movementID, ok := h.ParseEntityParam(c, "movementId", "inventory_movement")
	if !ok {
		return
	}
	clubID, ok := h.ResolveClub(c, "")
	if !ok {
		return
	}

	res, err := h.service.DeleteMovement(c.Request.Context(), clubID, movementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// Records handles GET /inventory?club=.
func (h *InventoryHandler) Records(c *gin.Context) {
	sc, ok := h.ResolveScope(c)
	if !ok {
		return
	}

	items, err := h.service.Records(c.Request.Context(), sc.IDs())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": nonNilStock(items)})
}

// LowStock handles GET /inventory/low-stock?club=&threshold=.
func (h *InventoryHandler) LowStock(c *gin.Context) {
	var q dto.LowStockQuery
	if !h.BindQuery(c, &q) {
		return
	}
	sc, ok := h.ResolveScope(c)
	if !ok {
		return
	}
	threshold := q.Threshold
	if threshold == 0 {
		threshold = inventory.DefaultLowStockThreshold
	}

	items, err := h.service.LowStock(c.Request.Context(), sc.IDs(), threshold)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": nonNilStock(items), "threshold": threshold})
}

func nonNilStock(items []inventory.StockItem) []inventory.StockItem {
	if items == nil {
		return []inventory.StockItem{}
	}
	return items
}

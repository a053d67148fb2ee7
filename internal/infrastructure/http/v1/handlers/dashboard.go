package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"clubledger/internal/core/scope"
	"clubledger/internal/domain/dashboard"
)

// DashboardService computes the KPI strip.
type DashboardService interface {
	KPIs(ctx context.Context, ownerID string, sc scope.Scope) (*dashboard.KPIs, error)
}

// DashboardHandler handles /dashboard.
type DashboardHandler struct {
	*BaseHandler
	service DashboardService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(base *BaseHandler, service DashboardService) *DashboardHandler {
	return &DashboardHandler{BaseHandler: base, service: service}
}

// KPIs handles GET /dashboard/kpis?club=.
func (h *DashboardHandler) KPIs(c *gin.Context) {
	sc, ok := h.ResolveScope(c)
	if !ok {
		return
	}

	kpis, err := h.service.KPIs(c.Request.Context(), h.GetUserID(c), sc)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, kpis)
}

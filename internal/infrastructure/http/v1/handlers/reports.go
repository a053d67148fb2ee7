package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
	"clubledger/internal/domain/reports"
)

// ReportService is the reporting surface used over HTTP.
type ReportService interface {
	Generate(ctx context.Context, req reports.Request) (any, error)
	SalesExpenses(ctx context.Context, p period.Period, sc scope.Scope) ([]reports.SalesExpensesPoint, error)
	Export(ctx context.Context, req reports.Request, format reports.Format) (*reports.File, error)
}

// ReportsHandler handles /reports.
type ReportsHandler struct {
	*BaseHandler
	service ReportService
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service ReportService) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

func (h *ReportsHandler) request(c *gin.Context) (reports.Request, bool) {
	t, err := reports.ParseType(c.Query("type"))
	if err != nil {
		h.Error(c, err)
		return reports.Request{}, false
	}
	p, err := period.Parse(c.Query("period"))
	if err != nil {
		h.Error(c, err)
		return reports.Request{}, false
	}
	sc, ok := h.ResolveScope(c)
	if !ok {
		return reports.Request{}, false
	}
	return reports.Request{Type: t, Period: p, Scope: sc}, true
}

// Generate handles GET /reports?type=&period=&club=.
func (h *ReportsHandler) Generate(c *gin.Context) {
	req, ok := h.request(c)
	if !ok {
		return
	}

	report, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// SalesExpenses handles GET /reports/sales-expenses?period=&club=.
func (h *ReportsHandler) SalesExpenses(c *gin.Context) {
	p, err := period.Parse(c.Query("period"))
	if err != nil {
		h.Error(c, err)
		return
	}
	sc, ok := h.ResolveScope(c)
	if !ok {
		return
	}

	points, err := h.service.SalesExpenses(c.Request.Context(), p, sc)
	if err != nil {
		h.Error(c, err)
		return
	}
	if points == nil {
		points = []reports.SalesExpensesPoint{}
	}
	h.OK(c, points)
}

// Export handles GET /reports/export?type=&period=&club=&format=.
func (h *ReportsHandler) Export(c *gin.Context) {
	format, err := reports.ParseFormat(c.Query("format"))
	if err != nil {
		h.Error(c, err)
		return
	}
	req, ok := h.request(c)
	if !ok {
		return
	}

	file, err := h.service.Export(c.Request.Context(), req, format)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+file.Name)
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
	"clubledger/internal/domain/reports"
)

type fakeReports struct {
	last reports.Request
}

func (f *fakeReports) Generate(_ context.Context, req reports.Request) (any, error) {
	f.last = req
	return map[string]any{"type": req.Type}, nil
}

func (f *fakeReports) SalesExpenses(_ context.Context, p period.Period, sc scope.Scope) ([]reports.SalesExpensesPoint, error) {
	f.last = reports.Request{Period: p, Scope: sc}
	return nil, nil
}

func (f *fakeReports) Export(_ context.Context, req reports.Request, format reports.Format) (*reports.File, error) {
	return &reports.File{
		Name:        string(req.Type) + "_" + string(req.Period) + "_report." + string(format),
		ContentType: "text/csv; charset=utf-8",
		Body:        []byte("a,b\n1,2\n"),
	}, nil
}

func newReportsRouter(env *testEnv, svc *fakeReports) http.Handler {
	h := NewReportsHandler(env.base, svc)
	r := env.engine()
	r.GET("/reports", h.Generate)
	r.GET("/reports/sales-expenses", h.SalesExpenses)
	r.GET("/reports/export", h.Export)
	return r
}

func TestReportsHandler_Generate(t *testing.T) {
	env := newTestEnv()
	svc := &fakeReports{}
	r := newReportsRouter(env, svc)

	t.Run("defaults to monthly executive summary", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/reports?club="+env.clubA.String(), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, reports.TypeExecutiveSummary, svc.last.Type)
		assert.Equal(t, period.Monthly, svc.last.Period)
		assert.True(t, svc.last.Scope.IsSingle())
	})

	t.Run("unknown type is a bad request", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/reports?type=horoscope&club=global", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperror.CodeInvalidInput, decodeBody(t, w)["code"])
	})

	t.Run("unknown period is a bad request", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/reports?period=daily&club=global", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("absent club is a missing field", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/reports?type=sales", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperror.CodeMissingField, decodeBody(t, w)["code"])
	})

	t.Run("malformed club degrades to an empty scope", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/reports?type=sales&club=abc", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, svc.last.Scope.IsEmpty())
	})
}

func TestReportsHandler_SalesExpensesEmptyIsArray(t *testing.T) {
	env := newTestEnv()
	r := newReportsRouter(env, &fakeReports{})

	w := doJSON(t, r, http.MethodGet, "/reports/sales-expenses?period=weekly&club=global", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestReportsHandler_Export(t *testing.T) {
	env := newTestEnv()
	r := newReportsRouter(env, &fakeReports{})

	w := doJSON(t, r, http.MethodGet, "/reports/export?type=sales&period=weekly&club=global", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=sales_weekly_report.csv", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n1,2\n", w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/reports/export?type=sales&format=pdf&club=global", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

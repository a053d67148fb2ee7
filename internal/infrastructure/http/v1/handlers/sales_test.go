package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubledger/internal/core/id"
	"clubledger/internal/domain"
	"clubledger/internal/domain/documents/sale"
	"clubledger/internal/infrastructure/http/v1/middleware"
	"clubledger/internal/infrastructure/storage/postgres"
)

type fakeSales struct {
	completed int
}

func (f *fakeSales) CompleteSaleAtomically(ctx context.Context, s *sale.Sale) (*sale.Sale, error) {
	if err := s.Validate(ctx); err != nil {
		return nil, err
	}
	f.completed++
	s.Number = "V-2024-00001"
	s.Total = s.ComputeTotal()
	s.Status = sale.StatusCompleted
	return s, nil
}

func (f *fakeSales) GetByID(context.Context, id.ID, id.ID) (*sale.Sale, error) {
	return nil, nil
}

func (f *fakeSales) List(_ context.Context, filter domain.ListFilter) (domain.ListResult[*sale.Sale], error) {
	return domain.ListResult[*sale.Sale]{Items: []*sale.Sale{}, Limit: filter.Limit}, nil
}

type memIdempotency struct {
	mu      sync.Mutex
	done    map[string]*postgres.IdempotencyReplay
	pending map[string]bool
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{done: map[string]*postgres.IdempotencyReplay{}, pending: map[string]bool{}}
}

func (m *memIdempotency) AcquireKey(_ context.Context, key, _, _, _ string) (*postgres.IdempotencyReplay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.done[key]; ok {
		return r, nil
	}
	m.pending[key] = true
	return nil, nil
}

func (m *memIdempotency) CompleteKey(_ context.Context, key string, status int, ct string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, key)
	m.done[key] = &postgres.IdempotencyReplay{StatusCode: status, ContentType: ct, Body: body}
	return nil
}

func (m *memIdempotency) FailKey(ctx context.Context, key string, status int, ct string, body []byte) error {
	return m.CompleteKey(ctx, key, status, ct, body)
}

func (m *memIdempotency) ReleaseKey(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, key)
	return nil
}

func TestSaleHandler_CreateIsIdempotent(t *testing.T) {
	env := newTestEnv()
	svc := &fakeSales{}
	store := newMemIdempotency()

	h := NewSaleHandler(env.base, svc)
	r := env.engine()
	r.POST("/sales", middleware.Idempotency(store), h.Create)

	body := `{"club":"` + env.clubA.String() + `","items":[{"productId":"` + id.New().String() +
		`","quantity":2,"unitPrice":"10.50","type":"sealed"}]}`

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.HeaderIdempotencyKey, "key-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send()
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := send()

	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, svc.completed)
	assert.Equal(t, float64(21), decodeBody(t, first)["total"])
}

func TestSaleHandler_CreateRejectsEmptySale(t *testing.T) {
	env := newTestEnv()
	h := NewSaleHandler(env.base, &fakeSales{})
	r := env.engine()
	r.POST("/sales", h.Create)

	w := doJSON(t, r, http.MethodPost, "/sales", map[string]any{"club": env.clubA.String(), "items": []any{}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

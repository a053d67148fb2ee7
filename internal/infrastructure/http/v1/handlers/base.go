// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"clubledger/internal/core/apperror"
	appctx "clubledger/internal/core/context"
	"clubledger/internal/core/id"
	"clubledger/internal/core/scope"
	"clubledger/internal/infrastructure/http/v1/middleware"
	"clubledger/pkg/logger"
)

// ScopeResolver turns the club selector of a request into clubs the caller
// may access.
type ScopeResolver interface {
	Resolve(ctx context.Context, ownerID, raw string) (scope.Scope, error)
	ResolveClub(ctx context.Context, ownerID, raw string) (id.ID, error)
}

// BaseHandler provides common handler utilities.
type BaseHandler struct {
	scopes ScopeResolver
}

// NewBaseHandler creates a new base handler.
func NewBaseHandler(scopes ScopeResolver) *BaseHandler {
	return &BaseHandler{scopes: scopes}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers err on the gin context and aborts the request.
// The JSON body is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseIntQuery parses integer query parameter with default value.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseDateQuery parses a YYYY-MM-DD or RFC 3339 query value.
// end moves a bare date to the last millisecond of that day.
func (h *BaseHandler) ParseDateQuery(c *gin.Context, key string, end bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, apperror.NewInvalidInput(key, "expected YYYY-MM-DD or RFC 3339")
	}
	if end {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return &t, nil
}

// ParseIDParam parses a path id.
func (h *BaseHandler) ParseIDParam(c *gin.Context, name string) (id.ID, bool) {
	v, err := id.Parse(c.Param(name))
	if err != nil {
		h.Error(c, apperror.NewInvalidInput(name, "invalid id format"))
		return id.ID{}, false
	}
	return v, true
}

// ParseEntityParam parses a path id that names an existing row. A malformed
// id cannot match any row, so it is reported as not found.
func (h *BaseHandler) ParseEntityParam(c *gin.Context, name, entity string) (id.ID, bool) {
	raw := c.Param(name)
	v, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewNotFound(entity, raw))
		return id.ID{}, false
	}
	return v, true
}

// GetUserID extracts user ID from request context.
func (h *BaseHandler) GetUserID(c *gin.Context) string {
	return appctx.GetUserID(c.Request.Context())
}

// OwnerID returns the caller as a typed id.
func (h *BaseHandler) OwnerID(c *gin.Context) (id.ID, bool) {
	ownerID, err := id.Parse(h.GetUserID(c))
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return id.ID{}, false
	}
	return ownerID, true
}

// ResolveScope reads the club query parameter: a club id, or "global" for
// every club of the caller.
func (h *BaseHandler) ResolveScope(c *gin.Context) (scope.Scope, bool) {
	sc, err := h.scopes.Resolve(c.Request.Context(), h.GetUserID(c), c.Query("club"))
	if err != nil {
		h.Error(c, err)
		return scope.Scope{}, false
	}
	return sc, true
}

// ResolveClub requires one owned club, taken from the body value when
// present and from the club query parameter otherwise.
func (h *BaseHandler) ResolveClub(c *gin.Context, fromBody string) (id.ID, bool) {
	raw := fromBody
	if strings.TrimSpace(raw) == "" {
		raw = c.Query("club")
	}
	clubID, err := h.scopes.ResolveClub(c.Request.Context(), h.GetUserID(c), raw)
	if err != nil {
		h.Error(c, err)
		return id.ID{}, false
	}
	return clubID, true
}

// CompleteIdempotency stores the response for replay when the request
// carried an idempotency key.
func (h *BaseHandler) CompleteIdempotency(c *gin.Context, statusCode int, contentType string, response any) {
	key, store, ok := middleware.IdempotencyFrom(c)
	if !ok {
		return
	}
	var body []byte
	if response != nil {
		raw, err := json.Marshal(response)
		if err != nil {
			return
		}
		body = raw
	}
	if err := store.CompleteKey(c.Request.Context(), key, statusCode, contentType, body); err != nil {
		logger.Warn(c.Request.Context(), "complete idempotency key failed", "key", key, "error", err)
	}
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	h.CompleteIdempotency(c, http.StatusCreated, "application/json; charset=utf-8", data)
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	h.CompleteIdempotency(c, http.StatusOK, "application/json; charset=utf-8", data)
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	// 204 must replay as 204 with empty body.
	h.CompleteIdempotency(c, http.StatusNoContent, "", nil)
	c.Status(http.StatusNoContent)
}

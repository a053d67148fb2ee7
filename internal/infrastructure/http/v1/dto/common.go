// Package dto provides data transfer objects for HTTP API.
package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"clubledger/internal/domain"
)

// --- Pagination ---

// PageQuery contains limit/offset paging parameters.
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// Defaults sets default paging values.
func (p *PageQuery) Defaults() {
	if p.Limit == 0 {
		p.Limit = 50
	}
}

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// FromListResult maps a domain page.
func FromListResult[E any, T any](r domain.ListResult[E], fn func(E) T) ListResponse[T] {
	items := make([]T, len(r.Items))
	for i, e := range r.Items {
		items[i] = fn(e)
	}
	return ListResponse[T]{Items: items, TotalCount: r.TotalCount, Limit: r.Limit, Offset: r.Offset}
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// LooseInt accepts a JSON number or a numeric string. Anything else
// decodes to an invalid value instead of failing the whole body.
type LooseInt struct {
	Value int64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *LooseInt) UnmarshalJSON(data []byte) error {
	*n = LooseInt{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
	} else {
		raw = string(data)
	}

	raw = strings.TrimSpace(raw)
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*n = LooseInt{Value: v, Valid: true}
		return nil
	}
	// Whole floats like 5.0 are accepted.
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == float64(int64(f)) {
		*n = LooseInt{Value: int64(f), Valid: true}
	}
	return nil
}

// Ptr returns nil when the value is invalid.
func (n LooseInt) Ptr() *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubledger/internal/core/apperror"
)

func errorEngine(err error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Trace(nil), ErrorHandler())
	r.GET("/", func(c *gin.Context) {
		_ = c.Error(err)
		c.Abort()
	})
	return r
}

func serve(t *testing.T, r http.Handler, header string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(HeaderRequestID, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestErrorHandler(t *testing.T) {
	t.Run("client error keeps code and details", func(t *testing.T) {
		w, body := serve(t, errorEngine(apperror.NewMissingField("club")), "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperror.CodeMissingField, body["code"])
	})

	t.Run("internal cause is hidden", func(t *testing.T) {
		w, body := serve(t, errorEngine(apperror.NewInternal(errors.New("pq: password=secret"))), "req-1")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, apperror.CodeInternal, body["code"])
		assert.NotContains(t, w.Body.String(), "secret")
		assert.Equal(t, map[string]any{"request_id": "req-1"}, body["details"])
	})

	t.Run("plain error is internal", func(t *testing.T) {
		w, body := serve(t, errorEngine(errors.New("boom")), "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal server error", body["message"])
	})
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appctx "clubledger/internal/core/context"
	"clubledger/internal/core/id"
	"clubledger/internal/core/scope"
	"clubledger/internal/infrastructure/http/v1/dto"
	"clubledger/internal/infrastructure/http/v1/middleware"
)

type ownedClubs map[string][]id.ID

func (o ownedClubs) ListIDsByOwner(_ context.Context, ownerID string) ([]id.ID, error) {
	return o[ownerID], nil
}

type testEnv struct {
	ownerID string
	clubA   id.ID
	clubB   id.ID
	foreign id.ID
	base    *BaseHandler
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)
	if err := dto.RegisterValidators(); err != nil {
		panic(err)
	}
	env := &testEnv{
		ownerID: id.New().String(),
		clubA:   id.New(),
		clubB:   id.New(),
		foreign: id.New(),
	}
	clubs := ownedClubs{env.ownerID: {env.clubA, env.clubB}}
	env.base = NewBaseHandler(scope.NewResolver(clubs))
	return env
}

// engine returns a router that authenticates every request as the env owner.
func (e *testEnv) engine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		ctx := appctx.WithUser(c.Request.Context(), &appctx.UserContext{UserID: e.ownerID, Role: "owner"})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

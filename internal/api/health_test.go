package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/platewise/backend/internal/catalog"
	"github.com/platewise/backend/internal/logging"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cat := catalog.New([]catalog.Entry{{Name: "dosa", Calories: 168}})

	tests := []struct {
		name       string
		ping       error
		wantStatus int
		wantBody   string
	}{
		{"healthy", nil, http.StatusOK, `{"status":"healthy","catalog_entries":1,"catalog_status":"ok"}`},
		{"db down", errors.New("connection refused"), http.StatusServiceUnavailable,
			`{"status":"unhealthy","catalog_entries":1,"catalog_status":"ok","error":"database unavailable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			NewHealthHandler(pingerFunc(func(context.Context) error { return tt.ping }), cat).RegisterRoutes(router)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestHealthDegradedCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cat, err := catalog.Load(t.TempDir()+"/missing.json", logging.Discard())
	if err != nil {
		t.Fatal(err)
	}

	router := gin.New()
	NewHealthHandler(pingerFunc(func(context.Context) error { return nil }), cat).RegisterRoutes(router)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Contains(t, w.Body.String(), `"catalog_status":"degraded"`)
}

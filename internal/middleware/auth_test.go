package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/platewise/backend/internal/mocks"
	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/service"
)

func newAuthRouter(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", AuthMiddleware(auth), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		fromCtx, _ := UserFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"id":     user.ID,
			"ctx_id": fromCtx.ID,
			"token":  c.GetString(ContextTokenKey),
		})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	user := &models.User{ID: 42}

	tests := []struct {
		name       string
		headers    map[string]string
		setup      func(m *mocks.MockAuthService)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no header",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"authentication credentials were not provided"}`,
		},
		{
			name:       "wrong scheme",
			headers:    map[string]string{"Authorization": "Token abc"},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"authentication credentials were not provided"}`,
		},
		{
			name:       "bearer without token",
			headers:    map[string]string{"Authorization": "Bearer"},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"authentication credentials were not provided"}`,
		},
		{
			name:       "extra segments after token",
			headers:    map[string]string{"Authorization": "Bearer good extra"},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"authentication credentials were not provided"}`,
		},
		{
			name:    "valid token",
			headers: map[string]string{"Authorization": "Bearer good"},
			setup: func(m *mocks.MockAuthService) {
				m.On("Authenticate", mock.Anything, "good").Return(user, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"id":42,"ctx_id":42,"token":"good"}`,
		},
		{
			name:    "forwarded header fallback",
			headers: map[string]string{ForwardedAuthHeader: "Bearer fwd"},
			setup: func(m *mocks.MockAuthService) {
				m.On("Authenticate", mock.Anything, "fwd").Return(user, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"id":42,"ctx_id":42,"token":"fwd"}`,
		},
		{
			name: "primary header wins",
			headers: map[string]string{
				"Authorization":     "Bearer primary",
				ForwardedAuthHeader: "Bearer fwd",
			},
			setup: func(m *mocks.MockAuthService) {
				m.On("Authenticate", mock.Anything, "primary").Return(user, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"id":42,"ctx_id":42,"token":"primary"}`,
		},
		{
			name:    "expired token",
			headers: map[string]string{"Authorization": "Bearer old"},
			setup: func(m *mocks.MockAuthService) {
				m.On("Authenticate", mock.Anything, "old").
					Return(nil, fmt.Errorf("%w: token has expired", service.ErrUnauthenticated))
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"token has expired"}`,
		},
		{
			name:    "store failure",
			headers: map[string]string{"Authorization": "Bearer x"},
			setup: func(m *mocks.MockAuthService) {
				m.On("Authenticate", mock.Anything, "x").
					Return(nil, fmt.Errorf("%w: connection refused", service.ErrStorage))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(mocks.MockAuthService)
			if tt.setup != nil {
				tt.setup(auth)
			}

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			newAuthRouter(auth).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			auth.AssertExpectations(t)
		})
	}
}

func TestCurrentUserMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := CurrentUser(c)
	assert.False(t, ok)
	_, ok = UserFromContext(c.Request.Context())
	assert.False(t, ok)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS([]string{"http://localhost:5173"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

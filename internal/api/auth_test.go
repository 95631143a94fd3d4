package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/platewise/backend/internal/logging"
	"github.com/platewise/backend/internal/mocks"
	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/service"
	"github.com/platewise/backend/internal/types"
)

func TestGoogleLogin(t *testing.T) {
	sub := "sub-123"
	user := &models.User{ID: 1, GoogleID: &sub, Email: "a@example.com", Name: "Asha"}

	authService := new(mocks.MockAuthService)
	authService.On("LoginWithGoogle", mock.Anything, "id-token").
		Return(&service.LoginResult{User: user, Token: "jwt", ProfileIncomplete: true}, nil).Once()

	router := newTestRouter(nil, NewAuthHandler(authService, logging.Discard()))
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/google", types.GoogleLoginRequest{Token: "id-token"})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "jwt", body["token"])
	assert.Equal(t, true, body["profileIncomplete"])
	u := body["user"].(map[string]any)
	assert.Equal(t, "sub-123", u["googleId"])
	assert.Equal(t, "Asha", u["name"])
	assert.NotContains(t, u, "Username")
	authService.AssertExpectations(t)
}

func TestGoogleLoginErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		token      string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "malformed body",
			body:       `{"token":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "missing token",
			body:       `{}`,
			token:      "",
			err:        fmt.Errorf("%w: token missing", service.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantError:  "token missing",
		},
		{
			name:       "rejected by provider",
			body:       types.GoogleLoginRequest{Token: "forged"},
			token:      "forged",
			err:        fmt.Errorf("%w: idtoken: invalid signature", service.ErrInvalidCredential),
			wantStatus: http.StatusBadRequest,
			wantError:  "idtoken: invalid signature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authService := new(mocks.MockAuthService)
			if tt.err != nil {
				authService.On("LoginWithGoogle", mock.Anything, tt.token).Return(nil, tt.err).Once()
			}

			router := newTestRouter(nil, NewAuthHandler(authService, logging.Discard()))
			w := doJSON(t, router, http.MethodPost, "/api/v1/auth/google", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, decode(t, w)["error"])
			authService.AssertExpectations(t)
		})
	}
}

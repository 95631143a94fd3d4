package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platewise/backend/internal/identity"
	"github.com/platewise/backend/internal/logging"
	"github.com/platewise/backend/internal/mocks"
	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/service"
	"github.com/platewise/backend/internal/testhelpers"
)

const testSecret = "test-secret"

type authFixture struct {
	db       *gorm.DB
	svc      *service.AuthService
	verifier *mocks.MockVerifier
	now      time.Time
}

func setupAuthTest(t *testing.T) *authFixture {
	f := &authFixture{
		db:       testhelpers.NewSQLiteDB(t),
		verifier: new(mocks.MockVerifier),
		now:      time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
	f.svc = service.NewAuthService(f.db, testSecret, 24*time.Hour, f.verifier, logging.Discard()).
		WithClock(func() time.Time { return f.now })
	return f
}

func TestLoginWithGoogleCreatesUser(t *testing.T) {
	f := setupAuthTest(t)
	f.verifier.On("Verify", mock.Anything, "id-token").
		Return(&identity.Claims{Subject: "sub-1", Email: "asha@example.com"}, nil)

	res, err := f.svc.LoginWithGoogle(context.Background(), "id-token")
	require.NoError(t, err)

	assert.NotZero(t, res.User.ID)
	assert.Equal(t, "sub-1", res.User.SubjectID())
	assert.Equal(t, "sub-1", res.User.Username)
	assert.Equal(t, "asha@example.com", res.User.Email)
	assert.Equal(t, "User", res.User.Name)
	assert.True(t, res.ProfileIncomplete)
	assert.NotEmpty(t, res.Token)

	claims, err := f.svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", claims.GoogleID)
	assert.Equal(t, f.now.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())
	f.verifier.AssertExpectations(t)
}

func TestLoginWithGoogleIsIdempotent(t *testing.T) {
	f := setupAuthTest(t)
	f.verifier.On("Verify", mock.Anything, "first").
		Return(&identity.Claims{Subject: "sub-2", Email: "a@example.com", Name: "Asha"}, nil)
	f.verifier.On("Verify", mock.Anything, "second").
		Return(&identity.Claims{Subject: "sub-2", Email: "changed@example.com", Name: "Someone Else"}, nil)

	first, err := f.svc.LoginWithGoogle(context.Background(), "first")
	require.NoError(t, err)

	// the user completes their profile between logins
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", first.User.ID).
		Updates(map[string]any{"profile_filled": true, "name": "Asha K"}).Error)

	second, err := f.svc.LoginWithGoogle(context.Background(), "second")
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "Asha K", second.User.Name)
	assert.Equal(t, "a@example.com", second.User.Email)
	assert.False(t, second.ProfileIncomplete)

	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLoginWithGoogleRejectsBadInput(t *testing.T) {
	f := setupAuthTest(t)

	_, err := f.svc.LoginWithGoogle(context.Background(), "  ")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	f.verifier.On("Verify", mock.Anything, "forged").Return(nil, identity.ErrInvalidToken)
	_, err = f.svc.LoginWithGoogle(context.Background(), "forged")
	assert.ErrorIs(t, err, service.ErrInvalidCredential)
}

func TestValidateToken(t *testing.T) {
	f := setupAuthTest(t)

	sign := func(method jwt.SigningMethod, claims jwt.Claims, key any) string {
		tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return tok
	}
	exp := f.now.Add(time.Hour).Unix()

	valid, err := f.svc.GenerateToken("sub-3")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantMsg string
	}{
		{
			name:  "valid",
			token: valid,
		},
		{
			name:    "wrong secret",
			token:   sign(jwt.SigningMethodHS256, jwt.MapClaims{"googleId": "x", "exp": exp}, []byte("other")),
			wantMsg: "invalid token",
		},
		{
			name:    "wrong algorithm",
			token:   sign(jwt.SigningMethodHS512, jwt.MapClaims{"googleId": "x", "exp": exp}, []byte(testSecret)),
			wantMsg: "invalid token",
		},
		{
			name:    "unsigned",
			token:   sign(jwt.SigningMethodNone, jwt.MapClaims{"googleId": "x", "exp": exp}, jwt.UnsafeAllowNoneSignatureType),
			wantMsg: "invalid token",
		},
		{
			name:    "missing exp",
			token:   sign(jwt.SigningMethodHS256, jwt.MapClaims{"googleId": "x"}, []byte(testSecret)),
			wantMsg: "invalid token",
		},
		{
			name:    "missing googleId",
			token:   sign(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp}, []byte(testSecret)),
			wantMsg: "token payload missing googleId",
		},
		{
			name:    "garbage",
			token:   "not.a.token",
			wantMsg: "invalid token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := f.svc.ValidateToken(tt.token)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, "sub-3", claims.GoogleID)
				return
			}
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, service.ErrUnauthenticated)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateTokenExpired(t *testing.T) {
	f := setupAuthTest(t)
	user := testhelpers.CreateUser(t, f.db, "sub-4")

	tok, err := f.svc.GenerateToken(user.SubjectID())
	require.NoError(t, err)

	f.now = f.now.Add(24*time.Hour + time.Second)

	_, err = f.svc.ValidateToken(tok)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "token has expired")

	_, err = f.svc.Authenticate(context.Background(), tok)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestAuthenticate(t *testing.T) {
	f := setupAuthTest(t)
	user := testhelpers.CreateUser(t, f.db, "sub-5")

	tok, err := f.svc.GenerateToken("sub-5")
	require.NoError(t, err)

	got, err := f.svc.Authenticate(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	orphan, err := f.svc.GenerateToken("nobody")
	require.NoError(t, err)
	_, err = f.svc.Authenticate(context.Background(), orphan)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "user not found")
}

func TestConcurrentFirstLoginCreatesOneUser(t *testing.T) {
	pg := testhelpers.NewPostgresDB(t)

	verifier := new(mocks.MockVerifier)
	verifier.On("Verify", mock.Anything, mock.Anything).
		Return(&identity.Claims{Subject: "race-sub", Email: "race@example.com"}, nil)
	svc := service.NewAuthService(pg.Gorm, testSecret, time.Hour, verifier, logging.Discard())

	const n = 8
	ids := make([]uint, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.LoginWithGoogle(context.Background(), "tok")
			errs[i] = err
			if err == nil {
				ids[i] = res.User.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	var count int64
	require.NoError(t, pg.Gorm.Model(&models.User{}).Where("google_id = ?", "race-sub").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestExternalServiceErrorMatchesSentinel(t *testing.T) {
	err := &service.ExternalServiceError{Op: "food detection failed", Detail: "timeout", Err: context.DeadlineExceeded}
	assert.ErrorIs(t, err, service.ErrExternalService)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, errors.Is(err, service.ErrStorage))
	assert.Equal(t, "food detection failed: timeout", err.Error())
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/platewise/backend/internal/identity"
	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/types"
)

// DefaultTokenTTL is how long an issued session token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// LoginResult is returned by a successful external-identity login.
type LoginResult struct {
	User              *models.User
	Token             string
	ProfileIncomplete bool
}

type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
	tokenTTL  time.Duration
	verifier  identity.Verifier
	logger    *slog.Logger
	now       func() time.Time
}

var _ IAuthService = (*AuthService)(nil)

func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration, verifier identity.Verifier, logger *slog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthService{
		db:        db,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		verifier:  verifier,
		logger:    logger.With("component", "auth"),
		now:       time.Now,
	}
}

// WithClock replaces the time source used for issuing and checking tokens.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// LoginWithGoogle verifies an identity-provider token, creates the user on
// first sight and issues a session token.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*LoginResult, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, fmt.Errorf("%w: token missing", ErrInvalidInput)
	}

	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	user, err := s.upsertUser(ctx, claims)
	if err != nil {
		return nil, err
	}

	token, err := s.GenerateToken(user.SubjectID())
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:              user,
		Token:             token,
		ProfileIncomplete: !user.ProfileFilled,
	}, nil
}

// upsertUser inserts the user unless the subject already exists and then
// reads it back, all in one transaction. The unique index on google_id
// makes concurrent first logins converge on a single row.
func (s *AuthService) upsertUser(ctx context.Context, claims *identity.Claims) (*models.User, error) {
	subject := claims.Subject
	name := claims.Name
	if name == "" {
		name = "User"
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate := models.User{
			GoogleID: &subject,
			Username: subject,
			Email:    claims.Email,
			Name:     name,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "google_id"}},
			DoNothing: true,
		}).Create(&candidate)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			s.logger.InfoContext(ctx, "user created", "user_id", candidate.ID)
		}
		return tx.Where("google_id = ?", subject).First(&user).Error
	})
	if err != nil {
		return nil, fmt.Errorf("%w: upsert user: %v", ErrStorage, err)
	}
	return &user, nil
}

// GenerateToken signs a session token for the given subject id.
func (s *AuthService) GenerateToken(googleID string) (string, error) {
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(s.tokenTTL)),
		},
		GoogleID: googleID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken checks signature, algorithm and expiry and returns the
// claims. All failures wrap ErrUnauthenticated.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: token has expired", ErrUnauthenticated)
	case err != nil, !token.Valid:
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	case claims.GoogleID == "":
		return nil, fmt.Errorf("%w: token payload missing googleId", ErrUnauthenticated)
	}

	return claims, nil
}

// Authenticate resolves a bearer token to its user without side effects.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("google_id = ?", claims.GoogleID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user not found", ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load user: %v", ErrStorage, err)
	}
	return &user, nil
}

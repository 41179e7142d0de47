package crypto

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/finhealth/finhealth/internal/config"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

// AccessClaims are the JWT claims carried by a FinHealth access token.
// Subject is the user ID.
type AccessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	logger logger.Logger
}

// NewTokenManager builds the token manager from JWT configuration.
func NewTokenManager(cfg *config.JWTConfig, log logger.Logger) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		logger: log.WithComponent("TokenManager"),
	}
}

// Issue signs a new access token for the user.
func (m *TokenManager) Issue(ctx context.Context, userID, email string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)

	claims := AccessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		m.logger.Error(ctx, "Failed to sign access token", err)
		return "", time.Time{}, apperrors.ErrInternal.WithError(err)
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a bearer token string.
func (m *TokenManager) Verify(ctx context.Context, tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired()
		}
		return nil, apperrors.ErrInvalidToken().WithError(err)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, apperrors.ErrInvalidToken()
	}
	return claims, nil
}

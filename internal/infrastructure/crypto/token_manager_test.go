package crypto

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

func testTokenManager(ttl time.Duration) *TokenManager {
	return NewTokenManager(&config.JWTConfig{
		Secret:   "test-secret-test-secret-test-secret",
		Issuer:   "finhealth",
		TokenTTL: ttl,
	}, logger.NewNop())
}

func TestTokenManagerIssueAndVerify(t *testing.T) {
	m := testTokenManager(time.Hour)
	ctx := context.Background()

	signed, expiresAt, err := m.Issue(ctx, "user-123", "owner@acme.in")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Verify(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "owner@acme.in", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManagerRejectsExpiredToken(t *testing.T) {
	m := testTokenManager(-time.Minute)
	ctx := context.Background()

	signed, _, err := m.Issue(ctx, "user-123", "owner@acme.in")
	require.NoError(t, err)

	_, err = m.Verify(ctx, signed)
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, constants.ErrCodeUnauthorized, appErr.Code)
	assert.Contains(t, appErr.Description, "expired")
}

func TestTokenManagerRejectsForeignSignature(t *testing.T) {
	m := testTokenManager(time.Hour)
	other := NewTokenManager(&config.JWTConfig{
		Secret:   "a-completely-different-secret-value",
		Issuer:   "finhealth",
		TokenTTL: time.Hour,
	}, logger.NewNop())
	ctx := context.Background()

	signed, _, err := other.Issue(ctx, "user-123", "owner@acme.in")
	require.NoError(t, err)

	_, err = m.Verify(ctx, signed)
	assert.Error(t, err)
}

func TestTokenManagerRejectsGarbage(t *testing.T) {
	m := testTokenManager(time.Hour)

	_, err := m.Verify(context.Background(), "not-a-jwt")
	assert.Error(t, err)
}

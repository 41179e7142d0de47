package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
)

func TestAuthRegisterWithCompany(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, &dto.RegisterRequest{
		Email:       "founder@acme.in",
		Password:    "s3cret-pass",
		FullName:    "Founder",
		CompanyName: "Acme Traders",
		Industry:    "Retail",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User.DefaultCompanyID)

	membership, err := env.companies.FindMembership(ctx, resp.User.ID, *resp.User.DefaultCompanyID)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleOwner, membership.Role)
}

func TestAuthRegisterWithoutCompany(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.auth.Register(context.Background(), &dto.RegisterRequest{
		Email:    "solo@acme.in",
		Password: "s3cret-pass",
		FullName: "Solo",
	})
	require.NoError(t, err)
	assert.Nil(t, resp.User.DefaultCompanyID)
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	registerOwner(t, env, "owner@acme.in")

	_, err := env.auth.Register(context.Background(), &dto.RegisterRequest{
		Email:    "owner@acme.in",
		Password: "another-pass",
		FullName: "Impostor",
	})
	require.Error(t, err)
	assert.Equal(t, constants.ErrCodeConflict, apperrors.AsAppError(err).Code)
}

func TestAuthLogin(t *testing.T) {
	env := newTestEnv(t)
	registerOwner(t, env, "owner@acme.in")
	ctx := context.Background()

	resp, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "owner@acme.in", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = env.auth.Login(ctx, &dto.LoginRequest{Email: "owner@acme.in", Password: "wrong-pass"})
	require.Error(t, err)
	assert.Equal(t, constants.ErrCodeUnauthorized, apperrors.AsAppError(err).Code)

	_, err = env.auth.Login(ctx, &dto.LoginRequest{Email: "nobody@acme.in", Password: "s3cret-pass"})
	require.Error(t, err)
	assert.Equal(t, constants.ErrCodeUnauthorized, apperrors.AsAppError(err).Code)
}

func TestAuthMe(t *testing.T) {
	env := newTestEnv(t)
	userID, companyID := registerOwner(t, env, "owner@acme.in")

	me, err := env.auth.Me(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "owner@acme.in", me.User.Email)
	require.Len(t, me.Companies, 1)
	assert.Equal(t, companyID, me.Companies[0].ID)
}

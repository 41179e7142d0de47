// Package service contains the application services that orchestrate
// domain engines, repositories and infrastructure behind the HTTP API.
package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/domain/repository"
	"github.com/finhealth/finhealth/internal/infrastructure/crypto"
	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

// AuthService registers and authenticates users.
type AuthService struct {
	users     repository.UserRepository
	companies repository.CompanyRepository
	tokens    *crypto.TokenManager
	logger    logger.Logger
}

// NewAuthService wires the auth service.
func NewAuthService(
	users repository.UserRepository,
	companies repository.CompanyRepository,
	tokens *crypto.TokenManager,
	log logger.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		companies: companies,
		tokens:    tokens,
		logger:    log.WithComponent("AuthService"),
	}
}

// Register creates the user and, when a company name is supplied, their
// first company with an owner membership.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), constants.BcryptCost)
	if err != nil {
		s.logger.Error(ctx, "Password hashing failed", err)
		return nil, apperrors.ErrInternal.WithError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if req.CompanyName != "" {
		company := &models.Company{Name: req.CompanyName, Industry: req.Industry}
		if err := s.companies.Create(ctx, company); err != nil {
			return nil, err
		}
		membership := &models.UserCompany{
			UserID:    user.ID,
			CompanyID: company.ID,
			Role:      constants.RoleOwner,
		}
		if err := s.companies.AddMember(ctx, membership); err != nil {
			return nil, err
		}
		user.DefaultCompanyID = &company.ID
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	s.logger.Info(ctx, "User registered",
		logger.String("user_id", user.ID),
		logger.String("email", user.Email),
	)
	return s.respondWithToken(ctx, user)
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		// Same response for unknown email and bad password.
		return nil, apperrors.ErrInvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn(ctx, "Login failed", logger.String("email", req.Email))
		return nil, apperrors.ErrInvalidCredentials()
	}

	return s.respondWithToken(ctx, user)
}

// Me returns the user and the companies they belong to.
func (s *AuthService) Me(ctx context.Context, userID string) (*dto.MeResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	companies, err := s.companies.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.MeResponse{User: user, Companies: companies}, nil
}

func (s *AuthService) respondWithToken(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

package service

import (
	"context"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/domain/repository"
	"github.com/finhealth/finhealth/internal/infrastructure/audit"
	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
	"github.com/finhealth/finhealth/pkg/utils"
)

// CompanyService manages tenants and memberships.
type CompanyService struct {
	companies repository.CompanyRepository
	users     repository.UserRepository
	recorder  audit.Recorder
	logger    logger.Logger
}

// NewCompanyService wires the company service.
func NewCompanyService(
	companies repository.CompanyRepository,
	users repository.UserRepository,
	recorder audit.Recorder,
	log logger.Logger,
) *CompanyService {
	return &CompanyService{
		companies: companies,
		users:     users,
		recorder:  recorder,
		logger:    log.WithComponent("CompanyService"),
	}
}

// Create registers a company with the caller as owner. The first
// company becomes the user's default.
func (s *CompanyService) Create(ctx context.Context, userID string, req *dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	// 0 means unset; the model defaults it to the fiscal year start.
	if req.FiscalYearStartMonth < 0 || req.FiscalYearStartMonth > 12 {
		return nil, apperrors.ErrInvalidRequest.WithDescription("fiscal_year_start_month must be 1..12, or 0 for the default")
	}

	company := &models.Company{
		Name:                 req.Name,
		Industry:             req.Industry,
		Currency:             req.Currency,
		FiscalYearStartMonth: req.FiscalYearStartMonth,
		GSTIN:                req.GSTIN,
		PAN:                  req.PAN,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, err
	}

	membership := &models.UserCompany{
		UserID:    userID,
		CompanyID: company.ID,
		Role:      constants.RoleOwner,
	}
	if err := s.companies.AddMember(ctx, membership); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err == nil && user.DefaultCompanyID == nil {
		user.DefaultCompanyID = &company.ID
		if err := s.users.Update(ctx, user); err != nil {
			s.logger.Warn(ctx, "Failed to set default company",
				logger.String("user_id", userID),
				logger.String("error", err.Error()),
			)
		}
	}

	s.recorder.Record(ctx, &models.AuditEvent{
		UserID:    userID,
		CompanyID: company.ID,
		Action:    "company_created",
		Resource:  "company",
		ResourceID: company.ID,
	})

	s.logger.Info(ctx, "Company created",
		logger.String("company_id", company.ID),
		logger.String("owner_id", userID),
	)
	return &dto.CompanyResponse{Company: company, Role: constants.RoleOwner}, nil
}

// List returns every company the user belongs to.
func (s *CompanyService) List(ctx context.Context, userID string) ([]*models.Company, error) {
	return s.companies.ListForUser(ctx, userID)
}

// Get returns one company the user is a member of.
func (s *CompanyService) Get(ctx context.Context, userID, companyID string) (*dto.CompanyResponse, error) {
	membership, err := s.companies.FindMembership(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return &dto.CompanyResponse{Company: company, Role: membership.Role}, nil
}

// Update patches the company profile. Only managing roles may update.
func (s *CompanyService) Update(ctx context.Context, userID, companyID string, req *dto.UpdateCompanyRequest) (*models.Company, error) {
	membership, err := s.companies.FindMembership(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if !membership.Role.CanManage() {
		return nil, apperrors.ErrForbidden.WithDescription("role %s cannot update company settings", membership.Role)
	}

	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	old := *company
	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.Industry != nil {
		company.Industry = *req.Industry
	}
	if req.Currency != nil {
		if !utils.IsValidCurrency(*req.Currency) {
			return nil, apperrors.ErrInvalidRequest.WithDescription("currency must be an ISO 4217 code")
		}
		company.Currency = *req.Currency
	}
	if req.FiscalYearStartMonth != nil {
		if *req.FiscalYearStartMonth < 1 || *req.FiscalYearStartMonth > 12 {
			return nil, apperrors.ErrInvalidRequest.WithDescription("fiscal_year_start_month must be 1..12")
		}
		company.FiscalYearStartMonth = *req.FiscalYearStartMonth
	}
	if req.GSTIN != nil {
		company.GSTIN = *req.GSTIN
	}
	if req.PAN != nil {
		company.PAN = *req.PAN
	}

	if err := s.companies.Update(ctx, company); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, &models.AuditEvent{
		UserID:     userID,
		CompanyID:  companyID,
		Action:     "company_updated",
		Resource:   "company",
		ResourceID: companyID,
		OldValues:  models.MustJSON(map[string]string{"name": old.Name, "industry": old.Industry, "currency": old.Currency}),
		NewValues:  models.MustJSON(map[string]string{"name": company.Name, "industry": company.Industry, "currency": company.Currency}),
	})
	return company, nil
}

// Switch changes the user's default company after a membership check.
func (s *CompanyService) Switch(ctx context.Context, userID, companyID string) (*models.Company, error) {
	if _, err := s.companies.FindMembership(ctx, userID, companyID); err != nil {
		return nil, err
	}
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.DefaultCompanyID = &companyID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return company, nil
}

// Invite adds another registered user to the company.
func (s *CompanyService) Invite(ctx context.Context, inviterID, companyID string, req *dto.InviteUserRequest) (*models.UserCompany, error) {
	membership, err := s.companies.FindMembership(ctx, inviterID, companyID)
	if err != nil {
		return nil, err
	}
	if !membership.Role.CanManage() {
		return nil, apperrors.ErrForbidden.WithDescription("role %s cannot invite users", membership.Role)
	}
	if !req.Role.IsAssignable() {
		return nil, apperrors.ErrInvalidRequest.WithDescription("unknown role %q", req.Role)
	}

	invitee, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	invited := &models.UserCompany{
		UserID:    invitee.ID,
		CompanyID: companyID,
		Role:      req.Role,
	}
	if err := s.companies.AddMember(ctx, invited); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, &models.AuditEvent{
		UserID:     inviterID,
		CompanyID:  companyID,
		Action:     "user_invited",
		Resource:   "user_company",
		ResourceID: invited.ID,
		NewValues:  models.MustJSON(map[string]string{"email": req.Email, "role": string(req.Role)}),
	})
	return invited, nil
}

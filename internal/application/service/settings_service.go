package service

import (
	"context"
	"encoding/json"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/domain/repository"
	"github.com/finhealth/finhealth/internal/infrastructure/audit"
	"github.com/finhealth/finhealth/internal/infrastructure/crypto"
	"github.com/finhealth/finhealth/pkg/constants"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

// SettingsService covers integrations, per-user preferences and the
// audit trail. Integration credentials are encrypted at rest.
type SettingsService struct {
	integrations repository.IntegrationRepository
	preferences  repository.PreferenceRepository
	audits       repository.AuditRepository
	cipher       *crypto.FieldCipher
	recorder     audit.Recorder
	logger       logger.Logger
}

// NewSettingsService wires the settings service.
func NewSettingsService(
	integrations repository.IntegrationRepository,
	preferences repository.PreferenceRepository,
	audits repository.AuditRepository,
	cipher *crypto.FieldCipher,
	recorder audit.Recorder,
	log logger.Logger,
) *SettingsService {
	return &SettingsService{
		integrations: integrations,
		preferences:  preferences,
		audits:       audits,
		cipher:       cipher,
		recorder:     recorder,
		logger:       log.WithComponent("SettingsService"),
	}
}

// CreateIntegration connects an external source. Credentials are
// sealed with the field cipher before they reach the database.
func (s *SettingsService) CreateIntegration(ctx context.Context, companyID, userID string, role constants.Role, req *dto.CreateIntegrationRequest) (*dto.IntegrationResponse, error) {
	if !role.CanManage() {
		return nil, apperrors.ErrForbidden.WithDescription("only owners and admins can manage integrations")
	}
	if !constants.IsValidIntegrationType(req.Type) {
		return nil, apperrors.ErrInvalidRequest.WithDescription("unknown integration type %q", req.Type)
	}

	plaintext, err := json.Marshal(req.Credentials)
	if err != nil {
		return nil, apperrors.ErrInvalidRequest.WithError(err)
	}
	sealed, err := s.cipher.Encrypt(string(plaintext))
	if err != nil {
		return nil, apperrors.ErrInternal.WithError(err).WithDescription("failed to seal credentials")
	}

	integration := &models.Integration{
		CompanyID:            companyID,
		Type:                 req.Type,
		DisplayName:          req.DisplayName,
		EncryptedCredentials: sealed,
		Enabled:              true,
	}
	if integration.DisplayName == "" {
		integration.DisplayName = string(req.Type)
	}
	if err := s.integrations.Create(ctx, integration); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, &models.AuditEvent{
		UserID:     userID,
		CompanyID:  companyID,
		Action:     "integration_created",
		Resource:   "integration",
		ResourceID: integration.ID,
		NewValues:  models.MustJSON(map[string]string{"type": string(req.Type)}),
	})
	return dto.NewIntegrationResponse(integration), nil
}

// ListIntegrations returns the company's connections without secrets.
func (s *SettingsService) ListIntegrations(ctx context.Context, companyID string) ([]*dto.IntegrationResponse, error) {
	rows, err := s.integrations.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.IntegrationResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.NewIntegrationResponse(row))
	}
	return out, nil
}

// DeleteIntegration disconnects one source.
func (s *SettingsService) DeleteIntegration(ctx context.Context, companyID, userID, integrationID string, role constants.Role) error {
	if !role.CanManage() {
		return apperrors.ErrForbidden.WithDescription("only owners and admins can manage integrations")
	}
	if _, err := s.integrations.FindByID(ctx, companyID, integrationID); err != nil {
		return err
	}
	if err := s.integrations.Delete(ctx, companyID, integrationID); err != nil {
		return err
	}
	s.recorder.Record(ctx, &models.AuditEvent{
		UserID:     userID,
		CompanyID:  companyID,
		Action:     "integration_deleted",
		Resource:   "integration",
		ResourceID: integrationID,
	})
	return nil
}

// Preferences returns the caller's settings for the current company,
// with defaults when nothing is stored yet.
func (s *SettingsService) Preferences(ctx context.Context, userID, companyID string) (*models.UserPreference, error) {
	pref, err := s.preferences.Find(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if pref == nil {
		pref = &models.UserPreference{
			UserID:              userID,
			CompanyID:           companyID,
			EmailNotifications:  true,
			MonthlyReportEmails: true,
			Locale:              "en-IN",
		}
	}
	return pref, nil
}

// UpdatePreferences patches and stores the caller's settings.
func (s *SettingsService) UpdatePreferences(ctx context.Context, userID, companyID string, req *dto.UpdatePreferencesRequest) (*models.UserPreference, error) {
	pref, err := s.Preferences(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if req.DashboardLayout != nil {
		pref.DashboardLayout = *req.DashboardLayout
	}
	if req.EmailNotifications != nil {
		pref.EmailNotifications = *req.EmailNotifications
	}
	if req.MonthlyReportEmails != nil {
		pref.MonthlyReportEmails = *req.MonthlyReportEmails
	}
	if req.Locale != nil {
		pref.Locale = *req.Locale
	}
	if err := s.preferences.Upsert(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}

// AuditLog returns the company's audit trail, newest first. Owners and
// admins only.
func (s *SettingsService) AuditLog(ctx context.Context, companyID string, role constants.Role, page *dto.PageQuery) (*dto.AuditLogPage, error) {
	if !role.CanManage() {
		return nil, apperrors.ErrForbidden.WithDescription("only owners and admins can read the audit log")
	}
	page.Normalize()
	events, total, err := s.audits.List(ctx, companyID, page.PageSize, page.Offset())
	if err != nil {
		return nil, err
	}
	return &dto.AuditLogPage{
		Events:     events,
		Pagination: dto.NewPagination(page.Page, page.PageSize, total),
	}, nil
}

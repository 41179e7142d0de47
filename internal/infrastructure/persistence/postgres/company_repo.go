package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/finhealth/finhealth/internal/domain/models"
	"github.com/finhealth/finhealth/internal/domain/repository"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

// CompanyRepo implements repository.CompanyRepository on PostgreSQL.
type CompanyRepo struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewCompanyRepository creates a PostgreSQL-backed company repository.
func NewCompanyRepository(db *gorm.DB, log logger.Logger) repository.CompanyRepository {
	return &CompanyRepo{db: db, logger: log.WithComponent("company_repo")}
}

func (r *CompanyRepo) Create(ctx context.Context, company *models.Company) error {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		r.logger.Error(ctx, "failed to create company", err, logger.String("name", company.Name))
		return apperrors.ErrDatabase.WithError(err)
	}
	return nil
}

func (r *CompanyRepo) FindByID(ctx context.Context, id string) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrCompanyNotFound(id)
	}
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err)
	}
	return &company, nil
}

func (r *CompanyRepo) Update(ctx context.Context, company *models.Company) error {
	result := r.db.WithContext(ctx).Model(company).Where("id = ?", company.ID).Updates(company)
	if result.Error != nil {
		return apperrors.ErrDatabase.WithError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrCompanyNotFound(company.ID)
	}
	return nil
}

func (r *CompanyRepo) ListForUser(ctx context.Context, userID string) ([]*models.Company, error) {
	var companies []*models.Company
	err := r.db.WithContext(ctx).
		Joins("JOIN user_companies ON user_companies.company_id = companies.id").
		Where("user_companies.user_id = ?", userID).
		Order("companies.created_at").
		Find(&companies).Error
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err)
	}
	return companies, nil
}

func (r *CompanyRepo) AddMember(ctx context.Context, membership *models.UserCompany) error {
	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrConflict.WithDescription("user is already a member of this company")
		}
		r.logger.Error(ctx, "failed to add member", err,
			logger.String("user_id", membership.UserID),
			logger.String("company_id", membership.CompanyID),
		)
		return apperrors.ErrDatabase.WithError(err)
	}
	return nil
}

func (r *CompanyRepo) FindMembership(ctx context.Context, userID, companyID string) (*models.UserCompany, error) {
	var membership models.UserCompany
	err := r.db.WithContext(ctx).
		First(&membership, "user_id = ? AND company_id = ?", userID, companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotMember(companyID)
	}
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err)
	}
	return &membership, nil
}

func (r *CompanyRepo) ListMembers(ctx context.Context, companyID string) ([]*models.UserCompany, error) {
	var members []*models.UserCompany
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at").
		Find(&members).Error
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err)
	}
	return members, nil
}

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

// UserRepo implements repository.UserRepository on PostgreSQL.
type UserRepo struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewUserRepository creates a PostgreSQL-backed user repository.
func NewUserRepository(db *gorm.DB, log logger.Logger) repository.UserRepository {
	return &UserRepo{db: db, logger: log.WithComponent("user_repo")}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrEmailTaken(user.Email)
		}
		r.logger.Error(ctx, "failed to create user", err, logger.String("email", user.Email))
		return apperrors.ErrDatabase.WithError(err)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound(id)
	}
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err)
	}
	return &user, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound(email)
	}
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err)
	}
	return &user, nil
}

func (r *UserRepo) Update(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Model(user).Where("id = ?", user.ID).Updates(user)
	if result.Error != nil {
		r.logger.Error(ctx, "failed to update user", result.Error, logger.String("user_id", user.ID))
		return apperrors.ErrDatabase.WithError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound(user.ID)
	}
	return nil
}

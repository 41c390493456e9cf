package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smarttransit/backend/internal/apperr"
	"github.com/smarttransit/backend/internal/models"
)

type UserRepo struct {
	DB *gorm.DB
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		return apperr.FromStorage(err, "email or phone number")
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, apperr.FromStorage(err, "user")
	}
	return users, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, apperr.FromStorage(err, "user")
	}
	return &user, nil
}

// GetByEmail does a case-sensitive exact match. Returns (nil, nil) when no
// user exists so the caller can fail closed without surfacing the cause.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Internal(err)
	}
	return &user, nil
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("phone_number = ?", phone).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Internal(err)
	}
	return &user, nil
}

func (r *UserRepo) Update(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Save(u).Error; err != nil {
		return apperr.FromStorage(err, "email or phone number")
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error; err != nil {
		return apperr.FromStorage(err, "user")
	}
	return nil
}

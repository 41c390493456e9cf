package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smarttransit/backend/internal/apperr"
	"github.com/smarttransit/backend/internal/models"
)

// RefreshTokenRepo keeps the zero-or-one live refresh token per user
// invariant: every lookup and delete is keyed on the user relation and the
// user_id column carries a unique index.
type RefreshTokenRepo struct {
	DB *gorm.DB
}

// GetByUser returns (nil, nil) when the user has no stored token.
func (r *RefreshTokenRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Internal(err)
	}
	return &token, nil
}

// Save upserts on user_id. Concurrent logins for the same user race to this
// row; last write wins, which the storage's per-row atomicity makes safe.
func (r *RefreshTokenRepo) Save(ctx context.Context, userID uuid.UUID, token string) error {
	record := models.RefreshToken{UserID: userID, Token: token}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token"}),
	}).Create(&record).Error
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// DeleteByUser is a no-op when no row exists, so logout stays idempotent.
func (r *RefreshTokenRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (r *RefreshTokenRepo) DeleteByID(ctx context.Context, id uint) error {
	if err := r.DB.WithContext(ctx).Delete(&models.RefreshToken{}, id).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

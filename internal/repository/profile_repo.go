package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"peerlearn.app/server/internal/model"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	FindByAccountID(ctx context.Context, accountID string) (*model.Profile, error)
	Update(ctx context.Context, profile *model.Profile) error
	MarkVerified(ctx context.Context, accountID string) error
	TouchLastActive(ctx context.Context, accountID string) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) FindByAccountID(ctx context.Context, accountID string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&profile).Error; err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *profileRepository) MarkVerified(ctx context.Context, accountID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("account_id = ?", accountID).
		Update("is_verified", true).Error
}

func (r *profileRepository) TouchLastActive(ctx context.Context, accountID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("account_id = ?", accountID).
		Update("last_active", time.Now()).Error
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"peerlearn.app/server/internal/model"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByID(ctx context.Context, id string) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByGoogleID(ctx context.Context, googleID string) (*model.Account, error)
	Update(ctx context.Context, account *model.Account) error
	MarkVerified(ctx context.Context, id string) error

	CreateEmailToken(ctx context.Context, token *model.EmailToken) error
	ConsumeEmailToken(ctx context.Context, token, purpose string) (*model.EmailToken, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("id = ?", id).
		First(&account).Error; err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("email = ?", email).
		First(&account).Error; err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("google_id = ?", googleID).
		First(&account).Error; err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *accountRepository) MarkVerified(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Update("email_verified", true).Error
}

func (r *accountRepository) CreateEmailToken(ctx context.Context, token *model.EmailToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// ConsumeEmailToken returns the token and marks it used in one transaction,
// so a token can never be redeemed twice.
func (r *accountRepository) ConsumeEmailToken(ctx context.Context, token, purpose string) (*model.EmailToken, error) {
	var et model.EmailToken
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("token = ? AND purpose = ? AND used_at IS NULL AND expires_at > ?", token, purpose, time.Now()).
			First(&et).Error; err != nil {
			return err
		}

		now := time.Now()
		et.UsedAt = &now
		return tx.Save(&et).Error
	})
	if err != nil {
		return nil, err
	}

	return &et, nil
}

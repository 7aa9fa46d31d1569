package repository

import (
	"context"

	"gorm.io/gorm"

	"peerlearn.app/server/internal/model"
)

type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	FindByID(ctx context.Context, id string) (*model.Note, error)
	ListVisible(ctx context.Context, accountID string, limit, offset int) ([]model.Note, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Note, error)
	IncrementDownloads(ctx context.Context, id string) error
}

type noteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *model.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) FindByID(ctx context.Context, id string) (*model.Note, error) {
	var note model.Note
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("id = ?", id).
		First(&note).Error; err != nil {
		return nil, err
	}

	return &note, nil
}

func (r *noteRepository) ListVisible(ctx context.Context, accountID string, limit, offset int) ([]model.Note, error) {
	var notes []model.Note
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("is_public = ? OR owner_id = ?", true, accountID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&notes).Error; err != nil {
		return nil, err
	}

	return notes, nil
}

func (r *noteRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Note, error) {
	var notes []model.Note
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&notes).Error; err != nil {
		return nil, err
	}

	return notes, nil
}

func (r *noteRepository) IncrementDownloads(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error
}

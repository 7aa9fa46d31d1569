package repository

import (
	"context"

	"gorm.io/gorm"

	"peerlearn.app/server/internal/model"
)

type ConnectionRepository interface {
	Create(ctx context.Context, conn *model.Connection) error
	FindByID(ctx context.Context, id string) (*model.Connection, error)
	FindBetween(ctx context.Context, a, b string) (*model.Connection, error)
	Update(ctx context.Context, conn *model.Connection) error
	ListFor(ctx context.Context, accountID string) ([]model.Connection, error)
	CountAccepted(ctx context.Context, accountID string) (int64, error)
}

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(ctx context.Context, conn *model.Connection) error {
	return r.db.WithContext(ctx).Create(conn).Error
}

func (r *connectionRepository) FindByID(ctx context.Context, id string) (*model.Connection, error) {
	var conn model.Connection
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Receiver").
		Where("id = ?", id).
		First(&conn).Error; err != nil {
		return nil, err
	}

	return &conn, nil
}

// FindBetween looks the pair up in either direction.
func (r *connectionRepository) FindBetween(ctx context.Context, a, b string) (*model.Connection, error) {
	var conn model.Connection
	if err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)", a, b, b, a).
		First(&conn).Error; err != nil {
		return nil, err
	}

	return &conn, nil
}

func (r *connectionRepository) Update(ctx context.Context, conn *model.Connection) error {
	return r.db.WithContext(ctx).Save(conn).Error
}

func (r *connectionRepository) ListFor(ctx context.Context, accountID string) ([]model.Connection, error) {
	var conns []model.Connection
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Receiver").
		Where("requester_id = ? OR receiver_id = ?", accountID, accountID).
		Order("created_at desc").
		Find(&conns).Error; err != nil {
		return nil, err
	}

	return conns, nil
}

func (r *connectionRepository) CountAccepted(ctx context.Context, accountID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Connection{}).
		Where("(requester_id = ? OR receiver_id = ?) AND status = ?", accountID, accountID, model.ConnectionAccepted).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

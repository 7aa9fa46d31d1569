package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"peerlearn.app/server/internal/model"
)

type StudyRoomRepository interface {
	Create(ctx context.Context, room *model.StudyRoom) error
	FindByID(ctx context.Context, id string) (*model.StudyRoom, error)
	ListUpcoming(ctx context.Context, accountID string, limit int) ([]model.StudyRoom, error)
	ListByHost(ctx context.Context, hostID string) ([]model.StudyRoom, error)
	Update(ctx context.Context, room *model.StudyRoom) error
	ActivateDue(ctx context.Context, now time.Time) (int64, error)
	CompleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type studyRoomRepository struct {
	db *gorm.DB
}

func NewStudyRoomRepository(db *gorm.DB) StudyRoomRepository {
	return &studyRoomRepository{db: db}
}

func (r *studyRoomRepository) Create(ctx context.Context, room *model.StudyRoom) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *studyRoomRepository) FindByID(ctx context.Context, id string) (*model.StudyRoom, error) {
	var room model.StudyRoom
	if err := r.db.WithContext(ctx).
		Preload("Host").
		Where("id = ?", id).
		First(&room).Error; err != nil {
		return nil, err
	}

	return &room, nil
}

// ListUpcoming returns rooms the account can still join: public ones plus its
// own, scheduled or already running.
func (r *studyRoomRepository) ListUpcoming(ctx context.Context, accountID string, limit int) ([]model.StudyRoom, error) {
	var rooms []model.StudyRoom
	if err := r.db.WithContext(ctx).
		Preload("Host").
		Where("status IN ?", []string{model.RoomStatusScheduled, model.RoomStatusActive}).
		Where("is_public = ? OR host_id = ?", true, accountID).
		Order("scheduled_at asc").
		Limit(limit).
		Find(&rooms).Error; err != nil {
		return nil, err
	}

	return rooms, nil
}

func (r *studyRoomRepository) ListByHost(ctx context.Context, hostID string) ([]model.StudyRoom, error) {
	var rooms []model.StudyRoom
	if err := r.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("scheduled_at desc").
		Find(&rooms).Error; err != nil {
		return nil, err
	}

	return rooms, nil
}

func (r *studyRoomRepository) Update(ctx context.Context, room *model.StudyRoom) error {
	return r.db.WithContext(ctx).Save(room).Error
}

func (r *studyRoomRepository) ActivateDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.StudyRoom{}).
		Where("status = ? AND scheduled_at <= ?", model.RoomStatusScheduled, now).
		Update("status", model.RoomStatusActive)
	return res.RowsAffected, res.Error
}

func (r *studyRoomRepository) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.StudyRoom{}).
		Where("status = ? AND scheduled_at + (duration_minutes * interval '1 minute') <= ?", model.RoomStatusActive, now).
		Update("status", model.RoomStatusCompleted)
	return res.RowsAffected, res.Error
}

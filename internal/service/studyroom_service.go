package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"peerlearn.app/server/internal/model"
	"peerlearn.app/server/internal/repository"
	"peerlearn.app/server/pkg/apperror"
)

type CreateRoomInput struct {
	Title            string    `json:"title" binding:"required,max=255"`
	Description      string    `json:"description"`
	Subject          string    `json:"subject" binding:"required,max=100"`
	ScheduledAt      time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes  int       `json:"duration_minutes" binding:"required,min=15,max=480"`
	MaxParticipants  int       `json:"max_participants" binding:"omitempty,min=2,max=100"`
	IsPublic         *bool     `json:"is_public"`
	RoomType         string    `json:"room_type" binding:"omitempty,oneof=video audio chat"`
	RecordingEnabled bool      `json:"recording_enabled"`
}

type StudyRoomService interface {
	CreateRoom(ctx context.Context, hostID string, input CreateRoomInput) (*model.StudyRoom, error)
	GetRoom(ctx context.Context, accountID, roomID string) (*model.StudyRoom, error)
	ListUpcoming(ctx context.Context, accountID string, limit int) ([]model.StudyRoom, error)
	ListMine(ctx context.Context, accountID string) ([]model.StudyRoom, error)
	CancelRoom(ctx context.Context, accountID, roomID string) error
}

type studyRoomService struct {
	rooms     repository.StudyRoomRepository
	sanitizer *bluemonday.Policy
}

func NewStudyRoomService(rooms repository.StudyRoomRepository) StudyRoomService {
	return &studyRoomService{
		rooms:     rooms,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func (s *studyRoomService) CreateRoom(ctx context.Context, hostID string, input CreateRoomInput) (*model.StudyRoom, error) {
	host, err := uuid.Parse(hostID)
	if err != nil {
		return nil, fmt.Errorf("invalid host id: %w", apperror.ErrBadRequest)
	}

	if input.ScheduledAt.Before(time.Now()) {
		return nil, fmt.Errorf("room must be scheduled in the future: %w", apperror.ErrInvalidInput)
	}

	room := &model.StudyRoom{
		HostID:           host,
		Title:            strings.TrimSpace(input.Title),
		Subject:          strings.TrimSpace(input.Subject),
		ScheduledAt:      input.ScheduledAt,
		DurationMinutes:  input.DurationMinutes,
		MaxParticipants:  input.MaxParticipants,
		RoomType:         input.RoomType,
		Status:           model.RoomStatusScheduled,
		RecordingEnabled: input.RecordingEnabled,
		IsPublic:         true,
	}
	if input.Description != "" {
		desc := s.sanitizer.Sanitize(input.Description)
		room.Description = &desc
	}
	if input.MaxParticipants == 0 {
		room.MaxParticipants = 10
	}
	if input.RoomType == "" {
		room.RoomType = model.RoomTypeVideo
	}
	if input.IsPublic != nil {
		room.IsPublic = *input.IsPublic
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}

	return room, nil
}

func (s *studyRoomService) GetRoom(ctx context.Context, accountID, roomID string) (*model.StudyRoom, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("room not found: %w", apperror.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if !room.IsPublic && room.HostID.String() != accountID {
		return nil, fmt.Errorf("room is private: %w", apperror.ErrForbidden)
	}

	return room, nil
}

func (s *studyRoomService) ListUpcoming(ctx context.Context, accountID string, limit int) ([]model.StudyRoom, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.rooms.ListUpcoming(ctx, accountID, limit)
}

func (s *studyRoomService) ListMine(ctx context.Context, accountID string) ([]model.StudyRoom, error) {
	return s.rooms.ListByHost(ctx, accountID)
}

func (s *studyRoomService) CancelRoom(ctx context.Context, accountID, roomID string) error {
	room, err := s.rooms.FindByID(ctx, roomID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("room not found: %w", apperror.ErrNotFound)
	}
	if err != nil {
		return err
	}

	if room.HostID.String() != accountID {
		return fmt.Errorf("only the host can cancel a room: %w", apperror.ErrForbidden)
	}
	if room.Status == model.RoomStatusCompleted || room.Status == model.RoomStatusCancelled {
		return fmt.Errorf("room is already %s: %w", room.Status, apperror.ErrConflict)
	}

	room.Status = model.RoomStatusCancelled
	return s.rooms.Update(ctx, room)
}

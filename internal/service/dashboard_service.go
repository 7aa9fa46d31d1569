package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"peerlearn.app/server/internal/model"
	"peerlearn.app/server/internal/repository"
	"peerlearn.app/server/pkg/apperror"
)

type DashboardStats struct {
	StudyStreak    int   `json:"study_streak"`
	Connections    int64 `json:"connections"`
	StudyHours     int   `json:"study_hours"`
	QuizzesTaken   int   `json:"quizzes_taken"`
	UnreadActivity int64 `json:"unread_activity"`
}

type Dashboard struct {
	Profile       *model.Profile    `json:"profile"`
	Stats         DashboardStats    `json:"stats"`
	UpcomingRooms []model.StudyRoom `json:"upcoming_rooms"`
}

type DashboardService interface {
	GetDashboard(ctx context.Context, accountID string) (*Dashboard, error)
}

type dashboardService struct {
	profiles      ProfileService
	connections   repository.ConnectionRepository
	rooms         repository.StudyRoomRepository
	notifications repository.NotificationRepository
}

func NewDashboardService(
	profiles ProfileService,
	connections repository.ConnectionRepository,
	rooms repository.StudyRoomRepository,
	notifications repository.NotificationRepository,
) DashboardService {
	return &dashboardService{
		profiles:      profiles,
		connections:   connections,
		rooms:         rooms,
		notifications: notifications,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, accountID string) (*Dashboard, error) {
	uid, err := uuid.Parse(accountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account id: %w", apperror.ErrBadRequest)
	}

	profile, err := s.profiles.GetProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}

	connCount, err := s.connections.CountAccepted(ctx, accountID)
	if err != nil {
		return nil, err
	}

	rooms, err := s.rooms.ListUpcoming(ctx, accountID, 5)
	if err != nil {
		return nil, err
	}

	unread, err := s.notifications.CountUnread(ctx, uid)
	if err != nil {
		return nil, err
	}

	// study hours and quiz counts are not tracked yet
	return &Dashboard{
		Profile: profile,
		Stats: DashboardStats{
			StudyStreak:    profile.StudyStreak,
			Connections:    connCount,
			StudyHours:     0,
			QuizzesTaken:   0,
			UnreadActivity: unread,
		},
		UpcomingRooms: rooms,
	}, nil
}

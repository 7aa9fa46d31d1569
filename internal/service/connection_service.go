package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"peerlearn.app/server/internal/log"
	"peerlearn.app/server/internal/model"
	"peerlearn.app/server/internal/repository"
	"peerlearn.app/server/pkg/apperror"

	"go.uber.org/zap"
)

const (
	NotificationConnectionRequest  = "connection_request"
	NotificationConnectionAccepted = "connection_accepted"
)

type ConnectionService interface {
	RequestConnection(ctx context.Context, requesterID, receiverID string) (*model.Connection, error)
	AcceptConnection(ctx context.Context, accountID, connectionID string) (*model.Connection, error)
	DeclineConnection(ctx context.Context, accountID, connectionID string) (*model.Connection, error)
	ListConnections(ctx context.Context, accountID string) ([]model.Connection, error)
}

type connectionService struct {
	connections   repository.ConnectionRepository
	profiles      repository.ProfileRepository
	notifications NotificationService
}

func NewConnectionService(
	connections repository.ConnectionRepository,
	profiles repository.ProfileRepository,
	notifications NotificationService,
) ConnectionService {
	return &connectionService{
		connections:   connections,
		profiles:      profiles,
		notifications: notifications,
	}
}

func (s *connectionService) RequestConnection(ctx context.Context, requesterID, receiverID string) (*model.Connection, error) {
	if requesterID == receiverID {
		return nil, fmt.Errorf("cannot connect with yourself: %w", apperror.ErrBadRequest)
	}

	requester, err := uuid.Parse(requesterID)
	if err != nil {
		return nil, fmt.Errorf("invalid requester id: %w", apperror.ErrBadRequest)
	}
	receiver, err := uuid.Parse(receiverID)
	if err != nil {
		return nil, fmt.Errorf("invalid receiver id: %w", apperror.ErrBadRequest)
	}

	receiverProfile, err := s.profiles.FindByAccountID(ctx, receiverID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("peer not found: %w", apperror.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	existing, err := s.connections.FindBetween(ctx, requesterID, receiverID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == model.ConnectionDeclined {
			// a declined pair can try again
			existing.Status = model.ConnectionPending
			existing.RequesterID = requester
			existing.ReceiverID = receiver
			if err := s.connections.Update(ctx, existing); err != nil {
				return nil, err
			}
			s.notifyRequest(ctx, existing, receiverProfile)
			return existing, nil
		}
		return nil, fmt.Errorf("connection already exists: %w", apperror.ErrConflict)
	}

	conn := &model.Connection{
		RequesterID: requester,
		ReceiverID:  receiver,
		Status:      model.ConnectionPending,
	}
	if err := s.connections.Create(ctx, conn); err != nil {
		return nil, err
	}

	s.notifyRequest(ctx, conn, receiverProfile)

	return conn, nil
}

func (s *connectionService) AcceptConnection(ctx context.Context, accountID, connectionID string) (*model.Connection, error) {
	conn, err := s.pendingFor(ctx, accountID, connectionID)
	if err != nil {
		return nil, err
	}

	conn.Status = model.ConnectionAccepted
	if err := s.connections.Update(ctx, conn); err != nil {
		return nil, err
	}

	accepterName := accountID
	if profile, perr := s.profiles.FindByAccountID(ctx, accountID); perr == nil {
		accepterName = profile.FullName
	}
	s.notify(ctx, &model.Notification{
		UserID:  conn.RequesterID,
		ActorID: conn.ReceiverID,
		Type:    NotificationConnectionAccepted,
		Message: fmt.Sprintf("%s accepted your connection request", accepterName),
	})

	return conn, nil
}

func (s *connectionService) DeclineConnection(ctx context.Context, accountID, connectionID string) (*model.Connection, error) {
	conn, err := s.pendingFor(ctx, accountID, connectionID)
	if err != nil {
		return nil, err
	}

	conn.Status = model.ConnectionDeclined
	if err := s.connections.Update(ctx, conn); err != nil {
		return nil, err
	}

	return conn, nil
}

func (s *connectionService) ListConnections(ctx context.Context, accountID string) ([]model.Connection, error) {
	return s.connections.ListFor(ctx, accountID)
}

// pendingFor loads the connection and checks the caller is its receiver and
// it is still pending.
func (s *connectionService) pendingFor(ctx context.Context, accountID, connectionID string) (*model.Connection, error) {
	conn, err := s.connections.FindByID(ctx, connectionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("connection not found: %w", apperror.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if conn.ReceiverID.String() != accountID {
		return nil, fmt.Errorf("only the receiver can answer a request: %w", apperror.ErrForbidden)
	}
	if conn.Status != model.ConnectionPending {
		return nil, fmt.Errorf("connection is already %s: %w", conn.Status, apperror.ErrConflict)
	}

	return conn, nil
}

func (s *connectionService) notifyRequest(ctx context.Context, conn *model.Connection, receiver *model.Profile) {
	requesterName := conn.RequesterID.String()
	if profile, err := s.profiles.FindByAccountID(ctx, conn.RequesterID.String()); err == nil {
		requesterName = profile.FullName
	}
	s.notify(ctx, &model.Notification{
		UserID:  receiver.AccountID,
		ActorID: conn.RequesterID,
		Type:    NotificationConnectionRequest,
		Message: fmt.Sprintf("%s wants to connect with you", requesterName),
	})
}

func (s *connectionService) notify(ctx context.Context, n *model.Notification) {
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		log.L().Warn("failed to create notification",
			zap.String("user_id", n.UserID.String()),
			zap.String("type", n.Type),
			zap.Error(err))
	}
}

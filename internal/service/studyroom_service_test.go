package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"peerlearn.app/server/internal/model"
)

type fakeRoomRepo struct {
	rooms map[string]*model.StudyRoom
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*model.StudyRoom)}
}

func (f *fakeRoomRepo) Create(ctx context.Context, room *model.StudyRoom) error {
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	f.rooms[room.ID.String()] = room
	return nil
}

func (f *fakeRoomRepo) FindByID(ctx context.Context, id string) (*model.StudyRoom, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return room, nil
}

func (f *fakeRoomRepo) ListUpcoming(ctx context.Context, accountID string, limit int) ([]model.StudyRoom, error) {
	var out []model.StudyRoom
	for _, room := range f.rooms {
		if room.Status != model.RoomStatusScheduled && room.Status != model.RoomStatusActive {
			continue
		}
		if room.IsPublic || room.HostID.String() == accountID {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (f *fakeRoomRepo) ListByHost(ctx context.Context, hostID string) ([]model.StudyRoom, error) {
	var out []model.StudyRoom
	for _, room := range f.rooms {
		if room.HostID.String() == hostID {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (f *fakeRoomRepo) Update(ctx context.Context, room *model.StudyRoom) error {
	f.rooms[room.ID.String()] = room
	return nil
}

func (f *fakeRoomRepo) ActivateDue(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeRoomRepo) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func validRoomInput() CreateRoomInput {
	return CreateRoomInput{
		Title:           "Calculus study session",
		Subject:         "Mathematics",
		ScheduledAt:     time.Now().Add(2 * time.Hour),
		DurationMinutes: 60,
	}
}

func TestCreateRoomDefaults(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRoomRepo()
	svc := NewStudyRoomService(repo)
	hostID := uuid.NewString()

	room, err := svc.CreateRoom(ctx, hostID, validRoomInput())
	require.NoError(t, err)

	assert.Equal(t, model.RoomStatusScheduled, room.Status)
	assert.Equal(t, model.RoomTypeVideo, room.RoomType)
	assert.Equal(t, 10, room.MaxParticipants)
	assert.True(t, room.IsPublic)
	assert.Equal(t, hostID, room.HostID.String())
}

func TestCreateRoomRejectsPastSchedule(t *testing.T) {
	ctx := context.Background()
	svc := NewStudyRoomService(newFakeRoomRepo())

	input := validRoomInput()
	input.ScheduledAt = time.Now().Add(-time.Hour)

	_, err := svc.CreateRoom(ctx, uuid.NewString(), input)
	require.Error(t, err)
}

func TestGetRoomHidesPrivateFromOthers(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRoomRepo()
	svc := NewStudyRoomService(repo)
	hostID := uuid.NewString()

	isPublic := false
	input := validRoomInput()
	input.IsPublic = &isPublic

	room, err := svc.CreateRoom(ctx, hostID, input)
	require.NoError(t, err)

	_, err = svc.GetRoom(ctx, uuid.NewString(), room.ID.String())
	assert.Error(t, err, "private room must be hidden from non-hosts")

	got, err := svc.GetRoom(ctx, hostID, room.ID.String())
	require.NoError(t, err)
	assert.Equal(t, room.ID, got.ID)
}

func TestCancelRoom(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRoomRepo()
	svc := NewStudyRoomService(repo)
	hostID := uuid.NewString()

	room, err := svc.CreateRoom(ctx, hostID, validRoomInput())
	require.NoError(t, err)

	err = svc.CancelRoom(ctx, uuid.NewString(), room.ID.String())
	assert.Error(t, err, "only the host can cancel")

	require.NoError(t, svc.CancelRoom(ctx, hostID, room.ID.String()))
	assert.Equal(t, model.RoomStatusCancelled, repo.rooms[room.ID.String()].Status)

	err = svc.CancelRoom(ctx, hostID, room.ID.String())
	assert.Error(t, err, "cancelling twice must fail")
}

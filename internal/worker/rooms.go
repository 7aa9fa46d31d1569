package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"peerlearn.app/server/internal/log"
	"peerlearn.app/server/internal/repository"
)

// RoomWorker moves study rooms through their lifecycle on a schedule:
// scheduled rooms whose start time passed become active, active rooms past
// their duration become completed.
type RoomWorker struct {
	cron  *cron.Cron
	rooms repository.StudyRoomRepository
}

func NewRoomWorker(rooms repository.StudyRoomRepository) *RoomWorker {
	return &RoomWorker{
		cron:  cron.New(),
		rooms: rooms,
	}
}

func (w *RoomWorker) Start() error {
	if _, err := w.cron.AddFunc("@every 1m", w.tick); err != nil {
		return err
	}
	w.cron.Start()
	log.L().Info("room worker started")
	return nil
}

func (w *RoomWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

func (w *RoomWorker) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()

	activated, err := w.rooms.ActivateDue(ctx, now)
	if err != nil {
		log.L().Warn("failed to activate due rooms", zap.Error(err))
	} else if activated > 0 {
		log.L().Info("activated rooms", zap.Int64("count", activated))
	}

	completed, err := w.rooms.CompleteExpired(ctx, now)
	if err != nil {
		log.L().Warn("failed to complete expired rooms", zap.Error(err))
	} else if completed > 0 {
		log.L().Info("completed rooms", zap.Int64("count", completed))
	}
}

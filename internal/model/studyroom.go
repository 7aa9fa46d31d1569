package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoomStatusScheduled = "scheduled"
	RoomStatusActive    = "active"
	RoomStatusCompleted = "completed"
	RoomStatusCancelled = "cancelled"

	RoomTypeVideo = "video"
	RoomTypeAudio = "audio"
	RoomTypeChat  = "chat"
)

type StudyRoom struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HostID           uuid.UUID `gorm:"type:uuid;not null;index" json:"host_id"`
	Host             *Profile  `gorm:"foreignKey:HostID;references:AccountID" json:"host,omitempty"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Description      *string   `gorm:"type:text" json:"description,omitempty"`
	Subject          string    `gorm:"size:100;not null" json:"subject"`
	ScheduledAt      time.Time `gorm:"not null;index" json:"scheduled_at"`
	DurationMinutes  int       `gorm:"not null" json:"duration_minutes"`
	MaxParticipants  int       `gorm:"default:10" json:"max_participants"`
	IsPublic         bool      `gorm:"default:true" json:"is_public"`
	RoomType         string    `gorm:"size:10;default:video" json:"room_type"` // 'video', 'audio', 'chat'
	Status           string    `gorm:"size:10;default:scheduled;index" json:"status"`
	RecordingEnabled bool      `gorm:"default:false" json:"recording_enabled"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *StudyRoom) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

// EndsAt is the moment the session is over, derived from start plus duration.
func (r *StudyRoom) EndsAt() time.Time {
	return r.ScheduledAt.Add(time.Duration(r.DurationMinutes) * time.Minute)
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`  // who receives it
	ActorID   uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`       // who triggered it
	Type      string    `gorm:"type:varchar(50);not null" json:"type"`    // 'connection_request', 'connection_accepted'
	Message   string    `gorm:"type:text" json:"message"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Actor *Profile `gorm:"foreignKey:ActorID;references:AccountID" json:"actor,omitempty"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionDeclined = "declined"
)

// Connection links two profiles. The receiver accepts or declines.
type Connection struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;index" json:"requester_id"`
	ReceiverID  uuid.UUID `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Requester   *Profile  `gorm:"foreignKey:RequesterID;references:AccountID" json:"requester,omitempty"`
	Receiver    *Profile  `gorm:"foreignKey:ReceiverID;references:AccountID" json:"receiver,omitempty"`
	Status      string    `gorm:"size:10;default:pending;index" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Connection) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

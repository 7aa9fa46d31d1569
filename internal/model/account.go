package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is the identity record owned by the auth layer. Application data
// hangs off Profile, which is keyed by the account ID.
type Account struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone         *string   `gorm:"size:20" json:"phone,omitempty"`
	PasswordHash  string    `gorm:"size:255;not null" json:"-"`
	FullName      string    `gorm:"size:100;not null" json:"full_name"`
	EmailVerified bool      `gorm:"default:false" json:"email_verified"`
	GoogleID      *string   `gorm:"size:100;index" json:"-"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	Profile       *Profile  `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// EmailToken is a single-use opaque token mailed to the user, either to verify
// an address or to reset a password.
type EmailToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	AccountID uuid.UUID  `gorm:"type:uuid;not null;index" json:"account_id"`
	Token     string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Purpose   string     `gorm:"size:20;not null" json:"purpose"` // 'verify' or 'reset'
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

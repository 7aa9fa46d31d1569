package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Profile mirrors the public "profiles" table, one row per Account.
// A row must never exist without its Account.
type Profile struct {
	AccountID    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string         `gorm:"size:100;not null" json:"email"`
	Phone        *string        `gorm:"size:20" json:"phone,omitempty"`
	FullName     string         `gorm:"size:100;not null" json:"full_name"`
	AvatarURL    *string        `gorm:"type:text" json:"avatar_url,omitempty"`
	Bio          *string        `gorm:"type:text" json:"bio,omitempty"`
	College      *string        `gorm:"size:150" json:"college,omitempty"`
	University   *string        `gorm:"size:150" json:"university,omitempty"`
	Course       *string        `gorm:"size:150" json:"course,omitempty"`
	YearOfStudy  *int           `json:"year_of_study,omitempty"`
	Subjects     pq.StringArray `gorm:"type:text[]" json:"subjects"`
	Interests    pq.StringArray `gorm:"type:text[]" json:"interests"`
	IsVerified   bool           `gorm:"default:false" json:"is_verified"`
	Rating       float64        `gorm:"default:0" json:"rating"`
	TotalReviews int            `gorm:"default:0" json:"total_reviews"`
	StudyStreak  int            `gorm:"default:0" json:"study_streak"`
	LastActive   time.Time      `gorm:"autoCreateTime" json:"last_active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Note struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Owner        *Profile       `gorm:"foreignKey:OwnerID;references:AccountID" json:"owner,omitempty"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	Subject      *string        `gorm:"size:100" json:"subject,omitempty"`
	Tags         pq.StringArray `gorm:"type:text[]" json:"tags"`
	IsPublic     bool           `gorm:"default:true" json:"is_public"`
	IsPaid       bool           `gorm:"default:false" json:"is_paid"`
	Price        *float64       `json:"price,omitempty"`
	FileURL      *string        `gorm:"type:text" json:"file_url,omitempty"`
	FileType     *string        `gorm:"size:50" json:"file_type,omitempty"`
	Downloads    int            `gorm:"default:0" json:"downloads"`
	Rating       float64        `gorm:"default:0" json:"rating"`
	TotalReviews int            `gorm:"default:0" json:"total_reviews"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cause 募捐项目表 — a fundraising campaign open to contributions.
type Cause struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	ImageURL    string    `gorm:"size:500;not null" json:"image_url"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Contributions []Contribution `gorm:"foreignKey:CauseID" json:"-"`
}

// BeforeCreate assigns the server-side identifier.
func (c *Cause) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

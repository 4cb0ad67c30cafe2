package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contribution 捐款记录表 — a single pledge recorded against one cause.
// Reference is a server-generated receipt code; contributions are never
// updated or deleted through the API on their own.
type Contribution struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:254;not null" json:"email"`
	Amount    float64   `gorm:"type:decimal(10,2)" json:"amount"`
	CauseID   uuid.UUID `gorm:"type:char(36);index;not null" json:"cause_id"`
	Reference string    `gorm:"size:50;index" json:"reference"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns the server-side identifier.
func (c *Contribution) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModerationComment is reviewer feedback attached to exactly one product or one store.
type ModerationComment struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ProductID  *uuid.UUID `gorm:"column:product_id;type:uuid;index"`
	StoreID    *uuid.UUID `gorm:"column:store_id;type:uuid;index"`
	Comment    string     `gorm:"column:comment;not null"`
	ReviewerID uuid.UUID  `gorm:"column:reviewer_id;type:uuid;not null"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns an id when the caller did not.
func (c *ModerationComment) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// All returns every model owned by the schema, in dependency order.
func All() []any {
	return []any{&Store{}, &Product{}, &ModerationComment{}}
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storereview-backend/pkg/enums"
)

// Store is an owner's storefront. Each owner has at most one.
type Store struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID     uuid.UUID         `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:stores_owner_id_key"`
	Name        string            `gorm:"column:name;not null"`
	OwnerName   string            `gorm:"column:owner_name;not null"`
	Description string            `gorm:"column:description;not null"`
	CategoryID  string            `gorm:"column:category_id;not null"`
	WhatsApp    *string           `gorm:"column:whatsapp"`
	Phone       *string           `gorm:"column:phone"`
	Email       *string           `gorm:"column:email"`
	Instagram   *string           `gorm:"column:instagram"`
	Bio         *string           `gorm:"column:bio"`
	ImageRef    *string           `gorm:"column:image_ref"`
	Status      enums.StoreStatus `gorm:"column:status;type:store_status;not null;default:'pending'"`
	Products    []Product         `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id when the caller did not.
func (s *Store) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storereview-backend/pkg/enums"
)

// Product is a catalog entry owned by exactly one store.
//
// ApprovalStatus and LifecycleStatus are persisted separately for the legacy
// catalog readers but must only be written through SetApproval.
type Product struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	StoreID         uuid.UUID             `gorm:"column:store_id;type:uuid;not null;index"`
	Name            string                `gorm:"column:name;not null"`
	Description     string                `gorm:"column:description;not null"`
	Price           decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	Stock           int                   `gorm:"column:stock;not null;default:0"`
	Category        *string               `gorm:"column:category"`
	ImageRef        *string               `gorm:"column:image_ref"`
	LifecycleStatus enums.LifecycleStatus `gorm:"column:lifecycle_status;type:lifecycle_status;not null;default:'active'"`
	ApprovalStatus  enums.ApprovalStatus  `gorm:"column:approval_status;type:approval_status;not null;default:'pending'"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// SetApproval records a verdict and the lifecycle flag that goes with it.
func (p *Product) SetApproval(status enums.ApprovalStatus) {
	p.ApprovalStatus = status
	p.LifecycleStatus = enums.LifecycleFor(status)
}

// IsVisible reports whether the product may appear in the public catalog.
func (p Product) IsVisible() bool {
	return p.ApprovalStatus == enums.ApprovalStatusApproved
}

// CanResubmit reports whether an owner may send the product back to review.
func (p Product) CanResubmit() bool {
	return p.ApprovalStatus == enums.ApprovalStatusRejected || p.LifecycleStatus == enums.LifecycleStatusInactive
}

// BeforeCreate assigns an id and normalises the status pair.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ApprovalStatus == "" {
		p.ApprovalStatus = enums.ApprovalStatusPending
	}
	p.SetApproval(p.ApprovalStatus)
	return nil
}

// ApprovalColumns returns the column map used by partial updates of the status pair.
func ApprovalColumns(status enums.ApprovalStatus) map[string]any {
	return map[string]any{
		"approval_status":  status,
		"lifecycle_status": enums.LifecycleFor(status),
	}
}

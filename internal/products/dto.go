package products

import (
	"time"

	"github.com/angelmondragon/storereview-backend/pkg/db/models"
	"github.com/angelmondragon/storereview-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO represents a catalog entry returned to owners and reviewers.
type ProductDTO struct {
	ID              uuid.UUID             `json:"id"`
	StoreID         uuid.UUID             `json:"store_id"`
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	Price           decimal.Decimal       `json:"price"`
	Stock           int                   `json:"stock"`
	Category        *string               `json:"category,omitempty"`
	ImageRef        *string               `json:"image_ref,omitempty"`
	ApprovalStatus  enums.ApprovalStatus  `json:"approval_status"`
	LifecycleStatus enums.LifecycleStatus `json:"lifecycle_status"`
	Visible         bool                  `json:"visible"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// NewProductDTO maps the persisted model into a DTO.
func NewProductDTO(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:              p.ID,
		StoreID:         p.StoreID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		Stock:           p.Stock,
		Category:        p.Category,
		ImageRef:        p.ImageRef,
		ApprovalStatus:  p.ApprovalStatus,
		LifecycleStatus: p.LifecycleStatus,
		Visible:         p.IsVisible(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// NewProductDTOs maps a slice of models, never returning nil.
func NewProductDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewProductDTO(&rows[i]))
	}
	return out
}

// PendingProductRow is a pending product joined with its store and owner contact.
type PendingProductRow struct {
	ID             uuid.UUID         `gorm:"column:id" json:"id"`
	StoreID        uuid.UUID         `gorm:"column:store_id" json:"store_id"`
	Name           string            `gorm:"column:name" json:"name"`
	Description    string            `gorm:"column:description" json:"description"`
	Price          decimal.Decimal   `gorm:"column:price" json:"price"`
	Stock          int               `gorm:"column:stock" json:"stock"`
	Category       *string           `gorm:"column:category" json:"category,omitempty"`
	ImageRef       *string           `gorm:"column:image_ref" json:"image_ref,omitempty"`
	CreatedAt      time.Time         `gorm:"column:created_at" json:"created_at"`
	StoreName      string            `gorm:"column:store_name" json:"store_name"`
	StoreStatus    enums.StoreStatus `gorm:"column:store_status" json:"store_status"`
	OwnerID        uuid.UUID         `gorm:"column:owner_id" json:"owner_id"`
	OwnerName      string            `gorm:"column:owner_name" json:"owner_name"`
	OwnerWhatsApp  *string           `gorm:"column:owner_whatsapp" json:"owner_whatsapp,omitempty"`
	OwnerPhone     *string           `gorm:"column:owner_phone" json:"owner_phone,omitempty"`
	OwnerEmail     *string           `gorm:"column:owner_email" json:"owner_email,omitempty"`
	OwnerInstagram *string           `gorm:"column:owner_instagram" json:"owner_instagram,omitempty"`
}

package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storereview-backend/internal/products"
	"github.com/angelmondragon/storereview-backend/pkg/db/models"
	"github.com/angelmondragon/storereview-backend/pkg/enums"
)

// OwnerContactDTO is the contact block shown to reviewers.
type OwnerContactDTO struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	OwnerName string    `json:"owner_name"`
	WhatsApp  *string   `json:"whatsapp,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Instagram *string   `json:"instagram,omitempty"`
}

// StoreDTO exposes store data in API responses.
type StoreDTO struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	CategoryID   string                `json:"category_id"`
	Bio          *string               `json:"bio,omitempty"`
	ImageRef     *string               `json:"image_ref,omitempty"`
	Status       enums.StoreStatus     `json:"status"`
	Owner        OwnerContactDTO       `json:"owner"`
	Products     []products.ProductDTO `json:"products"`
	ProductCount int                   `json:"product_count"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// FromModel maps the persisted store and its loaded products into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	items := products.NewProductDTOs(m.Products)
	return &StoreDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CategoryID:  m.CategoryID,
		Bio:         m.Bio,
		ImageRef:    m.ImageRef,
		Status:      m.Status,
		Owner: OwnerContactDTO{
			OwnerID:   m.OwnerID,
			OwnerName: m.OwnerName,
			WhatsApp:  m.WhatsApp,
			Phone:     m.Phone,
			Email:     m.Email,
			Instagram: m.Instagram,
		},
		Products:     items,
		ProductCount: len(items),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromModels maps a slice of stores.
func FromModels(rows []models.Store) []StoreDTO {
	out := make([]StoreDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

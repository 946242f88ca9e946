package submissions

import (
	"strings"

	"github.com/angelmondragon/storereview-backend/pkg/db/models"
	"github.com/angelmondragon/storereview-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StoreFields is the owner-supplied storefront data.
type StoreFields struct {
	Name        string  `json:"name" validate:"required,max=255"`
	OwnerName   string  `json:"owner_name" validate:"required,max=255"`
	Description string  `json:"description" validate:"required"`
	CategoryID  string  `json:"category_id" validate:"required,max=64"`
	WhatsApp    *string `json:"whatsapp,omitempty" validate:"omitempty,max=20"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Instagram   *string `json:"instagram,omitempty" validate:"omitempty,max=100"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=1000"`
	ImageRef    *string `json:"image_ref,omitempty" validate:"omitempty,max=2048"`
}

// ProductFields is one owner-supplied catalog entry.
type ProductFields struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Description string           `json:"description" validate:"required"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0"`
	Stock       int              `json:"stock" validate:"gte=0"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,max=50"`
	ImageRef    *string          `json:"image_ref,omitempty" validate:"omitempty,max=2048"`
}

// SubmitInput is a full store plus catalog submission.
type SubmitInput struct {
	Store    StoreFields     `json:"store"`
	Products []ProductFields `json:"products" validate:"min=1,dive"`
}

// SubmissionResult summarises an accepted submission.
type SubmissionResult struct {
	StoreID      uuid.UUID         `json:"store_id"`
	Status       enums.StoreStatus `json:"status"`
	Created      bool              `json:"created"`
	ProductCount int               `json:"product_count"`
}

func (f *StoreFields) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.OwnerName = strings.TrimSpace(f.OwnerName)
	f.Description = strings.TrimSpace(f.Description)
	f.CategoryID = strings.TrimSpace(f.CategoryID)
	f.WhatsApp = trimOptional(f.WhatsApp)
	f.Phone = trimOptional(f.Phone)
	f.Email = trimOptional(f.Email)
	f.Instagram = trimOptional(f.Instagram)
	f.Bio = trimOptional(f.Bio)
	f.ImageRef = trimOptional(f.ImageRef)
}

func (f *ProductFields) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Category = trimOptional(f.Category)
	f.ImageRef = trimOptional(f.ImageRef)
}

// applyTo overwrites every owner-editable column of store.
func (f StoreFields) applyTo(store *models.Store) {
	store.Name = f.Name
	store.OwnerName = f.OwnerName
	store.Description = f.Description
	store.CategoryID = f.CategoryID
	store.WhatsApp = f.WhatsApp
	store.Phone = f.Phone
	store.Email = f.Email
	store.Instagram = f.Instagram
	store.Bio = f.Bio
	store.ImageRef = f.ImageRef
}

// toModel builds a pending product row. Price must already be validated.
func (f ProductFields) toModel() models.Product {
	var price decimal.Decimal
	if f.Price != nil {
		price = f.Price.Round(2)
	}
	p := models.Product{
		Name:        f.Name,
		Description: f.Description,
		Price:       price,
		Stock:       f.Stock,
		Category:    f.Category,
		ImageRef:    f.ImageRef,
	}
	p.SetApproval(enums.ApprovalStatusPending)
	return p
}

// trimOptional trims the value and collapses blanks to nil.
func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

package resubmissions

import (
	"strings"
	"time"

	"github.com/angelmondragon/storereview-backend/internal/comments"
	"github.com/angelmondragon/storereview-backend/pkg/db/models"
	"github.com/angelmondragon/storereview-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductUpdate is the owner's corrected product sent back to review.
// Omitted optional fields keep their stored values.
type ProductUpdate struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Description string           `json:"description" validate:"required"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0"`
	Stock       *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,max=50"`
	ImageRef    *string          `json:"image_ref,omitempty" validate:"omitempty,max=2048"`
}

func (u *ProductUpdate) normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Description = strings.TrimSpace(u.Description)
	u.Category = trimOptional(u.Category)
	u.ImageRef = trimOptional(u.ImageRef)
}

// applyTo copies the update onto product and puts it back in the queue.
func (u ProductUpdate) applyTo(product *models.Product) {
	product.Name = u.Name
	product.Description = u.Description
	if u.Price != nil {
		product.Price = u.Price.Round(2)
	}
	if u.Stock != nil {
		product.Stock = *u.Stock
	}
	if u.Category != nil {
		product.Category = u.Category
	}
	if u.ImageRef != nil {
		product.ImageRef = u.ImageRef
	}
	product.SetApproval(enums.ApprovalStatusPending)
}

// StoreComment is reviewer feedback on the store itself.
type StoreComment struct {
	ID        uuid.UUID `json:"id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductComment is reviewer feedback on one product.
type ProductComment struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

// OwnerFeedback collects every outstanding reviewer comment for an owner.
type OwnerFeedback struct {
	StoreID         *uuid.UUID        `json:"store_id,omitempty"`
	StoreStatus     enums.StoreStatus `json:"store_status,omitempty"`
	StoreComments   []StoreComment    `json:"store_comments"`
	ProductComments []ProductComment  `json:"product_comments"`
}

func emptyFeedback() *OwnerFeedback {
	return &OwnerFeedback{
		StoreComments:   []StoreComment{},
		ProductComments: []ProductComment{},
	}
}

func newStoreComments(rows []models.ModerationComment) []StoreComment {
	out := make([]StoreComment, 0, len(rows))
	for _, row := range rows {
		out = append(out, StoreComment{ID: row.ID, Comment: row.Comment, CreatedAt: row.CreatedAt})
	}
	return out
}

func newProductComments(rows []comments.ProductCommentRow) []ProductComment {
	out := make([]ProductComment, 0, len(rows))
	for _, row := range rows {
		out = append(out, ProductComment{
			ID:          row.ID,
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Comment:     row.Comment,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out
}

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

package comments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storereview-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the append-only store of reviewer feedback.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to comment operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AppendForProductWithTx records feedback on a product.
func (r *Repository) AppendForProductWithTx(tx *gorm.DB, productID, reviewerID uuid.UUID, comment string) (*models.ModerationComment, error) {
	return r.append(tx, &models.ModerationComment{ProductID: &productID, ReviewerID: reviewerID, Comment: comment})
}

// AppendForStoreWithTx records feedback on a store.
func (r *Repository) AppendForStoreWithTx(tx *gorm.DB, storeID, reviewerID uuid.UUID, comment string) (*models.ModerationComment, error) {
	return r.append(tx, &models.ModerationComment{StoreID: &storeID, ReviewerID: reviewerID, Comment: comment})
}

func (r *Repository) append(tx *gorm.DB, row *models.ModerationComment) (*models.ModerationComment, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	if (row.ProductID == nil) == (row.StoreID == nil) {
		return nil, fmt.Errorf("comment must reference exactly one subject")
	}
	if strings.TrimSpace(row.Comment) == "" {
		return nil, fmt.Errorf("comment text is required")
	}
	if err := tx.Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// DeleteForProductWithTx removes every comment attached to productID.
func (r *Repository) DeleteForProductWithTx(tx *gorm.DB, productID uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, gorm.ErrInvalidTransaction
	}
	res := tx.Where("product_id = ?", productID).Delete(&models.ModerationComment{})
	return res.RowsAffected, res.Error
}

// ListForStore returns comments attached directly to storeID, newest first.
func (r *Repository) ListForStore(ctx context.Context, storeID uuid.UUID) ([]models.ModerationComment, error) {
	var rows []models.ModerationComment
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ProductCommentRow is a product comment joined with the product name.
type ProductCommentRow struct {
	ID          uuid.UUID `gorm:"column:id"`
	ProductID   uuid.UUID `gorm:"column:product_id"`
	ProductName string    `gorm:"column:product_name"`
	Comment     string    `gorm:"column:comment"`
	ReviewerID  uuid.UUID `gorm:"column:reviewer_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

// ListProductCommentsForStore returns comments on every product of storeID, newest first.
func (r *Repository) ListProductCommentsForStore(ctx context.Context, storeID uuid.UUID) ([]ProductCommentRow, error) {
	var rows []ProductCommentRow
	err := r.db.WithContext(ctx).
		Table("moderation_comments AS c").
		Select("c.id, c.product_id, p.name AS product_name, c.comment, c.reviewer_id, c.created_at").
		Joins("JOIN products AS p ON p.id = c.product_id").
		Where("p.store_id = ?", storeID).
		Order("c.created_at DESC").
		Order("c.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

package products

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storereview-backend/pkg/db/models"
	"github.com/angelmondragon/storereview-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles product persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to product operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithTx inserts one product.
func (r *Repository) CreateWithTx(tx *gorm.DB, product *models.Product) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if product == nil {
		return fmt.Errorf("product is required")
	}
	return tx.Create(product).Error
}

// ReplaceForStoreWithTx deletes every product of storeID and inserts rows in its place.
func (r *Repository) ReplaceForStoreWithTx(tx *gorm.DB, storeID uuid.UUID, rows []models.Product) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if err := tx.Where("store_id = ?", storeID).Delete(&models.Product{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].StoreID = storeID
	}
	return tx.Create(&rows).Error
}

// FindByID loads a product by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return findByID(r.db.WithContext(ctx), id)
}

// FindByIDWithTx loads a product using the provided transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	return findByID(tx, id)
}

func findByID(db *gorm.DB, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := db.Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindForStoreWithTx loads a product only if it belongs to storeID.
func (r *Repository) FindForStoreWithTx(tx *gorm.DB, storeID, id uuid.UUID) (*models.Product, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var product models.Product
	if err := tx.Where("id = ? AND store_id = ?", id, storeID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateApprovalWithTx writes the approval verdict and its paired lifecycle flag.
func (r *Repository) UpdateApprovalWithTx(tx *gorm.DB, id uuid.UUID, status enums.ApprovalStatus) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	res := tx.Model(&models.Product{}).Where("id = ?", id).Updates(models.ApprovalColumns(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateWithTx saves every column of the product.
func (r *Repository) UpdateWithTx(tx *gorm.DB, product *models.Product) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if product == nil {
		return fmt.Errorf("product is required")
	}
	product.SetApproval(product.ApprovalStatus)
	return tx.Save(product).Error
}

// CountApprovedWithTx counts approved products of a store inside the transaction.
func (r *Repository) CountApprovedWithTx(tx *gorm.DB, storeID uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, gorm.ErrInvalidTransaction
	}
	var count int64
	err := tx.Model(&models.Product{}).
		Where("store_id = ? AND approval_status = ?", storeID, enums.ApprovalStatusApproved).
		Count(&count).Error
	return count, err
}

// ListByStore returns the products of a store in insertion order.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPendingWithStore returns pending products joined with their store and owner contact, newest first.
func (r *Repository) ListPendingWithStore(ctx context.Context) ([]PendingProductRow, error) {
	var rows []PendingProductRow
	err := r.db.WithContext(ctx).
		Table("products AS p").
		Select(`p.id, p.store_id, p.name, p.description, p.price, p.stock, p.category, p.image_ref, p.created_at,
			s.name AS store_name, s.status AS store_status, s.owner_id, s.owner_name,
			s.whatsapp AS owner_whatsapp, s.phone AS owner_phone, s.email AS owner_email, s.instagram AS owner_instagram`).
		Joins("JOIN stores AS s ON s.id = p.store_id").
		Where("p.approval_status = ?", enums.ApprovalStatusPending).
		Order("p.created_at DESC").
		Order("p.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

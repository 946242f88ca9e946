package resubmissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storereview-backend/internal/comments"
	"github.com/angelmondragon/storereview-backend/internal/products"
	"github.com/angelmondragon/storereview-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storereview-backend/pkg/errors"
	"github.com/angelmondragon/storereview-backend/pkg/logger"
	"github.com/angelmondragon/storereview-backend/pkg/metrics"
	"github.com/angelmondragon/storereview-backend/pkg/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type storesRepository interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Store, error)
}

type productsRepository interface {
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Product, error)
	UpdateWithTx(tx *gorm.DB, product *models.Product) error
}

type commentsRepository interface {
	DeleteForProductWithTx(tx *gorm.DB, productID uuid.UUID) (int64, error)
	ListForStore(ctx context.Context, storeID uuid.UUID) ([]models.ModerationComment, error)
	ListProductCommentsForStore(ctx context.Context, storeID uuid.UUID) ([]comments.ProductCommentRow, error)
}

// Service lets owners answer reviewer feedback.
type Service interface {
	ResubmitProduct(ctx context.Context, ownerID, productID uuid.UUID, input ProductUpdate) (*products.ProductDTO, error)
	CommentsForOwner(ctx context.Context, ownerID uuid.UUID) (*OwnerFeedback, error)
}

// ServiceParams wires the resubmission service.
type ServiceParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Stores   storesRepository
	Products productsRepository
	Comments commentsRepository
	Metrics  *metrics.ModerationMetrics
}

type service struct {
	logg     *logger.Logger
	tx       txRunner
	stores   storesRepository
	products productsRepository
	comments commentsRepository
	metrics  *metrics.ModerationMetrics
}

// NewService builds a resubmission service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Comments == nil {
		return nil, fmt.Errorf("comment repository required")
	}
	return &service{
		logg:     params.Logger,
		tx:       params.DB,
		stores:   params.Stores,
		products: params.Products,
		comments: params.Comments,
		metrics:  params.Metrics,
	}, nil
}

// ResubmitProduct applies the owner's corrections to a rejected product and
// returns it to the review queue. Previous reviewer comments are discarded.
func (s *service) ResubmitProduct(ctx context.Context, ownerID, productID uuid.UUID, input ProductUpdate) (*products.ProductDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner identity missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	input.normalize()
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	var (
		product *models.Product
		cleared int64
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		product, err = s.products.FindByIDWithTx(tx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		store, err := s.stores.FindByIDWithTx(tx, product.StoreID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
		}
		if store.OwnerID != ownerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another store")
		}
		if !product.CanResubmit() {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "only rejected products can be resubmitted").
				WithDetails(map[string]any{
					"approval_status":  product.ApprovalStatus,
					"lifecycle_status": product.LifecycleStatus,
				})
		}

		input.applyTo(product)
		if err := s.products.UpdateWithTx(tx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
		cleared, err = s.comments.DeleteForProductWithTx(tx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear product comments")
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Passthrough(err, pkgerrors.CodeDependency, "resubmit product")
	}

	s.metrics.IncSubmission("resubmit")
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"owner_id":         ownerID.String(),
		"product_id":       productID.String(),
		"store_id":         product.StoreID.String(),
		"comments_cleared": cleared,
	}), "resubmission.accepted")
	dto := products.NewProductDTO(product)
	return &dto, nil
}

// CommentsForOwner returns the feedback attached to the owner's store and
// its products. An owner without a store gets empty feedback.
func (s *service) CommentsForOwner(ctx context.Context, ownerID uuid.UUID) (*OwnerFeedback, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner identity missing")
	}
	store, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyFeedback(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	storeRows, err := s.comments.ListForStore(ctx, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store comments")
	}
	productRows, err := s.comments.ListProductCommentsForStore(ctx, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product comments")
	}

	storeID := store.ID
	return &OwnerFeedback{
		StoreID:         &storeID,
		StoreStatus:     store.Status,
		StoreComments:   newStoreComments(storeRows),
		ProductComments: newProductComments(productRows),
	}, nil
}

package submissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/storereview-backend/internal/products"
	"github.com/angelmondragon/storereview-backend/internal/stores"
	"github.com/angelmondragon/storereview-backend/pkg/db"
	"github.com/angelmondragon/storereview-backend/pkg/db/models"
	"github.com/angelmondragon/storereview-backend/pkg/enums"
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
	FindByOwnerWithTx(tx *gorm.DB, ownerID uuid.UUID) (*models.Store, error)
	CreateWithTx(tx *gorm.DB, store *models.Store) error
	UpdateWithTx(tx *gorm.DB, store *models.Store) error
}

type productsRepository interface {
	ReplaceForStoreWithTx(tx *gorm.DB, storeID uuid.UUID, rows []models.Product) error
	CreateWithTx(tx *gorm.DB, product *models.Product) error
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error)
}

// Service accepts owner submissions into the review queue.
type Service interface {
	Submit(ctx context.Context, ownerID uuid.UUID, input SubmitInput) (*SubmissionResult, error)
	AddProduct(ctx context.Context, ownerID uuid.UUID, input ProductFields) (*products.ProductDTO, error)
	OwnerStore(ctx context.Context, ownerID uuid.UUID) (*stores.StoreDTO, error)
}

// ServiceParams wires the submission service.
type ServiceParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Stores      storesRepository
	Products    productsRepository
	Metrics     *metrics.ModerationMetrics
	MaxProducts int
}

type service struct {
	logg        *logger.Logger
	tx          txRunner
	stores      storesRepository
	products    productsRepository
	metrics     *metrics.ModerationMetrics
	maxProducts int
}

// NewService builds a submission service.
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
	if params.MaxProducts <= 0 {
		return nil, fmt.Errorf("max products must be positive")
	}
	return &service{
		logg:        params.Logger,
		tx:          params.DB,
		stores:      params.Stores,
		products:    params.Products,
		metrics:     params.Metrics,
		maxProducts: params.MaxProducts,
	}, nil
}

// Submit creates or resets the owner's store and replaces its catalog. The
// store always lands in pending and every product in pending+active.
func (s *service) Submit(ctx context.Context, ownerID uuid.UUID, input SubmitInput) (*SubmissionResult, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner identity missing")
	}
	input.Store.normalize()
	for i := range input.Products {
		input.Products[i].normalize()
	}
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}
	if len(input.Products) > s.maxProducts {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"products": fmt.Sprintf("must contain at most %d item(s)", s.maxProducts)})
	}

	started := time.Now()
	result, err := s.submitOnce(ctx, ownerID, input)
	if err != nil && db.IsUniqueViolation(err, "") {
		// A concurrent first submission created the row; retry as an update.
		s.logg.Warn(s.logg.WithField(ctx, "owner_id", ownerID.String()), "submission.owner_race_retry")
		result, err = s.submitOnce(ctx, ownerID, input)
	}
	if err != nil {
		return nil, pkgerrors.Passthrough(err, pkgerrors.CodeDependency, "submit store")
	}

	kind := "updated"
	if result.Created {
		kind = "created"
	}
	s.metrics.IncSubmission(kind)
	s.metrics.ObserveDuration("submit", time.Since(started))
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"owner_id":      ownerID.String(),
		"store_id":      result.StoreID.String(),
		"product_count": result.ProductCount,
		"kind":          kind,
	})
	s.logg.Info(logCtx, "submission.accepted")
	return result, nil
}

func (s *service) submitOnce(ctx context.Context, ownerID uuid.UUID, input SubmitInput) (*SubmissionResult, error) {
	result := &SubmissionResult{Status: enums.StoreStatusPending, ProductCount: len(input.Products)}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := s.stores.FindByOwnerWithTx(tx, ownerID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			store = &models.Store{OwnerID: ownerID, Status: enums.StoreStatusPending}
			input.Store.applyTo(store)
			if err := s.stores.CreateWithTx(tx, store); err != nil {
				return err
			}
			result.Created = true
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owner store")
		default:
			input.Store.applyTo(store)
			store.Status = enums.StoreStatusPending
			if err := s.stores.UpdateWithTx(tx, store); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
			}
		}

		rows := make([]models.Product, 0, len(input.Products))
		for _, p := range input.Products {
			rows = append(rows, p.toModel())
		}
		if err := s.products.ReplaceForStoreWithTx(tx, store.ID, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace store products")
		}
		result.StoreID = store.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddProduct appends one pending product to an already active store.
func (s *service) AddProduct(ctx context.Context, ownerID uuid.UUID, input ProductFields) (*products.ProductDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner identity missing")
	}
	input.normalize()
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	var created models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := s.stores.FindByOwnerWithTx(tx, ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owner store")
		}
		if store.Status != enums.StoreStatusActive {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "products can only be added to an active store").
				WithDetails(map[string]any{"store_status": store.Status})
		}
		created = input.toModel()
		created.StoreID = store.ID
		if err := s.products.CreateWithTx(tx, &created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"store_id":   created.StoreID.String(),
		"product_id": created.ID.String(),
	}), "submission.product_added")
	dto := products.NewProductDTO(&created)
	return &dto, nil
}

// OwnerStore returns the caller's store with its full catalog.
func (s *service) OwnerStore(ctx context.Context, ownerID uuid.UUID) (*stores.StoreDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner identity missing")
	}
	store, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owner store")
	}
	rows, err := s.products.ListByStore(ctx, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store products")
	}
	store.Products = rows
	return stores.FromModel(store), nil
}

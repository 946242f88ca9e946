package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storereview-backend/internal/products"
	"github.com/angelmondragon/storereview-backend/internal/stores"
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
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	LockByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Store, error)
	UpdateStatusWithTx(tx *gorm.DB, id uuid.UUID, status enums.StoreStatus) error
	ListByStatus(ctx context.Context, status enums.StoreStatus) ([]models.Store, error)
}

type productsRepository interface {
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Product, error)
	FindForStoreWithTx(tx *gorm.DB, storeID, id uuid.UUID) (*models.Product, error)
	UpdateApprovalWithTx(tx *gorm.DB, id uuid.UUID, status enums.ApprovalStatus) error
	CountApprovedWithTx(tx *gorm.DB, storeID uuid.UUID) (int64, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error)
	ListPendingWithStore(ctx context.Context) ([]products.PendingProductRow, error)
}

type commentsRepository interface {
	AppendForProductWithTx(tx *gorm.DB, productID, reviewerID uuid.UUID, comment string) (*models.ModerationComment, error)
	AppendForStoreWithTx(tx *gorm.DB, storeID, reviewerID uuid.UUID, comment string) (*models.ModerationComment, error)
	ListForStore(ctx context.Context, storeID uuid.UUID) ([]models.ModerationComment, error)
}

// Service applies reviewer verdicts and exposes the review queues.
type Service interface {
	ApproveProduct(ctx context.Context, productID uuid.UUID) (*products.ProductDTO, error)
	RejectProduct(ctx context.Context, reviewerID, productID uuid.UUID, comment string) (*products.ProductDTO, error)
	ReviewStore(ctx context.Context, reviewerID, storeID uuid.UUID, input ReviewStoreInput) (*ReviewResult, error)
	BulkApprove(ctx context.Context, storeIDs []uuid.UUID) (*BulkResult, error)
	BulkReject(ctx context.Context, reviewerID uuid.UUID, storeIDs []uuid.UUID, reason string) (*BulkResult, error)
	ListPendingStores(ctx context.Context) ([]stores.StoreDTO, error)
	ListPendingProducts(ctx context.Context) ([]products.PendingProductRow, error)
	GetStore(ctx context.Context, storeID uuid.UUID) (*StoreDetail, error)
}

// ServiceParams wires the moderation service.
type ServiceParams struct {
	Logger           *logger.Logger
	DB               txRunner
	Stores           storesRepository
	Products         productsRepository
	Comments         commentsRepository
	Metrics          *metrics.ModerationMetrics
	MinCommentLength int
}

type service struct {
	logg       *logger.Logger
	tx         txRunner
	stores     storesRepository
	products   productsRepository
	comments   commentsRepository
	metrics    *metrics.ModerationMetrics
	minComment int
}

// NewService builds a moderation service.
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
	if params.MinCommentLength <= 0 {
		return nil, fmt.Errorf("min comment length must be positive")
	}
	return &service{
		logg:       params.Logger,
		tx:         params.DB,
		stores:     params.Stores,
		products:   params.Products,
		comments:   params.Comments,
		metrics:    params.Metrics,
		minComment: params.MinCommentLength,
	}, nil
}

// ApproveProduct marks a product approved. Approving an approved product is a no-op.
func (s *service) ApproveProduct(ctx context.Context, productID uuid.UUID) (*products.ProductDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	var product *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		product, err = s.products.FindByIDWithTx(tx, productID)
		if err != nil {
			return mapLookupErr(err, "product not found", "load product")
		}
		if product.ApprovalStatus == enums.ApprovalStatusApproved {
			return nil
		}
		if err := s.products.UpdateApprovalWithTx(tx, productID, enums.ApprovalStatusApproved); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve product")
		}
		product.SetApproval(enums.ApprovalStatusApproved)
		s.metrics.IncDecision("product", string(enums.ApprovalStatusApproved))
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Passthrough(err, pkgerrors.CodeDependency, "approve product")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"product_id": productID.String(),
		"store_id":   product.StoreID.String(),
	}), "moderation.product_approved")
	dto := products.NewProductDTO(product)
	return &dto, nil
}

// RejectProduct marks a product rejected and records the reviewer's reason.
// An active store left without approved products is demoted to rejected.
func (s *service) RejectProduct(ctx context.Context, reviewerID, productID uuid.UUID, comment string) (*products.ProductDTO, error) {
	if reviewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewer identity missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	comment, err := validation.Comment("comment", comment, s.minComment)
	if err != nil {
		return nil, err
	}

	var (
		product  *models.Product
		demoted  bool
		storeRef uuid.UUID
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		product, err = s.products.FindByIDWithTx(tx, productID)
		if err != nil {
			return mapLookupErr(err, "product not found", "load product")
		}
		storeRef = product.StoreID
		store, err := s.stores.LockByIDWithTx(tx, product.StoreID)
		if err != nil {
			return mapLookupErr(err, "store not found", "lock store")
		}

		if err := s.products.UpdateApprovalWithTx(tx, productID, enums.ApprovalStatusRejected); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject product")
		}
		product.SetApproval(enums.ApprovalStatusRejected)
		if _, err := s.comments.AppendForProductWithTx(tx, productID, reviewerID, comment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record product comment")
		}

		if store.Status != enums.StoreStatusActive {
			return nil
		}
		approved, err := s.products.CountApprovedWithTx(tx, store.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count approved products")
		}
		if approved == 0 {
			if err := s.stores.UpdateStatusWithTx(tx, store.ID, enums.StoreStatusRejected); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "demote store")
			}
			demoted = true
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Passthrough(err, pkgerrors.CodeDependency, "reject product")
	}

	s.metrics.IncDecision("product", string(enums.ApprovalStatusRejected))
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"product_id":  productID.String(),
		"store_id":    storeRef.String(),
		"reviewer_id": reviewerID.String(),
	})
	s.logg.Info(logCtx, "moderation.product_rejected")
	if demoted {
		s.metrics.IncStoreTransition(string(enums.StoreStatusRejected))
		s.logg.Warn(logCtx, "moderation.store_demoted_no_approved_products")
	}
	dto := products.NewProductDTO(product)
	return &dto, nil
}

// ReviewStore applies per-product verdicts and the store verdict atomically.
// Decisions naming products of another store, or unknown products, are skipped.
func (s *service) ReviewStore(ctx context.Context, reviewerID, storeID uuid.UUID, input ReviewStoreInput) (*ReviewResult, error) {
	if reviewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewer identity missing")
	}
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	input, err := s.normalizeReview(input)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result := &ReviewResult{StoreID: storeID}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.stores.LockByIDWithTx(tx, storeID); err != nil {
			return mapLookupErr(err, "store not found", "lock store")
		}

		for _, decision := range input.Products {
			if _, err := s.products.FindForStoreWithTx(tx, storeID, decision.ProductID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					result.SkippedCount++
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			status := decision.Action.ApprovalStatus()
			if err := s.products.UpdateApprovalWithTx(tx, decision.ProductID, status); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply product decision")
			}
			if status == enums.ApprovalStatusApproved {
				result.ApprovedCount++
				continue
			}
			result.RejectedCount++
			if decision.Comment != "" {
				if _, err := s.comments.AppendForProductWithTx(tx, decision.ProductID, reviewerID, decision.Comment); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record product comment")
				}
			}
		}

		approvedTotal, err := s.products.CountApprovedWithTx(tx, storeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count approved products")
		}
		result.ApprovedTotal = approvedTotal
		result.StoreStatus = deriveStoreStatus(input.Decision, approvedTotal)

		if err := s.stores.UpdateStatusWithTx(tx, storeID, result.StoreStatus); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store status")
		}
		if result.StoreStatus == enums.StoreStatusRejected && input.StoreComment != "" {
			if _, err := s.comments.AppendForStoreWithTx(tx, storeID, reviewerID, input.StoreComment); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record store comment")
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Passthrough(err, pkgerrors.CodeDependency, "review store")
	}

	s.metrics.AddDecisions("product", string(enums.ApprovalStatusApproved), result.ApprovedCount)
	s.metrics.AddDecisions("product", string(enums.ApprovalStatusRejected), result.RejectedCount)
	s.metrics.IncDecision("store", string(result.StoreStatus))
	s.metrics.IncStoreTransition(string(result.StoreStatus))
	s.metrics.ObserveDuration("review_store", time.Since(started))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"store_id":       storeID.String(),
		"reviewer_id":    reviewerID.String(),
		"decision":       input.Decision,
		"store_status":   result.StoreStatus,
		"approved_count": result.ApprovedCount,
		"rejected_count": result.RejectedCount,
		"skipped_count":  result.SkippedCount,
	}), "moderation.store_reviewed")
	return result, nil
}

func (s *service) normalizeReview(input ReviewStoreInput) (ReviewStoreInput, error) {
	input.Decision = enums.ReviewAction(strings.ToLower(strings.TrimSpace(string(input.Decision))))
	input.StoreComment = strings.TrimSpace(input.StoreComment)
	input.Products = append([]ProductDecision(nil), input.Products...)
	for i := range input.Products {
		input.Products[i].Action = enums.ReviewAction(strings.ToLower(strings.TrimSpace(string(input.Products[i].Action))))
		input.Products[i].Comment = strings.TrimSpace(input.Products[i].Comment)
	}
	if err := validation.Struct(&input); err != nil {
		return input, err
	}
	if input.StoreComment != "" {
		if _, err := validation.Comment("store_comment", input.StoreComment, s.minComment); err != nil {
			return input, err
		}
	}
	for i, d := range input.Products {
		if d.Comment == "" {
			continue
		}
		if _, err := validation.Comment(fmt.Sprintf("products[%d].comment", i), d.Comment, s.minComment); err != nil {
			return input, err
		}
	}
	input.Products = dedupeDecisions(input.Products)
	return input, nil
}

// BulkApprove activates pending stores that already hold an approved product.
// Each store commits on its own; a failure is logged and does not affect the others.
func (s *service) BulkApprove(ctx context.Context, storeIDs []uuid.UUID) (*BulkResult, error) {
	ids := dedupeIDs(storeIDs)
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"store_ids": "must contain at least 1 item(s)"})
	}

	return s.bulk(ctx, "bulk_approve", ids, func(tx *gorm.DB, store *models.Store) (bool, error) {
		approved, err := s.products.CountApprovedWithTx(tx, store.ID)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count approved products")
		}
		if approved == 0 {
			return false, nil
		}
		if err := s.stores.UpdateStatusWithTx(tx, store.ID, enums.StoreStatusActive); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate store")
		}
		return true, nil
	}, enums.StoreStatusActive)
}

// BulkReject rejects pending stores and records reason against each one.
func (s *service) BulkReject(ctx context.Context, reviewerID uuid.UUID, storeIDs []uuid.UUID, reason string) (*BulkResult, error) {
	if reviewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewer identity missing")
	}
	reason, err := validation.Comment("reason", reason, s.minComment)
	if err != nil {
		return nil, err
	}
	ids := dedupeIDs(storeIDs)
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"store_ids": "must contain at least 1 item(s)"})
	}

	return s.bulk(ctx, "bulk_reject", ids, func(tx *gorm.DB, store *models.Store) (bool, error) {
		if err := s.stores.UpdateStatusWithTx(tx, store.ID, enums.StoreStatusRejected); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject store")
		}
		if _, err := s.comments.AppendForStoreWithTx(tx, store.ID, reviewerID, reason); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record store comment")
		}
		return true, nil
	}, enums.StoreStatusRejected)
}

type bulkStep func(tx *gorm.DB, store *models.Store) (bool, error)

// bulk runs step for every pending store in its own transaction. The pending
// check happens under the row lock so a concurrent review is never overwritten.
func (s *service) bulk(ctx context.Context, operation string, ids []uuid.UUID, step bulkStep, target enums.StoreStatus) (*BulkResult, error) {
	started := time.Now()
	result := &BulkResult{Requested: len(ids)}
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			result.Interrupted = true
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"operation": operation,
				"visited":   i,
				"requested": result.Requested,
			}), "moderation.bulk_interrupted")
			break
		}

		var moved bool
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			store, err := s.stores.LockByIDWithTx(tx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock store")
			}
			if store.Status != enums.StoreStatusPending {
				return nil
			}
			moved, err = step(tx, store)
			return err
		})
		logCtx := s.logg.WithFields(ctx, map[string]any{"store_id": id.String(), "operation": operation})
		if err != nil {
			result.Failed = append(result.Failed, id)
			s.logg.Error(logCtx, "moderation.bulk_item_failed", err)
			continue
		}
		if moved {
			result.Transitioned++
			s.metrics.IncStoreTransition(string(target))
			s.logg.Info(logCtx, "moderation.bulk_item_transitioned")
		}
	}

	s.metrics.ObserveDuration(operation, time.Since(started))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"operation":    operation,
		"requested":    result.Requested,
		"transitioned": result.Transitioned,
		"failed":       len(result.Failed),
		"interrupted":  result.Interrupted,
	}), "moderation.bulk_complete")
	return result, nil
}

// ListPendingStores returns the store review queue, newest first.
func (s *service) ListPendingStores(ctx context.Context) ([]stores.StoreDTO, error) {
	rows, err := s.stores.ListByStatus(ctx, enums.StoreStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending stores")
	}
	return stores.FromModels(rows), nil
}

// ListPendingProducts returns the product review queue, newest first.
func (s *service) ListPendingProducts(ctx context.Context) ([]products.PendingProductRow, error) {
	rows, err := s.products.ListPendingWithStore(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending products")
	}
	if rows == nil {
		rows = []products.PendingProductRow{}
	}
	return rows, nil
}

// GetStore returns one store with its catalog and store-level feedback.
func (s *service) GetStore(ctx context.Context, storeID uuid.UUID) (*StoreDetail, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, mapLookupErr(err, "store not found", "load store")
	}
	rows, err := s.products.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store products")
	}
	store.Products = rows
	comments, err := s.comments.ListForStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store comments")
	}
	return &StoreDetail{
		StoreDTO:      *stores.FromModel(store),
		StoreComments: newCommentDTOs(comments),
	}, nil
}

func mapLookupErr(err error, notFoundMsg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

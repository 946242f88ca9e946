package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/storereview-backend/api/responses"
	"github.com/angelmondragon/storereview-backend/api/validators"
	"github.com/angelmondragon/storereview-backend/internal/moderation"
	"github.com/angelmondragon/storereview-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storereview-backend/pkg/errors"
	"github.com/angelmondragon/storereview-backend/pkg/logger"
)

type rejectProductRequest struct {
	Comment string `json:"comment" validate:"required"`
}

type productDecisionRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Action    string    `json:"action" validate:"required"`
	Comment   string    `json:"comment,omitempty"`
}

type reviewStoreRequest struct {
	Decision     string                   `json:"decision" validate:"required"`
	StoreComment string                   `json:"store_comment,omitempty"`
	Products     []productDecisionRequest `json:"products" validate:"dive"`
}

// Action casing is normalised by the moderation service.
func (r reviewStoreRequest) toInput() moderation.ReviewStoreInput {
	input := moderation.ReviewStoreInput{
		Decision:     enums.ReviewAction(r.Decision),
		StoreComment: r.StoreComment,
		Products:     make([]moderation.ProductDecision, 0, len(r.Products)),
	}
	for _, p := range r.Products {
		input.Products = append(input.Products, moderation.ProductDecision{
			ProductID: p.ProductID,
			Action:    enums.ReviewAction(p.Action),
			Comment:   p.Comment,
		})
	}
	return input
}

type bulkApproveRequest struct {
	StoreIDs []uuid.UUID `json:"store_ids" validate:"min=1,max=100"`
}

type bulkRejectRequest struct {
	StoreIDs []uuid.UUID `json:"store_ids" validate:"min=1,max=100"`
	Reason   string      `json:"reason" validate:"required"`
}

// ModerationPendingStores lists stores waiting for review.
func ModerationPendingStores(svc moderation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "moderation service unavailable"))
			return
		}
		rows, err := svc.ListPendingStores(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ModerationPendingProducts lists products waiting for review.
func ModerationPendingProducts(svc moderation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "moderation service unavailable"))
			return
		}
		rows, err := svc.ListPendingProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ModerationStoreDetail returns one store with its catalog and feedback.
func ModerationStoreDetail(svc moderation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "moderation service unavailable"))
			return
		}
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.GetStore(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ModerationApproveProduct approves a single product.
func ModerationApproveProduct(svc moderation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "moderation service unavailable"))
			return
		}
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.ApproveProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ModerationRejectProduct rejects a single product with a reviewer comment.
func ModerationRejectProduct(svc moderation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "moderation service unavailable"))
			return
		}
		reviewerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rejectProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.RejectProduct(r.Context(), reviewerID, productID, payload.Comment)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ModerationReviewStore applies a combined store and product verdict.
func ModerationReviewStore(svc moderation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "moderation service unavailable"))
			return
		}
		reviewerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reviewStoreRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ReviewStore(r.Context(), reviewerID, storeID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ModerationBulkApprove activates every listed pending store that qualifies.
func ModerationBulkApprove(svc moderation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "moderation service unavailable"))
			return
		}

		var payload bulkApproveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BulkApprove(r.Context(), payload.StoreIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ModerationBulkReject rejects every listed pending store with one reason.
func ModerationBulkReject(svc moderation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "moderation service unavailable"))
			return
		}
		reviewerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bulkRejectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BulkReject(r.Context(), reviewerID, payload.StoreIDs, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

package moderation

import (
	"time"

	"github.com/angelmondragon/storereview-backend/internal/stores"
	"github.com/angelmondragon/storereview-backend/pkg/db/models"
	"github.com/angelmondragon/storereview-backend/pkg/enums"
	"github.com/google/uuid"
)

// ProductDecision is a reviewer verdict on one product inside a store review.
type ProductDecision struct {
	ProductID uuid.UUID          `json:"product_id" validate:"required"`
	Action    enums.ReviewAction `json:"action" validate:"required,oneof=approve reject"`
	Comment   string             `json:"comment,omitempty"`
}

// ReviewStoreInput is the combined verdict on a store and its products.
type ReviewStoreInput struct {
	Decision     enums.ReviewAction `json:"decision" validate:"required,oneof=approve reject"`
	StoreComment string             `json:"store_comment,omitempty"`
	Products     []ProductDecision  `json:"products" validate:"dive"`
}

// ReviewResult reports the outcome of ReviewStore.
type ReviewResult struct {
	StoreID       uuid.UUID         `json:"store_id"`
	StoreStatus   enums.StoreStatus `json:"store_status"`
	ApprovedCount int               `json:"approved_count"`
	RejectedCount int               `json:"rejected_count"`
	SkippedCount  int               `json:"skipped_count"`
	ApprovedTotal int64             `json:"approved_total"`
}

// BulkResult reports how many stores a bulk operation actually moved.
// Interrupted is set when the caller went away before every id was visited;
// the counts then cover only the stores already committed.
type BulkResult struct {
	Requested    int         `json:"requested"`
	Transitioned int         `json:"transitioned"`
	Failed       []uuid.UUID `json:"failed,omitempty"`
	Interrupted  bool        `json:"interrupted,omitempty"`
}

// CommentDTO is reviewer feedback shown in admin views.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	Comment    string    `json:"comment"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// StoreDetail is a reviewer's view of one store.
type StoreDetail struct {
	stores.StoreDTO
	StoreComments []CommentDTO `json:"store_comments"`
}

func newCommentDTOs(rows []models.ModerationComment) []CommentDTO {
	out := make([]CommentDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, CommentDTO{
			ID:         row.ID,
			Comment:    row.Comment,
			ReviewerID: row.ReviewerID,
			CreatedAt:  row.CreatedAt,
		})
	}
	return out
}

// deriveStoreStatus folds the store verdict and the approved tally into the final status.
func deriveStoreStatus(decision enums.ReviewAction, approvedTotal int64) enums.StoreStatus {
	if decision == enums.ReviewActionReject {
		return enums.StoreStatusRejected
	}
	if approvedTotal > 0 {
		return enums.StoreStatusActive
	}
	return enums.StoreStatusRejected
}

// dedupeDecisions keeps the last verdict per product in first-seen order.
func dedupeDecisions(in []ProductDecision) []ProductDecision {
	index := make(map[uuid.UUID]int, len(in))
	out := make([]ProductDecision, 0, len(in))
	for _, d := range in {
		if i, ok := index[d.ProductID]; ok {
			out[i] = d
			continue
		}
		index[d.ProductID] = len(out)
		out = append(out, d)
	}
	return out
}

func dedupeIDs(in []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(in))
	out := make([]uuid.UUID, 0, len(in))
	for _, id := range in {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

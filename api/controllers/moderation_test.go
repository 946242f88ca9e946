package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/storereview-backend/internal/moderation"
	"github.com/angelmondragon/storereview-backend/internal/products"
	"github.com/angelmondragon/storereview-backend/internal/stores"
	"github.com/angelmondragon/storereview-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storereview-backend/pkg/errors"
)

type stubModerationService struct {
	err error

	reviewInput moderation.ReviewStoreInput
	reviewerID  uuid.UUID
	bulkIDs     []uuid.UUID
	reason      string
	comment     string
}

func (s *stubModerationService) ApproveProduct(_ context.Context, productID uuid.UUID) (*products.ProductDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &products.ProductDTO{ID: productID, ApprovalStatus: enums.ApprovalStatusApproved, Visible: true}, nil
}

func (s *stubModerationService) RejectProduct(_ context.Context, reviewerID, productID uuid.UUID, comment string) (*products.ProductDTO, error) {
	s.reviewerID = reviewerID
	s.comment = comment
	if s.err != nil {
		return nil, s.err
	}
	return &products.ProductDTO{ID: productID, ApprovalStatus: enums.ApprovalStatusRejected}, nil
}

func (s *stubModerationService) ReviewStore(_ context.Context, reviewerID, storeID uuid.UUID, input moderation.ReviewStoreInput) (*moderation.ReviewResult, error) {
	s.reviewerID = reviewerID
	s.reviewInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &moderation.ReviewResult{StoreID: storeID, StoreStatus: enums.StoreStatusActive, ApprovedCount: 1}, nil
}

func (s *stubModerationService) BulkApprove(_ context.Context, ids []uuid.UUID) (*moderation.BulkResult, error) {
	s.bulkIDs = ids
	if s.err != nil {
		return nil, s.err
	}
	return &moderation.BulkResult{Requested: len(ids), Transitioned: len(ids)}, nil
}

func (s *stubModerationService) BulkReject(_ context.Context, reviewerID uuid.UUID, ids []uuid.UUID, reason string) (*moderation.BulkResult, error) {
	s.reviewerID = reviewerID
	s.bulkIDs = ids
	s.reason = reason
	if s.err != nil {
		return nil, s.err
	}
	return &moderation.BulkResult{Requested: len(ids), Transitioned: len(ids)}, nil
}

func (s *stubModerationService) ListPendingStores(context.Context) ([]stores.StoreDTO, error) {
	return []stores.StoreDTO{{ID: uuid.New(), Status: enums.StoreStatusPending}}, s.err
}

func (s *stubModerationService) ListPendingProducts(context.Context) ([]products.PendingProductRow, error) {
	return []products.PendingProductRow{}, s.err
}

func (s *stubModerationService) GetStore(_ context.Context, storeID uuid.UUID) (*moderation.StoreDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &moderation.StoreDetail{StoreDTO: stores.StoreDTO{ID: storeID}}, nil
}

func TestModerationReviewStoreDecodesDecisions(t *testing.T) {
	reviewer := uuid.New()
	storeID := uuid.New()
	productID := uuid.New()
	svc := &stubModerationService{}
	body := `{"decision":"approve","products":[{"product_id":"` + productID.String() + `","action":"reject","comment":"blurry photo here"}]}`

	req := asUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), reviewer)
	req = withURLParam(req, "storeId", storeID.String())
	rec := httptest.NewRecorder()
	ModerationReviewStore(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.reviewerID != reviewer {
		t.Fatalf("expected reviewer %s got %s", reviewer, svc.reviewerID)
	}
	if svc.reviewInput.Decision != enums.ReviewActionApprove {
		t.Fatalf("unexpected decision %q", svc.reviewInput.Decision)
	}
	if len(svc.reviewInput.Products) != 1 || svc.reviewInput.Products[0].ProductID != productID {
		t.Fatalf("unexpected products %+v", svc.reviewInput.Products)
	}

	var envelope struct {
		Data moderation.ReviewResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.StoreID != storeID || envelope.Data.StoreStatus != enums.StoreStatusActive {
		t.Fatalf("unexpected result %+v", envelope.Data)
	}
}

func TestModerationReviewStoreRequiresDecision(t *testing.T) {
	svc := &stubModerationService{}
	req := asUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"products":[]}`)), uuid.New())
	req = withURLParam(req, "storeId", uuid.NewString())
	rec := httptest.NewRecorder()
	ModerationReviewStore(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestModerationRejectProduct(t *testing.T) {
	svc := &stubModerationService{}
	productID := uuid.New()
	req := asUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"comment":"photos are blurry"}`)), uuid.New())
	req = withURLParam(req, "productId", productID.String())
	rec := httptest.NewRecorder()
	ModerationRejectProduct(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.comment != "photos are blurry" {
		t.Fatalf("unexpected comment %q", svc.comment)
	}
}

func TestModerationApproveProductNotFound(t *testing.T) {
	svc := &stubModerationService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "productId", uuid.NewString())
	rec := httptest.NewRecorder()
	ModerationApproveProduct(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestModerationBulkReject(t *testing.T) {
	svc := &stubModerationService{}
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	body := `{"store_ids":["` + ids[0].String() + `","` + ids[1].String() + `"],"reason":"duplicate listings found"}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), uuid.New())
	rec := httptest.NewRecorder()
	ModerationBulkReject(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.bulkIDs) != 2 || svc.reason != "duplicate listings found" {
		t.Fatalf("unexpected forwarded input ids=%v reason=%q", svc.bulkIDs, svc.reason)
	}
}

func TestModerationBulkApproveRequiresIDs(t *testing.T) {
	svc := &stubModerationService{}
	req := asUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"store_ids":[]}`)), uuid.New())
	rec := httptest.NewRecorder()
	ModerationBulkApprove(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.bulkIDs != nil {
		t.Fatal("service must not run without ids")
	}
}

func TestModerationPendingStoresDependencyFailure(t *testing.T) {
	svc := &stubModerationService{err: pkgerrors.New(pkgerrors.CodeDependency, "list pending stores")}
	rec := httptest.NewRecorder()
	ModerationPendingStores(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

func TestModerationStoreDetail(t *testing.T) {
	storeID := uuid.New()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "storeId", storeID.String())
	rec := httptest.NewRecorder()
	ModerationStoreDetail(&stubModerationService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data moderation.StoreDetail `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != storeID {
		t.Fatalf("expected store %s got %s", storeID, envelope.Data.ID)
	}
}

package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storereview-backend/internal/moderation"
	"github.com/angelmondragon/storereview-backend/internal/products"
	"github.com/angelmondragon/storereview-backend/internal/resubmissions"
	"github.com/angelmondragon/storereview-backend/internal/stores"
	"github.com/angelmondragon/storereview-backend/internal/submissions"
	pkgauth "github.com/angelmondragon/storereview-backend/pkg/auth"
	"github.com/angelmondragon/storereview-backend/pkg/config"
	"github.com/angelmondragon/storereview-backend/pkg/enums"
	"github.com/angelmondragon/storereview-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSubmissionService struct{}

func (stubSubmissionService) Submit(context.Context, uuid.UUID, submissions.SubmitInput) (*submissions.SubmissionResult, error) {
	return &submissions.SubmissionResult{StoreID: uuid.New(), Status: enums.StoreStatusPending, Created: true, ProductCount: 1}, nil
}

func (stubSubmissionService) AddProduct(context.Context, uuid.UUID, submissions.ProductFields) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: uuid.New()}, nil
}

func (stubSubmissionService) OwnerStore(_ context.Context, ownerID uuid.UUID) (*stores.StoreDTO, error) {
	return &stores.StoreDTO{ID: uuid.New(), Owner: stores.OwnerContactDTO{OwnerID: ownerID}}, nil
}

type stubModerationService struct{}

func (stubModerationService) ApproveProduct(_ context.Context, id uuid.UUID) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: id}, nil
}

func (stubModerationService) RejectProduct(_ context.Context, _, id uuid.UUID, _ string) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: id}, nil
}

func (stubModerationService) ReviewStore(_ context.Context, _, storeID uuid.UUID, _ moderation.ReviewStoreInput) (*moderation.ReviewResult, error) {
	return &moderation.ReviewResult{StoreID: storeID}, nil
}

func (stubModerationService) BulkApprove(_ context.Context, ids []uuid.UUID) (*moderation.BulkResult, error) {
	return &moderation.BulkResult{Requested: len(ids)}, nil
}

func (stubModerationService) BulkReject(_ context.Context, _ uuid.UUID, ids []uuid.UUID, _ string) (*moderation.BulkResult, error) {
	return &moderation.BulkResult{Requested: len(ids)}, nil
}

func (stubModerationService) ListPendingStores(context.Context) ([]stores.StoreDTO, error) {
	return []stores.StoreDTO{}, nil
}

func (stubModerationService) ListPendingProducts(context.Context) ([]products.PendingProductRow, error) {
	return []products.PendingProductRow{}, nil
}

func (stubModerationService) GetStore(_ context.Context, id uuid.UUID) (*moderation.StoreDetail, error) {
	return &moderation.StoreDetail{StoreDTO: stores.StoreDTO{ID: id}}, nil
}

type stubResubmissionService struct{}

func (stubResubmissionService) ResubmitProduct(_ context.Context, _, id uuid.UUID, _ resubmissions.ProductUpdate) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: id}, nil
}

func (stubResubmissionService) CommentsForOwner(context.Context, uuid.UUID) (*resubmissions.OwnerFeedback, error) {
	return &resubmissions.OwnerFeedback{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "storereview", ExpirationMinutes: 5},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	return NewRouter(
		cfg,
		logger.Nop(),
		stubPinger{},
		nil,
		promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}),
		stubSubmissionService{},
		stubModerationService{},
		stubResubmissionService{},
	)
}

func bearer(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{UserID: uuid.New(), Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
	}
}

func TestOwnerRoutesRequireToken(t *testing.T) {
	router := newTestRouter(testConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stores/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestOwnerRoutesServeOwners(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stores/me", nil)
	req.Header.Set("Authorization", bearer(t, cfg, enums.ActorRoleOwner))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/products/"+uuid.NewString()+"/resubmit",
		strings.NewReader(`{"name":"Gudeg","description":"Jackfruit stew","price":"25000"}`))
	req.Header.Set("Authorization", bearer(t, cfg, enums.ActorRoleOwner))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("resubmit: expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRolesAreSeparated(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/moderation/stores/pending", nil)
	req.Header.Set("Authorization", bearer(t, cfg, enums.ActorRoleOwner))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("owner on admin route: expected 403 got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/stores/me", nil)
	req.Header.Set("Authorization", bearer(t, cfg, enums.ActorRoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin on owner route: expected 403 got %d", rec.Code)
	}
}

func TestModerationRoutesServeAdmins(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	storeID := uuid.NewString()

	cases := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/admin/v1/moderation/stores/pending", ""},
		{http.MethodGet, "/api/admin/v1/moderation/products/pending", ""},
		{http.MethodGet, "/api/admin/v1/moderation/stores/" + storeID, ""},
		{http.MethodPost, "/api/admin/v1/moderation/stores/" + storeID + "/review", `{"decision":"approve","products":[]}`},
		{http.MethodPost, "/api/admin/v1/moderation/products/" + uuid.NewString() + "/approve", ""},
		{http.MethodPost, "/api/admin/v1/moderation/stores/bulk-approve", `{"store_ids":["` + storeID + `"]}`},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		req.Header.Set("Authorization", bearer(t, cfg, enums.ActorRoleAdmin))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200 got %d: %s", tc.method, tc.path, rec.Code, rec.Body.String())
		}
	}
}

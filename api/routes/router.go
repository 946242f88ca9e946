package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storereview-backend/api/controllers"
	"github.com/angelmondragon/storereview-backend/api/middleware"
	"github.com/angelmondragon/storereview-backend/internal/moderation"
	"github.com/angelmondragon/storereview-backend/internal/resubmissions"
	"github.com/angelmondragon/storereview-backend/internal/submissions"
	"github.com/angelmondragon/storereview-backend/pkg/config"
	"github.com/angelmondragon/storereview-backend/pkg/db"
	"github.com/angelmondragon/storereview-backend/pkg/enums"
	"github.com/angelmondragon/storereview-backend/pkg/logger"
	"github.com/angelmondragon/storereview-backend/pkg/redis"
)

// NewRouter mounts the owner and moderation surfaces. redisClient may be nil,
// in which case idempotency replay is disabled and readiness reports redis as disabled.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	metricsHandler http.Handler,
	submissionService submissions.Service,
	moderationService moderation.Service,
	resubmissionService resubmissions.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	readiness := map[string]controllers.Pinger{"db": nil, "redis": nil}
	if dbP != nil {
		readiness["db"] = dbP
	}
	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		readiness["redis"] = redisClient
		idempotencyStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.ActorRoleOwner, logg))
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, logg))

		r.Route("/stores", func(r chi.Router) {
			r.Post("/submission", controllers.OwnerSubmitStore(submissionService, logg))
			r.Get("/me", controllers.OwnerStore(submissionService, logg))
			r.Post("/me/products", controllers.OwnerAddProduct(submissionService, logg))
			r.Get("/me/feedback", controllers.OwnerFeedback(resubmissionService, logg))
		})
		r.Post("/products/{productId}/resubmit", controllers.OwnerResubmitProduct(resubmissionService, logg))
	})

	r.Route("/api/admin/v1/moderation", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.ActorRoleAdmin, logg))
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, logg))

		r.Route("/stores", func(r chi.Router) {
			r.Get("/pending", controllers.ModerationPendingStores(moderationService, logg))
			r.Post("/bulk-approve", controllers.ModerationBulkApprove(moderationService, logg))
			r.Post("/bulk-reject", controllers.ModerationBulkReject(moderationService, logg))
			r.Get("/{storeId}", controllers.ModerationStoreDetail(moderationService, logg))
			r.Post("/{storeId}/review", controllers.ModerationReviewStore(moderationService, logg))
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/pending", controllers.ModerationPendingProducts(moderationService, logg))
			r.Post("/{productId}/approve", controllers.ModerationApproveProduct(moderationService, logg))
			r.Post("/{productId}/reject", controllers.ModerationRejectProduct(moderationService, logg))
		})
	})

	return r
}

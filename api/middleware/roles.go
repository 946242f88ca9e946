package middleware

import (
	"net/http"

	"github.com/angelmondragon/storereview-backend/api/responses"
	"github.com/angelmondragon/storereview-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storereview-backend/pkg/errors"
	"github.com/angelmondragon/storereview-backend/pkg/logger"
)

// RequireRole admits only callers whose token carries role. Unknown role
// claims are refused the same way as a mismatch.
func RequireRole(role enums.ActorRole, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actual, err := enums.ParseActorRole(RoleFromContext(ctx))
			if err != nil || actual != role {
				if logg != nil {
					logCtx := logg.WithActorRole(ctx, RoleFromContext(ctx))
					logg.Warn(logg.WithField(logCtx, "required_role", role.String()), "auth.role_denied")
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, role.String()+" role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

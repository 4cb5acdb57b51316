package middleware

import (
	"log/slog"
	"net/http"

	"github.com/commercemobile/storefront-admin/internal"
)

// RequirePermissions guards a route: the actor must hold at least one of the
// listed permissions. A wildcard-holding actor always passes.
func RequirePermissions(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := internal.ActorFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			allowed := false
			for _, p := range permissions {
				if actor.HasPermission(p) {
					allowed = true
					break
				}
			}

			if !allowed {
				slog.Warn("access denied: actor lacks required permissions",
					"actor_id", actor.ID,
					"required_permissions", permissions,
					"actor_permissions", actor.Permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/auth"
	"github.com/commercemobile/storefront-admin/pkg/logger"
)

// Authenticate resolves the bearer token into an Actor on the request
// context. Requests without a valid, active session are rejected before any
// handler runs.
func Authenticate(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			result, err := authService.Resume(r.Context(), token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			actor := &internal.Actor{
				ID:          result.User.ID,
				Name:        result.User.Name,
				SessionID:   result.Session.ID,
				Permissions: result.Permissions,
			}

			ctx := internal.ContextWithActor(r.Context(), actor)
			ctx = logger.With(ctx, "userID", actor.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return header[7:]
}

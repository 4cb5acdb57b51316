package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/commercemobile/storefront-admin/internal/activity"
	"github.com/commercemobile/storefront-admin/internal/adminuser"
	"github.com/commercemobile/storefront-admin/internal/auth"
	"github.com/commercemobile/storefront-admin/internal/group"
	"github.com/commercemobile/storefront-admin/internal/ipaccess"
	"github.com/commercemobile/storefront-admin/internal/passwordpolicy"
	"github.com/commercemobile/storefront-admin/internal/session"
	"github.com/commercemobile/storefront-admin/internal/transport/middleware"
	"github.com/commercemobile/storefront-admin/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers carries every mounted handler; nil entries skip their routes so
// partial wiring in tests stays cheap.
type Handlers struct {
	Auth           *auth.Handler
	AuthService    *auth.Service
	Users          *adminuser.Handler
	Groups         *group.Handler
	Sessions       *session.Handler
	Activity       *activity.Handler
	PasswordPolicy *passwordpolicy.Handler
	IPAccess       *ipaccess.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger, allowedOrigins []string) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Storefront-compat stub: the mobile app still posts here. Admin clients
	// use /api/v1/auth instead.
	router.Post("/api/auth", AuthStubHandler(logger))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/verify-2fa", h.Auth.VerifyTwoFactor)
				sr.Get("/me", h.Auth.Me)
			})
		}

		if h.AuthService == nil {
			return
		}

		// Everything below requires an authenticated session.
		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Authenticate(h.AuthService))

			if h.Auth != nil {
				pr.Post("/auth/logout", h.Auth.Logout)
				pr.Post("/auth/heartbeat", h.Auth.Heartbeat)
			}

			if h.Users != nil {
				pr.Route("/admin-users", func(ur chi.Router) {
					ur.With(middleware.RequirePermissions("view:admin_users")).
						Get("/", h.Users.List)
					ur.With(middleware.RequirePermissions("view:admin_users")).
						Get("/{id}", h.Users.Get)
					ur.With(middleware.RequirePermissions("create:admin_users")).
						Post("/", h.Users.Create)
					ur.With(middleware.RequirePermissions("edit:admin_users")).
						Put("/{id}", h.Users.Update)
					ur.With(middleware.RequirePermissions("delete:admin_users")).
						Delete("/{id}", h.Users.Delete)
					ur.With(middleware.RequirePermissions("edit:admin_users")).
						Put("/{id}/password", h.Users.ChangePassword)
					ur.With(middleware.RequirePermissions("edit:admin_users")).
						Put("/{id}/two-factor", h.Users.SetTwoFactor)

					if h.Sessions != nil {
						ur.With(middleware.RequirePermissions("terminate:sessions")).
							Post("/{userID}/terminate-sessions", h.Sessions.TerminateAll)
					}
				})
			}

			if h.Groups != nil {
				pr.Route("/user-groups", func(gr chi.Router) {
					gr.With(middleware.RequirePermissions("view:admin_users")).
						Get("/", h.Groups.List)
					gr.With(middleware.RequirePermissions("view:admin_users")).
						Get("/{id}", h.Groups.Get)
					gr.With(middleware.RequirePermissions("create:admin_users")).
						Post("/", h.Groups.Create)
					gr.With(middleware.RequirePermissions("edit:admin_users")).
						Put("/{id}", h.Groups.Update)
					gr.With(middleware.RequirePermissions("delete:admin_users")).
						Delete("/{id}", h.Groups.Delete)
					gr.With(middleware.RequirePermissions("edit:admin_users")).
						Post("/{id}/members", h.Groups.AddMember)
					gr.With(middleware.RequirePermissions("edit:admin_users")).
						Delete("/{id}/members/{userID}", h.Groups.RemoveMember)
				})
			}

			if h.Sessions != nil {
				pr.Route("/sessions", func(sr chi.Router) {
					sr.With(middleware.RequirePermissions("view:sessions")).
						Get("/", h.Sessions.List)
					sr.With(middleware.RequirePermissions("view:sessions")).
						Get("/{id}", h.Sessions.Get)
					sr.With(middleware.RequirePermissions("terminate:sessions")).
						Delete("/{id}", h.Sessions.Terminate)
					sr.Post("/extend/{id}", h.Sessions.Extend)
					sr.Post("/terminate-others", h.Sessions.TerminateOthers)
				})
			}

			if h.Activity != nil {
				pr.Route("/activity-logs", func(ar chi.Router) {
					ar.With(middleware.RequirePermissions("view:activity_logs")).
						Get("/", h.Activity.Query)
					ar.With(middleware.RequirePermissions("view:activity_logs")).
						Get("/export", h.Activity.Export)
					ar.With(middleware.RequirePermissions("manage:security")).
						Delete("/", h.Activity.Clear)
				})
			}

			if h.PasswordPolicy != nil {
				pr.Route("/password-policy", func(ppr chi.Router) {
					ppr.With(middleware.RequirePermissions("view:settings")).
						Get("/", h.PasswordPolicy.Get)
					ppr.With(middleware.RequirePermissions("manage:security")).
						Put("/", h.PasswordPolicy.Update)
					ppr.With(middleware.RequirePermissions("manage:security")).
						Post("/reset", h.PasswordPolicy.Reset)
					ppr.Post("/check", h.PasswordPolicy.CheckPassword)
				})
			}

			if h.IPAccess != nil {
				pr.Route("/ip-restrictions", func(ir chi.Router) {
					ir.With(middleware.RequirePermissions("manage:security")).
						Get("/", h.IPAccess.Get)
					ir.With(middleware.RequirePermissions("manage:security")).
						Put("/", h.IPAccess.Update)
					ir.With(middleware.RequirePermissions("manage:security")).
						Post("/rules", h.IPAccess.AddRule)
					ir.With(middleware.RequirePermissions("manage:security")).
						Delete("/rules", h.IPAccess.RemoveRule)
				})
			}
		})
	})
}

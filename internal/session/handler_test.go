package session_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/go-chi/chi"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/session"
	"github.com/commercemobile/storefront-admin/internal/session/memory"
)

var _ = Describe("SessionHandler", func() {
	var (
		svc    *session.Service
		router *chi.Mux
	)

	ctx := context.Background()

	extend := func(id string, actor *internal.Actor) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/sessions/extend/"+id, nil)
		req = req.WithContext(internal.ContextWithActor(req.Context(), actor))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		svc = session.NewService(memory.NewRepository(), nil, lg, 30*time.Minute)

		router = chi.NewRouter()
		router.Post("/sessions/extend/{id}", session.NewHandler(svc).Extend)
	})

	Describe("Extend", func() {
		It("lets a caller extend their own session", func() {
			sess, err := svc.Create(ctx, "user-1", "User One", "agent", "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			actor := &internal.Actor{ID: "user-1", SessionID: sess.ID, Permissions: []string{"view:dashboard"}}
			Expect(extend(sess.ID, actor).Code).To(Equal(http.StatusOK))
		})

		It("forbids extending another user's session without terminate:sessions", func() {
			target, err := svc.Create(ctx, "user-2", "User Two", "agent", "10.0.0.2")
			Expect(err).NotTo(HaveOccurred())
			expiry := target.ExpiresAt

			actor := &internal.Actor{ID: "user-1", SessionID: "other-session", Permissions: []string{"view:sessions"}}
			Expect(extend(target.ID, actor).Code).To(Equal(http.StatusForbidden))

			got, err := svc.GetByID(target.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ExpiresAt).To(BeTemporally("==", expiry))
		})

		It("allows a session manager to extend any session", func() {
			target, err := svc.Create(ctx, "user-2", "User Two", "agent", "10.0.0.2")
			Expect(err).NotTo(HaveOccurred())

			actor := &internal.Actor{ID: "user-1", SessionID: "other-session", Permissions: []string{"terminate:sessions"}}
			Expect(extend(target.ID, actor).Code).To(Equal(http.StatusOK))
		})

		It("rejects an unauthenticated request", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/extend/some-id", nil))
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})

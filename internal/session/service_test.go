package session_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/core/events"
	"github.com/commercemobile/storefront-admin/internal/session"
	"github.com/commercemobile/storefront-admin/internal/session/memory"
)

func TestSession(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Suite")
}

var _ = Describe("SessionService", func() {
	var (
		repo     *memory.Repository
		bus      *events.EventBus
		svc      *session.Service
		recorded []events.ActivityPayload
	)

	actor := &internal.Actor{ID: "actor-1", Name: "Root Admin"}
	ctx := context.Background()

	create := func(userID string) *session.Session {
		sess, err := svc.Create(ctx, userID, "User "+userID, "test-agent", "10.0.0.1")
		Expect(err).NotTo(HaveOccurred())
		return sess
	}

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = memory.NewRepository()
		bus = events.NewEventBus(lg)
		svc = session.NewService(repo, bus, lg, 30*time.Minute)

		recorded = nil
		bus.Subscribe(events.TypeAdminActivity, func(_ context.Context, event events.Event) error {
			if payload, ok := event.Payload().(events.ActivityPayload); ok {
				recorded = append(recorded, payload)
			}
			return nil
		})
	})

	Describe("Create", func() {
		It("issues an active session with the configured lifetime", func() {
			sess := create("user-1")

			Expect(sess.IsActive).To(BeTrue())
			Expect(sess.ExpiresAt.Sub(sess.CreatedAt)).To(Equal(30 * time.Minute))
		})

		It("publishes a login activity entry", func() {
			sess := create("user-1")

			Expect(recorded).To(HaveLen(1))
			Expect(recorded[0].Action).To(Equal("login"))
			Expect(recorded[0].ResourceID).To(Equal(sess.ID))
		})
	})

	Describe("Touch", func() {
		It("moves LastActive but never CreatedAt", func() {
			sess := create("user-1")
			createdAt := sess.CreatedAt

			time.Sleep(5 * time.Millisecond)
			touched, err := svc.Touch(sess.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(touched.CreatedAt).To(Equal(createdAt))
			Expect(touched.LastActive.After(sess.LastActive)).To(BeTrue())
		})

		It("rejects a terminated session", func() {
			sess := create("user-1")
			_, err := svc.Terminate(ctx, sess.ID, actor)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Touch(sess.ID)
			Expect(err).To(MatchError(internal.ErrSessionInactive))
		})
	})

	Describe("GetActive", func() {
		It("refuses an expired session", func() {
			sess := create("user-1")
			sess.ExpiresAt = time.Now().Add(-time.Minute)
			Expect(repo.Update(sess)).To(Succeed())

			_, err := svc.GetActive(sess.ID)
			Expect(err).To(MatchError(internal.ErrSessionInactive))
		})

		It("returns an unknown id as not found", func() {
			_, err := svc.GetActive("missing")
			Expect(err).To(MatchError(internal.ErrSessionNotFound))
		})
	})

	Describe("Extend", func() {
		It("pushes the expiry out by the requested duration", func() {
			sess := create("user-1")
			before := sess.ExpiresAt

			extended, err := svc.Extend(sess.ID, 15*time.Minute)
			Expect(err).NotTo(HaveOccurred())
			Expect(extended.ExpiresAt).To(Equal(before.Add(15 * time.Minute)))
		})
	})

	Describe("TerminateAllForUser", func() {
		It("deactivates every session and logs each one", func() {
			create("user-1")
			create("user-1")
			create("user-2")
			recorded = nil

			count, err := svc.TerminateAllForUser(ctx, "user-1", actor, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))
			Expect(recorded).To(HaveLen(2))

			views, _, err := svc.List(session.ListFilter{UserID: "user-1", ActiveOnly: true}, internal.Pagination{}, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(BeEmpty())
		})

		It("spares the excluded session", func() {
			keep := create("user-1")
			create("user-1")

			count, err := svc.TerminateAllForUser(ctx, "user-1", actor, keep.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))

			_, err = svc.GetActive(keep.ID)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("List", func() {
		It("flags the caller's own session as current", func() {
			mine := create("user-1")
			create("user-1")

			views, total, err := svc.List(session.ListFilter{UserID: "user-1"}, internal.Pagination{}, mine.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))

			current := 0
			for _, v := range views {
				if v.Current {
					current++
					Expect(v.ID).To(Equal(mine.ID))
				}
			}
			Expect(current).To(Equal(1))
		})

		It("deactivates expired sessions before listing", func() {
			sess := create("user-1")
			sess.ExpiresAt = time.Now().Add(-time.Minute)
			Expect(repo.Update(sess)).To(Succeed())

			views, _, err := svc.List(session.ListFilter{UserID: "user-1", ActiveOnly: true}, internal.Pagination{}, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(BeEmpty())
		})
	})
})

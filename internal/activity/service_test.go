package activity_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/activity"
	"github.com/commercemobile/storefront-admin/internal/activity/memory"
	"github.com/commercemobile/storefront-admin/internal/core/events"
)

func TestActivity(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Activity Suite")
}

var _ = Describe("ActivityService", func() {
	var (
		repo activity.Repository
		svc  *activity.Service
		bus  *events.EventBus
	)

	ctx := context.Background()

	logEntry := func(id, userID, action, resource string, at time.Time) {
		err := svc.Log(ctx, &activity.Entry{
			ID:        id,
			UserID:    userID,
			UserName:  "User " + userID,
			Action:    action,
			Resource:  resource,
			Timestamp: at,
		})
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = memory.NewActivityRepository()
		bus = events.NewEventBus(lg)
		svc = activity.NewService(repo, lg)
		svc.RegisterEventHandlers(bus)
	})

	Describe("event subscription", func() {
		It("records a published mutation as a log entry", func() {
			err := bus.PublishSync(ctx, events.NewActivityEvent(events.ActivityPayload{
				UserID:   "user-1",
				UserName: "User One",
				Action:   "create",
				Resource: "admin_user",
			}))
			Expect(err).NotTo(HaveOccurred())

			entries, total, err := svc.Query(ctx, activity.QueryDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(entries[0].Action).To(Equal("create"))
			Expect(entries[0].ID).NotTo(BeEmpty())
		})
	})

	Describe("capacity", func() {
		It("evicts the oldest entry once the cap is reached", func() {
			base := time.Now().Add(-time.Hour)
			for i := 0; i < activity.MaxEntries+1; i++ {
				logEntry(fmt.Sprintf("entry-%d", i), "user-1", "update", "admin_user",
					base.Add(time.Duration(i)*time.Millisecond))
			}

			entries, total, err := svc.Query(ctx, activity.QueryDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(activity.MaxEntries)))

			ids := make([]string, 0, len(entries))
			for _, e := range entries {
				ids = append(ids, e.ID)
			}
			Expect(ids).NotTo(ContainElement("entry-0"))
			Expect(ids).To(ContainElement(fmt.Sprintf("entry-%d", activity.MaxEntries)))
		})
	})

	Describe("Query", func() {
		now := time.Now()

		BeforeEach(func() {
			logEntry("e1", "user-1", "login", "session", now.Add(-3*time.Hour))
			logEntry("e2", "user-2", "create", "admin_user", now.Add(-2*time.Hour))
			logEntry("e3", "user-1", "update", "admin_user", now.Add(-time.Hour))
			logEntry("e4", "user-1", "logout", "session", now)
		})

		It("returns entries newest first", func() {
			entries, _, err := svc.Query(ctx, activity.QueryDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(entries[0].ID).To(Equal("e4"))
			Expect(entries[len(entries)-1].ID).To(Equal("e1"))
		})

		It("applies filters before pagination", func() {
			dto := activity.QueryDTO{
				UserID:     "user-1",
				Pagination: internal.Pagination{Page: 1, Limit: 2},
			}
			entries, total, err := svc.Query(ctx, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
			Expect(total).To(Equal(int64(3)))
		})

		It("filters by action", func() {
			entries, total, err := svc.Query(ctx, activity.QueryDTO{Action: "login"})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(entries[0].ID).To(Equal("e1"))
		})

		It("treats the date range as inclusive", func() {
			start := now.Add(-2 * time.Hour)
			end := now.Add(-time.Hour)
			entries, total, err := svc.Query(ctx, activity.QueryDTO{StartDate: &start, EndDate: &end})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(entries[0].ID).To(Equal("e3"))
			Expect(entries[1].ID).To(Equal("e2"))
		})

		It("rejects an end date before the start date", func() {
			start := now
			end := now.Add(-time.Hour)
			_, _, err := svc.Query(ctx, activity.QueryDTO{StartDate: &start, EndDate: &end})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Clear", func() {
		It("removes everything and reports the count", func() {
			logEntry("e1", "user-1", "login", "session", time.Now())
			logEntry("e2", "user-1", "logout", "session", time.Now())

			removed, err := svc.Clear(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(Equal(int64(2)))

			_, total, err := svc.Query(ctx, activity.QueryDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(BeZero())
		})
	})

	Describe("Export", func() {
		It("writes every matching entry as CSV, ignoring pagination", func() {
			now := time.Now()
			logEntry("e1", "user-1", "login", "session", now.Add(-time.Minute))
			logEntry("e2", "user-1", "logout", "session", now)

			dto := activity.QueryDTO{Pagination: internal.Pagination{Page: 1, Limit: 1}}
			data, err := svc.Export(ctx, dto, activity.FormatCSV)
			Expect(err).NotTo(HaveOccurred())

			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			Expect(lines).To(HaveLen(3))
			Expect(lines[0]).To(HavePrefix("id,timestamp,user_id"))
			Expect(lines[1]).To(ContainSubstring("e2"))
			Expect(lines[2]).To(ContainSubstring("e1"))
		})

		It("rejects an unknown format", func() {
			_, err := svc.Export(ctx, activity.QueryDTO{}, activity.ExportFormat("xml"))
			Expect(err).To(HaveOccurred())
		})
	})
})

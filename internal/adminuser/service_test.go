package adminuser_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/adminuser"
	"github.com/commercemobile/storefront-admin/internal/adminuser/memory"
	"github.com/commercemobile/storefront-admin/internal/core/events"
	"github.com/commercemobile/storefront-admin/internal/passwordpolicy"
	policyMemory "github.com/commercemobile/storefront-admin/internal/passwordpolicy/memory"
)

func TestAdminUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AdminUser Suite")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = Describe("AdminUserService", func() {
	var (
		repo     *memory.Repository
		policy   *passwordpolicy.Service
		bus      *events.EventBus
		svc      *adminuser.Service
		recorded []events.ActivityPayload
	)

	actor := &internal.Actor{ID: "actor-1", Name: "Root Admin"}

	defaults := passwordpolicy.Policy{
		MinLength:           8,
		RequireUppercase:    true,
		RequireLowercase:    true,
		RequireNumbers:      true,
		RequireSpecialChars: true,
		ExpiryDays:          90,
		PreventReuse:        5,
	}

	create := func(email string) *adminuser.AdminUser {
		u, err := svc.Create(context.Background(), adminuser.CreateUserDTO{
			Name:     "Test User",
			Email:    email,
			Role:     string(adminuser.RoleEditor),
			Password: "Secret123!",
		}, actor)
		Expect(err).NotTo(HaveOccurred())
		return u
	}

	BeforeEach(func() {
		repo = memory.NewRepository()
		bus = events.NewEventBus(testLogger())
		policy = passwordpolicy.NewService(defaults, policyMemory.NewHistoryStore(), bus, testLogger())
		svc = adminuser.NewService(repo, policy, bus, testLogger(), bcrypt.MinCost)

		recorded = nil
		bus.Subscribe(events.TypeAdminActivity, func(_ context.Context, event events.Event) error {
			if payload, ok := event.Payload().(events.ActivityPayload); ok {
				recorded = append(recorded, payload)
			}
			return nil
		})
	})

	Describe("Create", func() {
		It("stores a bcrypt hash, never the plaintext", func() {
			u := create("a@b.com")

			Expect(u.PasswordHash).NotTo(Equal("Secret123!"))
			Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Secret123!"))).To(Succeed())
		})

		It("sets the password expiry from the policy", func() {
			u := create("a@b.com")

			Expect(u.PasswordExpires).NotTo(BeNil())
			Expect(u.PasswordExpires.After(u.LastPasswordChange)).To(BeTrue())
		})

		It("publishes one activity event", func() {
			create("a@b.com")

			Expect(recorded).To(HaveLen(1))
			Expect(recorded[0].Action).To(Equal("create"))
			Expect(recorded[0].Resource).To(Equal("admin_user"))
			Expect(recorded[0].UserID).To(Equal(actor.ID))
		})

		It("rejects a duplicate email without mutating the store", func() {
			create("a@b.com")
			before, total, err := svc.List(adminuser.ListFilter{}, internal.Pagination{})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Create(context.Background(), adminuser.CreateUserDTO{
				Name:     "Other",
				Email:    "A@B.com",
				Role:     string(adminuser.RoleViewer),
				Password: "Another123!",
			}, actor)
			Expect(err).To(MatchError(internal.ErrDuplicateEmail))

			after, afterTotal, err := svc.List(adminuser.ListFilter{}, internal.Pagination{})
			Expect(err).NotTo(HaveOccurred())
			Expect(afterTotal).To(Equal(total))
			Expect(after).To(HaveLen(len(before)))
		})

		It("rejects a password violating the policy, listing every violation", func() {
			_, err := svc.Create(context.Background(), adminuser.CreateUserDTO{
				Name:     "Weak",
				Email:    "weak@b.com",
				Role:     string(adminuser.RoleViewer),
				Password: "short",
			}, actor)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodePolicyViolation))

			details, ok := appErr.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(details.Errors).To(HaveLen(4))
		})
	})

	Describe("VerifyCredentials", func() {
		It("returns the user for the right password", func() {
			created := create("a@b.com")

			u, err := svc.VerifyCredentials("a@b.com", "Secret123!")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(Equal(created.ID))
		})

		It("fails identically for a wrong password and an unknown email", func() {
			create("a@b.com")

			_, wrongPass := svc.VerifyCredentials("a@b.com", "wrong")
			_, unknown := svc.VerifyCredentials("nobody@b.com", "Secret123!")
			Expect(wrongPass).To(MatchError(internal.ErrInvalidCredentials))
			Expect(unknown).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("matches the email case-insensitively", func() {
			create("a@b.com")

			_, err := svc.VerifyCredentials("A@B.COM", "Secret123!")
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("ChangePassword", func() {
		It("rejects reusing a recent password", func() {
			u := create("a@b.com")

			err := svc.ChangePassword(context.Background(), u.ID, "Secret123!", actor)
			Expect(err).To(MatchError(internal.ErrPasswordReused))
		})

		It("accepts a fresh password and rolls the expiry", func() {
			u := create("a@b.com")
			oldExpiry := *u.PasswordExpires

			Expect(svc.ChangePassword(context.Background(), u.ID, "Fresh456$", actor)).To(Succeed())

			_, err := svc.VerifyCredentials("a@b.com", "Fresh456$")
			Expect(err).NotTo(HaveOccurred())

			updated, err := svc.GetByID(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.PasswordExpires.Before(oldExpiry)).To(BeFalse())
		})
	})

	Describe("Update", func() {
		It("rejects changing to an email another account holds", func() {
			create("a@b.com")
			other := create("c@d.com")

			email := "a@b.com"
			_, err := svc.Update(context.Background(), other.ID, adminuser.UpdateUserDTO{Email: &email}, actor)
			Expect(err).To(MatchError(internal.ErrDuplicateEmail))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			create("a@b.com")
			create("c@d.com")
			create("e@f.com")
		})

		It("reports the pre-pagination total", func() {
			users, total, err := svc.List(adminuser.ListFilter{}, internal.Pagination{Page: 1, Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
			Expect(total).To(Equal(int64(3)))
		})

		It("filters by search before paginating", func() {
			users, total, err := svc.List(adminuser.ListFilter{Search: "c@d"}, internal.Pagination{Page: 1, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(total).To(Equal(int64(1)))
		})
	})

	Describe("SetTwoFactor", func() {
		It("toggles the flag and audits the change", func() {
			u := create("a@b.com")
			recorded = nil

			updated, err := svc.SetTwoFactor(context.Background(), u.ID, true, actor)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.TwoFactorEnabled).To(BeTrue())
			Expect(recorded).To(HaveLen(1))
			Expect(recorded[0].Resource).To(Equal("admin_user_2fa"))
		})
	})
})

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/adminuser"
	adminuserMemory "github.com/commercemobile/storefront-admin/internal/adminuser/memory"
	"github.com/commercemobile/storefront-admin/internal/auth"
	"github.com/commercemobile/storefront-admin/internal/core/events"
	"github.com/commercemobile/storefront-admin/internal/group"
	groupMemory "github.com/commercemobile/storefront-admin/internal/group/memory"
	"github.com/commercemobile/storefront-admin/internal/ipaccess"
	"github.com/commercemobile/storefront-admin/internal/passwordpolicy"
	policyMemory "github.com/commercemobile/storefront-admin/internal/passwordpolicy/memory"
	"github.com/commercemobile/storefront-admin/internal/permission"
	"github.com/commercemobile/storefront-admin/internal/session"
	sessionMemory "github.com/commercemobile/storefront-admin/internal/session/memory"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

var _ = Describe("AuthService", func() {
	var (
		userRepo   *adminuserMemory.Repository
		userSvc    *adminuser.Service
		sessionSvc *session.Service
		ipSvc      *ipaccess.Service
		svc        *auth.Service
		bus        *events.EventBus
		recorded   []events.ActivityPayload
	)

	ctx := context.Background()

	policyDefaults := passwordpolicy.Policy{
		MinLength:           8,
		RequireUppercase:    true,
		RequireLowercase:    true,
		RequireNumbers:      true,
		RequireSpecialChars: true,
		ExpiryDays:          90,
		PreventReuse:        5,
	}

	createUser := func(email string, twoFactor bool) *adminuser.AdminUser {
		u, err := userSvc.Create(ctx, adminuser.CreateUserDTO{
			Name:             "Test User",
			Email:            email,
			Role:             string(adminuser.RoleAdmin),
			Password:         "Secret123!",
			TwoFactorEnabled: twoFactor,
		}, &internal.Actor{ID: "seed", Name: "Seed"})
		Expect(err).NotTo(HaveOccurred())
		return u
	}

	login := func(email, password string) (*auth.LoginResult, error) {
		return svc.Login(ctx, auth.LoginDTO{Email: email, Password: password}, "test-agent", "10.0.0.1")
	}

	activeSessions := func(userID string) int {
		views, _, err := sessionSvc.List(session.ListFilter{UserID: userID, ActiveOnly: true}, internal.Pagination{}, "")
		Expect(err).NotTo(HaveOccurred())
		return len(views)
	}

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		bus = events.NewEventBus(lg)

		policySvc := passwordpolicy.NewService(policyDefaults, policyMemory.NewHistoryStore(), bus, lg)
		userRepo = adminuserMemory.NewRepository()
		userSvc = adminuser.NewService(userRepo, policySvc, bus, lg, bcrypt.MinCost)
		sessionSvc = session.NewService(sessionMemory.NewRepository(), bus, lg, 30*time.Minute)
		groupSvc := group.NewService(groupMemory.NewRepository(), bus, lg)
		ipSvc = ipaccess.NewService(bus, lg)

		svc = auth.NewService(
			userSvc,
			sessionSvc,
			permission.NewResolver(groupSvc),
			auth.NewTokenManager("test-secret-test-secret-test-secret-1234"),
			auth.NewMockTwoFactorVerifier(),
			ipSvc,
			bus,
			lg,
			5*time.Minute,
		)

		recorded = nil
		bus.Subscribe(events.TypeAdminActivity, func(_ context.Context, event events.Event) error {
			if payload, ok := event.Payload().(events.ActivityPayload); ok {
				recorded = append(recorded, payload)
			}
			return nil
		})
	})

	Describe("Login", func() {
		It("authenticates a user without a second factor in one step", func() {
			u := createUser("admin@example.com", false)

			result, err := login("admin@example.com", "Secret123!")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.State).To(Equal(auth.StateAuthenticated))
			Expect(result.Session).NotTo(BeNil())
			Expect(result.Token).NotTo(BeEmpty())
			Expect(result.Permissions).NotTo(BeEmpty())
			Expect(activeSessions(u.ID)).To(Equal(1))
		})

		It("rejects wrong credentials and audits the attempt", func() {
			createUser("admin@example.com", false)
			recorded = nil

			_, err := login("admin@example.com", "wrong-password")
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
			Expect(recorded).To(HaveLen(1))
			Expect(recorded[0].Action).To(Equal("login_failed"))
			Expect(recorded[0].Resource).To(Equal("admin_panel"))
		})

		It("returns password_expired without creating a session", func() {
			u := createUser("admin@example.com", false)
			stored, err := userSvc.GetByID(u.ID)
			Expect(err).NotTo(HaveOccurred())
			past := time.Now().Add(-time.Hour)
			stored.PasswordExpires = &past
			Expect(userRepo.Update(stored)).To(Succeed())

			result, err := login("admin@example.com", "Secret123!")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.State).To(Equal(auth.StatePasswordExpired))
			Expect(result.Session).To(BeNil())
			Expect(result.Token).To(BeEmpty())
			Expect(activeSessions(u.ID)).To(BeZero())
		})

		It("blocks logins from a denied address", func() {
			createUser("admin@example.com", false)
			_, err := ipSvc.AddRule(ctx, ipaccess.RuleDTO{Value: "10.0.0.1", Description: "blocked"})
			Expect(err).NotTo(HaveOccurred())
			enabled := true
			_, err = ipSvc.Update(ctx, ipaccess.UpdateSettingsDTO{Enabled: &enabled})
			Expect(err).NotTo(HaveOccurred())
			recorded = nil

			_, err = login("admin@example.com", "Secret123!")
			Expect(err).To(MatchError(internal.ErrIPNotAllowed))
			Expect(recorded).To(HaveLen(1))
			Expect(recorded[0].Action).To(Equal("login_failed"))
		})
	})

	Describe("two-factor flow", func() {
		It("withholds the session until the code verifies", func() {
			u := createUser("admin@example.com", true)

			result, err := login("admin@example.com", "Secret123!")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.State).To(Equal(auth.StateTwoFactorPending))
			Expect(result.ChallengeToken).NotTo(BeEmpty())
			Expect(result.Session).To(BeNil())
			Expect(result.Token).To(BeEmpty())
			Expect(activeSessions(u.ID)).To(BeZero())

			completed, err := svc.VerifyTwoFactor(ctx, auth.VerifyTwoFactorDTO{
				ChallengeToken: result.ChallengeToken,
				Code:           "123456",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(completed.State).To(Equal(auth.StateAuthenticated))
			Expect(completed.Token).NotTo(BeEmpty())
			Expect(activeSessions(u.ID)).To(Equal(1))
		})

		It("keeps the challenge alive after a wrong code", func() {
			createUser("admin@example.com", true)
			result, err := login("admin@example.com", "Secret123!")
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.VerifyTwoFactor(ctx, auth.VerifyTwoFactorDTO{
				ChallengeToken: result.ChallengeToken,
				Code:           "abcdef",
			})
			Expect(err).To(MatchError(internal.ErrTwoFactorFailed))

			completed, err := svc.VerifyTwoFactor(ctx, auth.VerifyTwoFactorDTO{
				ChallengeToken: result.ChallengeToken,
				Code:           "654321",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(completed.State).To(Equal(auth.StateAuthenticated))
		})

		It("rejects an unknown challenge token", func() {
			_, err := svc.VerifyTwoFactor(ctx, auth.VerifyTwoFactorDTO{
				ChallengeToken: "nonsense",
				Code:           "123456",
			})
			Expect(err).To(HaveOccurred())
		})

		It("consumes the challenge on success", func() {
			createUser("admin@example.com", true)
			result, err := login("admin@example.com", "Secret123!")
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.VerifyTwoFactor(ctx, auth.VerifyTwoFactorDTO{
				ChallengeToken: result.ChallengeToken,
				Code:           "123456",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.VerifyTwoFactor(ctx, auth.VerifyTwoFactorDTO{
				ChallengeToken: result.ChallengeToken,
				Code:           "123456",
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Resume", func() {
		It("round-trips the signed token back to the authenticated state", func() {
			u := createUser("admin@example.com", false)
			result, err := login("admin@example.com", "Secret123!")
			Expect(err).NotTo(HaveOccurred())

			resumed, err := svc.Resume(ctx, result.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(resumed.User.ID).To(Equal(u.ID))
			Expect(resumed.Session.ID).To(Equal(result.Session.ID))
			Expect(resumed.Permissions).To(Equal(result.Permissions))
		})

		It("rejects a garbage token", func() {
			_, err := svc.Resume(ctx, "not-a-jwt")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("rejects a token whose session was terminated", func() {
			createUser("admin@example.com", false)
			result, err := login("admin@example.com", "Secret123!")
			Expect(err).NotTo(HaveOccurred())

			_, err = sessionSvc.Terminate(ctx, result.Session.ID, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Resume(ctx, result.Token)
			Expect(err).To(MatchError(internal.ErrSessionInactive))
		})
	})

	Describe("Logout", func() {
		It("terminates the actor's session", func() {
			u := createUser("admin@example.com", false)
			result, err := login("admin@example.com", "Secret123!")
			Expect(err).NotTo(HaveOccurred())

			actor := &internal.Actor{ID: u.ID, Name: u.Name, SessionID: result.Session.ID}
			Expect(svc.Logout(ctx, actor)).To(Succeed())
			Expect(activeSessions(u.ID)).To(BeZero())
		})

		It("fails without a session-bearing actor", func() {
			Expect(svc.Logout(ctx, nil)).To(MatchError(internal.ErrSessionNotFound))
		})
	})
})

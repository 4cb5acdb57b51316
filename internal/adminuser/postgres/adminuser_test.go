package postgres_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/adminuser"
	"github.com/commercemobile/storefront-admin/internal/adminuser/postgres"
	adminuserDatamodel "github.com/commercemobile/storefront-admin/internal/core/datamodel/adminuser"
)

func TestAdminUserRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AdminUserRepository Suite")
}

var _ = Describe("AdminUserRepository", func() {
	var (
		db   *gorm.DB
		repo adminuser.Repository
	)

	newUser := func(id, email string, role adminuser.Role) *adminuser.AdminUser {
		now := time.Now().UTC().Truncate(time.Second)
		expires := now.AddDate(0, 0, 90)
		return &adminuser.AdminUser{
			ID:                 id,
			Name:               "User " + id,
			Email:              email,
			Role:               role,
			PasswordHash:       "$2a$04$notarealhashnotarealhashnotarea",
			LastPasswordChange: now,
			PasswordExpires:    &expires,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&adminuserDatamodel.AdminUser{})).To(Succeed())

		repo = postgres.NewAdminUserRepository(db)
	})

	Describe("Create", func() {
		It("persists and retrieves a user", func() {
			u := newUser("u1", "a@b.com", adminuser.RoleEditor)
			Expect(repo.Create(u)).To(Succeed())

			got, err := repo.GetByID("u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Email).To(Equal("a@b.com"))
			Expect(got.Role).To(Equal(adminuser.RoleEditor))
			Expect(got.PasswordExpires).NotTo(BeNil())
		})

		It("rejects a duplicate email regardless of case", func() {
			Expect(repo.Create(newUser("u1", "a@b.com", adminuser.RoleEditor))).To(Succeed())

			err := repo.Create(newUser("u2", "A@B.COM", adminuser.RoleViewer))
			Expect(err).To(MatchError(internal.ErrDuplicateEmail))
		})
	})

	Describe("GetByEmail", func() {
		It("matches case-insensitively", func() {
			Expect(repo.Create(newUser("u1", "a@b.com", adminuser.RoleEditor))).To(Succeed())

			got, err := repo.GetByEmail("A@b.Com")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal("u1"))
		})

		It("returns not-found for an unknown email", func() {
			_, err := repo.GetByEmail("missing@b.com")
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			Expect(repo.Create(newUser("u1", "alice@example.com", adminuser.RoleAdmin))).To(Succeed())
			Expect(repo.Create(newUser("u2", "bob@example.com", adminuser.RoleEditor))).To(Succeed())
			Expect(repo.Create(newUser("u3", "carol@example.com", adminuser.RoleEditor))).To(Succeed())
		})

		It("filters by role and counts before paginating", func() {
			users, total, err := repo.List(
				adminuser.ListFilter{Role: adminuser.RoleEditor},
				internal.Pagination{Page: 1, Limit: 1},
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(total).To(Equal(int64(2)))
		})

		It("searches across name and email", func() {
			users, total, err := repo.List(adminuser.ListFilter{Search: "CAROL"}, internal.Pagination{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(users[0].ID).To(Equal("u3"))
		})
	})

	Describe("Update", func() {
		It("writes changed fields back", func() {
			u := newUser("u1", "a@b.com", adminuser.RoleEditor)
			Expect(repo.Create(u)).To(Succeed())

			u.Name = "Renamed"
			u.TwoFactorEnabled = true
			Expect(repo.Update(u)).To(Succeed())

			got, err := repo.GetByID("u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Renamed"))
			Expect(got.TwoFactorEnabled).To(BeTrue())
		})

		It("returns not-found for an unknown id", func() {
			err := repo.Update(newUser("ghost", "ghost@b.com", adminuser.RoleViewer))
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes the row", func() {
			Expect(repo.Create(newUser("u1", "a@b.com", adminuser.RoleEditor))).To(Succeed())
			Expect(repo.Delete("u1")).To(Succeed())

			_, err := repo.GetByID("u1")
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})

		It("returns not-found for an unknown id", func() {
			Expect(repo.Delete("ghost")).To(MatchError(internal.ErrUserNotFound))
		})
	})
})

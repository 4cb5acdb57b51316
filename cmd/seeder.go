package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/adminuser"
	"github.com/commercemobile/storefront-admin/internal/group"
	"github.com/commercemobile/storefront-admin/internal/passwordpolicy"
	"github.com/commercemobile/storefront-admin/pkg/logger"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with default admin accounts",
	Long:  `Seed default admin users and user groups for development and first-run setups.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
		lg := logger.L()

		repos, _, err := initRepositories(cfg.Database, lg)
		if err != nil {
			log.Fatalf("failed to init storage: %v", err)
		}

		policySvc := passwordpolicy.NewService(passwordpolicy.Policy{
			MinLength:           cfg.Policy.MinLength,
			RequireUppercase:    cfg.Policy.RequireUppercase,
			RequireLowercase:    cfg.Policy.RequireLowercase,
			RequireNumbers:      cfg.Policy.RequireNumbers,
			RequireSpecialChars: cfg.Policy.RequireSpecialChars,
			ExpiryDays:          cfg.Policy.ExpiryDays,
			PreventReuse:        cfg.Policy.PreventReuse,
		}, repos.history, nil, lg)

		userSvc := adminuser.NewService(repos.users, policySvc, nil, lg, cfg.Security.BCryptCost)
		groupSvc := group.NewService(repos.groups, nil, lg)

		if err := seedDefaults(userSvc, groupSvc, lg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		fmt.Println("seed complete")
	},
}

type seedUser struct {
	name     string
	email    string
	role     string
	password string
}

var defaultAdmins = []seedUser{
	{"Admin User", "admin@example.com", string(adminuser.RoleSuperAdmin), "Admin123!"},
	{"Store Manager", "manager@example.com", string(adminuser.RoleAdmin), "Manager123!"},
	{"Content Editor", "editor@example.com", string(adminuser.RoleEditor), "Editor123!"},
	{"Report Viewer", "viewer@example.com", string(adminuser.RoleViewer), "Viewer123!"},
}

// seedDefaults creates the default accounts and groups when the store is
// empty. Existing data is never touched.
func seedDefaults(userSvc *adminuser.Service, groupSvc *group.Service, lg *slog.Logger) error {
	ctx := context.Background()

	_, total, err := userSvc.List(adminuser.ListFilter{}, internal.Pagination{})
	if err != nil {
		return fmt.Errorf("check existing users: %w", err)
	}
	if total > 0 {
		lg.Info("skipping seed, admin users already exist", "count", total)
		return nil
	}

	idsByEmail := make(map[string]string, len(defaultAdmins))
	for _, su := range defaultAdmins {
		u, err := userSvc.Create(ctx, adminuser.CreateUserDTO{
			Name:     su.name,
			Email:    su.email,
			Role:     su.role,
			Password: su.password,
		}, nil)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.email, err)
		}
		idsByEmail[su.email] = u.ID
		lg.Info("seeded admin user", "email", su.email, "role", su.role)
	}

	groups := []group.CreateGroupDTO{
		{
			Name:        "Customer Support",
			Description: "Handles customer inquiries and order issues",
			Permissions: []string{"view:orders", "edit:orders", "view:customers", "edit:customers"},
			Members:     []string{idsByEmail["viewer@example.com"]},
		},
		{
			Name:        "Catalog Team",
			Description: "Manages the product catalog",
			Permissions: []string{"view:products", "create:products", "edit:products", "delete:products"},
			Members:     []string{idsByEmail["editor@example.com"]},
		},
	}

	for _, dto := range groups {
		g, err := groupSvc.Create(ctx, dto, nil)
		if err != nil {
			return fmt.Errorf("seed group %s: %w", dto.Name, err)
		}
		lg.Info("seeded user group", "name", g.Name)
	}

	return nil
}

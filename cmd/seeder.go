package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/auth"
	authPostgres "github.com/frahmantamala/staff-registry/internal/auth/postgres"
	"github.com/frahmantamala/staff-registry/internal/user"
	userPostgres "github.com/frahmantamala/staff-registry/internal/user/postgres"
	"github.com/frahmantamala/staff-registry/pkg/logger"
	"github.com/spf13/cobra"
)

// defaultRoles are the permission levels installed by `seed`. Anything at or
// above security.admin_permission_level reaches the admin routes.
var defaultRoles = []struct {
	Role  string
	Level int
}{
	{user.RoleSystemAdmin, 100},
	{"Doctor", 50},
	{"Nurse", 30},
	{"Pharmacist", 30},
	{"Lab Technician", 20},
	{"Staff", 10},
}

var adminSeed struct {
	email    string
	password string
	username string
	regNo    string
	hospital string
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed role permission levels and an optional initial administrator",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger.Init(cfg.Observability.Logging.Format, cfg.Observability.Logging.Level)
		lg := logger.L()

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		gdb, err := initGorm(db)
		if err != nil {
			return fmt.Errorf("failed to init gorm: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if err := seedRoles(ctx, authPostgres.NewRoleRepository(gdb), lg); err != nil {
			return err
		}

		if adminSeed.email == "" {
			return nil
		}
		return seedAdmin(ctx, userPostgres.NewAccountRepository(gdb), auth.NewBcryptHasher(cfg.Security.BCryptCost), lg)
	},
}

type roleUpserter interface {
	Upsert(ctx context.Context, role string, permissions int) error
}

func seedRoles(ctx context.Context, roles roleUpserter, lg *slog.Logger) error {
	for _, r := range defaultRoles {
		if err := roles.Upsert(ctx, r.Role, r.Level); err != nil {
			return fmt.Errorf("seed role %s: %w", r.Role, err)
		}
		lg.Info("seeded role", "role", r.Role, "permissions", r.Level)
	}
	return nil
}

type accountCreator interface {
	Create(ctx context.Context, account *user.Account) error
}

// seedAdmin creates the first System Admin. An existing account with the
// same email, reg_no or username is left alone.
func seedAdmin(ctx context.Context, accounts accountCreator, hasher auth.PasswordHasher, lg *slog.Logger) error {
	if adminSeed.password == "" {
		return fmt.Errorf("--admin-password is required with --admin-email")
	}

	hash, err := hasher.Hash(adminSeed.password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	account := &user.Account{
		Username:     adminSeed.username,
		Email:        adminSeed.email,
		PasswordHash: hash,
		RegNo:        adminSeed.regNo,
		Role:         user.RoleSystemAdmin,
		Hospital:     adminSeed.hospital,
		Availability: true,
	}
	if account.Username == "" {
		account.Username = adminSeed.email
	}
	if account.RegNo == "" {
		account.RegNo = "ADMIN-" + adminSeed.email
	}

	if err := accounts.Create(ctx, account); err != nil {
		if appErr, ok := internal.AsAppError(err); ok && appErr.StatusCode == http.StatusConflict {
			lg.Info("admin account already exists", "email", adminSeed.email, "code", appErr.Code)
			return nil
		}
		return fmt.Errorf("create admin account: %w", err)
	}

	lg.Info("seeded admin account", "email", account.Email, "account_id", account.ID)
	return nil
}

func init() {
	seedCmd.Flags().StringVar(&adminSeed.email, "admin-email", "", "email of the initial System Admin (skipped when empty)")
	seedCmd.Flags().StringVar(&adminSeed.password, "admin-password", "", "password of the initial System Admin")
	seedCmd.Flags().StringVar(&adminSeed.username, "admin-username", "", "username of the initial System Admin (defaults to the email)")
	seedCmd.Flags().StringVar(&adminSeed.regNo, "admin-reg-no", "", "registration number of the initial System Admin")
	seedCmd.Flags().StringVar(&adminSeed.hospital, "admin-hospital", "", "hospital of the initial System Admin")
}

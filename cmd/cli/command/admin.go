package command

// admin.go holds the commands that work on the database directly. They read
// the same environment as the API server.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

var errUnknownRole = errors.New("role must be one of user, moderator, admin")

// openDB connects with the server configuration and hands back a logger that
// the helpers below share.
func openDB() (*gorm.DB, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := cfg.NewLogger()
	db, err := database.Connect(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return db, logger, nil
}

// withDB runs fn against a freshly opened database and closes it afterwards.
func withDB(fn func(db *gorm.DB, logger *slog.Logger) error) error {
	db, logger, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(db, logger)
}

// createSuperuser stores an active admin with the superuser flag. It signs in
// through the normal confirmation-code flow afterwards.
func createSuperuser(ctx context.Context, users repository.UserRepository, username, email string) (*models.User, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}
	req := dto.CreateUserRequest{Username: username, Email: email, Role: models.RoleAdmin}
	if err := binding.Validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	if username == models.ReservedUsername {
		return nil, fmt.Errorf("username %q is reserved", username)
	}

	u := req.ToModel()
	u.IsSuperuser = true
	u.IsActive = true
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("a user with that username or email already exists: %w", err)
		}
		return nil, err
	}
	return u, nil
}

func setRole(ctx context.Context, users repository.UserRepository, username, role string) (*models.User, error) {
	if !models.IsValidRole(role) {
		return nil, errUnknownRole
	}
	u, err := users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	u.Role = role
	return u, users.Update(ctx, u)
}

// setActive toggles the account; inactive users fail bearer authentication
// and cannot exchange confirmation codes.
func setActive(ctx context.Context, users repository.UserRepository, username string, active bool) (*models.User, error) {
	u, err := users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	u.IsActive = active
	return u, users.Update(ctx, u)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB, logger *slog.Logger) error {
			if err := database.Migrate(db, logger); err != nil {
				return err
			}
			success("Schema is up to date")
			return nil
		})
	},
}

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an admin account with the superuser flag",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")

		return withDB(func(db *gorm.DB, logger *slog.Logger) error {
			u, err := createSuperuser(cmd.Context(), repository.NewUserRepository(db), username, email)
			if err != nil {
				return err
			}
			logger.Info("superuser created", "username", u.Username)
			success("Superuser %s created", u.Username)
			fmt.Printf("Request a code with: yamdb auth signup -e %s -u %s\n", u.Email, u.Username)
			return nil
		})
	},
}

var setRoleCmd = &cobra.Command{
	Use:       "set-role [username] [role]",
	Short:     "Change a user's role",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{models.RoleUser, models.RoleModerator, models.RoleAdmin},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB, logger *slog.Logger) error {
			u, err := setRole(cmd.Context(), repository.NewUserRepository(db), args[0], args[1])
			if err != nil {
				return err
			}
			logger.Info("role changed", "username", u.Username, "role", u.Role)
			success("%s is now %s", u.Username, u.Role)
			return nil
		})
	},
}

func activationCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [username]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *gorm.DB, logger *slog.Logger) error {
				u, err := setActive(cmd.Context(), repository.NewUserRepository(db), args[0], active)
				if err != nil {
					return err
				}
				logger.Info("account status changed", "username", u.Username, "active", u.IsActive)
				if active {
					success("%s can sign in again", u.Username)
				} else {
					warn("%s is deactivated", u.Username)
				}
				return nil
			})
		},
	}
}

var purgeTokensCmd = &cobra.Command{
	Use:   "purge-tokens",
	Short: "Delete expired refresh tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB, logger *slog.Logger) error {
			n, err := repository.NewRefreshTokenRepository(db).DeleteExpired(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			success("Removed %d expired refresh tokens", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(
		migrateCmd,
		createSuperuserCmd,
		setRoleCmd,
		activationCmd("deactivate", "Block a user from signing in", false),
		activationCmd("activate", "Allow a deactivated user to sign in", true),
		purgeTokensCmd,
	)

	createSuperuserCmd.Flags().String("username", "", "Username for the account")
	createSuperuserCmd.Flags().String("email", "", "Email for the account")
	createSuperuserCmd.MarkFlagRequired("username")
	createSuperuserCmd.MarkFlagRequired("email")
}

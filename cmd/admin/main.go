package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Fazeel2019/Upskill-sub000/internal/config"
	"github.com/Fazeel2019/Upskill-sub000/internal/database"
	"github.com/Fazeel2019/Upskill-sub000/internal/log"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
)

// env is what every subcommand needs once config is loaded and the pool is open.
type env struct {
	cfg    *config.AppConfig
	log    zerolog.Logger
	pool   *pgxpool.Pool
	closer func()
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := log.New(cfg.Environment, cfg.LogLevel)

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &env{cfg: cfg, log: logger, pool: pool, closer: pool.Close}, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "upskill-admin",
		Short:         "Operator tasks for the Upskill backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newMigrateCmd(),
		newUsersCmd(),
		newSeedCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [command] [args...]",
		Short: "Run a database migration command",
		Long: `Run a goose command against the embedded migrations.

Commands: up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version.

Example: upskill-admin migrate status`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.closer()

			return database.Migrate(cmd.Context(), e.pool, args[0], args[1:]...)
		},
	}
}

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user roles and status",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "grant-role [email] [role]",
			Short: "Set a user's role (user, admin, superadmin)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				role := models.UserRole(strings.ToLower(args[1]))
				if !role.Valid() {
					return fmt.Errorf("unknown role %q", args[1])
				}
				return withUser(cmd.Context(), args[0], func(ctx context.Context, users *repository.UserRepository, user models.User) error {
					if err := users.UpdateRole(ctx, user.ID, role); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, role)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set-status [email] [status]",
			Short: "Activate or suspend a user (active, suspended)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				status := models.UserStatus(strings.ToLower(args[1]))
				if status != models.UserStatusActive && status != models.UserStatusSuspended {
					return fmt.Errorf("unknown status %q", args[1])
				}
				return withUser(cmd.Context(), args[0], func(ctx context.Context, users *repository.UserRepository, user models.User) error {
					if err := users.UpdateStatus(ctx, user.ID, status); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, status)
					return nil
				})
			},
		},
	)

	return cmd
}

func withUser(ctx context.Context, email string, fn func(context.Context, *repository.UserRepository, models.User) error) error {
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.closer()

	users := repository.NewUserRepository(e.pool)
	user, err := users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("find %s: %w", email, err)
	}
	return fn(ctx, users, user)
}

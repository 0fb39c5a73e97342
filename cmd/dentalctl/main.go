package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jwalitptl/dental-api/internal/config"
	"github.com/jwalitptl/dental-api/internal/repository/postgres"
	"github.com/jwalitptl/dental-api/internal/service/bootstrap"
	"github.com/jwalitptl/dental-api/pkg/security"
)

var (
	configDir string
	log        *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dentalctl",
		Short:         "Dental API maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			log, err = zap.NewProduction()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory holding config.yaml")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, _ *config.Config, db *sqlx.DB) error {
				applied, err := postgres.Migrate(ctx, db)
				if err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				if len(applied) == 0 {
					log.Info("schema is up to date")
					return nil
				}
				log.Info("migrations applied", zap.Strings("versions", applied))
				return nil
			})
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default clinic, the superuser and the service catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			withCatalog, _ := cmd.Flags().GetBool("catalog")
			phone, _ := cmd.Flags().GetString("phone")
			password, _ := cmd.Flags().GetString("password")

			return withDB(cmd.Context(), func(ctx context.Context, cfg *config.Config, db *sqlx.DB) error {
				base := postgres.NewBaseRepository(db)
				opts := bootstrap.Options{
					ClinicName: cfg.Superuser.ClinicName,
					Phone:      cfg.Superuser.Phone,
					Password:   cfg.Superuser.Password,
					FullName:   cfg.Superuser.FullName,
				}
				if phone != "" {
					opts.Phone = phone
				}
				if password != "" {
					if len(password) < security.MinPasswordLen {
						return fmt.Errorf("password must be at least %d characters", security.MinPasswordLen)
					}
					opts.Password = password
				}

				svc := bootstrap.NewService(
					postgres.NewClinicRepository(base),
					postgres.NewUserRepository(base),
					security.NewBcryptHasher(0),
				)
				res, err := svc.Run(ctx, opts)
				if err != nil {
					return fmt.Errorf("seed: %w", err)
				}
				log.Info("clinic ready",
					zap.Int64("clinic_id", res.Clinic.ID),
					zap.Bool("created", res.ClinicCreated))
				if res.Superuser != nil {
					log.Info("superuser ready",
						zap.Int64("user_id", res.Superuser.ID),
						zap.String("phone", res.Superuser.Phone),
						zap.Bool("created", res.UserCreated))
				}

				if !withCatalog {
					return nil
				}
				created, err := bootstrap.SeedCatalog(ctx, postgres.NewServiceRepository(base), bootstrap.DefaultCatalog)
				if err != nil {
					return fmt.Errorf("seed catalog: %w", err)
				}
				log.Info("service catalog ready", zap.Int("created", created))
				return nil
			})
		},
	}
	cmd.Flags().Bool("catalog", false, "Also seed the default service catalog")
	cmd.Flags().String("phone", "", "Superuser phone, overrides SUPERUSER_PHONE")
	cmd.Flags().String("password", "", "Superuser password, overrides SUPERUSER_PASSWORD")
	return cmd
}

func withDB(ctx context.Context, fn func(context.Context, *config.Config, *sqlx.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var paths []string
	if configDir != "" {
		paths = append(paths, configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := postgres.NewDB(ctx, cfg.ToDBConfig())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	log.Debug("connected to database")
	return fn(ctx, cfg, db)
}

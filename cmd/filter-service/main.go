package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "chatfilter/cmd/filter-service/docs"
	"chatfilter/internal/config"
	"chatfilter/internal/constants"
	"chatfilter/internal/logger"
	"chatfilter/pkg/bootstrap"
	"chatfilter/pkg/logging"
	"chatfilter/pkg/migrations"
)

var (
	configFile string
	earlyLog   = logging.NewEarlyLog(constants.ServiceName)
)

// @title           Chat Filter Service API
// @version         1.0
// @description     Ban and unban rules for chat bot commands, channels and users

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http https

func main() {
	rootCmd := &cobra.Command{
		Use:          "filter-service",
		Short:        "Ban rule service for the chat bot",
		Long:         "Filter service stores ban rules and answers ban/unban requests issued from chat",
		SilenceUsage: true,
		RunE:         serveCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (or CONFIG_FILE)")

	rootCmd.AddCommand(serveCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, logger.Logger, error) {
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
		if configFile == "" {
			earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
			return nil, nil, fmt.Errorf("config file is required")
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, nil, err
	}

	log, err := logger.New(cfg.Logging, constants.ServiceName)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return nil, nil, err
	}
	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the filter service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.InfowCtx(ctx, "Starting Filter Service")

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.ErrorwCtx(ctx, "Failed to initialize application", "error", err)
				_ = app.Shutdown(context.Background())
				return err
			}

			runErr := app.Run(ctx)
			if runErr != nil {
				log.ErrorwCtx(ctx, "Service stopped with error", "error", runErr)
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer shutdownCancel()
			if err := app.Shutdown(shutdownCtx); err != nil {
				log.ErrorwCtx(shutdownCtx, "Shutdown error", "error", err)
				return errors.Join(runErr, err)
			}
			return runErr
		},
	}
}

func migrateCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}

	// withDB opens the configured database for the duration of fn.
	withDB := func(fn func(db *sql.DB, log logger.Logger) error) func(*cobra.Command, []string) error {
		return func(c *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := bootstrap.NewDatabaseConnector(cfg, log).InitPostgreSQL(c.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			return fn(db, log)
		}
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: withDB(func(db *sql.DB, log logger.Logger) error {
			if err := migrations.RunPostgres(db); err != nil {
				return err
			}
			log.Info("Migrations applied")
			return nil
		}),
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: withDB(func(db *sql.DB, log logger.Logger) error {
			if err := migrations.RollbackPostgres(db, steps); err != nil {
				return err
			}
			log.Infow("Migrations rolled back", "steps", steps)
			return nil
		}),
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: withDB(func(db *sql.DB, log logger.Logger) error {
			v, dirty, err := migrations.PostgresVersion(db)
			if err != nil {
				return err
			}
			log.Infow("Schema version", "version", v, "dirty", dirty)
			return nil
		}),
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

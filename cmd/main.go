package main

import (
	"context"
	"fmt"
	"os"

	"mentalwell/cmd/bootstrap"
	"mentalwell/config"
	"mentalwell/internal/infrastructure/database"
	"mentalwell/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mentalwell",
		Short:         "MentalWell wellness tracking server",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server (default)",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:       "migrate [up|down]",
			Short:     "Apply or roll back database migrations",
			Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{"up", "down"},
			RunE:      runMigrate,
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Create the default administrator and psychologist accounts",
			RunE:  runSeed,
		},
	)

	return root
}

func loadConfig() (*config.Config, *logrus.Logger, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, closer, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("Configuration loaded successfully")

	return cfg, log, func() { closer.Close() }, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	if err := cfg.Validate(); err != nil {
		return err
	}
	bootstrap.WatchLogLevel(viper.GetViper(), log)

	app, err := bootstrap.New(cfg, log)
	if err != nil {
		log.Errorf("Failed to initialize application: %v", err)
		return err
	}

	return app.Run()
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	if err := database.Migrate(cfg.DB, args[0], log); err != nil {
		log.Errorf("Migration %s failed: %v", args[0], err)
		return err
	}
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, log, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	created, err := database.Seed(context.Background(), repository.NewUserRepository(db), cfg.Seed.Password, log)
	if err != nil {
		log.Errorf("Seeding failed: %v", err)
		return err
	}
	log.Infof("Seeding completed: %d accounts created", created)
	return nil
}

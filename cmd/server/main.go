package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/habitlog/internal/config"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/logging"
	"github.com/habitlog/internal/seed"
	"github.com/habitlog/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap 读取配置、初始化日志与数据库，调用方负责执行返回的关闭函数
func bootstrap() (config.AppConfig, *logrus.Logger, func(), error) {
	cfg := config.Load()

	logger, closeLog, err := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("setting up logging: %w", err)
	}

	if err := db.Init(cfg.DatabasePath); err != nil {
		_ = closeLog()
		return cfg, nil, nil, fmt.Errorf("initializing database: %w", err)
	}

	cleanup := func() {
		if sqlDB, err := db.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = closeLog()
	}
	return cfg, logger, cleanup, nil
}

var rootCmd = &cobra.Command{
	Use:          "habitlog",
	Short:        "Habit tracking API server",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

// user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user if the email is not registered yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, _ := cmd.Flags().GetString("password")

		_, _, cleanup, err := bootstrap()
		if err != nil {
			return err
		}
		defer cleanup()

		user, created, err := db.EnsureUser(db.DB, email, name, password)
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		if !created {
			fmt.Printf("User already exists: %s (id %d)\n", user.Email, user.ID)
			return nil
		}
		fmt.Printf("Created user %s (id %d)\n", user.Email, user.ID)
		return nil
	},
}

// seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate demo habits and check-ins for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		days, _ := cmd.Flags().GetInt("days")

		cfg, _, cleanup, err := bootstrap()
		if err != nil {
			return err
		}
		defer cleanup()

		clock, err := service.NewSystemClock(cfg.Timezone)
		if err != nil {
			return fmt.Errorf("loading timezone: %w", err)
		}

		user, _, err := db.EnsureUser(db.DB, email, "Demo", password)
		if err != nil {
			return fmt.Errorf("preparing demo user: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		result, err := seed.Run(ctx, db.DB, user.ID, service.Today(clock), days)
		if err != nil {
			return err
		}
		if result.Habits == 0 {
			fmt.Printf("%s already has habits, skipped\n", user.Email)
			return nil
		}
		fmt.Printf("Seeded %d habits and %d logs for %s\n", result.Habits, result.Logs, user.Email)
		return nil
	},
}

// tokens command
var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Manage access tokens",
}

var tokensPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired access tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, cleanup, err := bootstrap()
		if err != nil {
			return err
		}
		defer cleanup()

		clock, err := service.NewSystemClock(cfg.Timezone)
		if err != nil {
			return fmt.Errorf("loading timezone: %w", err)
		}

		auth := service.NewAuthService(db.DB, cfg.TokenSecret, cfg.TokenTTL, clock)
		removed, err := auth.PruneExpired(cmd.Context())
		if err != nil {
			return fmt.Errorf("pruning tokens: %w", err)
		}
		fmt.Printf("Removed %d expired tokens\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	userCreateCmd.Flags().String("email", "", "login email")
	userCreateCmd.Flags().String("name", "", "display name (defaults to the email)")
	userCreateCmd.Flags().String("password", "", "plain text password")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)

	seedCmd.Flags().String("email", "demo@example.com", "owner of the demo habits")
	seedCmd.Flags().String("password", "password123", "password used when the user has to be created")
	seedCmd.Flags().Int("days", 60, "number of days of check-ins to generate")
	rootCmd.AddCommand(seedCmd)

	tokensCmd.AddCommand(tokensPruneCmd)
	rootCmd.AddCommand(tokensCmd)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/handler"
	"github.com/habitlog/internal/janitor"
	"github.com/habitlog/internal/router"
	"github.com/habitlog/internal/service"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, cleanup, err := bootstrap()
		if err != nil {
			return err
		}
		defer cleanup()

		gin.SetMode(cfg.GinMode)

		clock, err := service.NewSystemClock(cfg.Timezone)
		if err != nil {
			return fmt.Errorf("loading timezone: %w", err)
		}

		if cfg.BootstrapEmail != "" {
			user, created, err := db.EnsureUser(db.DB, cfg.BootstrapEmail, "", cfg.BootstrapPassword)
			if err != nil {
				logger.WithError(err).Warn("bootstrap user skipped")
			} else if created {
				logger.WithField("email", user.Email).Info("bootstrap user created")
			}
		}

		api := handler.NewAPI(db.DB, handler.Options{
			TokenSecret: cfg.TokenSecret,
			TokenTTL:    cfg.TokenTTL,
			Clock:       clock,
			Logger:      logger,
		})

		engine, limiter := router.SetupRouter(api, router.Options{
			SessionSecret:     cfg.SessionSecret,
			StaticDir:         cfg.StaticDir,
			AuthRatePerMinute: cfg.AuthRatePerMinute,
			Logger:            logger,
		})

		jobs, err := janitor.New(api.Auth(), limiter, logger)
		if err != nil {
			return fmt.Errorf("scheduling housekeeping: %w", err)
		}
		jobs.Start()

		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.WithField("addr", cfg.ListenAddr).Info("habitlog listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("server failed: %w", err)
			}
		case <-ctx.Done():
			logger.Info("shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		jobs.Stop(shutdownCtx)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	},
}

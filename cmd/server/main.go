package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/charity/internal/httpserver"
	"github.com/Skotchmaster/charity/internal/models"
	"github.com/Skotchmaster/charity/internal/mykafka"
	"github.com/Skotchmaster/charity/internal/service"
	"github.com/Skotchmaster/charity/pkg/config"
	"github.com/Skotchmaster/charity/pkg/logging"
	loggingmw "github.com/Skotchmaster/charity/pkg/middleware/logging"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "charity",
		Short:         "Charity donation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSeedCommand())
	cmd.AddCommand(newReindexCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			cfg.MustServe()
			return serve(cfg)
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logging.New(cfg.LogLevel)

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.db.WithContext(cmd.Context()).AutoMigrate(models.All()...); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("migrate_done")
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create roles, the super admin and starter catalog entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logging.New(cfg.LogLevel)

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := logging.IntoContext(cmd.Context(), log)
			report, err := a.admin.Seed(ctx, service.SeedInput{
				AdminEmail:    cfg.AdminEmail,
				AdminPassword: cfg.AdminPassword,
			})
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			log.Info("seed_done",
				"roles", report.Roles,
				"admin_created", report.AdminCreated,
				"category_created", report.CategoryCreated,
				"institution_created", report.InstitutionAdded,
			)
			return nil
		},
	}
}

func newReindexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Push every institution into the search index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			config.MustNonEmpty(cfg.ESURL, "ES_URL")
			log := logging.New(cfg.LogLevel)

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.index == nil {
				return errors.New("reindex: search index unavailable")
			}
			a.index.Refresh = true

			n, err := a.institutions.Reindex(logging.IntoContext(cmd.Context(), log))
			if err != nil {
				return fmt.Errorf("reindex: %w", err)
			}
			log.Info("reindex_done", "institutions", n)
			return nil
		},
	}
}

func serve(cfg config.Config) error {
	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	a, err := newApp(initCtx, cfg, log)
	if err != nil {
		cancel()
		return err
	}
	defer a.Close()

	if cfg.DBAutoMigrate {
		if err := a.db.WithContext(initCtx).AutoMigrate(models.All()...); err != nil {
			cancel()
			return fmt.Errorf("auto migrate: %w", err)
		}
	}
	if len(cfg.KafkaBrokers) > 0 {
		if err := mykafka.EnsureTopics(initCtx, cfg.KafkaBrokers[0], service.Topics...); err != nil {
			log.Warn("kafka_topics_error", "error", err)
		}
	}
	cancel()

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.RequestID(),
		loggingmw.RequestLogger(log),
		middleware.Recover(),
		a.metrics.Middleware(),
	)
	httpserver.Register(e, a.deps())

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting_down", "signal", sig.String())
	case err := <-errCh:
		log.Error("http_server_error", "error", err)
		return err
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server_shutdown_error", "error", err)
	}

	log.Info("shutdown_complete")
	return nil
}

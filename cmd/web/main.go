package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/olympics-draws/internal/catalog"
	"github.com/AdamBeresnev/olympics-draws/internal/config"
	"github.com/AdamBeresnev/olympics-draws/internal/db"
	"github.com/AdamBeresnev/olympics-draws/internal/live"
	"github.com/AdamBeresnev/olympics-draws/internal/notify"
	"github.com/AdamBeresnev/olympics-draws/internal/service"
	"github.com/AdamBeresnev/olympics-draws/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/jonboulle/clockwork"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	database, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	if cfg.DBDriver == db.DriverSQLite {
		sessionManager.Store = sqlite3store.New(database.DB)
	} else {
		sessionManager.Store = memstore.New()
	}

	clock := clockwork.NewRealClock()
	hub := live.NewHub(logger)
	go hub.Run(ctx)

	emitters := notify.Fanout{notify.LogEmitter{Logger: logger}, hub}

	if cfg.NATSURL != "" {
		nc, err := notify.ConnectNATS(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer nc.Drain()
		emitters = append(emitters, notify.NewNATSEmitter(nc, cfg.NATSSubject, clock, logger))
		logger.Info("publishing draw results to NATS", "subject", cfg.NATSSubject)
	}

	if cfg.Archive.Bucket != "" {
		client, err := notify.NewS3Client(ctx, cfg.Archive)
		if err != nil {
			return err
		}
		emitters = append(emitters, notify.NewArchiveEmitter(client, cfg.Archive.Bucket, clock, logger))
		logger.Info("archiving draw results", "bucket", cfg.Archive.Bucket)
	}

	catalogStore := catalog.NewStore(database)
	engine := service.NewEngine(
		store.NewDrawStore(database),
		service.Collaborators{Events: catalogStore, Roster: catalogStore, Registry: catalogStore},
		service.WithClock(clock),
		service.WithLogger(logger),
		service.WithEmitter(emitters),
		service.WithListener(hub),
	)

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: newRouter(routerDeps{
			engine:         engine,
			sessionManager: sessionManager,
			hub:            hub,
			allowedOrigins: cfg.CORSAllowedOrigins,
			devSessions:    cfg.DevSessionHandshake,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	if cfg.DevSessionHandshake {
		logger.Warn("development session handshake enabled, any caller can sign in as any actor")
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "db_driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	engine.Wait()
	logger.Info("server stopped gracefully")
	return nil
}

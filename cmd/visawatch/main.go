package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/monocle-dev/visawatch/db"
	"github.com/monocle-dev/visawatch/internal/auth"
	"github.com/monocle-dev/visawatch/internal/config"
	"github.com/monocle-dev/visawatch/internal/handlers"
	"github.com/monocle-dev/visawatch/internal/logger"
	"github.com/monocle-dev/visawatch/internal/models"
	"github.com/monocle-dev/visawatch/internal/monitoring"
	"github.com/monocle-dev/visawatch/internal/monitors"
	"github.com/monocle-dev/visawatch/internal/realtime"
	"github.com/monocle-dev/visawatch/internal/router"
	"github.com/monocle-dev/visawatch/internal/scheduler"
	"github.com/monocle-dev/visawatch/internal/services"
	"github.com/monocle-dev/visawatch/internal/store"
	"github.com/monocle-dev/visawatch/internal/types"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogEncoding)

	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg, zlog)
	if err != nil {
		return err
	}

	if err := seedDemoUser(ctx, st, cfg); err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}

	hub := realtime.NewHub(zlog.Named("realtime"))

	notifier := services.NewNotifier(services.NotifierOptions{
		Mailer:      newMailer(cfg, zlog),
		TelegramURL: cfg.Telegram.APIURL,
		BookingURL:  cfg.Email.BookingURL,
		Logger:      zlog.Named("notifications"),
	})

	service := monitoring.NewService(monitoring.Options{
		Store:        st,
		Prober:       newProber(cfg, zlog),
		Notifier:     notifier,
		Broadcaster:  hub,
		Scheduler:    scheduler.NewScheduler(zlog.Named("scheduler")),
		Logger:       zlog.Named("monitoring"),
		ProbeTimeout: cfg.Probe.Timeout,
		Embassy:      cfg.Email.Embassy,
	})

	signer := auth.NewSigner(cfg.JWTSecret)
	origins := types.AllowedOrigins(cfg.ClientURL, cfg.AllowedOrigins)

	h := handlers.New(handlers.Options{
		Service:        service,
		Store:          st,
		Notifications:  notifier,
		Hub:            hub,
		Signer:         signer,
		Logger:         zlog.Named("http"),
		AllowedOrigins: origins,
	})

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.NewRouter(router.Options{
			Handler:        h,
			Signer:         signer,
			Logger:         zlog.Named("http"),
			AllowedOrigins: origins,
			DefaultUserID:  cfg.DefaultUserID,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		zlog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("http shutdown", zap.Error(err))
	}

	service.Shutdown()
	hub.Close()

	if err := st.Close(); err != nil {
		zlog.Warn("store close", zap.Error(err))
	}

	return nil
}

func openStore(cfg config.Config, zlog *zap.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		zlog.Info("DATABASE_URL not set, using in-memory store")
		return store.NewMemStore(), nil
	}

	conn, err := db.ConnectDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.MigrateDatabase(conn); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	zlog.Info("connected to postgres")

	return store.NewGormStore(conn), nil
}

// seedDemoUser makes sure the default single-tenant user exists.
func seedDemoUser(ctx context.Context, st store.Store, cfg config.Config) error {
	_, err := st.GetUserByUsername(ctx, cfg.DemoUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return st.CreateUser(ctx, &models.User{
		Username:     cfg.DemoUsername,
		PasswordHash: string(hash),
	})
}

func newMailer(cfg config.Config, zlog *zap.Logger) services.Mailer {
	if cfg.Email.User == "" || cfg.Email.Password == "" {
		zlog.Warn("EMAIL_USER or EMAIL_PASS not set, email notifications disabled")
		return nil
	}

	return services.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.User, cfg.Email.Password)
}

func newProber(cfg config.Config, zlog *zap.Logger) monitors.Prober {
	switch cfg.Probe.Mode {
	case "page":
		zlog.Info("probing booking page", zap.String("url", cfg.Probe.URL))
		return monitors.NewPageProber(&types.PageConfig{
			URL:      cfg.Probe.URL,
			Selector: cfg.Probe.Selector,
		}, cfg.Probe.Timeout)
	default:
		return monitors.NewRandomProber(cfg.Probe.AvailabilityRate)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"summit-push-go/internal/clock"
	"summit-push-go/internal/config"
	"summit-push-go/internal/handlers"
	"summit-push-go/internal/models"
	"summit-push-go/internal/notifier"
	"summit-push-go/internal/obs"
	"summit-push-go/internal/push"
	"summit-push-go/internal/scheduler"
	"summit-push-go/internal/store"
)

var version = "dev"

func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", "config.yaml"), "path to the YAML config file")
	genTOTP := flag.Bool("gen-totp", false, "print a new TOTP secret for the admin and exit")
	genVAPID := flag.Bool("gen-vapid", false, "print a new VAPID key pair and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	dotenvErr := config.LoadDotEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(obs.LogConfig{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		App:    "summit-push",
		Env:    os.Getenv("APP_ENV"),
		Ver:    version,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	if dotenvErr != nil {
		l.Info("No .env file found, using environment and defaults")
	}

	if *genTOTP {
		key, err := models.GenerateTOTPSecret(cfg.Admin.Username, "Summit Push")
		if err != nil {
			l.Fatal("generate TOTP secret", zap.Error(err))
		}
		fmt.Printf("ADMIN_TOTP_SECRET=%s\n%s\n", key.Secret(), key.URL())
		return
	}

	if *genVAPID {
		priv, pub, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			l.Fatal("generate VAPID keys", zap.Error(err))
		}
		fmt.Printf("VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", pub, priv)
		return
	}

	if err := run(ctx, cfg, l); err != nil {
		l.Fatal("server stopped", zap.Error(err))
	}
	l.Info("bye")
}

func run(ctx context.Context, cfg *config.Config, l *zap.Logger) error {
	vapidPublic, vapidPrivate, err := push.LoadVAPIDKeys(cfg.VAPID.PublicKey, cfg.VAPID.PrivateKey, l)
	if err != nil {
		return err
	}

	registry := push.NewRegistry()
	transport := push.NewWebPushTransport(push.WebPushConfig{
		Subscriber:      cfg.VAPID.Subscriber,
		VAPIDPublicKey:  vapidPublic,
		VAPIDPrivateKey: vapidPrivate,
		TTL:             cfg.Push.TTL,
		Timeout:         cfg.Push.Timeout,
		RatePerSec:      cfg.Push.RatePerSec,
	})
	dispatcher := push.NewDispatcher(registry, transport, clock.System{}, l.Named("dispatcher"))

	var (
		recorders []notifier.Recorder
		checks    []obs.HealthFunc
		feed      store.EventFeed
		audit     store.BroadcastLog
	)

	// Redis broadcast feed (optional)
	if cfg.Redis.Addr != "" {
		redisStore := store.NewRedisStore(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisStore.Close()
		if err := redisStore.Ping(ctx); err != nil {
			l.Warn("redis not reachable, feed will retry on use", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		recorders = append(recorders, redisStore)
		checks = append(checks, redisStore.Ping)
		feed = redisStore
	}

	// PostgreSQL broadcast audit (optional)
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		defer pgStore.Close()
		if err := pgStore.RunMigrations(ctx); err != nil {
			return err
		}
		l.Info("Database migrations completed")
		recorders = append(recorders, pgStore)
		checks = append(checks, pgStore.Ping)
		audit = pgStore
	}

	core := notifier.New(registry, dispatcher, notifier.Options{
		PruneGone: cfg.Push.PruneExpired,
		Recorders: recorders,
	}, l.Named("notifier"))

	sched := scheduler.New(scheduler.Config{
		Tick:    cfg.Schedule.Tick,
		CatchUp: cfg.Schedule.CatchUp,
	}, clock.System{}, l.Named("scheduler"))
	for _, b := range cfg.Schedule.Broadcasts {
		at, err := b.FireAt()
		if err != nil {
			return err
		}
		sched.Schedule(b.Title, at, core.ScheduledAction(b.Title, b.Title, b.Body, b.Category))
	}

	events, err := store.LoadEventCatalog(cfg.DataDir)
	if err != nil {
		return err
	}
	l.Info("event catalog loaded", zap.Strings("summits", events.Names()))

	admin := models.Admin{
		Username:     cfg.Admin.Username,
		PasswordHash: cfg.Admin.PasswordHash,
		TOTPSecret:   cfg.Admin.TOTPSecret,
	}
	if admin.PasswordHash == "" {
		if admin.PasswordHash, err = models.HashPassword(cfg.Admin.Password); err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
	}
	auth := handlers.NewAuthenticator(admin, cfg.Session.Secret, l.Named("auth"))

	h := handlers.NewHandler(core, events, auth, l.Named("http"))
	h.Feed = feed
	h.Audit = audit
	h.Schedule = sched
	h.VAPIDPublicKey = vapidPublic
	h.StaticDir = cfg.StaticDir

	var ms *http.Server
	if cfg.MetricsAddr != "" {
		ms = obs.BootstrapMetricsServer(cfg.MetricsAddr, func(ctx context.Context) error {
			for _, check := range checks {
				if err := check(ctx); err != nil {
					return err
				}
			}
			return nil
		}, l)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	schedErrCh := make(chan error, 1)
	go func() { schedErrCh <- sched.Run(ctx) }()

	httpErrCh := make(chan error, 1)
	go func() {
		l.Info("App is listening", zap.String("addr", srv.Addr))
		httpErrCh <- srv.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		l.Info("shutdown signal received")
	case runErr = <-httpErrCh:
		if errors.Is(runErr, http.ErrServerClosed) {
			runErr = nil
		}
	case runErr = <-schedErrCh:
		if errors.Is(runErr, context.Canceled) {
			runErr = nil
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	if ms != nil {
		_ = ms.Shutdown(shCtx)
	}
	return runErr
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

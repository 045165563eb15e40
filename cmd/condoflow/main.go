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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"condoflow/internal/api"
	"condoflow/internal/audit"
	"condoflow/internal/booking"
	"condoflow/internal/config"
	"condoflow/internal/database"
	"condoflow/internal/events"
	"condoflow/internal/metrics"
	"condoflow/internal/notify"
	"condoflow/internal/repository"
	"condoflow/internal/scheduler"
	"condoflow/internal/service"
	"condoflow/internal/session"
)

func main() {
	// .env is optional outside development
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONDOFLOW_CONFIG_PATH"))
	if err != nil {
		boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db := openStore(ctx, cfg, &logger)
	defer store.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}

	memSessions := session.NewMemoryStore()
	var sessionStore session.Store = memSessions
	if cfg.Session.Store == "redis" {
		if rdb == nil {
			logger.Fatal().Msg("session.store is redis but redis.address is empty")
		}
		sessionStore = session.NewFailoverStore(session.NewRedisStore(rdb), memSessions, &logger)
	}

	auth, err := session.NewAuthenticator(cfg.Auth.Accounts, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid auth accounts")
	}
	sessions := session.NewManager(sessionStore, cfg.SessionTTL(), logger)

	bus := events.NewEventBus(logger)

	areas, err := store.ListAreas(ctx)
	if err != nil || len(areas) == 0 {
		areas = repository.DefaultAreas()
	}
	catalog := booking.NewCatalog(areas, nil)
	err = config.WatchAreas(ctx, cfg.AreasConfigPath, 30*time.Second, func(ac *config.AreasConfig) {
		models := ac.Models()
		catalog.Replace(models, ac.HolidayMap())
		if err := store.SyncAreas(ctx, models); err != nil {
			logger.Error().Err(err).Msg("failed to sync areas")
		}
		if err := bus.PublishJSON(events.AreasReloaded, models); err != nil {
			logger.Warn().Err(err).Msg("failed to publish areas reload")
		}
		logger.Info().Int("areas", len(models)).Msg("Area catalog loaded")
	})
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.AreasConfigPath).Msg("areas config unavailable, using stored catalog")
	}

	reservations := booking.NewService(store, catalog, bus, logger)
	notifications := service.NewNotifications(store, bus, logger)
	notifications.Subscribe(bus)

	hub := notify.NewHub(logger)
	hub.Subscribe(bus)
	go hub.Run()
	defer hub.Stop()

	if cfg.Reminders.Enabled {
		reminders := notify.NewReminders(notify.ReminderConfig{
			CheckInterval: cfg.ReminderInterval(),
			Lead:          cfg.ReminderLead(),
		}, reservations, bus, logger)
		reminders.Start()
		defer reminders.Stop()
	}

	sched := scheduler.New(logger)
	if err := scheduleJobs(sched, cfg, db, memSessions, &logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule jobs")
	}
	sched.Start()
	defer sched.Stop()

	metrics.Register()
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, store, rdb, &logger)
	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	handler := api.NewHTTPServer(api.Deps{
		Auth:          auth,
		Sessions:      sessions,
		Reservations:  reservations,
		Directory:     service.NewDirectory(store, logger),
		Finance:       service.NewFinance(store, bus, logger),
		Tickets:       service.NewTickets(store, bus, logger),
		Feed:          service.NewFeed(store, bus, logger),
		Notifications: notifications,
		Hub:           hub,
	}, api.Options{
		CookieName:     cfg.Session.CookieName,
		SecureCookie:   cfg.Session.SecureCookie,
		LoginPerMinute: cfg.Auth.LoginPerMinute,
		LoginBurst:     cfg.Auth.LoginBurst,
	}, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handler.Handler(),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Str("address", cfg.Server.Address).Str("driver", cfg.Database.Driver).Msg("CondoFlow API started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("api server error")
	}
	logger.Info().Msg("CondoFlow API stopped")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Logging.Format == "json" {
		return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	}
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// openStore returns the configured backend. db is nil unless the SQLite
// driver is in use.
func openStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (repository.Store, *database.DB) {
	if cfg.Database.Driver != "sqlite" {
		if !cfg.Database.Seed {
			return repository.NewMemory(repository.Seed{Areas: repository.DefaultAreas()}), nil
		}
		return repository.NewSeededMemory(time.Now()), nil
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	if cfg.Database.Seed {
		seeded, err := db.SeedIfEmpty(ctx, repository.DemoSeed(time.Now()))
		if err != nil {
			logger.Fatal().Err(err).Msg("seed db error")
		}
		if seeded {
			logger.Info().Str("path", cfg.Database.Path).Msg("Database seeded with demo data")
		}
	}
	return db, db
}

func scheduleJobs(sched *scheduler.Scheduler, cfg *config.Config, db *database.DB, sessions *session.MemoryStore, logger *zerolog.Logger) error {
	err := sched.Add("sessions", "@every 10m", func(context.Context) error {
		if n := sessions.Cleanup(); n > 0 {
			logger.Debug().Int("removed", n).Msg("Expired sessions removed")
		}
		return nil
	})
	if err != nil {
		return err
	}

	// backups and archives read the SQLite file
	if db == nil {
		return nil
	}
	if cfg.Backup.Enabled {
		backups := database.NewBackupService(db, cfg.Backup, logger)
		if err := sched.Add("backup", cfg.Backup.Schedule, backups.Run); err != nil {
			return err
		}
	}
	if cfg.Export.Enabled {
		archiver := audit.NewArchiver(db, cfg.Export.Path, *logger)
		err := sched.Add("archive", cfg.Export.Schedule, func(ctx context.Context) error {
			_, err := archiver.Run(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func startHealthServer(ctx context.Context, port int, store repository.Store, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := store.PingContext(ctxPing); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

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

	"github.com/google/uuid"

	"github.com/example/meeting-service/internal/application"
	"github.com/example/meeting-service/internal/config"
	httptransport "github.com/example/meeting-service/internal/http"
	"github.com/example/meeting-service/internal/notify"
	"github.com/example/meeting-service/internal/persistence/sqlite"
	"github.com/example/meeting-service/internal/recurrence"
	"github.com/example/meeting-service/internal/reminder"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.RedisAddr != "" {
		redisNotifier := notify.NewRedisNotifier(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.EventNamespace, logger)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisNotifier.Ping(pingCtx); err != nil {
			cancel()
			logger.Error("failed to reach redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		cancel()
		defer func() {
			if cerr := redisNotifier.Close(); cerr != nil {
				logger.Error("failed to close redis connection", "error", cerr)
			}
		}()
		notifier = redisNotifier
	} else {
		logger.Info("no redis address configured, event publishing disabled")
	}

	idGenerator := uuid.NewString
	now := time.Now

	meetingRepo := sqlite.NewMeetingRepository(pool)
	taskRepo := sqlite.NewTaskRepository(pool)
	recurrenceRepo := sqlite.NewRecurrenceRepository(pool)
	userRepo := sqlite.NewUserRepository(pool)

	engine := recurrence.NewEngine(nil)

	meetingService := application.NewMeetingService(meetingRepo, taskRepo, recurrenceRepo, userRepo, engine, notifier, idGenerator, now, logger)
	taskService := application.NewTaskService(taskRepo, meetingRepo, userRepo, idGenerator, now, logger)
	recurrenceService := application.NewRecurrenceService(recurrenceRepo, idGenerator, now, logger)
	userService := application.NewUserService(userRepo, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Meetings:    httptransport.NewMeetingHandler(meetingService, logger),
		Tasks:       httptransport.NewTaskHandler(taskService, logger),
		Recurrences: httptransport.NewRecurrenceHandler(recurrenceService, logger),
		Users:       httptransport.NewUserHandler(userService, meetingService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RequireIdentity(logger),
		},
	})

	sweeper := reminder.NewSweeper(meetingRepo, notifier, cfg.ReminderLead, now, logger)
	if err := sweeper.Start(cfg.ReminderSchedule); err != nil {
		logger.Error("failed to start reminder sweeper", "error", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sweeper.Stop(stopCtx); err != nil {
			logger.Error("failed to stop reminder sweeper", "error", err)
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("meeting API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"planetary_hour_notifier/internal/app"
	"planetary_hour_notifier/internal/domain/alert"
	"planetary_hour_notifier/internal/domain/audio"
	"planetary_hour_notifier/internal/domain/planetary"
	infraAudio "planetary_hour_notifier/internal/infra/audio"
	"planetary_hour_notifier/internal/infra/config"
	idb "planetary_hour_notifier/internal/infra/database"
	"planetary_hour_notifier/internal/infra/foreground"
	"planetary_hour_notifier/internal/infra/httpserver"
	"planetary_hour_notifier/internal/infra/logger"
	"planetary_hour_notifier/internal/infra/memory"
	"planetary_hour_notifier/internal/infra/scheduler"
	"planetary_hour_notifier/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

// staticPrefix is where the asset directory is mounted on the HTTP server.
const staticPrefix = "/static"

const shutdownTimeout = 10 * time.Second

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the background worker, the HTTP server and the Telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("could not load application configuration: %w", err)
			}
			logger.Init(cfg)
			return run(cmd.Context(), cfg)
		},
	}
}

func run(parent context.Context, cfg *config.AppConfig) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"policy":      cfg.HourPolicy,
		"period":      cfg.HourPeriod.String(),
		"wake_spec":   cfg.WakeSpec,
	}).Info("Planetary hour notifier starting...")

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clock, err := planetary.NewHourClock(cfg.HourPolicy, cfg.HourPeriod, loc)
	if err != nil {
		return err
	}

	// Alert state: Postgres when configured, memory otherwise.
	var state alert.StateRepository = memory.NewAlertStateRepository()
	var messages alert.MessageRepository = memory.NewMessageRepository()
	if cfg.DatabaseURL != "" {
		if err := idb.RunMigrations(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
			return fmt.Errorf("could not migrate database: %w", err)
		}
		db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("could not connect to database: %w", err)
		}
		defer db.Close()
		state = idb.NewPostgresAlertStateRepository(db, cfg.WakeTag)
		messages = idb.NewPostgresMessageRepository(db)
		mainLogger.Info("Database connection established, alert state is persistent")
	} else {
		mainLogger.Warn("DATABASE_URL not set, alert state is kept in memory")
	}

	permissions := app.NewPermissionTracker(cfg.PermissionDeniedThreshold)
	hub := foreground.NewHub(foreground.WarningFunc(permissions.Warning), cfg.WSOrigins, logger.Component("foreground"))

	// Alert surface: Telegram when configured, log otherwise.
	var surface app.AlertSurface = app.NewLogSurface(logger.Component("alerts"))
	var bot *telebot.Bot
	if cfg.TelegramToken != "" {
		botLogger := logger.Component("telebot")
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				entry := botLogger.WithError(err)
				if c != nil && c.Chat() != nil {
					entry = entry.WithField("chat_id", c.Chat().ID)
				}
				entry.Error("Telegram handler error")
			},
		})
		if err != nil {
			return fmt.Errorf("could not create Telegram bot: %w", err)
		}
		surface = telegram.NewAlertSurface(
			telegram.NewTelebotAdapter(bot, cfg.TelegramRateLimit),
			messages,
			cfg.TelegramChatID,
			logger.Component("telegram"),
		)
	} else {
		mainLogger.Warn("TELEGRAM_TOKEN not set, alerts are only logged")
	}

	sink := app.NewNotificationSink(surface, app.SinkOptions{
		Icon:     cfg.IconPath,
		Renotify: cfg.NotifyRenotify,
		PerSlot:  cfg.NotifyTagIncludesSlot,
	})

	assets := afero.NewBasePathFs(afero.NewOsFs(), cfg.AssetDir)
	player := infraAudio.NewCommandPlayer(cfg.AudioPlayer)
	if !player.Available() {
		mainLogger.Info("No background audio player available, audio needs a connected foreground context")
	}
	delivery := app.NewAudioDelivery(
		hub,
		audio.PathResolver{BaseURL: cfg.AssetBaseURL},
		infraAudio.NewAssetFetcher(assets, staticPrefix),
		infraAudio.WavDecoder{},
		player,
		logger.Component("audio"),
	)

	service := app.NewHourAlertService(clock, state, sink, delivery, permissions, logger.Component("alerts"))

	trigger, err := scheduler.NewCronTrigger(cfg.WakeSpec, loc, logger.Component("cron"))
	if err != nil {
		return err
	}
	hourScheduler := scheduler.NewHourScheduler(trigger, service, cfg.WakeTag, logger.Component("scheduler"))
	if err := hourScheduler.Arm(); err != nil {
		return fmt.Errorf("could not arm scheduler: %w", err)
	}
	// Catch up right away instead of waiting for the first wake-up.
	hourScheduler.Tick(time.Now())

	if bot != nil {
		telegram.RegisterBotCommands(ctx, bot, service, logger.Component("telegram"))
		go bot.Start()
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpserver.NewRouter(httpserver.Deps{
			Foreground: hub,
			Contexts:   hub.Len,
			Status:     service,
			Scheduler:  hourScheduler,
			Assets:     assets,
			Logger:     logger.Component("http"),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		mainLogger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	mainLogger.Info("Application setup complete")

	var runErr error
	select {
	case <-ctx.Done():
		mainLogger.Info("Shutdown signal received")
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}

	mainLogger.Info("Shutting down application...")
	hourScheduler.Stop()
	if bot != nil {
		bot.Stop()
	}
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	delivery.Wait()

	mainLogger.Info("Application shut down gracefully.")
	return runErr
}

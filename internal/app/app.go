package app

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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"leadbot/internal/bot"
	"leadbot/internal/config"
	"leadbot/internal/form"
	"leadbot/internal/i18n"
	"leadbot/internal/logging"
	"leadbot/internal/metrics"
	"leadbot/internal/models"
	"leadbot/internal/sink"
	"leadbot/internal/storage"
)

// App represents the application
type App struct {
	config   *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	rows     storage.RowStore
	sessions storage.SessionStore
	bot      *bot.Bot
	updates  *bot.Dispatcher
	sweeper  *cron.Cron
	server   *http.Server

	stopPolling context.CancelFunc
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	envErr := godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := cfg.ZapLevel()
	if err != nil {
		return nil, err
	}
	logger := logging.New(level, cfg.LogFile)
	if envErr != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &App{
		config:   cfg,
		logger:   logger,
		registry: registry,
		metrics:  metrics.New(registry),
	}

	logger.Info("Starting lead bot...", zap.String("mode", cfg.Mode()), zap.String("store", cfg.StoreBackend))

	ctx := context.Background()
	if err := a.initStores(ctx); err != nil {
		a.closeStores()
		return nil, err
	}

	if err := a.initBot(); err != nil {
		a.closeStores()
		return nil, err
	}

	if err := a.initSweeper(); err != nil {
		a.closeStores()
		return nil, err
	}

	a.initHTTPServer()
	return a, nil
}

// initBot builds the form, the sink and the Telegram bot around them
func (a *App) initBot() error {
	table := i18n.New()
	if a.config.LocaleFile != "" {
		if err := table.LoadFile(a.config.LocaleFile); err != nil {
			return err
		}
		a.logger.Info("Locale overrides loaded", zap.String("file", a.config.LocaleFile))
	}

	groupLanguage := models.Language(a.config.GroupLanguage)
	if !table.Supports(groupLanguage) {
		return fmt.Errorf("GROUP_LANGUAGE %q has no texts", a.config.GroupLanguage)
	}

	fields := form.DefaultFields(form.Options{
		AskEmail:    a.config.Form.AskEmail,
		Confirm:     a.config.Form.Confirm,
		AllowBack:   a.config.Form.AllowBack,
		CountryCode: a.config.Form.PhoneCountryCode,
	})

	names := form.FieldNames(fields)
	columns := a.config.SheetColumns
	if len(columns) == 0 {
		columns = sink.DefaultColumns(names)
	}
	if err := sink.ValidateColumns(columns, names); err != nil {
		return fmt.Errorf("invalid SHEET_COLUMNS: %w", err)
	}

	client, err := bot.NewClient(a.config.TelegramToken, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	leads := sink.New(bot.NewGateway(client), a.rows, table, sink.Config{
		GroupChatID:   a.config.GroupChatID,
		GroupLanguage: groupLanguage,
		Columns:       columns,
	}, a.metrics, a.logger)

	engine := form.NewEngine(fields, table, a.sessions, leads, a.metrics, a.logger)
	a.bot = bot.NewBot(client, engine, table, a.metrics, a.logger)
	a.updates = bot.NewDispatcher(a.bot.HandleUpdate)

	a.logger.Info("Bot created successfully",
		zap.Strings("fields", names),
		zap.Strings("columns", columns),
		zap.Int64("group_chat_id", a.config.GroupChatID),
	)
	return nil
}

// initSweeper schedules idle-session eviction for stores without native expiry
func (a *App) initSweeper() error {
	evicter, ok := a.sessions.(storage.Evicter)
	if !ok {
		return nil
	}

	a.sweeper = cron.New()
	_, err := a.sweeper.AddFunc(a.config.Session.SweepSchedule, func() {
		if n := evicter.EvictIdle(time.Now()); n > 0 {
			a.metrics.SessionsEvicted(n)
			a.logger.Info("Evicted idle sessions", zap.Int("count", n))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	return nil
}

// initHTTPServer initializes the HTTP server for health checks, metrics and webhook
func (a *App) initHTTPServer() {
	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      newRouter(a.config.Mode(), a.config.WebhookPath, a.updates, a.registry, a.logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("port", a.config.Port))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if a.sweeper != nil {
		a.sweeper.Start()
	}

	if a.config.WebhookMode {
		if err := a.bot.StartWebhook(a.config.WebhookURL); err != nil {
			_ = a.Shutdown()
			return fmt.Errorf("failed to setup webhook: %w", err)
		}
		a.logger.Info("Webhook configured", zap.String("path", a.config.WebhookPath))
	} else {
		ctx, cancel := context.WithCancel(context.Background())
		a.stopPolling = cancel
		go func() {
			if err := a.bot.Start(ctx); err != nil {
				a.logger.Error("Polling stopped with error", zap.Error(err))
			}
		}()
	}

	var runErr error
	select {
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case runErr = <-serverErr:
		a.logger.Error("HTTP server error", zap.Error(runErr))
	}

	a.logger.Info("Shutting down...")
	return multierr.Append(runErr, a.Shutdown())
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	if a.stopPolling != nil {
		a.stopPolling()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	if serr := a.server.Shutdown(shutdownCtx); serr != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(serr))
		err = multierr.Append(err, serr)
	}

	if werr := a.updates.Wait(shutdownCtx); werr != nil {
		a.logger.Warn("Webhook updates still in flight at shutdown", zap.Error(werr))
	}

	if a.sweeper != nil {
		<-a.sweeper.Stop().Done()
	}

	err = multierr.Append(err, a.closeStores())

	a.logger.Info("Shutdown complete")
	_ = a.logger.Sync()
	return err
}

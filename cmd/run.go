package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/instrumentation"
	"github.com/teemow/flowspace/internal/logging"
	"github.com/teemow/flowspace/internal/server"
	"github.com/teemow/flowspace/internal/tasks"
	"github.com/teemow/flowspace/internal/triggers"
)

const (
	defaultConfigPath = "flowspace.toml"
	defaultHealthAddr = ":8080"

	healthShutdownTimeout = 10 * time.Second
)

func newRunCmd() *cobra.Command {
	var (
		configPath     string
		debugMode      bool
		logFormat      string
		healthAddr     string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the trigger runner",
		Long: `Start the flowspace trigger runner.

Triggers are loaded from a TOML configuration file. Each trigger polls a
Google Workspace service (Calendar, Drive, Gmail or Sheets) and runs its
configured task steps for every new event. Delivery is at least once: a
failed step keeps the event queued for the next poll.

Accounts referenced by triggers must be authorized first with
'flowspace auth'.

A .env file in the working directory is loaded into the environment
before anything else, which is the easiest way to provide
GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Env vars may carry OAuth credentials and instrumentation
			// settings, so load .env before reading any of them.
			_ = godotenv.Load()

			if !cmd.Flags().Changed("config") {
				if path := os.Getenv("FLOWSPACE_CONFIG"); path != "" {
					configPath = path
				}
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					metricsAddr = addr
				}
			}
			if !cmd.Flags().Changed("health-addr") {
				if addr := os.Getenv("HEALTH_ADDR"); addr != "" {
					healthAddr = addr
				}
			}

			return runTriggers(configPath, debugMode, logFormat, healthAddr, metricsEnabled, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", defaultConfigPath, "Path to the TOML trigger configuration. Can also use FLOWSPACE_CONFIG env var.")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&logFormat, "log-format", "json", "Log format: json or text")
	cmd.Flags().StringVar(&healthAddr, "health-addr", defaultHealthAddr, "Health endpoint address. Can also use HEALTH_ADDR env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runTriggers(configPath string, debugMode bool, logFormat, healthAddr string, metricsEnabled bool, metricsAddr string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(debugMode, logFormat)
	slog.SetDefault(logger)

	cfg, err := triggers.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if len(cfg.Triggers) == 0 {
		return fmt.Errorf("no triggers configured in %s", configPath)
	}

	// Instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// Metrics server
	var metricsServer *server.MetricsServer
	if metricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsAddr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
	}

	// Server context holding the per-account service clients
	serverContext, err := server.NewServerContext(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("server context shutdown failed", logging.Err(err))
		}
	}()

	if provider.Enabled() {
		serverContext.SetInstrumentation(provider.Metrics(),
			instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}

	// Task registry
	registry := engine.NewRegistry()
	if err := tasks.RegisterAll(registry, serverContext); err != nil {
		return err
	}

	// Trigger pollers
	manager := triggers.NewManager(logger)
	triggersByName := make(map[string]*triggers.TriggerConfig, len(cfg.Triggers))
	for i := range cfg.Triggers {
		t := &cfg.Triggers[i]
		triggersByName[t.Name] = t

		source, err := triggers.NewSource(t,
			serverContext.CalendarClientForAccount(t.Account),
			serverContext.DriveClientForAccount(t.Account),
			serverContext.GmailClientForAccount(t.Account))
		if err != nil {
			return fmt.Errorf("%w (authorize the account with 'flowspace auth %s')", err, t.Account)
		}

		opts := cfg.PollerOptionsFor(t)
		opts.Logger = logger
		if provider.Enabled() {
			opts.Metrics = provider.Metrics()
		}

		poller, err := triggers.NewPoller(source, opts)
		if err != nil {
			return fmt.Errorf("failed to create trigger %s: %w", t.Name, err)
		}
		if err := manager.Add(poller); err != nil {
			return err
		}
	}

	handler := newTriggerHandler(registry, triggersByName, logger)

	// Health endpoints
	healthChecker := server.NewHealthChecker(serverContext)
	healthChecker.SetTriggerHealth(manager.Health)

	mux := http.NewServeMux()
	healthChecker.RegisterHealthEndpoints(mux)
	healthServer := &http.Server{
		Addr:              healthAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", logging.Err(err))
		}
	}()

	if err := manager.StartAll(ctx, handler); err != nil {
		return fmt.Errorf("failed to start triggers: %w", err)
	}
	healthChecker.SetReady(true)
	logger.Info("flowspace started",
		slog.Int("triggers", manager.Len()),
		slog.Int("tasks", len(registry.Names())),
		slog.String("config", configPath))

	<-ctx.Done()
	logger.Info("shutdown signal received")
	healthChecker.SetReady(false)

	if err := manager.StopAll(); err != nil {
		logger.Error("trigger shutdown failed", logging.Err(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), healthShutdownTimeout)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server shutdown failed", logging.Err(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", logging.Err(err))
		}
	}

	logger.Info("flowspace stopped")
	return nil
}

// newTriggerHandler returns the handler that runs a trigger's configured
// task steps for every delivered event. The event payload is exposed to
// step input templates as trigger_* variables. A failing step aborts the
// remaining steps and the error propagates to the poller, which redelivers
// the event on the next poll.
func newTriggerHandler(registry *engine.Registry, triggersByName map[string]*triggers.TriggerConfig, logger *slog.Logger) triggers.Handler {
	return func(ctx context.Context, event *triggers.Event) error {
		cfg, ok := triggersByName[event.Trigger]
		if !ok {
			return fmt.Errorf("no configuration for trigger %s", event.Trigger)
		}

		ctx, span := instrumentation.StartTriggerSpan(ctx, event.Trigger,
			instrumentation.NewSpanAttributeBuilder().
				WithAccount(event.Account).
				Build()...)
		defer span.End()

		exec := engine.NewExecution(event.Trigger, event.Account, logger)
		exec.MergeOutput("trigger", event.Item.Variables)

		execLogger := exec.Logger().With(logging.Trigger(event.Trigger))
		for _, step := range cfg.Steps {
			if _, err := registry.Run(ctx, exec, step.Task, step.Input); err != nil {
				instrumentation.SetSpanError(span, err)
				execLogger.Error("step failed",
					logging.Task(step.Task),
					logging.Err(err))
				return fmt.Errorf("step %s failed: %w", step.Task, err)
			}
			execLogger.Debug("step completed", logging.Task(step.Task))
		}

		instrumentation.SetSpanSuccess(span)
		execLogger.Info("trigger handled",
			slog.String("item_id", event.Item.ID),
			slog.Int("steps", len(cfg.Steps)))
		return nil
	}
}

func newLogger(debugMode bool, format string) *slog.Logger {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/classifystack/drift-engine/internal/alerting"
	"github.com/classifystack/drift-engine/internal/cache"
	"github.com/classifystack/drift-engine/internal/config"
	"github.com/classifystack/drift-engine/internal/engine"
	"github.com/classifystack/drift-engine/internal/inferlog"
	"github.com/classifystack/drift-engine/internal/services"
	"github.com/classifystack/drift-engine/internal/store"
	"github.com/classifystack/drift-engine/internal/utils"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "drift-engine",
		Short:         "Drift detection and alerting for text classifier inference logs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")

	root.AddCommand(
		newServeCmd(),
		newCheckCmd(),
		newAlertsCmd(),
		newReportsCmd(),
		newActionsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runtime bundles the wired components shared by every subcommand.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Postgres
	service *services.DriftService
	closers []func()
}

func (r *runtime) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// newRuntime wires the service stack. requireDB controls whether a
// database failure is fatal: query commands need the store, while a
// one-off check can run without persistence.
func newRuntime(requireDB bool) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)

	rt := &runtime{cfg: cfg, logger: logger}

	pg, err := store.Open(cfg.Database, logger)
	if err != nil {
		if requireDB {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		logger.Warn("database unavailable, reports will not be persisted", slog.Any("error", err))
	} else {
		rt.store = pg
		rt.closers = append(rt.closers, func() { pg.Close() })
	}

	var cacheProvider cache.Provider = cache.NoopProvider{}
	if cfg.Cache.Enabled && cfg.Cache.Addr != "" {
		provider, err := cache.NewValkeyProvider(cache.ValkeyConfig{
			Addr:         cfg.Cache.Addr,
			Username:     cfg.Cache.Username,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
			TLS:          cfg.Cache.TLS,
		})
		if err != nil {
			logger.Warn("valkey cache unavailable", slog.Any("error", err))
		} else {
			cacheProvider = provider
			rt.closers = append(rt.closers, func() { provider.Close() })
		}
	}

	playbook, err := alerting.LoadPlaybook(cfg.Alerting.PlaybookPath)
	if err != nil {
		return nil, fmt.Errorf("load playbook: %w", err)
	}

	reader := inferlog.NewReader(cfg.Monitor.InferenceLogPath, logger)
	monitor := engine.NewMonitor(logger, reader, reportStoreOrNil(rt.store), engine.Config{
		ReferenceWindowDays:   cfg.Monitor.ReferenceWindowDays,
		CurrentWindowDays:     cfg.Monitor.CurrentWindowDays,
		MinSamplesForAnalysis: cfg.Monitor.MinSamplesForAnalysis,
		Bins:                  cfg.Monitor.Bins,
		Thresholds: engine.Thresholds{
			Warning:  cfg.Monitor.WarningThreshold,
			Alert:    cfg.Monitor.AlertThreshold,
			Critical: cfg.Monitor.CriticalThreshold,
		},
	})

	manager := alerting.NewManager(logger, alertStoreOrNil(rt.store), cacheProvider, cfg.Cache.QueryTTL, playbook)
	rt.service = services.NewDriftService(logger, monitor, manager)
	return rt, nil
}

// reportStoreOrNil avoids handing the monitor a typed nil interface.
func reportStoreOrNil(pg *store.Postgres) engine.ReportStore {
	if pg == nil {
		return nil
	}
	return pg
}

func alertStoreOrNil(pg *store.Postgres) alerting.Store {
	if pg == nil {
		return nil
	}
	return pg
}

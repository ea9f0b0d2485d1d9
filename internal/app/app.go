package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"toolcatalog/internal/app/catalog"
	"toolcatalog/internal/domain"
	"toolcatalog/internal/infra/catalog/store"
	"toolcatalog/internal/infra/config"
	"toolcatalog/internal/infra/httpapi"
	"toolcatalog/internal/infra/telemetry"
	"toolcatalog/internal/infra/transfer"
)

type App struct {
	logging Logging
	logger  *zap.Logger
}

type ServeConfig struct {
	ConfigPath string
}

type ValidateConfig struct {
	ConfigPath string
}

type ImportConfig struct {
	ConfigPath string
	SourcePath string
}

type ExportConfig struct {
	ConfigPath string
	Format     transfer.Format
	Output     io.Writer
	// OutputPath, when set and not "-", replaces Output with a file created
	// once the catalog has been read.
	OutputPath string
}

// ValidateReport summarizes a validated configuration and its catalog.
type ValidateReport struct {
	Config    domain.Config
	Records   int
	Published int
}

func New(logging Logging) *App {
	if logging.Logger == nil {
		logging = NewNopLogging()
	}
	return &App{
		logging: logging,
		logger:  logging.Logger.Named("app"),
	}
}

// Serve runs the API server, the observability server and the config watcher
// until ctx is canceled or one of them fails.
func (a *App) Serve(ctx context.Context, cfg ServeConfig) error {
	loader := config.NewLoader(a.logger)
	conf, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}
	a.logging.ApplyLevel(conf.Log.Level)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewPrometheusMetrics(registry)

	recordStore, err := store.Open(conf.Store, a.logger, metrics)
	if err != nil {
		return err
	}
	defer func() {
		if err := recordStore.Close(); err != nil {
			a.logger.Warn("close store failed", zap.Error(err))
		}
	}()

	service := catalog.NewService(recordStore, a.logger)
	a.logger.Info("configuration loaded",
		zap.String("config", cfg.ConfigPath),
		zap.String("backend", recordStore.Backend()),
		zap.Int("tools", len(service.Snapshot(ctx))),
	)

	router := httpapi.NewRouter(httpapi.RouterOptions{
		Service:      service,
		Logger:       a.logger,
		Metrics:      metrics,
		StaticDir:    conf.HTTP.StaticDir,
		AdminEnabled: conf.HTTP.AdminEnabled,
	})

	health := telemetry.NewHealthChecks()
	if pinger, ok := recordStore.(interface{ Ping(context.Context) error }); ok {
		health.Register("store", pinger.Ping)
	}

	watcher := NewConfigWatcher(cfg.ConfigPath, loader, conf, a.logger)
	watcher.OnReload(func(next domain.Config) {
		a.logging.ApplyLevel(next.Log.Level)
		if next.Store != conf.Store || next.HTTP != conf.HTTP || next.Observability != conf.Observability {
			a.logger.Warn("configuration change requires restart to take effect")
		}
	})

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return httpapi.Serve(groupCtx, conf.HTTP.ListenAddress, router, a.logger)
	})
	group.Go(func() error {
		return telemetry.StartHTTPServer(groupCtx, telemetry.HTTPServerOptions{
			Addr:          conf.Observability.ListenAddress,
			EnableMetrics: conf.Observability.MetricsEnabled,
			EnableHealthz: conf.Observability.HealthzEnabled,
			Health:        health,
			Registry:      registry,
		}, a.logger)
	})
	group.Go(func() error {
		return watcher.Run(groupCtx)
	})
	return group.Wait()
}

// ValidateConfig loads the configuration and reads the catalog once.
func (a *App) ValidateConfig(ctx context.Context, cfg ValidateConfig) (ValidateReport, error) {
	conf, err := config.NewLoader(a.logger).Load(ctx, cfg.ConfigPath)
	if err != nil {
		return ValidateReport{}, err
	}
	var report ValidateReport
	err = a.withService(conf, func(service *catalog.Service) error {
		tools := service.Snapshot(ctx)
		report = ValidateReport{Config: conf, Records: len(tools)}
		for _, tool := range tools {
			if tool.Published {
				report.Published++
			}
		}
		return nil
	})
	return report, err
}

// Import appends the records of a legacy file to the catalog.
func (a *App) Import(ctx context.Context, cfg ImportConfig) ([]domain.Tool, error) {
	conf, err := config.NewLoader(a.logger).Load(ctx, cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	source, err := transfer.ReadFile(cfg.SourcePath)
	if err != nil {
		return nil, err
	}
	for _, issue := range source.Issues {
		a.logger.Warn("skipped import entry",
			zap.Int("index", issue.Index),
			zap.String("kind", issue.Kind),
			zap.String("message", issue.Message),
		)
	}

	var created []domain.Tool
	err = a.withService(conf, func(service *catalog.Service) error {
		tools, importErr := service.Import(ctx, source.Records)
		created = tools
		return importErr
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("import finished",
		telemetry.EventField(telemetry.EventImport),
		zap.String("source", cfg.SourcePath),
		zap.Int("imported", len(created)),
		zap.Int("skipped", len(source.Issues)),
	)
	return created, nil
}

// Export writes every tool, published or not, to cfg.Output.
func (a *App) Export(ctx context.Context, cfg ExportConfig) error {
	conf, err := config.NewLoader(a.logger).Load(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}
	return a.withService(conf, func(service *catalog.Service) error {
		tools, err := service.List(ctx, catalog.ListOptions{Visibility: domain.VisibilityAdmin})
		if err != nil {
			return err
		}
		out := cfg.Output
		if cfg.OutputPath != "" && cfg.OutputPath != "-" {
			file, err := os.Create(cfg.OutputPath)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer file.Close()
			out = file
		}
		if err := transfer.WriteTools(out, tools, cfg.Format); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		a.logger.Debug("export finished", telemetry.EventField(telemetry.EventExport), zap.Int("tools", len(tools)))
		return nil
	})
}

func (a *App) withService(conf domain.Config, fn func(*catalog.Service) error) error {
	recordStore, err := store.Open(conf.Store, a.logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := recordStore.Close(); err != nil {
			a.logger.Warn("close store failed", zap.Error(err))
		}
	}()
	return fn(catalog.NewService(recordStore, a.logger))
}

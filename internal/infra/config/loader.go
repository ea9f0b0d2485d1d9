// Package config loads the catalog service configuration from YAML.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"toolcatalog/internal/domain"
)

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("config")}
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", domain.DefaultStoreBackend)
	v.SetDefault("store.path", "")
	v.SetDefault("store.lockPath", "")
	v.SetDefault("store.lockRetryMillis", domain.DefaultLockRetryMillis)
	v.SetDefault("http.listenAddress", domain.DefaultHTTPListenAddress)
	v.SetDefault("http.staticDir", "")
	v.SetDefault("http.adminEnabled", domain.DefaultHTTPAdminEnabled)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddress)
	v.SetDefault("observability.metricsEnabled", domain.DefaultMetricsEnabled)
	v.SetDefault("observability.healthzEnabled", domain.DefaultHealthzEnabled)
	v.SetDefault("log.level", domain.DefaultLogLevel)
}

type rawConfig struct {
	Store         rawStoreConfig         `mapstructure:"store"`
	HTTP          rawHTTPConfig          `mapstructure:"http"`
	Observability rawObservabilityConfig `mapstructure:"observability"`
	Log           rawLogConfig           `mapstructure:"log"`
}

type rawStoreConfig struct {
	Backend         string `mapstructure:"backend"`
	Path            string `mapstructure:"path"`
	LockPath        string `mapstructure:"lockPath"`
	LockRetryMillis int    `mapstructure:"lockRetryMillis"`
}

type rawHTTPConfig struct {
	ListenAddress string `mapstructure:"listenAddress"`
	StaticDir     string `mapstructure:"staticDir"`
	AdminEnabled  bool   `mapstructure:"adminEnabled"`
}

type rawObservabilityConfig struct {
	ListenAddress  string `mapstructure:"listenAddress"`
	MetricsEnabled bool   `mapstructure:"metricsEnabled"`
	HealthzEnabled bool   `mapstructure:"healthzEnabled"`
}

type rawLogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads path and returns the normalized configuration. A missing file
// yields the defaults.
func (l *Loader) Load(ctx context.Context, path string) (domain.Config, error) {
	if strings.TrimSpace(path) == "" {
		return domain.Config{}, errors.New("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return domain.Config{}, fmt.Errorf("read config: %w", err)
		}
		l.logger.Info("config file not found, using defaults", zap.String("path", path))
		data = nil
	}
	return l.Parse(ctx, data, path)
}

// Parse decodes raw YAML. source only labels log lines.
func (l *Loader) Parse(ctx context.Context, data []byte, source string) (domain.Config, error) {
	v := newConfigViper()
	if len(bytes.TrimSpace(data)) > 0 {
		doc, missing, err := expandEnv(data)
		if err != nil {
			return domain.Config{}, err
		}
		for _, m := range missing {
			l.logger.Warn("missing environment variable in config",
				zap.String("path", source),
				zap.String("key", m.Key),
				zap.String("variable", m.Var),
			)
		}
		if err := v.MergeConfigMap(doc); err != nil {
			return domain.Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return domain.Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return domain.Config{}, err
	}

	cfg, errs := normalizeConfig(raw)
	if len(errs) > 0 {
		return domain.Config{}, errors.New(strings.Join(errs, "; "))
	}
	return cfg, nil
}

func normalizeConfig(raw rawConfig) (domain.Config, []string) {
	var errs []string

	backend := strings.ToLower(strings.TrimSpace(raw.Store.Backend))
	if backend == "" {
		backend = domain.DefaultStoreBackend
	}
	path := strings.TrimSpace(raw.Store.Path)
	switch backend {
	case domain.StoreBackendFile:
		if path == "" {
			path = domain.DefaultStorePath
		}
	case domain.StoreBackendBolt:
		if path == "" {
			path = domain.DefaultBoltStorePath
		}
	default:
		errs = append(errs, fmt.Sprintf("store.backend must be %q or %q, got %q", domain.StoreBackendFile, domain.StoreBackendBolt, raw.Store.Backend))
	}

	lockRetry := raw.Store.LockRetryMillis
	if lockRetry < 0 {
		errs = append(errs, "store.lockRetryMillis must be >= 0")
	}
	if lockRetry == 0 {
		lockRetry = domain.DefaultLockRetryMillis
	}

	level := strings.ToLower(strings.TrimSpace(raw.Log.Level))
	if level == "" {
		level = domain.DefaultLogLevel
	}
	if _, err := zapcore.ParseLevel(level); err != nil {
		errs = append(errs, fmt.Sprintf("log.level: %v", err))
	}

	httpAddr := strings.TrimSpace(raw.HTTP.ListenAddress)
	if httpAddr == "" {
		httpAddr = domain.DefaultHTTPListenAddress
	}
	obsAddr := strings.TrimSpace(raw.Observability.ListenAddress)
	if obsAddr == "" {
		obsAddr = domain.DefaultObservabilityListenAddress
	}

	return domain.Config{
		Store: domain.StoreConfig{
			Backend:         backend,
			Path:            path,
			LockPath:        strings.TrimSpace(raw.Store.LockPath),
			LockRetryMillis: lockRetry,
		},
		HTTP: domain.HTTPConfig{
			ListenAddress: httpAddr,
			StaticDir:     strings.TrimSpace(raw.HTTP.StaticDir),
			AdminEnabled:  raw.HTTP.AdminEnabled,
		},
		Observability: domain.ObservabilityConfig{
			ListenAddress:  obsAddr,
			MetricsEnabled: raw.Observability.MetricsEnabled,
			HealthzEnabled: raw.Observability.HealthzEnabled,
		},
		Log: domain.LogConfig{Level: level},
	}, errs
}

// ParseLevel maps a configured level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	return zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
}

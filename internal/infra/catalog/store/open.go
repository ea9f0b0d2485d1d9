package store

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"toolcatalog/internal/domain"
)

// Open builds the record store selected by cfg.Backend.
func Open(cfg domain.StoreConfig, logger *zap.Logger, metrics domain.Metrics) (domain.RecordStore, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = domain.DefaultStoreBackend
	}
	switch backend {
	case domain.StoreBackendFile:
		path := cfg.Path
		if strings.TrimSpace(path) == "" {
			path = domain.DefaultStorePath
		}
		return NewFileStore(path, FileStoreOptions{
			LockPath:  cfg.LockPath,
			LockRetry: time.Duration(cfg.LockRetryMillis) * time.Millisecond,
			Logger:    logger,
			Metrics:   metrics,
		})
	case domain.StoreBackendBolt:
		path := cfg.Path
		if strings.TrimSpace(path) == "" {
			path = domain.DefaultBoltStorePath
		}
		return OpenBoltStore(path, BoltStoreOptions{
			Logger:  logger,
			Metrics: metrics,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"toolcatalog/internal/domain"
)

var toolsBucket = []byte("tools")

type BoltStoreOptions struct {
	OpenTimeout time.Duration
	Logger      *zap.Logger
	Metrics     domain.Metrics
}

// BoltStore keeps the catalog in a bbolt database, one JSON value per record
// keyed by its position. bbolt serializes writers and locks the database file
// for the lifetime of the handle.
type BoltStore struct {
	mu      sync.RWMutex
	db      *bolt.DB
	path    string
	closed  bool
	logger  *zap.Logger
	metrics domain.Metrics
}

type abortedTx struct {
	err error
}

func (a abortedTx) Error() string { return a.err.Error() }
func (a abortedTx) Unwrap() error { return a.err }

func OpenBoltStore(path string, opts BoltStoreOptions) (*BoltStore, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), dirMode); err != nil {
		return nil, fmt.Errorf("ensure store dir: %w", err)
	}
	timeout := opts.OpenTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	db, err := bolt.Open(trimmed, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(toolsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure tools bucket: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NoopMetrics{}
	}
	return &BoltStore{
		db:      db,
		path:    trimmed,
		logger:  logger.Named("catalog_store").With(zap.String("backend", domain.StoreBackendBolt), zap.String("path", trimmed)),
		metrics: metrics,
	}, nil
}

func (s *BoltStore) Backend() string {
	return domain.StoreBackendBolt
}

func (s *BoltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *BoltStore) ReadAll(ctx context.Context) []domain.RawRecord {
	var records []domain.RawRecord
	skipped := 0
	err := s.view(func(tx *bolt.Tx) error {
		var err error
		records, skipped, err = readBucket(tx.Bucket(toolsBucket))
		return err
	})
	if err != nil {
		s.logger.Warn("catalog unreadable, serving empty collection", zap.Error(err))
		s.metrics.ObserveReadFault(domain.StoreBackendBolt, domain.ReadFaultIO)
		return []domain.RawRecord{}
	}
	if skipped > 0 {
		s.logger.Warn("skipped undecodable catalog entries", zap.Int("skipped", skipped))
		s.metrics.ObserveReadFault(domain.StoreBackendBolt, domain.ReadFaultDecode)
	}
	s.metrics.SetRecords(domain.StoreBackendBolt, len(records))
	return records
}

// Transact runs fn inside a single bbolt write transaction. fn must not call
// back into the store.
func (s *BoltStore) Transact(ctx context.Context, fn domain.TransactFunc) error {
	start := time.Now()
	op := domain.OperationFromContext(ctx)
	status := domain.TransactionFailed
	defer func() {
		s.metrics.ObserveTransaction(domain.TransactionMetric{
			Backend:  domain.StoreBackendBolt,
			Op:       op,
			Status:   status,
			Duration: time.Since(start),
		})
	}()

	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return domain.Wrap(domain.CodeCanceled, "store.lock", err)
		}
	}

	count := 0
	err := s.update(func(tx *bolt.Tx) error {
		records, skipped, err := readBucket(tx.Bucket(toolsBucket))
		if err != nil {
			return err
		}
		if skipped > 0 {
			s.logger.Warn("skipped undecodable catalog entries", zap.Int("skipped", skipped))
		}
		tools, err := fn(records)
		if err != nil {
			return abortedTx{err: err}
		}
		if err := tx.DeleteBucket(toolsBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return fmt.Errorf("clear tools bucket: %w", err)
		}
		bucket, err := tx.CreateBucket(toolsBucket)
		if err != nil {
			return fmt.Errorf("create tools bucket: %w", err)
		}
		for i, tool := range tools {
			if tool.Tags == nil {
				tool.Tags = []string{}
			}
			if tool.Features == nil {
				tool.Features = []string{}
			}
			value, err := json.Marshal(tool)
			if err != nil {
				return fmt.Errorf("encode tool %d: %w", tool.ID, err)
			}
			if err := bucket.Put(positionKey(i), value); err != nil {
				return fmt.Errorf("write tool %d: %w", tool.ID, err)
			}
		}
		count = len(tools)
		return nil
	})

	var aborted abortedTx
	switch {
	case err == nil:
		status = domain.TransactionCommitted
		s.metrics.SetRecords(domain.StoreBackendBolt, count)
		return nil
	case errors.As(err, &aborted):
		status = domain.TransactionAborted
		return aborted.err
	case errors.Is(err, domain.ErrStoreClosed):
		return domain.Wrap(domain.CodeUnavailable, "store.write", err)
	default:
		s.logger.Error("catalog write failed", zap.String("op", op), zap.Error(err))
		return domain.E(domain.CodeInternal, "store.write", "failed to persist catalog", err)
	}
}

// Ping fails once the store is closed or the database cannot be read.
func (s *BoltStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.view(func(tx *bolt.Tx) error {
		if tx.Bucket(toolsBucket) == nil {
			return errors.New("tools bucket missing")
		}
		return nil
	})
}

func (s *BoltStore) view(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	return s.db.View(fn)
}

func (s *BoltStore) update(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	return s.db.Update(fn)
}

func readBucket(bucket *bolt.Bucket) ([]domain.RawRecord, int, error) {
	if bucket == nil {
		return []domain.RawRecord{}, 0, nil
	}
	records := make([]domain.RawRecord, 0)
	skipped := 0
	err := bucket.ForEach(func(_, value []byte) error {
		if value == nil {
			return nil
		}
		var record map[string]any
		if err := json.Unmarshal(value, &record); err != nil || record == nil {
			skipped++
			return nil
		}
		records = append(records, record)
		return nil
	})
	return records, skipped, err
}

func positionKey(i int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(i))
	return key
}

var _ domain.RecordStore = (*BoltStore)(nil)

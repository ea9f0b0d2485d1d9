package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"toolcatalog/internal/domain"
)

const (
	fileMode = 0o644
	dirMode  = 0o755
)

type FileStoreOptions struct {
	// LockPath defaults to the store path plus ".lock".
	LockPath  string
	LockRetry time.Duration
	// Locker overrides the file lock, e.g. with a MemoryLocker in tests.
	Locker  domain.Locker
	Logger  *zap.Logger
	Metrics domain.Metrics
}

// FileStore keeps the catalog in one JSON array file. Writes replace the file
// atomically through a temp file and rename while holding the write lock.
type FileStore struct {
	path    string
	locker  domain.Locker
	logger  *zap.Logger
	metrics domain.Metrics
	rename  func(oldpath, newpath string) error
}

func NewFileStore(path string, opts FileStoreOptions) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store path is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NoopMetrics{}
	}

	locker := opts.Locker
	if locker == nil {
		lockPath := strings.TrimSpace(opts.LockPath)
		if lockPath == "" {
			lockPath = path + domain.DefaultLockSuffix
		}
		shared, err := SharedFileLocker(lockPath, opts.LockRetry)
		if err != nil {
			return nil, err
		}
		locker = shared
	}

	return &FileStore{
		path:    path,
		locker:  locker,
		logger:  logger.Named("catalog_store").With(zap.String("backend", domain.StoreBackendFile), zap.String("path", path)),
		metrics: metrics,
		rename:  os.Rename,
	}, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Backend() string {
	return domain.StoreBackendFile
}

func (s *FileStore) Close() error {
	return nil
}

// Ping fails when the catalog file exists but cannot be inspected. A missing
// file is healthy; the first write creates it.
func (s *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat catalog: %w", err)
	}
	return nil
}

// ReadAll returns the raw records on disk. A missing file is an empty catalog;
// unreadable or malformed content is logged and also treated as empty.
func (s *FileStore) ReadAll(ctx context.Context) []domain.RawRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.RawRecord{}
		}
		s.readFault(domain.ReadFaultIO, err)
		return []domain.RawRecord{}
	}

	records, skipped, reason, err := decodeRecords(data)
	if err != nil {
		s.readFault(reason, err)
		return []domain.RawRecord{}
	}
	if skipped > 0 {
		s.logger.Warn("skipped non-object catalog entries", zap.Int("skipped", skipped))
	}
	s.metrics.SetRecords(domain.StoreBackendFile, len(records))
	return records
}

// Transact holds the write lock across read, fn and write. The lock is
// released on every path; fn errors abort without touching the file.
func (s *FileStore) Transact(ctx context.Context, fn domain.TransactFunc) (err error) {
	start := time.Now()
	op := domain.OperationFromContext(ctx)
	status := domain.TransactionFailed
	defer func() {
		s.metrics.ObserveTransaction(domain.TransactionMetric{
			Backend:  domain.StoreBackendFile,
			Op:       op,
			Status:   status,
			Duration: time.Since(start),
		})
	}()

	if err := s.locker.Lock(ctx); err != nil {
		if ctx != nil && ctx.Err() != nil {
			return domain.Wrap(domain.CodeCanceled, "store.lock", err)
		}
		return domain.Wrap(domain.CodeUnavailable, "store.lock", err)
	}
	defer func() {
		if unlockErr := s.locker.Unlock(); unlockErr != nil {
			s.logger.Error("release store lock failed", zap.Error(unlockErr))
			if err == nil {
				err = domain.Wrap(domain.CodeInternal, "store.unlock", unlockErr)
			}
		}
	}()

	records := s.ReadAll(ctx)
	tools, fnErr := fn(records)
	if fnErr != nil {
		status = domain.TransactionAborted
		return fnErr
	}

	if err := s.writeAll(tools); err != nil {
		s.logger.Error("catalog write failed", zap.String("op", op), zap.Error(err))
		return domain.E(domain.CodeInternal, "store.write", "failed to persist catalog", err)
	}
	status = domain.TransactionCommitted
	s.metrics.SetRecords(domain.StoreBackendFile, len(tools))
	s.logger.Debug("catalog committed", zap.String("op", op), zap.Int("records", len(tools)))
	return nil
}

func (s *FileStore) writeAll(tools []domain.Tool) error {
	data, err := encodeTools(tools)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("ensure store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, fileMode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := s.rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	committed = true

	if err := syncDir(dir); err != nil {
		s.logger.Warn("sync store dir failed", zap.Error(err))
	}
	return nil
}

func (s *FileStore) readFault(reason domain.ReadFaultReason, err error) {
	s.logger.Warn("catalog unreadable, serving empty collection",
		zap.String("reason", string(reason)),
		zap.Error(err),
	)
	s.metrics.ObserveReadFault(domain.StoreBackendFile, reason)
}

func decodeRecords(data []byte) ([]domain.RawRecord, int, domain.ReadFaultReason, error) {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, 0, domain.ReadFaultDecode, fmt.Errorf("decode catalog: %w", err)
	}
	items, ok := payload.([]any)
	if !ok {
		return nil, 0, domain.ReadFaultShape, fmt.Errorf("catalog must be a JSON array, got %T", payload)
	}
	records := make([]domain.RawRecord, 0, len(items))
	skipped := 0
	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			skipped++
			continue
		}
		records = append(records, record)
	}
	return records, skipped, "", nil
}

func encodeTools(tools []domain.Tool) ([]byte, error) {
	out := make([]domain.Tool, 0, len(tools))
	for _, tool := range tools {
		if tool.Tags == nil {
			tool.Tags = []string{}
		}
		if tool.Features == nil {
			tool.Features = []string{}
		}
		out = append(out, tool)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return append(data, '\n'), nil
}

func syncDir(dir string) error {
	handle, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer handle.Close()
	return handle.Sync()
}

var _ domain.RecordStore = (*FileStore)(nil)

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"toolcatalog/internal/domain"
)

var errNotLocked = errors.New("lock is not held")

// FileLocker serializes writers inside the process with a one-slot semaphore
// and across processes with an exclusive flock on the lock file.
type FileLocker struct {
	path  string
	retry time.Duration
	sem   chan struct{}
	file  *flock.Flock
}

var (
	fileLockersMu sync.Mutex
	fileLockers   = make(map[string]*FileLocker)
)

// SharedFileLocker returns the process-wide locker for path.
func SharedFileLocker(path string, retry time.Duration) (*FileLocker, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve lock path: %w", err)
	}
	fileLockersMu.Lock()
	defer fileLockersMu.Unlock()
	if locker, ok := fileLockers[abs]; ok {
		return locker, nil
	}
	locker := NewFileLocker(abs, retry)
	fileLockers[abs] = locker
	return locker, nil
}

// NewFileLocker builds a locker for path. Prefer SharedFileLocker so every
// store in the process agrees on one semaphore per lock file.
func NewFileLocker(path string, retry time.Duration) *FileLocker {
	if retry <= 0 {
		retry = domain.DefaultLockRetryMillis * time.Millisecond
	}
	return &FileLocker{
		path:  path,
		retry: retry,
		sem:   make(chan struct{}, 1),
		file:  flock.New(path),
	}
}

func (l *FileLocker) Path() string {
	return l.path
}

func (l *FileLocker) Lock(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		<-l.sem
		return fmt.Errorf("ensure lock dir: %w", err)
	}
	locked, err := l.file.TryLockContext(ctx, l.retry)
	if err != nil || !locked {
		<-l.sem
		if err == nil {
			err = ctx.Err()
		}
		if err == nil {
			err = errors.New("lock not acquired")
		}
		return fmt.Errorf("acquire file lock %s: %w", l.path, err)
	}
	return nil
}

// Unlock drops the flock before freeing the slot, so the next holder always
// takes a fresh flock on the shared handle.
func (l *FileLocker) Unlock() error {
	if len(l.sem) == 0 {
		return errNotLocked
	}
	err := l.file.Unlock()
	<-l.sem
	if err != nil {
		return fmt.Errorf("release file lock %s: %w", l.path, err)
	}
	return nil
}

// MemoryLocker is an in-process locker without filesystem semantics.
type MemoryLocker struct {
	sem      chan struct{}
	acquired atomic.Int64
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{sem: make(chan struct{}, 1)}
}

func (l *MemoryLocker) Lock(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case l.sem <- struct{}{}:
		l.acquired.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *MemoryLocker) Unlock() error {
	select {
	case <-l.sem:
		return nil
	default:
		return errNotLocked
	}
}

// Acquisitions reports how many times the lock was taken.
func (l *MemoryLocker) Acquisitions() int64 {
	return l.acquired.Load()
}

// Held reports whether the lock is currently taken.
func (l *MemoryLocker) Held() bool {
	return len(l.sem) == 1
}

var (
	_ domain.Locker = (*FileLocker)(nil)
	_ domain.Locker = (*MemoryLocker)(nil)
)

package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"toolcatalog/internal/domain"
	"toolcatalog/internal/infra/catalog/normalizer"
)

func openTestBoltStore(t *testing.T, path string) (*BoltStore, *recordingMetrics) {
	t.Helper()
	metrics := &recordingMetrics{}
	store, err := OpenBoltStore(path, BoltStoreOptions{Logger: zap.NewNop(), Metrics: metrics})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, metrics
}

func TestBoltStore_TransactAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.db")
	store, metrics := openTestBoltStore(t, path)

	require.Empty(t, store.ReadAll(context.Background()))
	require.NoError(t, store.Transact(context.Background(), appendTool("Alpha")))
	require.NoError(t, store.Transact(context.Background(), appendTool("Beta")))
	require.Equal(t, domain.TransactionCommitted, metrics.lastTransaction().Status)

	tools := normalizer.NormalizeTools(store.ReadAll(context.Background()))
	require.Len(t, tools, 2)
	require.Equal(t, "Alpha", tools[0].Name)
	require.Equal(t, 2, tools[1].ID)

	require.NoError(t, store.Close())
	reopened, _ := openTestBoltStore(t, path)
	tools = normalizer.NormalizeTools(reopened.ReadAll(context.Background()))
	require.Len(t, tools, 2)
	require.Equal(t, "Beta", tools[1].Name)
}

func TestBoltStore_PreservesOrderAfterDelete(t *testing.T) {
	store, _ := openTestBoltStore(t, filepath.Join(t.TempDir(), "tools.db"))
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, store.Transact(context.Background(), appendTool(name)))
	}

	require.NoError(t, store.Transact(context.Background(), func(records []domain.RawRecord) ([]domain.Tool, error) {
		tools := normalizer.NormalizeTools(records)
		return append(tools[:1], tools[2:]...), nil
	}))

	tools := normalizer.NormalizeTools(store.ReadAll(context.Background()))
	require.Len(t, tools, 2)
	require.Equal(t, []int{1, 3}, []int{tools[0].ID, tools[1].ID})
}

func TestBoltStore_AbortKeepsData(t *testing.T) {
	store, metrics := openTestBoltStore(t, filepath.Join(t.TempDir(), "tools.db"))
	require.NoError(t, store.Transact(context.Background(), appendTool("keep")))

	boom := errors.New("boom")
	err := store.Transact(context.Background(), func([]domain.RawRecord) ([]domain.Tool, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, domain.TransactionAborted, metrics.lastTransaction().Status)
	require.Len(t, store.ReadAll(context.Background()), 1)
}

func TestBoltStore_ConcurrentTransactions(t *testing.T) {
	store, _ := openTestBoltStore(t, filepath.Join(t.TempDir(), "tools.db"))

	const writers = 12
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Transact(context.Background(), appendTool("t"))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	tools := normalizer.NormalizeTools(store.ReadAll(context.Background()))
	require.Len(t, tools, writers)
	seen := make(map[int]struct{}, writers)
	for _, tool := range tools {
		seen[tool.ID] = struct{}{}
	}
	require.Len(t, seen, writers)
}

func TestBoltStore_Closed(t *testing.T) {
	store, metrics := openTestBoltStore(t, filepath.Join(t.TempDir(), "tools.db"))
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	require.Empty(t, store.ReadAll(context.Background()))
	require.Equal(t, []domain.ReadFaultReason{domain.ReadFaultIO}, metrics.faults)

	err := store.Transact(context.Background(), appendTool("x"))
	require.ErrorIs(t, err, domain.ErrStoreClosed)
	code, _ := domain.CodeFrom(err)
	require.Equal(t, domain.CodeUnavailable, code)
}

func TestOpen_SelectsBackend(t *testing.T) {
	root := t.TempDir()

	fileStore, err := Open(domain.StoreConfig{Backend: "file", Path: filepath.Join(root, "tools.json")}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, domain.StoreBackendFile, fileStore.Backend())

	boltStore, err := Open(domain.StoreConfig{Backend: " BOLT ", Path: filepath.Join(root, "tools.db")}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, domain.StoreBackendBolt, boltStore.Backend())
	require.NoError(t, boltStore.Close())

	_, err = Open(domain.StoreConfig{Backend: "redis"}, nil, nil)
	require.Error(t, err)
}

func TestStores_Ping(t *testing.T) {
	root := t.TempDir()

	fileStore, err := NewFileStore(filepath.Join(root, "missing", "tools.json"), FileStoreOptions{Locker: NewMemoryLocker()})
	require.NoError(t, err)
	require.NoError(t, fileStore.Ping(context.Background()))

	boltStore, _ := openTestBoltStore(t, filepath.Join(root, "tools.db"))
	require.NoError(t, boltStore.Ping(context.Background()))
	require.NoError(t, boltStore.Close())
	require.ErrorIs(t, boltStore.Ping(context.Background()), domain.ErrStoreClosed)
}

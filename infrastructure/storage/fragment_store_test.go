package storage

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// SetupTestDB initializes a temporary Badger instance for testing
func SetupTestDB(t *testing.T) (*badger.DB, func()) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)

	return db, func() {
		db.Close()
	}
}

func fragmentStores(t *testing.T) map[string]IFragmentStore {
	db, cleanup := SetupTestDB(t)
	t.Cleanup(cleanup)
	return map[string]IFragmentStore{
		"memory": NewMemoryFragmentStore(),
		"badger": NewBadgerFragmentStore(db, logs.GetLoggerFromLevel(slog.LevelDebug)),
	}
}

func TestFragmentStore_LastWriteWins(t *testing.T) {
	for name, store := range fragmentStores(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)

			// Given the same fragment stored twice
			req.NoError(store.Put("x", []byte{1}))
			req.NoError(store.Put("x", []byte{2}))

			// When it is read back
			data, ok, err := store.Get("x")

			// Then only the second value remains
			req.NoError(err)
			req.True(ok)
			req.Equal([]byte{2}, data)
		})
	}
}

func TestFragmentStore_Absent(t *testing.T) {
	for name, store := range fragmentStores(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)

			data, ok, err := store.Get("never-stored")

			req.NoError(err)
			req.False(ok)
			req.Nil(data)
		})
	}
}

func TestFragmentStore_EmptyPayloadIsPresent(t *testing.T) {
	for name, store := range fragmentStores(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)

			req.NoError(store.Put("empty", []byte{}))

			data, ok, err := store.Get("empty")
			req.NoError(err)
			req.True(ok)
			req.Empty(data)
		})
	}
}

func TestMemoryFragmentStore_CallerCannotMutateStoredBytes(t *testing.T) {
	req := require.New(t)
	store := NewMemoryFragmentStore()
	payload := []byte{1, 2, 3}

	req.NoError(store.Put("chunk1", payload))
	payload[0] = 9

	data, ok, err := store.Get("chunk1")
	req.NoError(err)
	req.True(ok)
	req.Equal([]byte{1, 2, 3}, data)

	data[1] = 9
	again, _, _ := store.Get("chunk1")
	req.Equal([]byte{1, 2, 3}, again)
}

func TestMemoryFragmentStore_ConcurrentPuts(t *testing.T) {
	req := require.New(t)
	store := NewMemoryFragmentStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Put(fmt.Sprintf("part-%d", i), []byte{byte(i)})
		}(i)
	}
	wg.Wait()

	req.Equal(50, store.Len())
}

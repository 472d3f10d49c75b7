package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const fragmentPrefix = "fragment:"

// BadgerFragmentStore keeps fragments across restarts.
// The hub uses it for parts no peer could take; a client may opt in through configuration.
type BadgerFragmentStore struct {
	db  *badger.DB
	log *slog.Logger
}

func NewBadgerFragmentStore(db *badger.DB, log *slog.Logger) *BadgerFragmentStore {
	return &BadgerFragmentStore{db: db, log: log}
}

// Put stores the bytes under "fragment:{name}", replacing any previous value.
func (b BadgerFragmentStore) Put(name string, data []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(fragmentPrefix+name), data)
	})
	if err != nil {
		return fmt.Errorf("store fragment %s: %w", name, err)
	}
	b.log.Debug("Fragment stored", "name", name, "size", len(data))
	return nil
}

func (b BadgerFragmentStore) Get(name string) ([]byte, bool, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(fragmentPrefix + name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read fragment %s: %w", name, err)
	}
	return data, true, nil
}

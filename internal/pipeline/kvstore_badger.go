package pipeline

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// BadgerKVStore is the on-disk KVStore the server uses outside of tests: an
// embedded Badger database backing the indexer's cross-session memoization
// cache so a cold start over a large workspace does not have to recompute
// every file's indexed tree from scratch.
type BadgerKVStore struct {
	db *badger.DB
}

// OpenBadgerKVStore opens (creating if necessary) a Badger database rooted
// at dir.
func OpenBadgerKVStore(dir string) (*BadgerKVStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerKVStore{db: db}, nil
}

func (b *BadgerKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (b *BadgerKVStore) Set(ctx context.Context, key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (b *BadgerKVStore) Close() error {
	return b.db.Close()
}

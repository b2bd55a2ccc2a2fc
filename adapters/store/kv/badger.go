package kv

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore implements Store over an embedded badger database. Lists are
// stored as JSON arrays and mutated inside a single transaction, which
// badger serialises, giving the required atomicity.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a badger store at path. An empty path opens
// an in-memory database, useful for tests and single-shot commands.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	return out, err
}

func (s *BadgerStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

func (s *BadgerStore) Delete(_ context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *BadgerStore) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	set := false
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		if err := txn.SetEntry(e); err != nil {
			return err
		}
		set = true
		return nil
	})
	return set, err
}

func (s *BadgerStore) LPush(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		list, err := readList(txn, key)
		if err != nil {
			return err
		}
		list = append([][]byte{value}, list...)
		return writeList(txn, key, list)
	})
}

func (s *BadgerStore) LLen(_ context.Context, key string) (int64, error) {
	var n int64
	err := s.db.View(func(txn *badger.Txn) error {
		list, err := readList(txn, key)
		if err != nil {
			return err
		}
		n = int64(len(list))
		return nil
	})
	return n, err
}

func (s *BadgerStore) LIndex(_ context.Context, key string, index int64) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		list, err := readList(txn, key)
		if err != nil {
			return err
		}
		if index < 0 {
			index += int64(len(list))
		}
		if index < 0 || index >= int64(len(list)) {
			return ErrKeyNotFound
		}
		out = list[index]
		return nil
	})
	return out, err
}

func (s *BadgerStore) RPop(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.Update(func(txn *badger.Txn) error {
		list, err := readList(txn, key)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return ErrKeyNotFound
		}
		out = list[len(list)-1]
		return writeList(txn, key, list[:len(list)-1])
	})
	return out, err
}

func (s *BadgerStore) Scan(_ context.Context, prefix string, fn func(key string, value []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(string(item.Key()), value); err != nil {
				return err
			}
		}
		return nil
	})
}

func readList(txn *badger.Txn, key string) ([][]byte, error) {
	item, err := txn.Get([]byte(listKey(key)))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var list [][]byte
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func writeList(txn *badger.Txn, key string, list [][]byte) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return txn.Set([]byte(listKey(key)), raw)
}

// listKey namespaces list values away from plain values.
func listKey(key string) string { return "l:" + key }

var _ Store = (*BadgerStore)(nil)

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gloworm-vision/loadlight/monitor"

	badger "github.com/dgraph-io/badger/v2"
)

type Badger struct {
	db *badger.DB
}

const (
	badgerProfilePrefix     = "profiles/"
	badgerDefaultProfileKey = "default-profile"
)

// OpenBadger opens a badger DB with the given options as a profile store.
// badger.DefaultOptions("").WithInMemory(true) gives a throwaway store.
func OpenBadger(options badger.Options) (Store, error) {
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("unable to open badger db: %w", err)
	}

	return &Badger{db: db}, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

func (b *Badger) Profile(name string) (monitor.Config, error) {
	var c monitor.Config

	err := b.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(badgerProfilePrefix + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoProfile
		}
		if err != nil {
			return fmt.Errorf("couldn't get raw profile: %w", err)
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &c); err != nil {
				return fmt.Errorf("unable to unmarshal profile JSON: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return c, fmt.Errorf("unable to get profile %q: %w", name, err)
	}

	return c, nil
}

func (b *Badger) ListProfiles() ([]string, error) {
	names := make([]string, 0)

	err := b.db.View(func(tx *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false

		it := tx.NewIterator(options)
		defer it.Close()

		prefix := []byte(badgerProfilePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), badgerProfilePrefix))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list profiles: %w", err)
	}

	return names, nil
}

func (b *Badger) PutProfile(name string, c monitor.Config) error {
	profileJSON, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("unable to marshal profile: %w", err)
	}

	err = b.db.Update(func(tx *badger.Txn) error {
		return tx.Set([]byte(badgerProfilePrefix+name), profileJSON)
	})
	if err != nil {
		return fmt.Errorf("unable to put profile %q: %w", name, err)
	}

	return nil
}

func (b *Badger) DefaultProfile() (string, error) {
	var def string

	err := b.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(badgerDefaultProfileKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		def = string(raw)

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("unable to get default profile: %w", err)
	}

	return def, nil
}

func (b *Badger) PutDefaultProfile(def string) error {
	err := b.db.Update(func(tx *badger.Txn) error {
		return tx.Set([]byte(badgerDefaultProfileKey), []byte(def))
	})
	if err != nil {
		return fmt.Errorf("unable to put default profile: %w", err)
	}

	return nil
}

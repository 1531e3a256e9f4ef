package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gloworm-vision/loadlight/monitor"
	"go.etcd.io/bbolt"
)

type BBolt struct {
	db *bbolt.DB
}

const (
	bboltLoadlightBucket = "loadlight"
	bboltProfileBucket   = "profiles" // child of loadlight

	// loadlight keys
	bboltDefaultProfileKey = "default-profile"
)

// OpenBBolt opens a BBoltDB database at the given path and creates the needed buckets
// if they don't exist.
func OpenBBolt(path string, mode os.FileMode, options *bbolt.Options) (Store, error) {
	db, err := bbolt.Open(path, mode, options)
	if err != nil {
		return nil, fmt.Errorf("unable to open bbolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		rootBucket, err := tx.CreateBucketIfNotExists([]byte(bboltLoadlightBucket))
		if err != nil {
			return fmt.Errorf("unable to create bucket %q: %w", bboltLoadlightBucket, err)
		}

		_, err = rootBucket.CreateBucketIfNotExists([]byte(bboltProfileBucket))
		if err != nil {
			return fmt.Errorf("unable to create bucket %q: %w", bboltProfileBucket, err)
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to create bbolt buckets: %w", err)
	}

	return &BBolt{
		db: db,
	}, nil
}

func (b *BBolt) Close() error {
	return b.db.Close()
}

func (b *BBolt) Profile(name string) (monitor.Config, error) {
	var c monitor.Config
	err := b.db.View(func(tx *bbolt.Tx) error {
		profileBucket := tx.Bucket([]byte(bboltLoadlightBucket)).Bucket([]byte(bboltProfileBucket))

		profileJSON := profileBucket.Get([]byte(name))
		if profileJSON == nil {
			return ErrNoProfile
		}

		if err := json.Unmarshal(profileJSON, &c); err != nil {
			return fmt.Errorf("unable to unmarshal profile JSON: %w", err)
		}

		return nil
	})
	if err != nil {
		return c, fmt.Errorf("unable to get profile %q: %w", name, err)
	}

	return c, nil
}

func (b *BBolt) ListProfiles() ([]string, error) {
	names := make([]string, 0)

	err := b.db.View(func(tx *bbolt.Tx) error {
		profileBucket := tx.Bucket([]byte(bboltLoadlightBucket)).Bucket([]byte(bboltProfileBucket))

		err := profileBucket.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
		if err != nil {
			return fmt.Errorf("unable to iterate over profile bucket: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list profiles: %w", err)
	}

	return names, nil
}

func (b *BBolt) PutProfile(name string, c monitor.Config) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		profileJSON, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("unable to marshal profile: %w", err)
		}

		profileBucket := tx.Bucket([]byte(bboltLoadlightBucket)).Bucket([]byte(bboltProfileBucket))
		if err := profileBucket.Put([]byte(name), profileJSON); err != nil {
			return fmt.Errorf("unable to put profile %q: %w", name, err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to update profile: %w", err)
	}

	return nil
}

func (b *BBolt) DefaultProfile() (string, error) {
	var def string

	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bboltLoadlightBucket))
		def = string(bucket.Get([]byte(bboltDefaultProfileKey)))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("unable to get default profile: %w", err)
	}

	return def, nil
}

func (b *BBolt) PutDefaultProfile(def string) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bboltLoadlightBucket))
		return bucket.Put([]byte(bboltDefaultProfileKey), []byte(def))
	})
	if err != nil {
		return fmt.Errorf("unable to put default profile: %w", err)
	}

	return nil
}

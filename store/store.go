package store

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gloworm-vision/loadlight/monitor"
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"

	badger "github.com/dgraph-io/badger/v2"
)

// ErrNoProfile is returned when a named profile has never been stored.
var ErrNoProfile = errors.New("profile does not exist")

// Store describes a persistent storage engine for startup profiles. A profile
// is a complete monitor config saved under a name; one of them can be marked
// as the default used when no profile is asked for.
type Store interface {
	Profile(name string) (monitor.Config, error)
	ListProfiles() ([]string, error)
	PutProfile(name string, c monitor.Config) error

	DefaultProfile() (string, error)
	PutDefaultProfile(name string) error

	io.Closer
}

const (
	EngineBBolt  = "bbolt"
	EngineBadger = "badger"
)

// LockTimeout bounds how long Open waits for a bbolt file held by another
// process.
const LockTimeout = time.Second

// Open opens the store at path with the named engine. For badger, path is a
// directory; for bbolt, a file.
func Open(engine, path string, logger *logrus.Logger) (Store, error) {
	switch engine {
	case EngineBBolt, "":
		return OpenBBolt(path, 0600, &bbolt.Options{Timeout: LockTimeout})
	case EngineBadger:
		options := badger.DefaultOptions(path)
		if logger != nil {
			options = options.WithLogger(logger)
		} else {
			options = options.WithLogger(nil)
		}
		return OpenBadger(options)
	default:
		return nil, fmt.Errorf("unknown store engine %q", engine)
	}
}

// LoadProfile returns the named profile, or the default profile when name is
// empty. found is false when name is empty and no default has been set, in
// which case the built-in defaults are returned.
func LoadProfile(s Store, name string) (config monitor.Config, found bool, err error) {
	if name == "" {
		name, err = s.DefaultProfile()
		if err != nil {
			return monitor.Config{}, false, err
		}
		if name == "" {
			return monitor.DefaultConfig(), false, nil
		}
	}

	config, err = s.Profile(name)
	if err != nil {
		return monitor.Config{}, false, err
	}

	return config, true, nil
}

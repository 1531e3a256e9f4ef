package store

import (
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/gloworm-vision/loadlight/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	badger "github.com/dgraph-io/badger/v2"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	bolt, err := OpenBBolt(filepath.Join(t.TempDir(), "loadlight.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { bolt.Close() })

	mem, err := OpenBadger(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { mem.Close() })

	return map[string]Store{EngineBBolt: bolt, EngineBadger: mem}
}

func TestStore_Profiles(t *testing.T) {
	for engine, s := range openStores(t) {
		t.Run(engine, func(t *testing.T) {
			_, err := s.Profile("missing")
			assert.ErrorIs(t, err, ErrNoProfile)

			quiet := monitor.DefaultConfig()
			quiet.Background = true
			quiet.Hardware.Brightness = 8

			fast := monitor.DefaultConfig()
			fast.Interval = 10 * time.Millisecond

			require.NoError(t, s.PutProfile("quiet", quiet))
			require.NoError(t, s.PutProfile("fast", fast))

			got, err := s.Profile("quiet")
			require.NoError(t, err)
			assert.Equal(t, quiet, got)

			names, err := s.ListProfiles()
			require.NoError(t, err)
			sort.Strings(names)
			assert.Equal(t, []string{"fast", "quiet"}, names)
		})
	}
}

func TestStore_DefaultProfile(t *testing.T) {
	for engine, s := range openStores(t) {
		t.Run(engine, func(t *testing.T) {
			def, err := s.DefaultProfile()
			require.NoError(t, err)
			assert.Empty(t, def)

			config, found, err := LoadProfile(s, "")
			require.NoError(t, err)
			assert.False(t, found)
			assert.Equal(t, monitor.DefaultConfig(), config)

			fast := monitor.DefaultConfig()
			fast.Interval = 10 * time.Millisecond
			require.NoError(t, s.PutProfile("fast", fast))
			require.NoError(t, s.PutDefaultProfile("fast"))

			config, found, err = LoadProfile(s, "")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, fast, config)

			_, _, err = LoadProfile(s, "nope")
			assert.ErrorIs(t, err, ErrNoProfile)
		})
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(EngineBBolt, filepath.Join(t.TempDir(), "a.db"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(EngineBadger, t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open("sqlite", "x", nil)
	assert.Error(t, err)
}

func TestOpen_LockedBBolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.db")

	held, err := Open(EngineBBolt, path, nil)
	require.NoError(t, err)
	defer held.Close()

	start := time.Now()
	_, err = Open(EngineBBolt, path, nil)
	assert.ErrorIs(t, err, bbolt.ErrTimeout)
	assert.Less(t, time.Since(start), 5*LockTimeout)
}

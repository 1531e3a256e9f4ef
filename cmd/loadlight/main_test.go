package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gloworm-vision/loadlight/monitor"
	"github.com/gloworm-vision/loadlight/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func statFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stat")
	require.NoError(t, os.WriteFile(path, []byte("cpu  100 0 0 100 0 0 0 0 0 0\n"), 0o644))
	return path
}

func execute(t *testing.T, ctx context.Context, config *monitor.Config, args ...string) error {
	t.Helper()

	cmd := newRootCommand(config, quietLogger())
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	return cmd.ExecuteContext(ctx)
}

func TestRoot_DryRunStopsCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := monitor.DefaultConfig()
	err := execute(t, ctx, &config,
		"--dry-run", "--background", "--nice", "0", "--stat-path", statFile(t), "--log-level", "error")
	require.NoError(t, err)
}

func TestRoot_RunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	config := monitor.DefaultConfig()
	err := execute(t, ctx, &config,
		"--dry-run", "--background", "--nice", "0", "--stat-path", statFile(t), "--interval", "5ms")
	require.NoError(t, err)
}

func TestRoot_InvalidConfigFails(t *testing.T) {
	config := monitor.DefaultConfig()
	err := execute(t, context.Background(), &config, "--dry-run", "--idle-pin", "26", "--active-pin", "26")
	assert.Error(t, err)

	config = monitor.DefaultConfig()
	err = execute(t, context.Background(), &config, "--log-level", "loud")
	assert.Error(t, err)
}

func TestRoot_HardwareInitFailure(t *testing.T) {
	config := monitor.DefaultConfig()
	err := execute(t, context.Background(), &config,
		"--pigpio-addr", "127.0.0.1:1", "--dial-timeout", "200ms", "--nice", "0", "--background")
	require.Error(t, err)
}

func TestRoot_ProfilesFlagsWin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	db := filepath.Join(t.TempDir(), "profiles.db")
	stat := statFile(t)

	config := monitor.DefaultConfig()
	require.NoError(t, execute(t, ctx, &config,
		"--store", db, "--save-profile", "dim", "--set-default",
		"--brightness", "4", "--interval", "40ms",
		"--dry-run", "--background", "--nice", "0", "--stat-path", stat))

	// default profile is loaded, the explicit flag overrides one field of it
	config = monitor.DefaultConfig()
	require.NoError(t, execute(t, ctx, &config,
		"--store", db, "--interval", "10ms", "--nice", "0"))
	assert.Equal(t, 4, config.Hardware.Brightness)
	assert.Equal(t, 10*time.Millisecond, config.Interval)
	assert.True(t, config.Hardware.DryRun)

	s, err := store.OpenBBolt(db, 0600, nil)
	require.NoError(t, err)
	defer s.Close()

	def, err := s.DefaultProfile()
	require.NoError(t, err)
	assert.Equal(t, "dim", def)
}

func TestRoot_ListProfiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	db := filepath.Join(t.TempDir(), "profiles.db")
	stat := statFile(t)

	for _, name := range []string{"quiet", "dim"} {
		config := monitor.DefaultConfig()
		require.NoError(t, execute(t, ctx, &config,
			"--store", db, "--save-profile", name, "--set-default",
			"--dry-run", "--background", "--nice", "0", "--stat-path", stat))
	}

	config := monitor.DefaultConfig()
	cmd := newRootCommand(&config, quietLogger())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--store", db, "--list-profiles"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "* dim\n  quiet\n", out.String())
}

func TestRoot_ListProfilesNeedsStore(t *testing.T) {
	config := monitor.DefaultConfig()
	err := execute(t, context.Background(), &config, "--list-profiles")
	assert.Error(t, err)
}

//go:build linux

package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threadNice reads the nice value of every thread from /proc/self/task.
func threadNice(t *testing.T) map[int]int {
	t.Helper()

	tids, err := threadIDs()
	require.NoError(t, err)

	nice := make(map[int]int, len(tids))
	for _, tid := range tids {
		raw, err := os.ReadFile(filepath.Join(taskDir, strconv.Itoa(tid), "stat"))
		if os.IsNotExist(err) {
			continue
		}
		require.NoError(t, err)

		// fields after the parenthesized command name start at field 3 (state);
		// nice is field 19
		fields := strings.Fields(string(raw[strings.LastIndexByte(string(raw), ')')+1:]))
		require.Greater(t, len(fields), 16)

		n, err := strconv.Atoi(fields[16])
		require.NoError(t, err)
		nice[tid] = n
	}

	return nice
}

func TestLowerPriority_AllThreads(t *testing.T) {
	// hold a few extra OS threads so the process has more than the caller's
	const extra = 4
	var started sync.WaitGroup
	release := make(chan struct{})
	defer close(release)

	started.Add(extra)
	for i := 0; i < extra; i++ {
		go func() {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			started.Done()
			<-release
		}()
	}
	started.Wait()

	// raising the nice value never needs privileges
	require.NoError(t, lowerPriority(19))

	nice := threadNice(t)
	require.Greater(t, len(nice), extra)
	for tid, n := range nice {
		assert.Equal(t, 19, n, "thread %d", tid)
	}
}

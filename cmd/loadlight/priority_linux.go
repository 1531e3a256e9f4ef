//go:build linux

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

const taskDir = "/proc/self/task"

// lowerPriority sets the nice value of every thread in the process. Linux
// applies setpriority to a single thread, and a new thread starts with the
// nice value of the thread that created it, so threads are reniced until a
// pass finds none it has not seen.
func lowerPriority(nice int) error {
	seen := make(map[int]bool)
	var errs []error

	for {
		tids, err := threadIDs()
		if err != nil {
			return unix.Setpriority(unix.PRIO_PROCESS, 0, nice)
		}

		fresh := 0
		for _, tid := range tids {
			if seen[tid] {
				continue
			}
			seen[tid] = true
			fresh++

			err := unix.Setpriority(unix.PRIO_PROCESS, tid, nice)
			if err != nil && !errors.Is(err, unix.ESRCH) {
				errs = append(errs, fmt.Errorf("thread %d: %w", tid, err))
			}
		}

		if fresh == 0 {
			return errors.Join(errs...)
		}
	}
}

func threadIDs() ([]int, error) {
	entries, err := os.ReadDir(taskDir)
	if err != nil {
		return nil, err
	}

	tids := make([]int, 0, len(entries))
	for _, e := range entries {
		tid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		tids = append(tids, tid)
	}

	return tids, nil
}

// Package instance keeps a single disp process per session.
package instance

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// ErrAlreadyRunning is returned by Acquire when another process holds the lock.
var ErrAlreadyRunning = errors.New("disp is already running")

// Lock is an exclusive advisory lock on a file. The kernel drops it when the
// process exits.
type Lock struct {
	path string
	file *os.File
}

// Owner returns the process ID recorded in the lock file at path, or 0.
func Owner(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

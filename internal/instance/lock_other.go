//go:build !unix

package instance

import "errors"

// Acquire is not supported without flock.
func Acquire(path string) (*Lock, error) {
	return nil, errors.New("single-instance lock is not supported on this platform")
}

// Release does nothing.
func (l *Lock) Release() error { return nil }

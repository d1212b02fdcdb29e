// Package platform selects the display server backend for the running system.
package platform

import (
	"errors"

	"github.com/Z1ni/disp/internal/display"
)

// ErrUnsupported is returned by NewBackend on systems without a backend.
var ErrUnsupported = errors.New("no display backend for this platform")

// NewBackend connects to the display server of the current session.
func NewBackend() (display.Backend, error) {
	return newBackend()
}

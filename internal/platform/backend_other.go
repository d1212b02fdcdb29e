//go:build !linux

package platform

import "github.com/Z1ni/disp/internal/display"

func newBackend() (display.Backend, error) {
	return nil, ErrUnsupported
}

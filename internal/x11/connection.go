package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages the X11 connection and the RandR extension
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// mu serializes RandR reconfiguration; queries may run concurrently.
	mu sync.Mutex
}

// NewConnection establishes a connection to the X11 server and initializes RandR
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	if err := randr.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	version, err := randr.QueryVersion(xu.Conn(), 1, 2).Reply()
	if err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr version query failed: %w", err)
	}
	if version.MajorVersion < 1 || (version.MajorVersion == 1 && version.MinorVersion < 2) {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr 1.2 or newer required, server has %d.%d", version.MajorVersion, version.MinorVersion)
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

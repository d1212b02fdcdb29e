package x11

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// changeSettle coalesces the burst of RandR events one reconfiguration emits.
const changeSettle = 250 * time.Millisecond

// Watch calls onChange after the monitor layout changed. It uses a dedicated
// X connection so that cancelling ctx can unblock the event wait by closing
// it. Watch blocks until ctx is cancelled or the connection fails.
func (c *Connection) Watch(ctx context.Context, onChange func()) error {
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("failed to open event connection: %w", err)
	}
	defer conn.Close()

	if err := randr.Init(conn); err != nil {
		return fmt.Errorf("randr init failed: %w", err)
	}
	root := xproto.Setup(conn).DefaultScreen(conn).Root
	mask := uint16(randr.NotifyMaskScreenChange | randr.NotifyMaskCrtcChange | randr.NotifyMaskOutputChange)
	if err := randr.SelectInputChecked(conn, root, mask).Check(); err != nil {
		return fmt.Errorf("failed to select randr events: %w", err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(changeSettle, onChange)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		ev, xerr := conn.WaitForEvent()
		if ev == nil && xerr == nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("x event connection closed")
		}
		if xerr != nil {
			slog.Debug("randr event error", "error", xerr)
			continue
		}
		switch e := ev.(type) {
		case randr.ScreenChangeNotifyEvent:
			slog.Debug("randr screen change", "width", e.Width, "height", e.Height)
			schedule()
		case randr.NotifyEvent:
			slog.Debug("randr notify", "subcode", e.SubCode)
			schedule()
		}
	}
}

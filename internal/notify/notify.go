// Package notify shows desktop notifications for events of the running
// instance.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/Z1ni/disp/internal/events"
)

const (
	appName         = "disp"
	expireTimeoutMS = 5000

	notificationsDest  = "org.freedesktop.Notifications"
	notificationsPath  = "/org/freedesktop/Notifications"
	notificationsIface = "org.freedesktop.Notifications"
)

// Urgency levels of the freedesktop notification spec.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

// Sink displays one notification.
type Sink interface {
	Notify(summary, body string, urgency byte) error
}

// DBus sends notifications to the session's notification daemon. Each
// notification replaces the previous one so rapid changes do not pile up.
type DBus struct {
	conn *dbus.Conn

	mu     sync.Mutex
	lastID uint32
}

// NewDBus connects to the session bus.
func NewDBus() (*DBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &DBus{conn: conn}, nil
}

// Notify implements Sink.
func (d *DBus) Notify(summary, body string, urgency byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgency),
	}
	obj := d.conn.Object(notificationsDest, notificationsPath)
	call := obj.Call(notificationsIface+".Notify", 0,
		appName, d.lastID, "", summary, body, []string{}, hints, int32(expireTimeoutMS))
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	d.lastID = id
	return nil
}

// Close closes the session bus connection.
func (d *DBus) Close() error {
	return d.conn.Close()
}

// Log writes notifications to a logger. It is used when no notification
// daemon is reachable.
type Log struct {
	Logger *slog.Logger
}

// Notify implements Sink.
func (l Log) Notify(summary, body string, urgency byte) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if urgency == UrgencyCritical {
		level = slog.LevelError
	}
	logger.Log(context.Background(), level, "notification", "summary", summary, "body", body)
	return nil
}

// shouldNotify reports whether ev is shown to the user.
func shouldNotify(ev events.Event) bool {
	switch ev.Kind {
	case events.Started:
		return ev.Notify
	case events.PresetApplied, events.PresetApplyFailed, events.PresetApplyRejected,
		events.OrientationChanged, events.PresetSaved, events.PresetSaveFailed, events.ConfigError:
		return true
	}
	return false
}

func render(ev events.Event) (summary, body string, urgency byte) {
	summary = ev.Text()
	body = ev.Detail
	urgency = UrgencyNormal
	if ev.Failed() {
		urgency = UrgencyCritical
		if ev.Err != nil {
			body = ev.Err.Error()
		}
	}
	return summary, body, urgency
}

// Start subscribes sink to bus and forwards events from a new goroutine until
// ctx is cancelled. The subscription is in place when Start returns, so an
// event published right after is delivered. The returned channel is closed
// once forwarding has stopped. Delivery errors are logged and otherwise
// ignored.
func Start(ctx context.Context, bus *events.Bus, sink Sink, logger *slog.Logger) <-chan struct{} {
	if logger == nil {
		logger = slog.Default()
	}
	id, ch := bus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer bus.Unsubscribe(id)
		forward(ctx, ch, sink, logger)
	}()
	return done
}

func forward(ctx context.Context, ch <-chan events.Event, sink Sink, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if !shouldNotify(ev) {
				continue
			}
			summary, body, urgency := render(ev)
			if err := sink.Notify(summary, body, urgency); err != nil {
				logger.Warn("failed to show notification", "error", err, "summary", summary)
			}
		}
	}
}

package ipc

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Z1ni/disp/internal/app"
	"github.com/Z1ni/disp/internal/apply"
	"github.com/Z1ni/disp/internal/disperr"
	"github.com/Z1ni/disp/internal/display"
	"github.com/Z1ni/disp/internal/preset"
)

type fakeHandler struct {
	mu          sync.Mutex
	applied     []string
	saved       []string
	orientation map[string]preset.Orientation
	applyErr    error
	outcome     apply.Outcome
	reloadErr   error
}

func (f *fakeHandler) Status() app.Status {
	return app.Status{InstanceID: "abc", ConfigPath: "/tmp/disp.json", Uptime: 3 * time.Second, Displays: 2, Presets: 1, Applicable: 1}
}

func (f *fakeHandler) Presets() []app.PresetInfo {
	return []app.PresetInfo{{
		Name:       "Desk",
		Applicable: true,
		Displays: []preset.DisplaySettings{{
			DevicePath:  "DP-1",
			Orientation: preset.Portrait,
			Position:    preset.Position{X: -1080, Y: 0},
			Resolution:  preset.Resolution{Width: 1080, Height: 1920},
		}},
	}}
}

func (f *fakeHandler) ApplyPreset(name string) (apply.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, name)
	return f.outcome, f.applyErr
}

func (f *fakeHandler) SaveCurrentAsPreset(name string) (app.SaveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, name)
	return app.SaveResult{Name: name, Index: 2, Replaced: false, Displays: 2}, nil
}

func (f *fakeHandler) SetOrientation(devicePath string, o preset.Orientation) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.orientation == nil {
		f.orientation = map[string]preset.Orientation{}
	}
	prev, ok := f.orientation[devicePath]
	f.orientation[devicePath] = o
	return !ok || prev != o, nil
}

func (f *fakeHandler) About() (app.AboutReport, error) {
	return app.AboutReport{
		Virtual: display.Bounds{Width: 3000, Height: 1920},
		Monitors: display.Topology{{
			DevicePath:   "HDMI-1",
			Output:       "HDMI-1",
			FriendlyName: "DELL U2412M",
			Number:       1,
			Orientation:  preset.Landscape,
			Width:        1920,
			Height:       1200,
		}},
	}, nil
}

func (f *fakeHandler) Reload() error { return f.reloadErr }

func startServer(t *testing.T, h Handler) *Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "d.sock")
	srv := NewServerWithPath(path, h, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClientWithPath(path)
}

func TestStatusAndListPresets(t *testing.T) {
	c := startServer(t, &fakeHandler{})

	st, err := c.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.InstanceID != "abc" || st.UptimeSeconds != 3 || st.Displays != 2 {
		t.Fatalf("unexpected status: %+v", st)
	}

	list, err := c.ListPresets()
	if err != nil {
		t.Fatalf("ListPresets: %v", err)
	}
	if len(list.Presets) != 1 || list.Presets[0].Name != "Desk" || !list.Presets[0].Applicable {
		t.Fatalf("unexpected presets: %+v", list)
	}
	d := list.Presets[0].Displays[0]
	if d.Display != "DP-1" || d.Orientation != 1 || d.X != -1080 || d.Height != 1920 {
		t.Fatalf("unexpected display: %+v", d)
	}
}

func TestApplyPreset(t *testing.T) {
	h := &fakeHandler{outcome: apply.Outcome{Preset: "Desk", Total: 2, Succeeded: 2}}
	c := startServer(t, h)

	data, err := c.ApplyPreset("Desk")
	if err != nil {
		t.Fatalf("ApplyPreset: %v", err)
	}
	if data.Message != "2 of 2 displays changed successfully" {
		t.Fatalf("message = %q", data.Message)
	}
	if len(h.applied) != 1 || h.applied[0] != "Desk" {
		t.Fatalf("handler saw %v", h.applied)
	}
}

func TestApplyPresetPartialFailure(t *testing.T) {
	out := apply.Outcome{
		Preset:    "Desk",
		Total:     2,
		Succeeded: 1,
		Failures:  []apply.Failure{{DevicePath: "DP-2", Err: errors.New("bad mode")}},
	}
	c := startServer(t, &fakeHandler{outcome: out, applyErr: out.Err()})

	data, err := c.ApplyPreset("Desk")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if errors.Is(err, ErrWarning) {
		t.Fatalf("partial failure must not be a warning: %v", err)
	}
	if data.Succeeded != 1 || len(data.Failed) != 1 || data.Failed[0] != "DP-2" {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestApplyPresetBusyIsWarning(t *testing.T) {
	c := startServer(t, &fakeHandler{applyErr: disperr.ErrInProgress})

	_, err := c.ApplyPreset("Desk")
	if !errors.Is(err, ErrWarning) {
		t.Fatalf("expected ErrWarning, got %v", err)
	}
}

func TestNameValidation(t *testing.T) {
	h := &fakeHandler{}
	c := startServer(t, h)

	if _, err := c.SavePreset(""); err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Fatalf("expected missing name error, got %v", err)
	}
	long := strings.Repeat("x", preset.MaxNameLength+1)
	if _, err := c.SavePreset(long); err == nil {
		t.Fatalf("expected long name to be rejected")
	}
	if len(h.saved) != 0 {
		t.Fatalf("handler should not be called, saw %v", h.saved)
	}

	res, err := c.SavePreset("Home")
	if err != nil {
		t.Fatalf("SavePreset: %v", err)
	}
	if res.Name != "Home" || res.Index != 2 || res.Replaced {
		t.Fatalf("unexpected save data: %+v", res)
	}
}

func TestSetOrientation(t *testing.T) {
	c := startServer(t, &fakeHandler{})

	data, err := c.SetOrientation("HDMI-1", "portrait")
	if err != nil {
		t.Fatalf("SetOrientation: %v", err)
	}
	if !data.Changed || data.Orientation != preset.Portrait.String() {
		t.Fatalf("unexpected data: %+v", data)
	}
	data, err = c.SetOrientation("HDMI-1", "1")
	if err != nil {
		t.Fatalf("SetOrientation: %v", err)
	}
	if data.Changed {
		t.Fatalf("second call should not change anything")
	}
	if _, err := c.SetOrientation("HDMI-1", "sideways"); err == nil {
		t.Fatalf("expected invalid orientation error")
	}
}

func TestAboutAndReload(t *testing.T) {
	h := &fakeHandler{}
	c := startServer(t, h)

	about, err := c.About()
	if err != nil {
		t.Fatalf("About: %v", err)
	}
	if about.VirtualWidth != 3000 || len(about.Monitors) != 1 || about.Monitors[0].Name != "DELL U2412M" {
		t.Fatalf("unexpected about: %+v", about)
	}
	if !strings.Contains(about.Text, "Display information:") {
		t.Fatalf("missing text: %q", about.Text)
	}

	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	h.reloadErr = errors.New("broken")
	if err := c.Reload(); err == nil || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("expected reload error, got %v", err)
	}
}

func TestUnknownCommandAndGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.sock")
	srv := NewServerWithPath(path, &fakeHandler{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()

	c := NewClientWithPath(path)
	if _, err := c.call("NOPE", nil, nil); err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	if _, err := conn.Write([]byte("not json\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	buf, _ := io.ReadAll(conn)
	if !strings.Contains(string(buf), `"status":"ERROR"`) {
		t.Fatalf("unexpected reply %q", buf)
	}
}

func TestStopRemovesSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.sock")
	if err := os.WriteFile(path, []byte("stale"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv := NewServerWithPath(path, &fakeHandler{}, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start over stale socket: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("socket mode = %v", info.Mode().Perm())
	}
	srv.Stop()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("socket still present: %v", err)
	}
}

func TestClientWithoutDaemon(t *testing.T) {
	c := NewClientWithPath(filepath.Join(t.TempDir(), "missing.sock"))
	if err := c.Ping(); err == nil || !strings.Contains(err.Error(), "is the daemon running") {
		t.Fatalf("expected connection error, got %v", err)
	}
}

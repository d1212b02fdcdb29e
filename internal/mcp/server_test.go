package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Z1ni/disp/internal/ipc"
)

type fakeDaemon struct {
	applyErr  error
	applied   []string
	saved     []string
	reloads   int
	rotations []string
}

func (f *fakeDaemon) Status() (*ipc.StatusData, error) {
	return &ipc.StatusData{Presets: 2, Applicable: 1}, nil
}

func (f *fakeDaemon) ListPresets() (*ipc.PresetsData, error) {
	return &ipc.PresetsData{Presets: []ipc.PresetInfo{
		{Name: "Desk", Applicable: true, Displays: []ipc.DisplayInfo{{Display: "DP-1", Orientation: 1, Width: 1080, Height: 1920}}},
		{Name: "Travel", Applicable: false, Displays: []ipc.DisplayInfo{{Display: "eDP-1"}}},
	}}, nil
}

func (f *fakeDaemon) ApplyPreset(name string) (*ipc.ApplyData, error) {
	f.applied = append(f.applied, name)
	if f.applyErr != nil {
		return &ipc.ApplyData{}, f.applyErr
	}
	return &ipc.ApplyData{Preset: name, Total: 1, Succeeded: 1, Message: "1 of 1 displays changed successfully"}, nil
}

func (f *fakeDaemon) SavePreset(name string) (*ipc.SaveData, error) {
	f.saved = append(f.saved, name)
	return &ipc.SaveData{Name: name, Displays: 2}, nil
}

func (f *fakeDaemon) SetOrientation(display, orientation string) (*ipc.OrientationData, error) {
	f.rotations = append(f.rotations, display+"="+orientation)
	return &ipc.OrientationData{Display: display, Orientation: "Portrait", Changed: true}, nil
}

func (f *fakeDaemon) About() (*ipc.AboutData, error) {
	return &ipc.AboutData{VirtualWidth: 1920, VirtualHeight: 1080, Monitors: []ipc.MonitorInfo{{Number: 1, Name: "Built-in", Display: "eDP-1"}}}, nil
}

func (f *fakeDaemon) Reload() error {
	f.reloads++
	return nil
}

func newTestServer(d Daemon) *Server {
	return NewServer(d, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestListPresetsFiltersApplicable(t *testing.T) {
	s := newTestServer(&fakeDaemon{})

	_, out, err := s.handleListPresets(context.Background(), nil, ListPresetsInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out.Presets) != 2 {
		t.Fatalf("got %d presets, want 2", len(out.Presets))
	}
	if got := out.Presets[0].Displays[0].Orientation; got != "Portrait" {
		t.Fatalf("orientation = %q, want Portrait", got)
	}

	_, out, err = s.handleListPresets(context.Background(), nil, ListPresetsInput{ApplicableOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out.Presets) != 1 || out.Presets[0].Name != "Desk" {
		t.Fatalf("unexpected filtered presets: %+v", out.Presets)
	}
}

func TestApplyPreset(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)

	if _, _, err := s.handleApplyPreset(context.Background(), nil, PresetNameInput{Name: "  "}); err == nil {
		t.Fatalf("expected error for blank name")
	}

	res, out, err := s.handleApplyPreset(context.Background(), nil, PresetNameInput{Name: "Desk"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res != nil || out.Succeeded != 1 || out.Message == "" {
		t.Fatalf("unexpected result: %+v %+v", res, out)
	}

	d.applyErr = fmt.Errorf("%w: a display change is already in progress", ipc.ErrWarning)
	res, out, err = s.handleApplyPreset(context.Background(), nil, PresetNameInput{Name: "Desk"})
	if err != nil {
		t.Fatalf("busy apply should not fail the tool: %v", err)
	}
	if res == nil || len(res.Content) != 1 || out.Total != 0 {
		t.Fatalf("expected a warning result, got %+v %+v", res, out)
	}

	d.applyErr = errors.New("daemon error: preset \"Desk\" does not match the connected displays")
	if _, _, err := s.handleApplyPreset(context.Background(), nil, PresetNameInput{Name: "Desk"}); err == nil {
		t.Fatalf("expected apply error")
	}
}

func TestSavePresetValidatesName(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)

	if _, _, err := s.handleSavePreset(context.Background(), nil, PresetNameInput{Name: "bad\x07name"}); err == nil {
		t.Fatalf("expected control character to be rejected")
	}
	if len(d.saved) != 0 {
		t.Fatalf("daemon should not be called, saw %v", d.saved)
	}
	_, out, err := s.handleSavePreset(context.Background(), nil, PresetNameInput{Name: "Home"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if out.Name != "Home" || out.Displays != 2 {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestSetOrientationValidates(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)

	if _, _, err := s.handleSetOrientation(context.Background(), nil, SetOrientationInput{Display: "DP-1", Orientation: "upside"}); err == nil {
		t.Fatalf("expected invalid orientation error")
	}
	_, out, err := s.handleSetOrientation(context.Background(), nil, SetOrientationInput{Display: "DP-1", Orientation: "portrait"})
	if err != nil {
		t.Fatalf("set orientation: %v", err)
	}
	if !out.Changed || len(d.rotations) != 1 || d.rotations[0] != "DP-1=portrait" {
		t.Fatalf("unexpected: %+v %v", out, d.rotations)
	}
}

func TestReloadReportsCounts(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)

	_, out, err := s.handleReload(context.Background(), nil, ReloadInput{})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if d.reloads != 1 || out.Presets != 2 || out.Applicable != 1 {
		t.Fatalf("unexpected: reloads=%d out=%+v", d.reloads, out)
	}
}

func TestToolsOverSession(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(&fakeDaemon{})

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	serverSession, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer serverSession.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := []string{"about_displays", "apply_preset", "list_presets", "reload_presets", "save_preset", "set_orientation"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Fatalf("tools = %v, want %v", names, want)
	}

	res, err := session.CallTool(ctx, &mcpsdk.CallToolParams{Name: "about_displays", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if res.IsError {
		t.Fatalf("about_displays returned a tool error: %+v", res.Content)
	}
}

package display

import (
	"errors"
	"testing"

	"github.com/Z1ni/disp/internal/preset"
)

func TestNormalizeOrdersAndNames(t *testing.T) {
	in := []Monitor{
		{DevicePath: "HDMI-1", X: 1920, Y: 0, Width: 1080, Height: 1920},
		{DevicePath: "DP-2", FriendlyName: "DELL U2720Q", X: 0, Y: 1080, Width: 1920, Height: 1080},
		{DevicePath: "DP-1", X: 0, Y: 0, Width: 1920, Height: 1080},
	}
	got := Normalize(in)

	want := []struct {
		path   string
		number int
		name   string
	}{
		{"DP-1", 1, "Display 1"},
		{"DP-2", 2, "DELL U2720Q"},
		{"HDMI-1", 3, "Display 3"},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].DevicePath != w.path || got[i].Number != w.number || got[i].FriendlyName != w.name {
			t.Errorf("monitor %d = %+v, want %+v", i, got[i], w)
		}
	}
	if in[0].DevicePath != "HDMI-1" || in[0].Number != 0 {
		t.Fatal("Normalize modified its input")
	}
}

func TestVirtualBounds(t *testing.T) {
	topo := Topology{
		{DevicePath: "A", X: -1080, Y: -240, Width: 1080, Height: 1920},
		{DevicePath: "B", X: 0, Y: 0, Width: 2560, Height: 1440},
	}
	got := topo.VirtualBounds()
	want := Bounds{X: -1080, Y: -240, Width: 3640, Height: 1920}
	if got != want {
		t.Fatalf("VirtualBounds = %+v, want %+v", got, want)
	}
	if (Topology{}).VirtualBounds() != (Bounds{}) {
		t.Fatal("empty topology should have zero bounds")
	}
}

func TestTopologyFindIsExact(t *testing.T) {
	topo := Topology{{DevicePath: "DP-1"}}
	if _, ok := topo.Find("dp-1"); ok {
		t.Fatal("Find should be case-sensitive")
	}
	if _, ok := topo.Find("DP-1"); !ok {
		t.Fatal("Find(DP-1) failed")
	}
}

func TestSnapshotsCarryGeometry(t *testing.T) {
	topo := Topology{{DevicePath: "DP-1", Orientation: preset.Portrait, X: 5, Y: 6, Width: 1080, Height: 1920}}
	got := topo.Snapshots()
	want := preset.MonitorState{
		DevicePath:  "DP-1",
		Orientation: preset.Portrait,
		Position:    preset.Position{X: 5, Y: 6},
		Resolution:  preset.Resolution{Width: 1080, Height: 1920},
	}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Snapshots = %+v, want %+v", got, want)
	}
}

func TestMonitorLabel(t *testing.T) {
	tests := []struct {
		m    Monitor
		want string
	}{
		{Monitor{FriendlyName: "DELL", Output: "DP-1"}, "DELL (DP-1)"},
		{Monitor{FriendlyName: "DP-1", Output: "DP-1"}, "DP-1"},
		{Monitor{FriendlyName: "Display 2"}, "Display 2"},
	}
	for _, tt := range tests {
		if got := tt.m.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}

func TestFieldString(t *testing.T) {
	if got := (FieldOrientation | FieldWidth | FieldHeight).String(); got != "orientation|width|height" {
		t.Fatalf("String() = %q", got)
	}
	if got := Field(0).String(); got != "none" {
		t.Fatalf("String() = %q", got)
	}
}

func TestFakeAppliesOnlyMarkedFields(t *testing.T) {
	f := NewFake(Monitor{DevicePath: "DP-1", X: 0, Y: 0, Width: 1920, Height: 1080})
	err := f.SetMode("DP-1", ModeChange{Orientation: preset.Portrait, X: 99, Width: 1080, Height: 1920, Fields: FieldOrientation | FieldWidth | FieldHeight})
	if err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	topo, _ := f.Monitors()
	m := topo[0]
	if m.Orientation != preset.Portrait || m.Width != 1080 || m.Height != 1920 || m.X != 0 {
		t.Fatalf("monitor after SetMode = %+v", m)
	}

	boom := errors.New("boom")
	f.FailOn("DP-1", boom)
	if err := f.SetMode("DP-1", ModeChange{Fields: FieldPosition}); !errors.Is(err, boom) {
		t.Fatalf("SetMode error = %v, want boom", err)
	}
	if len(f.Calls()) != 2 {
		t.Fatalf("calls = %d, want 2", len(f.Calls()))
	}
}

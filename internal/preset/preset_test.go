package preset

import (
	"strings"
	"testing"

	"github.com/Z1ni/disp/internal/disperr"
)

func twoDisplayPreset(name string) Preset {
	return Preset{
		Name: name,
		Displays: []DisplaySettings{
			{DevicePath: "A", Orientation: Landscape, Resolution: Resolution{1920, 1080}},
			{DevicePath: "B", Orientation: Portrait, Position: Position{1920, 0}, Resolution: Resolution{1080, 1920}},
		},
	}
}

func TestMatchesCountThenCoverage(t *testing.T) {
	p := twoDisplayPreset("Desk")

	tests := []struct {
		name     string
		topology []string
		want     bool
	}{
		{"same set", []string{"A", "B"}, true},
		{"order independent", []string{"B", "A"}, true},
		{"superset", []string{"A", "B", "C"}, false},
		{"subset", []string{"A"}, false},
		{"disjoint element", []string{"A", "D"}, false},
		{"empty", nil, false},
		{"case sensitive path", []string{"a", "B"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(&p, tt.topology); got != tt.want {
				t.Fatalf("Matches(%v) = %v, want %v", tt.topology, got, tt.want)
			}
		})
	}
}

func TestStoreMatchRecomputesFlags(t *testing.T) {
	s := NewStore()
	s.Upsert(twoDisplayPreset("Desk"))
	s.Upsert(Preset{Name: "Laptop", Displays: []DisplaySettings{{DevicePath: "A"}}})

	if n := s.Match([]string{"A", "B"}); n != 1 {
		t.Fatalf("Match = %d, want 1", n)
	}
	if !s.Presets[0].Applicable || s.Presets[1].Applicable {
		t.Fatalf("unexpected flags: %+v", s.Presets)
	}

	// A topology change must clear stale flags.
	if n := s.Match([]string{"A"}); n != 1 {
		t.Fatalf("Match = %d, want 1", n)
	}
	if s.Presets[0].Applicable || !s.Presets[1].Applicable {
		t.Fatalf("stale flags after topology change: %+v", s.Presets)
	}
}

func TestFindPresetIndexFoldsCase(t *testing.T) {
	s := NewStore()
	s.Upsert(Preset{Name: "Office"})
	s.Upsert(Preset{Name: "Été"})
	s.Upsert(Preset{Name: "ΣΟΦΟΣ"})

	tests := []struct {
		query string
		want  int
		ok    bool
	}{
		{"office", 0, true},
		{"OFFICE", 0, true},
		{"été", 1, true},
		{"ÉTÉ", 1, true},
		{"σοφος", 2, true},
		{"σοφοσ", 2, true},
		{"home", -1, false},
	}
	for _, tt := range tests {
		got, ok := s.FindPresetIndex(tt.query)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FindPresetIndex(%q) = %d, %v; want %d, %v", tt.query, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFindDisplayIsExact(t *testing.T) {
	p := twoDisplayPreset("Desk")
	if _, ok := p.FindDisplay("A"); !ok {
		t.Fatal("expected A to be found")
	}
	if _, ok := p.FindDisplay("a"); ok {
		t.Fatal("device path lookup must be case-sensitive")
	}
}

func TestBuildRejectsEmptyTopology(t *testing.T) {
	_, err := Build("Empty", nil)
	if !disperr.IsKind(err, disperr.KindInvalid) {
		t.Fatalf("Build(nil) err = %v, want invalid", err)
	}
}

func TestBuildRejectsBadNames(t *testing.T) {
	monitors := []MonitorState{{DevicePath: "A"}}
	for _, name := range []string{"", "   ", "tab\tname", strings.Repeat("x", MaxNameLength+1)} {
		if _, err := Build(name, monitors); err == nil {
			t.Errorf("Build(%q) succeeded, want error", name)
		}
	}
	if _, err := Build(strings.Repeat("ä", MaxNameLength), monitors); err != nil {
		t.Errorf("Build(max length) err = %v", err)
	}
}

func TestSaveSnapshotIsIdempotent(t *testing.T) {
	monitors := []MonitorState{
		{DevicePath: "A", Resolution: Resolution{1920, 1080}},
		{DevicePath: "B", Position: Position{1920, 0}, Resolution: Resolution{2560, 1440}},
	}
	s := NewStore()
	if _, _, err := s.SaveSnapshot("Desk", monitors); err != nil {
		t.Fatalf("first save: %v", err)
	}
	once := s.Clone()

	idx, replaced, err := s.SaveSnapshot("desk", monitors)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if idx != 0 || !replaced {
		t.Fatalf("SaveSnapshot = %d, %v; want 0, true", idx, replaced)
	}
	if len(s.Presets) != 1 {
		t.Fatalf("got %d presets, want 1", len(s.Presets))
	}
	// The replacing build carries the new spelling of the name.
	once.Presets[0].Name = "desk"
	if !s.Equal(once) {
		t.Fatalf("second save changed content: %+v", s.Presets)
	}
}

func TestSaveSnapshotReplacePreservesPosition(t *testing.T) {
	s := NewStore()
	for _, name := range []string{"One", "Two", "Office", "Four", "Five"} {
		s.Upsert(Preset{Name: name, Displays: []DisplaySettings{{DevicePath: "OLD-1"}, {DevicePath: "OLD-2"}}})
	}

	idx, replaced, err := s.SaveSnapshot("Office", []MonitorState{{DevicePath: "NEW"}})
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if idx != 2 || !replaced {
		t.Fatalf("SaveSnapshot = %d, %v; want 2, true", idx, replaced)
	}
	if len(s.Presets) != 5 {
		t.Fatalf("got %d presets, want 5", len(s.Presets))
	}
	got := s.Presets[2]
	if got.Name != "Office" || len(got.Displays) != 1 || got.Displays[0].DevicePath != "NEW" {
		t.Fatalf("replaced preset = %+v", got)
	}
	if s.Presets[3].Name != "Four" {
		t.Fatalf("order changed: %+v", s.Presets)
	}
}

func TestAllReturnsCopies(t *testing.T) {
	s := NewStore()
	s.Upsert(twoDisplayPreset("Desk"))

	all := s.All()
	all[0].Displays[0].DevicePath = "mutated"
	if s.Presets[0].Displays[0].DevicePath != "A" {
		t.Fatal("All() leaked internal slice")
	}
}

func TestOrientationParity(t *testing.T) {
	tests := []struct {
		from, to Orientation
		turns    int
		swaps    bool
	}{
		{Landscape, Landscape, 0, false},
		{Landscape, Portrait, 1, true},
		{Landscape, LandscapeFlipped, 2, false},
		{Landscape, PortraitFlipped, 3, true},
		{PortraitFlipped, Landscape, 1, true},
		{Portrait, PortraitFlipped, 2, false},
	}
	for _, tt := range tests {
		if got := tt.from.QuarterTurnsTo(tt.to); got != tt.turns {
			t.Errorf("%v -> %v turns = %d, want %d", tt.from, tt.to, got, tt.turns)
		}
		if got := tt.from.SwapsAxes(tt.to); got != tt.swaps {
			t.Errorf("%v -> %v swaps = %v, want %v", tt.from, tt.to, got, tt.swaps)
		}
	}
}

func TestParseOrientation(t *testing.T) {
	tests := map[string]Orientation{
		"0":                   Landscape,
		"portrait":            Portrait,
		"Landscape (flipped)": LandscapeFlipped,
		"portrait-flipped":    PortraitFlipped,
		"3":                   PortraitFlipped,
	}
	for in, want := range tests {
		got, err := ParseOrientation(in)
		if err != nil || got != want {
			t.Errorf("ParseOrientation(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseOrientation("sideways"); err == nil {
		t.Error("expected error for unknown orientation")
	}
}

package palette

import (
	"strings"
	"testing"

	"github.com/Z1ni/disp/internal/preset"
)

func TestRofiFormatItemUsesSingleNullSeparator(t *testing.T) {
	l := launchers["rofi"]

	out := l.formatItem(Item{Label: "Header", IsHeader: true, Icon: "folder", Meta: "meta"})

	if got := strings.Count(out, "\x00"); got != 1 {
		t.Fatalf("expected exactly 1 NUL separator, got %d (%q)", got, out)
	}
	if !strings.HasPrefix(out, "<b>Header</b>\x00nonselectable\x1ftrue") {
		t.Fatalf("expected bold nonselectable header, got %q", out)
	}
	if !strings.Contains(out, "icon\x1ffolder") || !strings.Contains(out, "meta\x1fmeta") {
		t.Fatalf("expected icon/meta attributes, got %q", out)
	}
}

func TestFormatItemEscapesMarkup(t *testing.T) {
	out := launchers["wofi"].formatItem(Item{Label: "Desk <home> & co"})
	if out != "Desk &lt;home&gt; &amp; co" {
		t.Fatalf("unexpected escaping: %q", out)
	}
	if out := launchers["dmenu"].formatItem(Item{Label: "a\nb"}); out != "a b" {
		t.Fatalf("unexpected dmenu label: %q", out)
	}
}

func TestRofiBuildArgs(t *testing.T) {
	l := launchers["rofi"]
	items := []Item{
		{Label: "head", IsHeader: true},
		{Label: "a"},
		{Label: "b", IsActive: true},
	}
	_, selected := l.formatInput(items)
	args := l.buildArgs("disp", "message", items, selected)

	for _, pair := range [][2]string{{"-format", "i"}, {"-a", "2"}, {"-selected-row", "2"}, {"-p", "disp"}, {"-mesg", "message"}} {
		if !containsArgs(args, pair[0], pair[1]) {
			t.Fatalf("expected %s %s in args, got %v", pair[0], pair[1], args)
		}
	}
}

func TestFormatInputSelectsFirstSelectable(t *testing.T) {
	_, selected := launchers["fuzzel"].formatInput([]Item{{Label: "h", IsHeader: true}, {Label: "x"}})
	if selected != 1 {
		t.Fatalf("selected = %d, want 1", selected)
	}
}

func TestParseSelection(t *testing.T) {
	items := []Item{{Label: "a", Action: "a"}, {Label: "b", Action: "b"}}

	got, err := launchers["rofi"].parseSelection("1", items)
	if err != nil || got.Action != "b" {
		t.Fatalf("rofi index: %v %+v", err, got)
	}
	if _, err := launchers["fuzzel"].parseSelection("5", items); err == nil {
		t.Fatalf("expected out of range error")
	}
	// dmenu reports the label, not the row.
	got, err = launchers["dmenu"].parseSelection("a", items)
	if err != nil || got.Action != "a" {
		t.Fatalf("dmenu label: %v %+v", err, got)
	}
	if _, err := launchers["dmenu"].parseSelection("zzz", items); err == nil {
		t.Fatalf("expected unknown selection error")
	}
}

func TestFormatInputDisambiguatesDuplicateLabels(t *testing.T) {
	items := []Item{{Label: "Dup", Action: "a"}, {Label: "Dup", Action: "b"}}
	launchers["dmenu"].formatInput(items)
	if items[0].Label != "Dup" || items[1].Label != "Dup (2)" {
		t.Fatalf("unexpected labels %#v", items)
	}

	items = []Item{{Label: "Dup", Action: "a"}, {Label: "Dup", Action: "b"}}
	launchers["rofi"].formatInput(items)
	if items[1].Label != "Dup" {
		t.Fatalf("index backends keep labels, got %#v", items)
	}
}

func TestNewBackendUnknown(t *testing.T) {
	if _, err := NewBackend("kmenu"); err == nil || !strings.Contains(err.Error(), "unknown palette backend") {
		t.Fatalf("expected unknown backend error, got %v", err)
	}
}

func TestNewBackendNoneInPath(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if _, err := NewBackend("auto"); err == nil {
		t.Fatalf("expected detection to fail with an empty PATH")
	}
	if _, err := NewBackend("rofi"); err == nil || !strings.Contains(err.Error(), "not found in PATH") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

type scriptedBackend struct {
	picks   []string // labels to pick, in order
	prompts []string
}

func (s *scriptedBackend) Show(prompt string, items []Item, message string) (Item, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.picks) == 0 {
		return Item{}, ErrCancelled
	}
	pick := s.picks[0]
	s.picks = s.picks[1:]
	for _, it := range items {
		if it.Label == pick {
			return it, nil
		}
	}
	return Item{}, ErrCancelled
}

func (s *scriptedBackend) Capabilities() Capabilities { return Capabilities{} }

func TestMenuNavigatesSubmenus(t *testing.T) {
	b := &scriptedBackend{picks: []string{"Header", "Parent →", "← Back", "Parent →", "Leaf"}}
	m := NewMenu(b, "disp", []MenuItem{
		{Label: "Header", IsHeader: true},
		{Label: "Parent", Submenu: []MenuItem{{Label: "Leaf", Action: "leaf"}}},
	})

	action, err := m.Show()
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if action != "leaf" {
		t.Fatalf("action = %q, want leaf", action)
	}
	want := []string{"disp", "disp", "Parent", "disp", "Parent"}
	if strings.Join(b.prompts, ",") != strings.Join(want, ",") {
		t.Fatalf("prompts = %v, want %v", b.prompts, want)
	}
}

func TestMenuCancelAtTopLevel(t *testing.T) {
	m := NewMenu(&scriptedBackend{}, "disp", []MenuItem{{Label: "x", Action: "x"}})
	if _, err := m.Show(); err != ErrCancelled {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestActionRoundTrip(t *testing.T) {
	cases := []Action{
		{Kind: ActionApply, Preset: "Desk: left"},
		{Kind: ActionSave},
		{Kind: ActionOrient, Display: "DP-1", Orientation: preset.PortraitFlipped},
		{Kind: ActionAbout},
		{Kind: ActionReload},
	}
	for _, want := range cases {
		got, err := ParseAction(want.Encode())
		if err != nil {
			t.Fatalf("ParseAction(%q): %v", want.Encode(), err)
		}
		if got != want {
			t.Fatalf("round trip of %q = %+v, want %+v", want.Encode(), got, want)
		}
	}

	for _, bad := range []string{"", "apply:", "orient:1", "orient:9:DP-1", "exit"} {
		if _, err := ParseAction(bad); err == nil {
			t.Fatalf("ParseAction(%q) should fail", bad)
		}
	}
}

func TestBuildTrayMenu(t *testing.T) {
	items := BuildTrayMenu(TrayState{
		Version: "1.0",
		Presets: []TrayPreset{{Name: "Desk", Applicable: true}, {Name: "Travel"}},
		Displays: []TrayDisplay{
			{Display: "DP-1", Name: "DELL U2412M", Orientation: preset.Portrait},
		},
	})

	if items[0].Label != "disp 1.0" || !items[0].IsHeader {
		t.Fatalf("unexpected title %+v", items[0])
	}
	disp := items[2]
	if disp.Label != "DELL U2412M (Portrait)" {
		t.Fatalf("display label = %q", disp.Label)
	}
	orient := disp.Submenu[0].Submenu
	if len(orient) != 4 || !orient[1].IsActive || orient[0].IsActive {
		t.Fatalf("unexpected orientation submenu %+v", orient)
	}
	if a, _ := ParseAction(orient[3].Action); a.Orientation != preset.PortraitFlipped || a.Display != "DP-1" {
		t.Fatalf("unexpected orientation action %+v", a)
	}

	config := items[len(items)-1]
	if config.Label != "Config" {
		t.Fatalf("last item = %q", config.Label)
	}
	var names []string
	for _, it := range config.Submenu {
		if a, err := ParseAction(it.Action); err == nil && a.Kind == ActionApply {
			names = append(names, a.Preset)
		}
	}
	if len(names) != 1 || names[0] != "Desk" {
		t.Fatalf("applicable presets in menu = %v", names)
	}

	empty := BuildTrayMenu(TrayState{Presets: []TrayPreset{{Name: "Travel"}}})
	last := empty[len(empty)-1].Submenu
	found := false
	for _, it := range last {
		if it.Label == "None" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected None placeholder, got %+v", last)
	}
}

func containsArgs(args []string, a string, b string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == a && args[i+1] == b {
			return true
		}
	}
	return false
}

// Package config reads and writes the preset document.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/Z1ni/disp/internal/disperr"
	"github.com/Z1ni/disp/internal/preset"
)

const (
	appDirName     = "disp"
	configFileName = "disp.cfg"
)

// DefaultPath returns the per-user document location,
// $XDG_CONFIG_HOME/disp/disp.cfg (usually ~/.config/disp/disp.cfg).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, appDirName, configFileName), nil
}

// Read loads the document at path. Errors are *disperr.Error values of kind
// IO, Parse or Schema; no partial store is ever returned.
func Read(path string) (*preset.Store, error) {
	canon := canonicalPath(path)
	data, err := os.ReadFile(canon)
	if err != nil {
		return nil, &disperr.Error{Kind: disperr.KindIO, Op: "read", Source: canon, Err: err}
	}
	return Decode(data, canon)
}

// ReadInto reads path and, on success, replaces the content of s. On failure
// s keeps its previous presets and records the error in s.LastError.
func ReadInto(s *preset.Store, path string) error {
	fresh, err := Read(path)
	if err != nil {
		s.SetError(err)
		return err
	}
	s.Replace(fresh)
	return nil
}

// Write encodes s and atomically replaces the file at path, creating the
// parent directory when it is missing. A failure is recorded in s.LastError.
func Write(path string, s *preset.Store) error {
	if err := write(path, s); err != nil {
		s.SetError(err)
		return err
	}
	s.LastError = nil
	return nil
}

func write(path string, s *preset.Store) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &disperr.Error{Kind: disperr.KindIO, Op: "create config directory", Source: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &disperr.Error{Kind: disperr.KindIO, Op: "write", Source: path, Err: err}
	}
	tmpPath := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return &disperr.Error{Kind: disperr.KindIO, Op: "write", Source: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &disperr.Error{Kind: disperr.KindIO, Op: "write", Source: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &disperr.Error{Kind: disperr.KindIO, Op: "write", Source: path, Err: err}
	}
	return nil
}

// EnsureFile writes an empty document to path when no file exists there.
func EnsureFile(path string) (created bool, err error) {
	exists, err := pathExists(path)
	if err != nil {
		return false, &disperr.Error{Kind: disperr.KindIO, Op: "stat", Source: path, Err: err}
	}
	if exists {
		return false, nil
	}
	if err := write(path, preset.NewStore()); err != nil {
		return false, err
	}
	return true, nil
}

type document struct {
	App     appSection    `json:"app"`
	Presets []presetEntry `json:"presets"`
}

type appSection struct {
	NotifyOnStart bool `json:"notify_on_start"`
}

type presetEntry struct {
	Name     string         `json:"name"`
	Displays []displayEntry `json:"displays"`
}

type displayEntry struct {
	Display     string          `json:"display"`
	Orientation int             `json:"orientation"`
	Position    positionEntry   `json:"position"`
	Resolution  resolutionEntry `json:"resolution"`
}

type positionEntry struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type resolutionEntry struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Encode renders s as an indented document. It refuses stores that Decode
// would reject, so everything written can be read back.
func Encode(s *preset.Store) ([]byte, error) {
	doc := document{
		App:     appSection{NotifyOnStart: s.NotifyOnStart},
		Presets: make([]presetEntry, 0, len(s.Presets)),
	}

	seen := make(map[string]int, len(s.Presets))
	for i, p := range s.Presets {
		path := fmt.Sprintf("presets[%d]", i)
		key := preset.FoldName(p.Name)
		if prev, dup := seen[key]; dup {
			return nil, encodeError(path+".name", fmt.Errorf("duplicate preset name %q (already used by presets[%d])", p.Name, prev))
		}
		seen[key] = i

		entry := presetEntry{Name: p.Name, Displays: make([]displayEntry, 0, len(p.Displays))}
		paths := make(map[string]struct{}, len(p.Displays))
		for j, d := range p.Displays {
			dpath := fmt.Sprintf("%s.displays[%d]", path, j)
			if d.DevicePath == "" {
				return nil, encodeError(dpath+".display", errors.New("device path is empty"))
			}
			if _, dup := paths[d.DevicePath]; dup {
				return nil, encodeError(dpath+".display", fmt.Errorf("duplicate display %q in preset", d.DevicePath))
			}
			paths[d.DevicePath] = struct{}{}
			if !d.Orientation.Valid() {
				return nil, encodeError(dpath+".orientation", fmt.Errorf("orientation %d out of range (0-3)", int(d.Orientation)))
			}
			entry.Displays = append(entry.Displays, displayEntry{
				Display:     d.DevicePath,
				Orientation: int(d.Orientation),
				Position:    positionEntry{X: d.Position.X, Y: d.Position.Y},
				Resolution:  resolutionEntry{Width: d.Resolution.Width, Height: d.Resolution.Height},
			})
		}
		doc.Presets = append(doc.Presets, entry)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, &disperr.Error{Kind: disperr.KindEncode, Op: "encode", Err: err}
	}
	return escapeRawRunes(buf.Bytes()), nil
}

// escapeRawRunes rewrites runes that encoding/json leaves raw but the YAML
// reader refuses or folds (DEL, C1 controls, BOM, U+FFFE and U+FFFF) as
// \uXXXX escapes. JSON punctuation is ASCII, so they only occur in strings.
func escapeRawRunes(b []byte) []byte {
	if bytes.IndexFunc(b, needsEscape) < 0 {
		return b
	}
	out := make([]byte, 0, len(b)+16)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if needsEscape(r) {
			out = fmt.Appendf(out, `\u%04x`, r)
		} else {
			out = append(out, b[:size]...)
		}
		b = b[size:]
	}
	return out
}

func needsEscape(r rune) bool {
	return (r >= 0x7f && r <= 0x9f) || r == 0xfeff || r == 0xfffe || r == 0xffff
}

func encodeError(path string, err error) error {
	return &disperr.Error{Kind: disperr.KindEncode, Op: "encode", Path: path, Err: err}
}

func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs
	}
	return real
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

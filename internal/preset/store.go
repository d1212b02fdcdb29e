package preset

import (
	"errors"

	"github.com/Z1ni/disp/internal/disperr"
)

// Store is the in-memory form of the preset document.
type Store struct {
	NotifyOnStart bool
	Presets       []Preset

	// LastError holds the most recent failed read or write of this store.
	LastError *disperr.Error
}

// NewStore returns an empty store, the content of a freshly created document.
func NewStore() *Store {
	return &Store{Presets: []Preset{}}
}

// All returns a copy of the presets in document order.
func (s *Store) All() []Preset {
	out := make([]Preset, len(s.Presets))
	for i, p := range s.Presets {
		out[i] = p.clone()
	}
	return out
}

// FindPresetIndex returns the index of the preset whose name equals name
// case-insensitively.
func (s *Store) FindPresetIndex(name string) (int, bool) {
	key := FoldName(name)
	for i := range s.Presets {
		if FoldName(s.Presets[i].Name) == key {
			return i, true
		}
	}
	return -1, false
}

// Find returns a copy of the preset named name.
func (s *Store) Find(name string) (Preset, bool) {
	idx, ok := s.FindPresetIndex(name)
	if !ok {
		return Preset{}, false
	}
	return s.Presets[idx].clone(), true
}

// Upsert replaces the preset with the same name in place, or appends p.
func (s *Store) Upsert(p Preset) (index int, replaced bool) {
	p = p.clone()
	if idx, ok := s.FindPresetIndex(p.Name); ok {
		s.Presets[idx] = p
		return idx, true
	}
	s.Presets = append(s.Presets, p)
	return len(s.Presets) - 1, false
}

// Replace swaps the whole content of s for other's, keeping s's identity.
func (s *Store) Replace(other *Store) {
	s.NotifyOnStart = other.NotifyOnStart
	s.Presets = other.All()
	s.LastError = nil
}

// Clone returns a deep copy of s.
func (s *Store) Clone() *Store {
	out := &Store{
		NotifyOnStart: s.NotifyOnStart,
		Presets:       s.All(),
	}
	if s.LastError != nil {
		e := *s.LastError
		out.LastError = &e
	}
	return out
}

// Equal compares the persisted fields of two stores. Applicable and
// LastError are ignored.
func (s *Store) Equal(other *Store) bool {
	if s.NotifyOnStart != other.NotifyOnStart || len(s.Presets) != len(other.Presets) {
		return false
	}
	for i := range s.Presets {
		a, b := s.Presets[i], other.Presets[i]
		if a.Name != b.Name || len(a.Displays) != len(b.Displays) {
			return false
		}
		for j := range a.Displays {
			if a.Displays[j] != b.Displays[j] {
				return false
			}
		}
	}
	return true
}

// SetError records err as the store's last error. Errors that are not a
// *disperr.Error are wrapped with KindUnknown.
func (s *Store) SetError(err error) {
	if err == nil {
		s.LastError = nil
		return
	}
	var e *disperr.Error
	if errors.As(err, &e) {
		s.LastError = e
		return
	}
	s.LastError = &disperr.Error{Err: err}
}

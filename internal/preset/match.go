package preset

// Matches reports whether p covers exactly the monitors identified by
// devicePaths: the counts must be equal and every monitor must have an entry
// in p. Order does not matter.
func Matches(p *Preset, devicePaths []string) bool {
	if len(p.Displays) != len(devicePaths) {
		return false
	}
	for _, path := range devicePaths {
		if _, ok := p.FindDisplay(path); !ok {
			return false
		}
	}
	return true
}

// Match recomputes Applicable for every preset against the live topology and
// returns how many presets are applicable.
func (s *Store) Match(devicePaths []string) int {
	n := 0
	for i := range s.Presets {
		s.Presets[i].Applicable = Matches(&s.Presets[i], devicePaths)
		if s.Presets[i].Applicable {
			n++
		}
	}
	return n
}

// ClearApplicable resets every Applicable flag, the state right after a read.
func (s *Store) ClearApplicable() {
	for i := range s.Presets {
		s.Presets[i].Applicable = false
	}
}

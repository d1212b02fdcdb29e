package preset

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxNameLength bounds preset names in runes. The IPC payload check and the
// interactive prompt use the same limit.
const MaxNameLength = 63

// FoldName returns the identity key of a preset name: NFC-normalized and
// Unicode case folded, so "STRASSE", "straße" and "Straße" share one key.
func FoldName(name string) string {
	return cases.Fold().String(norm.NFC.String(name))
}

// NamesEqual compares two preset names case-insensitively.
func NamesEqual(a, b string) bool {
	return FoldName(a) == FoldName(b)
}

// ValidateName checks a user supplied preset name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("preset name is empty")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("preset name is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(name); n > MaxNameLength {
		return fmt.Errorf("preset name is %d characters long (max %d)", n, MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("preset name contains a control character")
		}
	}
	return nil
}

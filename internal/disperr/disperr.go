// Package disperr holds the error vocabulary shared by the preset store,
// the document codec and the applier.
package disperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindIO
	KindParse
	KindSchema
	KindEncode
	KindConsistency
	KindBusy
	KindInvalid
	KindBackend
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindSchema:
		return "schema"
	case KindEncode:
		return "encode"
	case KindConsistency:
		return "consistency"
	case KindBusy:
		return "busy"
	case KindInvalid:
		return "invalid"
	case KindBackend:
		return "backend"
	default:
		return "unknown"
	}
}

// ErrInProgress is returned when an apply is requested while another one is
// still running. Callers surface it as a warning.
var ErrInProgress = &Error{Kind: KindBusy, Err: errors.New("display update already in progress")}

// Error is a classified failure. Path is a document path such as
// presets[1].displays[0].orientation; Source, Line and Column locate it in a
// file when known.
type Error struct {
	Kind   Kind
	Op     string
	Path   string
	Source string
	Line   int
	Column int
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Source != "" && e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Source, e.Line, e.Column, msg)
	}
	if e.Source != "" && e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, msg)
	}
	if e.Source != "" {
		return e.Source + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrInProgress)
// holds for every busy rejection.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Path == "" && t.Source == ""
}

// Message returns the failure text without location prefixes.
func (e *Error) Message() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// New builds an *Error of the given kind.
func New(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a kind to err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

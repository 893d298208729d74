// Package diag defines the diagnostic records produced by every stage of
// the Stone compiler front end.
package diag

import (
	"errors"
	"fmt"
	"sort"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	// SeverityError marks a diagnostic that aborts the pipeline.
	SeverityError Severity = iota
	// SeverityWarning marks a diagnostic that is surfaced but does not abort.
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Position locates a diagnostic in a source file.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Diagnostic is one (severity, file, line, column, message) record.
type Diagnostic struct {
	Severity Severity
	Pos      Position
	Message  string

	// inputOrder records the index of the source file this diagnostic
	// belongs to in the original Compile() input; Sort uses it as the
	// primary key, so diagnostics from different files follow input order.
	inputOrder int
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Pos, d.Message)
}

// New constructs an error-severity Diagnostic.
func New(pos Position, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityError, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Warningf constructs a warning-severity Diagnostic.
func Warningf(pos Position, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// WithInputOrder returns a copy of d tagged with its source file's position
// in the original Compile() input list.
func (d Diagnostic) WithInputOrder(n int) Diagnostic {
	d.inputOrder = n
	return d
}

// Diagnostics is an ordered collection of Diagnostic records, the stream
// described in spec.md section 6.
type Diagnostics []Diagnostic

// HasErrors reports whether any Diagnostic in the stream is SeverityError.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Sort orders the stream in source order within a file and by input file
// order across files, per spec.md section 7's propagation policy.
func (ds Diagnostics) Sort() {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.inputOrder != b.inputOrder {
			return a.inputOrder < b.inputOrder
		}
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line < b.Pos.Line
		}
		return a.Pos.Column < b.Pos.Column
	})
}

// Sentinel errors, one per taxonomy entry in spec.md section 7. Concrete
// Diagnostic-producing helpers below wrap these so callers can match with
// errors.Is against a stable kind independent of message text.
var (
	ErrLexical          = errors.New("lexical error")
	ErrSyntax           = errors.New("syntax error")
	ErrRedefinition     = errors.New("redefinition error")
	ErrUnresolved       = errors.New("unresolved reference")
	ErrKindMismatch     = errors.New("kind mismatch")
	ErrInheritance      = errors.New("inheritance error")
	ErrTypeAttribute    = errors.New("type attribute error")
	ErrDefaultNullable  = errors.New("default/nullability error")
	ErrExample          = errors.New("example error")
	ErrValueContainment = errors.New("value containment cycle")
)

// KindError pairs a Diagnostic with the taxonomy sentinel it belongs to, so
// that both humans (via Error()/Message) and code (via errors.Is) can
// classify it.
type KindError struct {
	Kind error
	Diag Diagnostic
}

func (e *KindError) Error() string { return e.Diag.Error() }
func (e *KindError) Unwrap() error { return e.Kind }

// Wrap tags a Diagnostic with a taxonomy sentinel.
func Wrap(kind error, d Diagnostic) *KindError {
	return &KindError{Kind: kind, Diag: d}
}

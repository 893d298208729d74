package ir

import "github.com/dropbox/stone/diag"

// ExampleFieldValue is a materialized value bound to one struct field or
// union tag inside an Example: either a literal or a resolved pointer to
// another type's example (spec.md section 3's Example row).
type ExampleFieldValue struct {
	Literal *Literal
	Ref     *Example

	// Tag is set when the field's declared type is a Union and the bound
	// identifier names one of its tags directly (spec.md section 8 scenario
	// 2: `status=active` selects Status's `active` tag rather than naming
	// another example's label).
	Tag *UnionTag
}

// Example is a named, fully materialized sample value for a Struct or
// Union, per spec.md section 3 and Phase R7 (spec.md section 4.3).
type Example struct {
	Label       string
	Description string
	Owner       DataType // *Struct or *Union
	Pos         diag.Position

	// Struct examples (including struct-with-enumerated-subtypes):
	Fields     map[string]ExampleFieldValue
	FieldOrder []string
	SubtypeTag     string   // set when Owner.(*Struct).Subtypes != nil
	SubtypeExample *Example // the referenced example of the chosen subtype

	// Union examples:
	Tag      string
	TagValue *ExampleFieldValue // nil when the bound tag is Void
}

// Field returns the materialized value bound to the named field, and
// whether it was present.
func (e *Example) Field(name string) (ExampleFieldValue, bool) {
	v, ok := e.Fields[name]
	return v, ok
}

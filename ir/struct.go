package ir

import "github.com/dropbox/stone/diag"

// StructField is one named, typed slot in a Struct, per spec.md section 3.
type StructField struct {
	Name     string
	Type     DataType
	Nullable bool

	// Default is non-nil only for fields with an explicit `= literal`
	// default (invariant 6: only on non-nullable fields). VoidTagDefault
	// is set instead when the field's type is a Union and the default
	// names one of its Void tags.
	Default       *Literal
	VoidTagDefault *UnionTag

	// Deprecated is the field's trailing `deprecated` keyword (spec.md
	// section 10's domain supplement, grounded on original_source's
	// BabelField.deprecated).
	Deprecated bool

	Doc string
	Pos diag.Position
}

// HasDefault reports whether the field carries any default, scalar or
// union-tag.
func (f *StructField) HasDefault() bool {
	return f.Default != nil || f.VoidTagDefault != nil
}

// SubtypeEntry is one row of a struct's enumerated-subtypes table: a tag
// name paired with the concrete descendant Struct it selects.
type SubtypeEntry struct {
	Tag  string
	Type *Struct
	Pos  diag.Position
}

// SubtypeTable is a struct's `union` / `union*` block: spec.md section 3's
// "enumerated-subtype table".
type SubtypeTable struct {
	Entries []SubtypeEntry

	// CatchAll is true when the block was declared `union*`: if a received
	// type tag matches none of Entries, the enclosing struct itself (not
	// one of its enumerated descendants) is the fallback interpretation.
	// This is a property of the enclosing struct's own enumeration, not of
	// any one entry in it — grounded on original_source's
	// Struct.is_catch_all, which answers "should this struct be used when
	// none of its own enumerated subtypes match", not "which entry is
	// special".
	CatchAll bool
}

// Struct is a product type: an ordered list of fields, an optional
// supertype, and an optional enumerated-subtype table, per spec.md
// section 3.
type Struct struct {
	NameVal   string
	Namespace *Namespace
	Doc       string
	Pos       diag.Position

	Supertype      *Struct
	DirectSubtypes []*Struct // structs that declare `extends` this one

	DeclaredFields []*StructField
	Subtypes       *SubtypeTable

	Examples     map[string]*Example
	ExampleOrder []string
}

func (*Struct) isDataType() {}

// Name returns the struct's unqualified name.
func (s *Struct) Name() string { return s.NameVal }

// AllFields returns the concatenation of the supertype chain's fields
// (outermost ancestor first) followed by this struct's own declared
// fields, per spec.md section 8's field-concatenation invariant.
func (s *Struct) AllFields() []*StructField {
	var chain []*Struct
	for cur := s; cur != nil; cur = cur.Supertype {
		chain = append(chain, cur)
	}
	var fields []*StructField
	for i := len(chain) - 1; i >= 0; i-- {
		fields = append(fields, chain[i].DeclaredFields...)
	}
	return fields
}

// Field looks up a field by name across the full inheritance chain.
func (s *Struct) Field(name string) *StructField {
	for _, f := range s.AllFields() {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// IsLeaf reports whether no other struct declares `extends` against this
// one.
func (s *Struct) IsLeaf() bool {
	return len(s.DirectSubtypes) == 0
}

// RequiredFields returns the fields of AllFields() that are non-nullable
// and carry no default: the set an Example must bind, per invariant 7.
func (s *Struct) RequiredFields() []*StructField {
	var req []*StructField
	for _, f := range s.AllFields() {
		if !f.Nullable && !f.HasDefault() {
			req = append(req, f)
		}
	}
	return req
}

// Example looks up a materialized example by label.
func (s *Struct) Example(label string) *Example {
	return s.Examples[label]
}

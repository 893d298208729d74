package ir

import "github.com/dropbox/stone/diag"

// UnionTag is one named variant of a Union, per spec.md section 3.
type UnionTag struct {
	Name     string
	Type     DataType // Void{} for a pure symbol tag
	CatchAll bool
	Doc      string
	Pos      diag.Position
}

// IsVoid reports whether the tag carries no payload.
func (t *UnionTag) IsVoid() bool {
	_, ok := t.Type.(Void)
	return ok
}

// Union is a tagged sum type, per spec.md section 3. `extends` inverts
// direction relative to Struct: declaring `union X extends Y` makes X the
// *supertype* of Y, and Y, the subtype, inherits every tag of X. Y's
// Supertype therefore points up to X, mirroring Struct.Supertype, and X's
// Subtypes lists Y, the union X names in its own `extends` clause (the
// design-notes "Open Question" on union direction is resolved this way;
// see DESIGN.md).
type Union struct {
	NameVal   string
	Namespace *Namespace
	Doc       string
	Pos       diag.Position

	Supertype *Union
	Subtypes  []*Union

	DeclaredTags []UnionTag

	Examples     map[string]*Example
	ExampleOrder []string
}

func (*Union) isDataType() {}

// Name returns the union's unqualified name.
func (u *Union) Name() string { return u.NameVal }

// AllTags returns the supertype chain's tags (outermost ancestor first)
// followed by this union's own declared tags.
func (u *Union) AllTags() []UnionTag {
	var chain []*Union
	for cur := u; cur != nil; cur = cur.Supertype {
		chain = append(chain, cur)
	}
	var tags []UnionTag
	for i := len(chain) - 1; i >= 0; i-- {
		tags = append(tags, chain[i].DeclaredTags...)
	}
	return tags
}

// Tag looks up a tag by name across the full supertype chain.
func (u *Union) Tag(name string) *UnionTag {
	tags := u.AllTags()
	for i := range tags {
		if tags[i].Name == name {
			return &tags[i]
		}
	}
	return nil
}

// CatchAllTag returns the at-most-one catch-all tag across the whole
// chain, or nil.
func (u *Union) CatchAllTag() *UnionTag {
	tags := u.AllTags()
	for i := range tags {
		if tags[i].CatchAll {
			return &tags[i]
		}
	}
	return nil
}

// Example looks up a materialized example by label.
func (u *Union) Example(label string) *Example {
	return u.Examples[label]
}

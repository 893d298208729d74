package ir

import "github.com/dropbox/stone/diag"

// Alias is a named shorthand for a type reference, per spec.md section 3.
// Alias is not itself a DataType: every field/tag/route that names an
// alias is resolved transitively to the alias's ultimate DataType during
// Phase R3 (spec.md section 4.3), so only Target ever appears in a frozen
// StructField.Type/UnionTag.Type/Route triple.
type Alias struct {
	NameVal   string
	Namespace *Namespace
	Target    DataType
	Doc       string
	Pos       diag.Position
}

// Name returns the alias's unqualified name.
func (a *Alias) Name() string { return a.NameVal }

// Def is implemented by every top-level, namespace-scoped definition:
// *Alias, *Struct, *Union, *Route.
type Def interface {
	Name() string
}

// Namespace is a logical group of definitions contributed by one or more
// source files, per spec.md section 3.
type Namespace struct {
	NameVal string
	Doc     string

	// Defs holds every top-level definition in declaration order (merged
	// across all files contributing to this namespace, in input-file
	// order); ByName is the same set keyed for O(1) lookup.
	Defs   []Def
	ByName map[string]Def

	Imports []*Namespace

	// Routes is Defs filtered to *Route, preserved for convenient
	// iteration by generators (spec.md section 4.4).
	Routes []*Route

	// Linearization is the Phase R10 topological order (spec.md section
	// 4.3): every *Struct and *Union in this namespace, ordered so a type
	// always appears after everything it depends on by inheritance or by
	// required-field value.
	Linearization []DataType

	frozen bool
}

// Name returns the namespace's name.
func (n *Namespace) Name() string { return n.NameVal }

// Lookup finds a definition by unqualified name within this namespace
// only (no import traversal).
func (n *Namespace) Lookup(name string) (Def, bool) {
	d, ok := n.ByName[name]
	return d, ok
}

// AddDef registers a definition in declaration order. Panics if the
// namespace has already been frozen (via (*Api).Freeze) — the only
// enforcement point for spec.md section 6's "any attempt to mutate [the
// frozen IR] is a programming error" contract. Only internal/resolver
// calls this, during Phase R2.
func (n *Namespace) AddDef(d Def) {
	if n.frozen {
		panic("stone/ir: AddDef called on a frozen Namespace")
	}
	if n.ByName == nil {
		n.ByName = make(map[string]Def)
	}
	n.Defs = append(n.Defs, d)
	n.ByName[d.Name()] = d
	if r, ok := d.(*Route); ok {
		n.Routes = append(n.Routes, r)
	}
}

// SetLinearization installs the Phase R10 result. Panics if frozen.
func (n *Namespace) SetLinearization(order []DataType) {
	if n.frozen {
		panic("stone/ir: SetLinearization called on a frozen Namespace")
	}
	n.Linearization = order
}

// Package ast defines the untyped syntax tree produced by the parser, per
// spec.md section 4.2. Nodes here carry only what the grammar gives us:
// names, literals, and unresolved TypeRefs. The resolver (package
// internal/resolver) is the function from this tree to the frozen IR
// (package ir). After parsing, the only mutation of a node is the optional
// rewrite of File.Namespace and Import.Name that stone.Compile applies for
// stone.WithNamespaceAliasResolution.
package ast

import "github.com/dropbox/stone/diag"

// File is the parse result of a single source file: exactly one namespace
// declaration plus its imports and definitions.
type File struct {
	Path      string
	Namespace string
	NsPos     diag.Position
	Imports   []Import
	Defs      []Def
}

// Import is an `import <ident>` line.
type Import struct {
	Name string
	Pos  diag.Position
}

// Def is implemented by every top-level definition kind: *Alias, *Struct,
// *Union, *Route.
type Def interface {
	defName() string
	defPos() diag.Position
	isDef()
}

// Name returns a Def's declared identifier, useful for generic symbol-table
// code in the resolver.
func Name(d Def) string { return d.defName() }

// Pos returns a Def's source position.
func Pos(d Def) diag.Position { return d.defPos() }

// LiteralKind tags the concrete value held by a Literal.
type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralString
	LiteralBool
	LiteralNull
)

// Literal is a parsed constant value: an int/float/string/bool/null token.
type Literal struct {
	Kind   LiteralKind
	Int    int64
	Float  float64
	String string
	Bool   bool
	Pos    diag.Position
}

// Arg is one argument to a TypeRef's attribute list: either positional
// (Name == "") or named (`name = value`). The value is either a Literal
// (the common case: numeric/string/bool attribute constraints) or a nested
// TypeRef (needed for List's positional element-type argument, e.g.
// `List(UInt64, max_items=10)`); exactly one of Literal/Type is non-nil.
type Arg struct {
	Name    string
	Literal *Literal
	Type    *TypeRef
	Pos     diag.Position
}

// TypeRef is a syntactic reference to a type: possibly namespace-qualified,
// possibly parameterized with attribute arguments, possibly nullable.
type TypeRef struct {
	Namespace string // qualifier before '.', empty if unqualified
	Name      string
	Args      []Arg
	Nullable  bool
	Pos       diag.Position
}

// Doc is a docstring attached to a definition, field, or tag.
type Doc struct {
	Text string
	Pos  diag.Position
}

// Field is one struct field declaration. A default is either a Literal
// (`= "x"`, `= 10`, `= null`, ...) or, for a union-typed field, a bare
// identifier naming one of the union's Void tags (`= active`) — exactly one
// of Default/DefaultTag is set when either is present. This mirrors
// original_source's StoneTagRef default form (stone/lang/tower.py), which
// spec.md section 4.3 Phase R6 requires ("union-typed field default must be
// the bare name of a Void tag") but spec.md section 4.2's simplified
// grammar sketch omits, the same way it omitted List's positional
// TypeRef argument.
type Field struct {
	Name       string
	Type       TypeRef
	Default    *Literal
	DefaultTag string
	// Deprecated is the field's trailing `deprecated` keyword (spec.md
	// section 10's domain supplement, grounded on original_source's
	// babel/parser.py `deprecation : DEPRECATED | empty` production).
	Deprecated bool
	Doc        string
	Pos        diag.Position
}

// SubtypeEntry is one `tag TypeRef` line inside a struct's `union`
// enumerated-subtypes block.
type SubtypeEntry struct {
	Tag  string
	Type TypeRef
	Pos  diag.Position
}

// Subtypes is a struct's enumerated-subtypes block (`union` / `union*`).
type Subtypes struct {
	CatchAll bool
	Entries  []SubtypeEntry
	Pos      diag.Position
}

// ExampleValueKind tags what an example field binding resolves to
// syntactically: a literal constant, or a reference to another example by
// label (resolved against the bound field's type in the resolver).
type ExampleValueKind int

const (
	ExampleValueLiteral ExampleValueKind = iota
	ExampleValueRef
)

// ExampleValue is the right-hand side of an `field = ...` binding inside an
// example block.
type ExampleValue struct {
	Kind    ExampleValueKind
	Literal Literal
	Ref     string
	Pos     diag.Position
}

// ExampleBinding is one `field = value` line inside an example block.
type ExampleBinding struct {
	Field string
	Value ExampleValue
	Pos   diag.Position
}

// Example is a labeled sample value for the enclosing struct or union.
type Example struct {
	Label       string
	Description string
	Bindings    []ExampleBinding
	Pos         diag.Position
}

// Alias is a `alias Name = TypeRef` definition.
type Alias struct {
	NameVal string
	Target  TypeRef
	Pos     diag.Position
}

func (a *Alias) defName() string       { return a.NameVal }
func (a *Alias) defPos() diag.Position { return a.Pos }
func (a *Alias) isDef()                {}

// Struct is a `struct Name [extends Parent]:` definition.
type Struct struct {
	NameVal  string
	Extends  string
	ExtPos   diag.Position
	Doc      string
	Subtypes *Subtypes
	Fields   []Field
	Examples []Example
	Pos      diag.Position
}

func (s *Struct) defName() string       { return s.NameVal }
func (s *Struct) defPos() diag.Position { return s.Pos }
func (s *Struct) isDef()                {}

// Union is a `union Name [extends Parent]` definition.
type Union struct {
	NameVal  string
	Extends  string
	ExtPos   diag.Position
	Doc      string
	Tags     []Tag
	Examples []Example
	Pos      diag.Position
}

func (u *Union) defName() string       { return u.NameVal }
func (u *Union) defPos() diag.Position { return u.Pos }
func (u *Union) isDef()                {}

// Tag is one union variant: a name, an optional type (Void if nil), and an
// optional catch-all marker.
type Tag struct {
	Name     string
	Type     *TypeRef
	CatchAll bool
	Doc      string
	Pos      diag.Position
}

// AttrEntry is one `key = literal` line inside a route's `attrs` block.
type AttrEntry struct {
	Key   string
	Value Literal
	Pos   diag.Position
}

// Route is a `route Name(req, resp, err)` definition. Deprecated and
// DeprecatedBy are the trailing `deprecated (by IDENT)?` clause spec.md
// section 10 adds, grounded on original_source's stone/lang/tower.py
// `route._token.deprecated` handling.
type Route struct {
	NameVal      string
	Request      TypeRef
	Response     TypeRef
	Error        TypeRef
	Deprecated   bool
	DeprecatedBy string
	DeprecatedPos diag.Position
	Doc          string
	Attrs        []AttrEntry
	Pos          diag.Position
}

func (r *Route) defName() string       { return r.NameVal }
func (r *Route) defPos() diag.Position { return r.Pos }
func (r *Route) isDef()                {}

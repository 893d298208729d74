// Package ir defines the frozen, typed, cross-linked intermediate
// representation Stone hands to code generators, per spec.md sections 3
// and 4.4. Everything in this package is constructed exactly once, by
// internal/resolver's Resolve, and is read-only from that point on: the
// only constructor function here is New (for the root Api, called by
// internal/resolver), and mutation through AddDef, SetLinearization or
// EnsureNamespace after (*Api).Freeze panics.
package ir

import "regexp"

// DataType is the tagged-variant interface every Stone type belongs to:
// *Primitive, *List, *Struct, *Union, Void, or Any. Consumers switch on the
// concrete type; there is no stringly-typed "Kind" field to keep in sync.
type DataType interface {
	isDataType()
}

// PrimitiveKind enumerates Stone's built-in scalar types.
type PrimitiveKind int

const (
	Binary PrimitiveKind = iota
	Boolean
	Float32
	Float64
	Int32
	Int64
	UInt32
	UInt64
	String
	Timestamp
)

func (k PrimitiveKind) String() string {
	switch k {
	case Binary:
		return "Binary"
	case Boolean:
		return "Boolean"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case UInt32:
		return "UInt32"
	case UInt64:
		return "UInt64"
	case String:
		return "String"
	case Timestamp:
		return "Timestamp"
	default:
		return "UnknownPrimitive"
	}
}

// Primitive is a built-in scalar type together with its attribute
// constraints, per spec.md section 3's Primitive row.
type Primitive struct {
	Kind PrimitiveKind

	MinValue, MaxValue *float64 // Int/UInt/Float kinds
	MinLength, MaxLength *int64 // String/Binary kinds
	Pattern              *regexp.Regexp
	PatternSource        string
	Format               string // Timestamp strftime-style format string
}

func (*Primitive) isDataType() {}

// List is a homogeneous sequence type.
type List struct {
	Element            DataType
	MinItems, MaxItems *int64
}

func (*List) isDataType() {}

// Void is the unit type: catch-all union tags, routes with no body, and
// struct fields with no payload all use Void.
type Void struct{}

func (Void) isDataType() {}

// Any is the open/untyped slot described in spec.md section 10's domain
// supplements. It carries no attribute constraints and cannot be given a
// default value.
type Any struct{}

func (Any) isDataType() {}

// LiteralKind tags the concrete value held by a Literal.
type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralString
	LiteralBool
	LiteralNull
)

// Literal is a fully evaluated constant: a default value, an attribute
// argument, or a materialized example field value.
type Literal struct {
	Kind   LiteralKind
	Int    int64
	Float  float64
	String string
	Bool   bool
}

package ir

import "github.com/dropbox/stone/diag"

// AttrEntry is one `key = literal` line in a route's attrs block. Attrs is
// an ordered slice rather than a map so generators see the declaration
// order, per spec.md section 10's domain supplement.
type AttrEntry struct {
	Key   string
	Value Literal
}

// Route is an API endpoint: a name, a request/response/error triple, and a
// free-form attribute bag, per spec.md section 3.
type Route struct {
	NameVal   string
	Namespace *Namespace
	Doc       string
	Pos       diag.Position

	Request  DataType
	Response DataType
	Error    DataType

	Attrs []AttrEntry

	// Deprecated and DeprecatedBy are the route's trailing
	// `deprecated (by IDENT)?` clause (spec.md section 10's domain
	// supplement, grounded on original_source's DeprecationInfo). A
	// non-deprecated route whose request/response/error references a
	// deprecated route's replacement target is not itself a well-formed
	// concept in Stone — Phase R8 instead warns when a route names a
	// DeprecatedBy target that is itself deprecated (a dangling
	// deprecation chain).
	Deprecated   bool
	DeprecatedBy *Route
}

// Name returns the route's unqualified name.
func (r *Route) Name() string { return r.NameVal }

// Attr looks up an attribute value by key.
func (r *Route) Attr(key string) (Literal, bool) {
	for _, a := range r.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return Literal{}, false
}

// ReferencedUserTypes returns the set of user-defined DataTypes (Struct or
// Union) referenced by this route's request, response, or error, unwrapping
// a single level of List, per spec.md section 4.4's IR model helper.
func (r *Route) ReferencedUserTypes() []DataType {
	var out []DataType
	add := func(dt DataType) {
		if lst, ok := dt.(*List); ok {
			dt = lst.Element
		}
		switch dt.(type) {
		case *Struct, *Union:
			for _, seen := range out {
				if seen == dt {
					return
				}
			}
			out = append(out, dt)
		}
	}
	add(r.Request)
	add(r.Response)
	add(r.Error)
	return out
}

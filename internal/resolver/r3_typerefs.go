package resolver

import (
	"regexp"

	"github.com/dropbox/stone/diag"
	"github.com/dropbox/stone/internal/ast"
	"github.com/dropbox/stone/ir"
)

// builtinPrimitive maps a primitive identifier to the PrimitiveKind it
// resolves to. List, Void, and Any are built-ins too but aren't
// PrimitiveKind values, so they're handled directly in resolveTypeRef.
var builtinPrimitive = map[string]ir.PrimitiveKind{
	"Binary":    ir.Binary,
	"Boolean":   ir.Boolean,
	"Float32":   ir.Float32,
	"Float64":   ir.Float64,
	"Int32":     ir.Int32,
	"Int64":     ir.Int64,
	"UInt32":    ir.UInt32,
	"UInt64":    ir.UInt64,
	"String":    ir.String,
	"Timestamp": ir.Timestamp,
}

// phaseR3TypeRefResolution resolves every ast.TypeRef reachable from an
// alias right-hand side, a field type, a tag type, a route triple, or an
// enumerated-subtype entry into an ir.DataType, per spec.md section 4.3
// Phase R3. It populates ir.Alias.Target, ir.Struct.DeclaredFields,
// ir.Struct.Subtypes, ir.Union.DeclaredTags, and ir.Route.Request/
// Response/Error — everything Phase R2 left as a bare placeholder.
//
// extends targets are deliberately NOT resolved here: the grammar takes a
// bare IDENT for `extends`, not a TypeRef (spec.md section 4.2), so there
// is no attribute list or nullability to validate and Phase R4 resolves
// the name directly.
func phaseR3TypeRefResolution(c *ctx) diag.Diagnostics {
	col := c.collector()

	for _, nsName := range sortedKeys(c.namespaceFiles) {
		ns, _ := c.api.Namespace(nsName)
		for _, def := range ns.Defs {
			switch d := def.(type) {
			case *ir.Alias:
				resolveAlias(c, col, d)
			case *ir.Struct:
				resolveStructFields(c, col, ns, d)
			case *ir.Union:
				resolveUnionTags(c, col, ns, d)
			case *ir.Route:
				resolveRoute(c, col, ns, d)
			}
		}
	}

	return col.Diagnostics()
}

// resolveTypeRef resolves ref against ns's symbol table (falling back to a
// matching import for a namespace-qualified reference), the built-in
// primitive table, or transitively through an alias. It returns nil (after
// recording a diagnostic) when resolution fails.
func resolveTypeRef(c *ctx, col *diag.Collector, ns *ir.Namespace, ref ast.TypeRef) ir.DataType {
	if ref.Namespace == "" {
		if kind, ok := builtinPrimitive[ref.Name]; ok {
			return resolvePrimitive(col, kind, ref)
		}
		switch ref.Name {
		case "List":
			return resolveList(c, col, ns, ref)
		case "Void":
			if len(ref.Args) > 0 {
				col.Errorf(diag.ErrTypeAttribute, ref.Pos, "Void takes no attribute arguments")
			}
			return ir.Void{}
		case "Any":
			if len(ref.Args) > 0 {
				col.Errorf(diag.ErrTypeAttribute, ref.Pos, "Any takes no attribute arguments")
			}
			return ir.Any{}
		}
	}

	def, ok := lookupNamed(ns, ref)
	if !ok {
		col.Errorf(diag.ErrUnresolved, ref.Pos, "unresolved type reference %q", qualifiedName(ref))
		return nil
	}
	if len(ref.Args) > 0 {
		col.Errorf(diag.ErrKindMismatch, ref.Pos, "%q does not take attribute arguments", qualifiedName(ref))
	}
	switch d := def.(type) {
	case *ir.Alias:
		return resolveAlias(c, col, d)
	case *ir.Struct:
		return d
	case *ir.Union:
		return d
	case *ir.Route:
		col.Errorf(diag.ErrKindMismatch, ref.Pos, "%q is a route, not a type", qualifiedName(ref))
		return nil
	}
	return nil
}

// resolveNonNullable resolves ref and additionally rejects a trailing `?`,
// for the handful of contexts (List element, alias target, union tag type,
// route triple, enumerated-subtype entry) where the IR carries no
// nullability slot to record it in.
func resolveNonNullable(c *ctx, col *diag.Collector, ns *ir.Namespace, ref ast.TypeRef, context string) ir.DataType {
	dt := resolveTypeRef(c, col, ns, ref)
	if ref.Nullable {
		col.Errorf(diag.ErrKindMismatch, ref.Pos, "%s cannot be nullable", context)
	}
	return dt
}

func lookupNamed(ns *ir.Namespace, ref ast.TypeRef) (ir.Def, bool) {
	if ref.Namespace != "" {
		for _, imp := range ns.Imports {
			if imp.Name() == ref.Namespace {
				return imp.Lookup(ref.Name)
			}
		}
		return nil, false
	}
	return ns.Lookup(ref.Name)
}

func qualifiedName(ref ast.TypeRef) string {
	if ref.Namespace == "" {
		return ref.Name
	}
	return ref.Namespace + "." + ref.Name
}

// resolveAlias resolves a's target, memoizing the result and detecting
// cycles via c.aliasState, per spec.md section 4.3 Phase R3's "aliases are
// resolved transitively; an alias cycle is an error."
func resolveAlias(c *ctx, col *diag.Collector, a *ir.Alias) ir.DataType {
	switch c.aliasState[a] {
	case visited:
		return a.Target
	case visiting:
		col.Errorf(diag.ErrUnresolved, a.Pos, "alias %q participates in a cycle", a.Name())
		return nil
	}
	c.aliasState[a] = visiting

	astAlias, _ := c.astOf[a].(*ast.Alias)
	if astAlias == nil {
		c.aliasState[a] = visited
		return nil
	}
	a.Target = resolveNonNullable(c, col, a.Namespace, astAlias.Target, "an alias target")
	c.aliasState[a] = visited
	return a.Target
}

func resolveStructFields(c *ctx, col *diag.Collector, ns *ir.Namespace, s *ir.Struct) {
	astStruct, _ := c.astOf[s].(*ast.Struct)
	if astStruct == nil {
		return
	}
	for _, f := range astStruct.Fields {
		dt := resolveTypeRef(c, col, ns, f.Type)
		s.DeclaredFields = append(s.DeclaredFields, &ir.StructField{
			Name:       f.Name,
			Type:       dt,
			Nullable:   f.Type.Nullable,
			Deprecated: f.Deprecated,
			Doc:        f.Doc,
			Pos:        f.Pos,
		})
	}
	if astStruct.Subtypes != nil {
		resolveSubtypes(c, col, ns, s, astStruct.Subtypes)
	}
}

// resolveSubtypes resolves the struct-shaped names in s's `union`/`union*`
// block. It does not yet validate that each named subtype actually
// `extends` s, that tags don't collide with fields, or the ancestor/
// descendant enumeration rules — those need the inheritance graph Phase R4
// builds, and are checked in Phase R5.
func resolveSubtypes(c *ctx, col *diag.Collector, ns *ir.Namespace, s *ir.Struct, sb *ast.Subtypes) {
	table := &ir.SubtypeTable{CatchAll: sb.CatchAll}
	for _, e := range sb.Entries {
		dt := resolveNonNullable(c, col, ns, e.Type, "an enumerated-subtype entry")
		if dt == nil {
			continue
		}
		st, ok := dt.(*ir.Struct)
		if !ok {
			col.Errorf(diag.ErrKindMismatch, e.Pos, "enumerated subtype %q must be a struct", e.Tag)
			continue
		}
		table.Entries = append(table.Entries, ir.SubtypeEntry{Tag: e.Tag, Type: st, Pos: e.Pos})
	}
	s.Subtypes = table
}

func resolveUnionTags(c *ctx, col *diag.Collector, ns *ir.Namespace, u *ir.Union) {
	astUnion, _ := c.astOf[u].(*ast.Union)
	if astUnion == nil {
		return
	}
	for _, t := range astUnion.Tags {
		tag := ir.UnionTag{Name: t.Name, Type: ir.Void{}, CatchAll: t.CatchAll, Doc: t.Doc, Pos: t.Pos}
		if t.Type != nil {
			tag.Type = resolveNonNullable(c, col, ns, *t.Type, "a union tag type")
		}
		u.DeclaredTags = append(u.DeclaredTags, tag)
	}
}

func resolveRoute(c *ctx, col *diag.Collector, ns *ir.Namespace, r *ir.Route) {
	astRoute, _ := c.astOf[r].(*ast.Route)
	if astRoute == nil {
		return
	}
	r.Request = resolveNonNullable(c, col, ns, astRoute.Request, "a route request type")
	r.Response = resolveNonNullable(c, col, ns, astRoute.Response, "a route response type")
	r.Error = resolveNonNullable(c, col, ns, astRoute.Error, "a route error type")
}

// resolvePrimitive builds a *ir.Primitive from ref's attribute arguments,
// per spec.md section 4.3 Phase R3's "attribute arguments on primitives are
// validated here".
func resolvePrimitive(col *diag.Collector, kind ir.PrimitiveKind, ref ast.TypeRef) ir.DataType {
	p := &ir.Primitive{Kind: kind}
	switch kind {
	case ir.String, ir.Binary:
		applyLengthArgs(col, ref, p)
	case ir.Int32, ir.Int64, ir.UInt32, ir.UInt64, ir.Float32, ir.Float64:
		applyValueArgs(col, ref, p)
	case ir.Timestamp:
		applyTimestampArgs(col, ref, p)
	case ir.Boolean:
		if len(ref.Args) > 0 {
			col.Errorf(diag.ErrTypeAttribute, ref.Pos, "Boolean takes no attribute arguments")
		}
	}
	return p
}

func applyLengthArgs(col *diag.Collector, ref ast.TypeRef, p *ir.Primitive) {
	for i := range ref.Args {
		a := ref.Args[i]
		if a.Name == "" {
			col.Errorf(diag.ErrKindMismatch, a.Pos, "%s takes only keyword attribute arguments", p.Kind)
			continue
		}
		switch a.Name {
		case "min_length":
			p.MinLength = intArg(col, a)
		case "max_length":
			p.MaxLength = intArg(col, a)
		case "pattern":
			if p.Kind != ir.String {
				col.Errorf(diag.ErrTypeAttribute, a.Pos, "pattern is only valid on String")
				continue
			}
			s, ok := stringArg(col, a)
			if !ok {
				continue
			}
			re, err := regexp.Compile(s)
			if err != nil {
				col.Errorf(diag.ErrTypeAttribute, a.Pos, "invalid pattern %q: %s", s, err)
				continue
			}
			p.Pattern = re
			p.PatternSource = s
		default:
			col.Errorf(diag.ErrTypeAttribute, a.Pos, "unknown attribute %q for %s", a.Name, p.Kind)
		}
	}
	if p.MinLength != nil && p.MaxLength != nil && *p.MinLength > *p.MaxLength {
		col.Errorf(diag.ErrTypeAttribute, ref.Pos, "min_length (%d) exceeds max_length (%d)", *p.MinLength, *p.MaxLength)
	}
}

func applyValueArgs(col *diag.Collector, ref ast.TypeRef, p *ir.Primitive) {
	for i := range ref.Args {
		a := ref.Args[i]
		if a.Name == "" {
			col.Errorf(diag.ErrKindMismatch, a.Pos, "%s takes only keyword attribute arguments", p.Kind)
			continue
		}
		switch a.Name {
		case "min_value":
			p.MinValue = numericArg(col, a)
		case "max_value":
			p.MaxValue = numericArg(col, a)
		default:
			col.Errorf(diag.ErrTypeAttribute, a.Pos, "unknown attribute %q for %s", a.Name, p.Kind)
		}
	}
	if p.MinValue != nil && p.MaxValue != nil && *p.MinValue > *p.MaxValue {
		col.Errorf(diag.ErrTypeAttribute, ref.Pos, "min_value (%v) exceeds max_value (%v)", *p.MinValue, *p.MaxValue)
	}
}

// applyTimestampArgs enforces spec.md section 4.3 Phase R3's "timestamp
// `format` required and syntactically non-empty". A bare positional string
// is accepted as shorthand for `format=...`, per original_source's
// `Timestamp("%Y")` usage (spec.md section 8 scenario 2).
func applyTimestampArgs(col *diag.Collector, ref ast.TypeRef, p *ir.Primitive) {
	var formatArg *ast.Arg
	for i := range ref.Args {
		a := &ref.Args[i]
		if a.Name == "" {
			if a.Literal != nil && a.Literal.Kind == ast.LiteralString {
				formatArg = a
				continue
			}
			col.Errorf(diag.ErrKindMismatch, a.Pos, "Timestamp takes only a format string")
			continue
		}
		if a.Name != "format" {
			col.Errorf(diag.ErrTypeAttribute, a.Pos, "unknown attribute %q for Timestamp", a.Name)
			continue
		}
		formatArg = a
	}
	if formatArg == nil {
		col.Errorf(diag.ErrTypeAttribute, ref.Pos, "Timestamp requires a format attribute")
		return
	}
	s, ok := stringArg(col, *formatArg)
	if !ok {
		return
	}
	if s == "" {
		col.Errorf(diag.ErrTypeAttribute, formatArg.Pos, "Timestamp format must be non-empty")
		return
	}
	p.Format = s
}

func resolveList(c *ctx, col *diag.Collector, ns *ir.Namespace, ref ast.TypeRef) ir.DataType {
	l := &ir.List{}
	elementSeen := false
	for i := range ref.Args {
		a := ref.Args[i]
		if a.Name == "" {
			if elementSeen {
				col.Errorf(diag.ErrKindMismatch, a.Pos, "List takes exactly one positional element-type argument")
				continue
			}
			if a.Type == nil {
				col.Errorf(diag.ErrKindMismatch, a.Pos, "List's positional argument must be a type")
				continue
			}
			l.Element = resolveNonNullable(c, col, ns, *a.Type, "a List element type")
			elementSeen = true
			continue
		}
		switch a.Name {
		case "min_items":
			l.MinItems = intArg(col, a)
		case "max_items":
			l.MaxItems = intArg(col, a)
		default:
			col.Errorf(diag.ErrTypeAttribute, a.Pos, "unknown attribute %q for List", a.Name)
		}
	}
	if !elementSeen {
		col.Errorf(diag.ErrKindMismatch, ref.Pos, "List requires a positional element-type argument")
	}
	if l.MinItems != nil && l.MaxItems != nil && *l.MinItems > *l.MaxItems {
		col.Errorf(diag.ErrTypeAttribute, ref.Pos, "min_items (%d) exceeds max_items (%d)", *l.MinItems, *l.MaxItems)
	}
	return l
}

func intArg(col *diag.Collector, a ast.Arg) *int64 {
	if a.Literal == nil || a.Literal.Kind != ast.LiteralInt {
		col.Errorf(diag.ErrTypeAttribute, a.Pos, "%q must be an integer literal", a.Name)
		return nil
	}
	v := a.Literal.Int
	return &v
}

func numericArg(col *diag.Collector, a ast.Arg) *float64 {
	if a.Literal == nil {
		col.Errorf(diag.ErrTypeAttribute, a.Pos, "%q must be a numeric literal", a.Name)
		return nil
	}
	switch a.Literal.Kind {
	case ast.LiteralInt:
		v := float64(a.Literal.Int)
		return &v
	case ast.LiteralFloat:
		v := a.Literal.Float
		return &v
	default:
		col.Errorf(diag.ErrTypeAttribute, a.Pos, "%q must be a numeric literal", a.Name)
		return nil
	}
}

func stringArg(col *diag.Collector, a ast.Arg) (string, bool) {
	if a.Literal == nil || a.Literal.Kind != ast.LiteralString {
		col.Errorf(diag.ErrTypeAttribute, a.Pos, "%q must be a string literal", a.Name)
		return "", false
	}
	return a.Literal.String, true
}

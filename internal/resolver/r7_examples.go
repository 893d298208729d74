package resolver

import (
	"github.com/dropbox/stone/diag"
	"github.com/dropbox/stone/internal/ast"
	"github.com/dropbox/stone/ir"
)

// exampleKey identifies one example by its owning type and label, the same
// two-part key spec.md section 3 uses ("An example is keyed by (type,
// label)").
type exampleKey struct {
	owner ir.DataType
	label string
}

// phaseR7Examples implements spec.md section 4.3 Phase R7: every struct and
// union example is registered, then materialized bottom-up so a cross-
// example reference always finds its target already built. Materialization
// is memoized per (owner, label) with a visiting/visited guard, so examples
// that reference each other in any order still resolve correctly and a
// genuine cycle is caught exactly once.
func phaseR7Examples(c *ctx) diag.Diagnostics {
	col := c.collector()

	for _, nsName := range sortedKeys(c.namespaceFiles) {
		ns, _ := c.api.Namespace(nsName)
		for _, def := range ns.Defs {
			switch d := def.(type) {
			case *ir.Struct:
				registerStructExamples(c, col, d)
			case *ir.Union:
				registerUnionExamples(c, col, d)
			}
		}
	}

	for _, nsName := range sortedKeys(c.namespaceFiles) {
		ns, _ := c.api.Namespace(nsName)
		for _, def := range ns.Defs {
			switch d := def.(type) {
			case *ir.Struct:
				for _, label := range d.ExampleOrder {
					resolveExample(c, col, d, label)
				}
			case *ir.Union:
				for _, label := range d.ExampleOrder {
					resolveExample(c, col, d, label)
				}
			}
		}
	}

	return col.Diagnostics()
}

func registerStructExamples(c *ctx, col *diag.Collector, s *ir.Struct) {
	astStruct, _ := c.astOf[s].(*ast.Struct)
	if astStruct == nil {
		return
	}
	s.Examples = map[string]*ir.Example{}
	for _, ex := range astStruct.Examples {
		if _, dup := s.Examples[ex.Label]; dup {
			col.Errorf(diag.ErrRedefinition, ex.Pos, "duplicate example label %q on %q", ex.Label, s.Name())
			continue
		}
		e := &ir.Example{Label: ex.Label, Description: ex.Description, Owner: s, Pos: ex.Pos}
		s.Examples[ex.Label] = e
		s.ExampleOrder = append(s.ExampleOrder, ex.Label)
		c.exampleAst[exampleKey{s, ex.Label}] = ex
	}
}

func registerUnionExamples(c *ctx, col *diag.Collector, u *ir.Union) {
	astUnion, _ := c.astOf[u].(*ast.Union)
	if astUnion == nil {
		return
	}
	u.Examples = map[string]*ir.Example{}
	for _, ex := range astUnion.Examples {
		if _, dup := u.Examples[ex.Label]; dup {
			col.Errorf(diag.ErrRedefinition, ex.Pos, "duplicate example label %q on %q", ex.Label, u.Name())
			continue
		}
		e := &ir.Example{Label: ex.Label, Description: ex.Description, Owner: u, Pos: ex.Pos}
		u.Examples[ex.Label] = e
		u.ExampleOrder = append(u.ExampleOrder, ex.Label)
		c.exampleAst[exampleKey{u, ex.Label}] = ex
	}
}

func ownerExamples(owner ir.DataType) map[string]*ir.Example {
	switch o := owner.(type) {
	case *ir.Struct:
		return o.Examples
	case *ir.Union:
		return o.Examples
	default:
		return nil
	}
}

// resolveExample materializes owner's example named label, recursing into
// any cross-example reference it binds first. It is safe to call the same
// (owner, label) pair any number of times: the second and later calls
// return the cached *ir.Example without reprocessing it.
func resolveExample(c *ctx, col *diag.Collector, owner ir.DataType, label string) *ir.Example {
	key := exampleKey{owner, label}
	ex := ownerExamples(owner)[label]
	if ex == nil {
		return nil
	}

	switch c.exampleState[key] {
	case visited:
		return ex
	case visiting:
		col.Errorf(diag.ErrExample, ex.Pos, "example %q of %q participates in a cross-reference cycle", label, ownerName(owner))
		return ex
	}

	c.exampleState[key] = visiting
	astEx := c.exampleAst[key]
	switch o := owner.(type) {
	case *ir.Struct:
		materializeStructExample(c, col, o, ex, astEx)
	case *ir.Union:
		materializeUnionExample(c, col, o, ex, astEx)
	}
	c.exampleState[key] = visited
	return ex
}

func ownerName(owner ir.DataType) string {
	switch o := owner.(type) {
	case *ir.Struct:
		return o.Name()
	case *ir.Union:
		return o.Name()
	default:
		return "?"
	}
}

// materializeStructExample implements the struct half of Phase R7: every
// required field (spec.md invariant 7) must be bound, and a
// struct-with-enumerated-subtypes example takes the specialized form
// handled by materializeSubtypeExample instead.
func materializeStructExample(c *ctx, col *diag.Collector, s *ir.Struct, ex *ir.Example, astEx ast.Example) {
	if s.Subtypes != nil {
		materializeSubtypeExample(c, col, s, ex, astEx)
		return
	}

	ex.Fields = map[string]ir.ExampleFieldValue{}
	bound := map[string]bool{}
	for _, b := range astEx.Bindings {
		field := s.Field(b.Field)
		if field == nil {
			col.Errorf(diag.ErrExample, b.Pos, "%q has no field %q", s.Name(), b.Field)
			continue
		}
		val, ok := resolveExampleValue(c, col, field.Type, field.Nullable, b.Value)
		if !ok {
			continue
		}
		ex.Fields[b.Field] = val
		ex.FieldOrder = append(ex.FieldOrder, b.Field)
		bound[b.Field] = true
	}

	for _, f := range s.RequiredFields() {
		if !bound[f.Name] {
			col.Errorf(diag.ErrExample, ex.Pos, "example %q of %q is missing required field %q", ex.Label, s.Name(), f.Name)
		}
	}
}

// materializeSubtypeExample implements the enumerated-subtypes example form
// spec.md section 4.3 Phase R7 describes: exactly one binding, keyed by one
// of the struct's own enumerated tags, whose value references an already-
// materialized example of that tag's concrete struct.
func materializeSubtypeExample(c *ctx, col *diag.Collector, s *ir.Struct, ex *ir.Example, astEx ast.Example) {
	if len(astEx.Bindings) != 1 {
		col.Errorf(diag.ErrExample, ex.Pos,
			"example %q of enumerated-subtype struct %q must identify exactly one subtype", ex.Label, s.Name())
		return
	}
	b := astEx.Bindings[0]

	var entry *ir.SubtypeEntry
	for i := range s.Subtypes.Entries {
		if s.Subtypes.Entries[i].Tag == b.Field {
			entry = &s.Subtypes.Entries[i]
			break
		}
	}
	if entry == nil {
		col.Errorf(diag.ErrExample, b.Pos, "%q does not enumerate subtype tag %q", s.Name(), b.Field)
		return
	}
	if b.Value.Kind != ast.ExampleValueRef {
		col.Errorf(diag.ErrExample, b.Pos, "subtype data for %q must reference an example of %q", b.Field, entry.Type.Name())
		return
	}

	sub := resolveExample(c, col, entry.Type, b.Value.Ref)
	if sub == nil {
		col.Errorf(diag.ErrExample, b.Pos, "unresolved example reference %q", b.Value.Ref)
		return
	}
	ex.SubtypeTag = b.Field
	ex.SubtypeExample = sub
}

// materializeUnionExample implements the union half of Phase R7: exactly
// one tag is bound; a Void tag's value must be the literal `null`, a typed
// tag's value is resolved the same way a struct field's value is.
func materializeUnionExample(c *ctx, col *diag.Collector, u *ir.Union, ex *ir.Example, astEx ast.Example) {
	if len(astEx.Bindings) != 1 {
		col.Errorf(diag.ErrExample, ex.Pos, "union example %q must bind exactly one tag", ex.Label)
		return
	}
	b := astEx.Bindings[0]

	tag := u.Tag(b.Field)
	if tag == nil {
		col.Errorf(diag.ErrExample, b.Pos, "%q has no tag %q", u.Name(), b.Field)
		return
	}
	ex.Tag = b.Field

	if tag.IsVoid() {
		if b.Value.Kind != ast.ExampleValueLiteral || b.Value.Literal.Kind != ast.LiteralNull {
			col.Errorf(diag.ErrExample, b.Pos, "Void tag %q must be bound with null", b.Field)
		}
		return
	}

	val, ok := resolveExampleValue(c, col, tag.Type, false, b.Value)
	if !ok {
		return
	}
	ex.TagValue = &val
}

// resolveExampleValue resolves one bound value against the type expected
// at that position (a struct field's type, or a typed union tag's payload
// type). A bare identifier is first tried as a direct Void-tag selection
// when the expected type is a Union (spec.md section 8 scenario 2), and
// otherwise as a cross-reference to another example of a Struct or Union
// type; a literal is converted and typechecked the same way Phase R6
// typechecks a field default.
func resolveExampleValue(c *ctx, col *diag.Collector, dt ir.DataType, nullable bool, v ast.ExampleValue) (ir.ExampleFieldValue, bool) {
	if v.Kind == ast.ExampleValueRef {
		if u, ok := dt.(*ir.Union); ok {
			if tag := u.Tag(v.Ref); tag != nil {
				if !tag.IsVoid() {
					col.Errorf(diag.ErrExample, v.Pos, "tag %q is not Void; it cannot be bound by name alone", v.Ref)
					return ir.ExampleFieldValue{}, false
				}
				return ir.ExampleFieldValue{Tag: tag}, true
			}
		}
		switch dt.(type) {
		case *ir.Struct, *ir.Union:
			ref := resolveExample(c, col, dt, v.Ref)
			if ref == nil {
				col.Errorf(diag.ErrExample, v.Pos, "unresolved example reference %q", v.Ref)
				return ir.ExampleFieldValue{}, false
			}
			return ir.ExampleFieldValue{Ref: ref}, true
		default:
			col.Errorf(diag.ErrExample, v.Pos, "%q cannot be resolved against a non-composite type", v.Ref)
			return ir.ExampleFieldValue{}, false
		}
	}

	lit := convertLiteral(v.Literal)
	if lit.Kind == ir.LiteralNull {
		if !nullable {
			col.Errorf(diag.ErrExample, v.Pos, "null is only valid for a nullable field")
			return ir.ExampleFieldValue{}, false
		}
		return ir.ExampleFieldValue{Literal: &lit}, true
	}
	if !literalAssignable(col, dt, lit, v.Pos) {
		return ir.ExampleFieldValue{}, false
	}
	return ir.ExampleFieldValue{Literal: &lit}, true
}

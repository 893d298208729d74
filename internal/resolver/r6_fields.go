package resolver

import (
	"github.com/dropbox/stone/diag"
	"github.com/dropbox/stone/internal/ast"
	"github.com/dropbox/stone/ir"
)

// phaseR6FieldValidation implements spec.md section 4.3 Phase R6: field
// name uniqueness (including inherited names), default-value
// assignability, and union tag uniqueness/catch-all rules. It runs after
// Phase R4 has guaranteed every inheritance chain is acyclic, so
// s.Supertype.AllFields() and u.AllTags() are safe to walk without a
// recursion guard.
func phaseR6FieldValidation(c *ctx) diag.Diagnostics {
	col := c.collector()

	for _, nsName := range sortedKeys(c.namespaceFiles) {
		ns, _ := c.api.Namespace(nsName)
		for _, def := range ns.Defs {
			switch d := def.(type) {
			case *ir.Struct:
				validateStructFields(c, col, d)
			case *ir.Union:
				validateUnionTags(col, d)
			}
		}
	}

	return col.Diagnostics()
}

func validateStructFields(c *ctx, col *diag.Collector, s *ir.Struct) {
	inherited := map[string]bool{}
	if s.Supertype != nil {
		for _, f := range s.Supertype.AllFields() {
			inherited[f.Name] = true
		}
	}
	seen := map[string]bool{}
	for _, f := range s.DeclaredFields {
		switch {
		case inherited[f.Name]:
			col.Errorf(diag.ErrRedefinition, f.Pos, "field %q shadows an inherited field", f.Name)
		case seen[f.Name]:
			col.Errorf(diag.ErrRedefinition, f.Pos, "duplicate field %q", f.Name)
		}
		seen[f.Name] = true
	}

	astStruct, _ := c.astOf[s].(*ast.Struct)
	if astStruct == nil {
		return
	}
	for i, af := range astStruct.Fields {
		if i >= len(s.DeclaredFields) {
			break
		}
		validateFieldDefault(col, s.DeclaredFields[i], af)
	}
}

// validateFieldDefault implements invariant 6 and spec.md section 4.3
// Phase R6's default rules: a default only on a non-nullable field, typed
// to the field's declared primitive under its attribute constraints, or —
// for a union-typed field — the bare name of one of the union's Void tags.
func validateFieldDefault(col *diag.Collector, field *ir.StructField, af ast.Field) {
	hasLiteral := af.Default != nil
	hasTag := af.DefaultTag != ""
	if !hasLiteral && !hasTag {
		return
	}
	if field.Nullable {
		col.Errorf(diag.ErrDefaultNullable, af.Pos,
			"nullable field %q cannot have an explicit default", field.Name)
		return
	}

	if hasTag {
		u, ok := field.Type.(*ir.Union)
		if !ok {
			col.Errorf(diag.ErrDefaultNullable, af.Pos,
				"field %q is not union-typed; cannot default to tag %q", field.Name, af.DefaultTag)
			return
		}
		tag := u.Tag(af.DefaultTag)
		if tag == nil {
			col.Errorf(diag.ErrUnresolved, af.Pos, "union %q has no tag %q", u.Name(), af.DefaultTag)
			return
		}
		if !tag.IsVoid() {
			col.Errorf(diag.ErrDefaultNullable, af.Pos,
				"union-typed field default must name a Void tag; %q is not Void", af.DefaultTag)
			return
		}
		field.VoidTagDefault = tag
		return
	}

	lit := convertLiteral(*af.Default)
	if literalAssignable(col, field.Type, lit, af.Pos) {
		field.Default = &lit
	}
}

func convertLiteral(l ast.Literal) ir.Literal {
	switch l.Kind {
	case ast.LiteralInt:
		return ir.Literal{Kind: ir.LiteralInt, Int: l.Int}
	case ast.LiteralFloat:
		return ir.Literal{Kind: ir.LiteralFloat, Float: l.Float}
	case ast.LiteralString:
		return ir.Literal{Kind: ir.LiteralString, String: l.String}
	case ast.LiteralBool:
		return ir.Literal{Kind: ir.LiteralBool, Bool: l.Bool}
	default:
		return ir.Literal{Kind: ir.LiteralNull}
	}
}

// literalAssignable implements invariant 8 ("min ≤ max where both present;
// regex compiles") as it applies to a specific literal value, and the
// taxonomy's "default literal not assignable" error (spec.md section 7,
// kind 8).
func literalAssignable(col *diag.Collector, dt ir.DataType, lit ir.Literal, pos diag.Position) bool {
	p, ok := dt.(*ir.Primitive)
	if !ok {
		col.Errorf(diag.ErrDefaultNullable, pos, "a default literal is only assignable to a primitive type")
		return false
	}
	switch p.Kind {
	case ir.String, ir.Timestamp:
		if lit.Kind != ir.LiteralString {
			col.Errorf(diag.ErrDefaultNullable, pos, "default for %s must be a string literal", p.Kind)
			return false
		}
		if p.MinLength != nil && int64(len(lit.String)) < *p.MinLength {
			col.Errorf(diag.ErrDefaultNullable, pos, "default %q is shorter than min_length", lit.String)
			return false
		}
		if p.MaxLength != nil && int64(len(lit.String)) > *p.MaxLength {
			col.Errorf(diag.ErrDefaultNullable, pos, "default %q is longer than max_length", lit.String)
			return false
		}
		if p.Pattern != nil && !p.Pattern.MatchString(lit.String) {
			col.Errorf(diag.ErrDefaultNullable, pos, "default %q does not match pattern %q", lit.String, p.PatternSource)
			return false
		}
		return true
	case ir.Binary:
		if lit.Kind != ir.LiteralString {
			col.Errorf(diag.ErrDefaultNullable, pos, "default for Binary must be a string literal")
			return false
		}
		return true
	case ir.Boolean:
		if lit.Kind != ir.LiteralBool {
			col.Errorf(diag.ErrDefaultNullable, pos, "default for Boolean must be true or false")
			return false
		}
		return true
	case ir.Int32, ir.Int64, ir.UInt32, ir.UInt64, ir.Float32, ir.Float64:
		var v float64
		switch lit.Kind {
		case ir.LiteralInt:
			v = float64(lit.Int)
		case ir.LiteralFloat:
			v = lit.Float
		default:
			col.Errorf(diag.ErrDefaultNullable, pos, "default for %s must be numeric", p.Kind)
			return false
		}
		if p.MinValue != nil && v < *p.MinValue {
			col.Errorf(diag.ErrDefaultNullable, pos, "default %v is less than min_value", v)
			return false
		}
		if p.MaxValue != nil && v > *p.MaxValue {
			col.Errorf(diag.ErrDefaultNullable, pos, "default %v exceeds max_value", v)
			return false
		}
		return true
	default:
		return true
	}
}

// validateUnionTags implements tag-name uniqueness (including inherited)
// and the "at most one catch-all, and it must be Void" rule, across the
// full AllTags() chain.
func validateUnionTags(col *diag.Collector, u *ir.Union) {
	seen := map[string]bool{}
	catchAlls := 0
	for _, t := range u.AllTags() {
		if seen[t.Name] {
			col.Errorf(diag.ErrRedefinition, t.Pos, "duplicate union tag %q", t.Name)
		}
		seen[t.Name] = true

		if t.CatchAll {
			catchAlls++
			if !t.IsVoid() {
				col.Errorf(diag.ErrKindMismatch, t.Pos, "catch-all tag %q must be Void", t.Name)
			}
		}
	}
	if catchAlls > 1 {
		col.Errorf(diag.ErrInheritance, u.Pos, "union %q's chain declares more than one catch-all tag", u.Name())
	}
}

package resolver

import (
	"github.com/dropbox/stone/diag"
	"github.com/dropbox/stone/internal/ast"
	"github.com/dropbox/stone/ir"
)

// phaseR4InheritanceWiring links every struct/union that declares `extends`
// to its named target and rejects cycles, per spec.md section 4.3 Phase R4.
// Catch-all-conflict and field/tag-collision checks that depend on the
// fully wired chain are deferred to Phase R5 (enumerated subtypes) and
// Phase R6 (struct fields and union tags), which run after this phase has
// guaranteed the chain is acyclic.
func phaseR4InheritanceWiring(c *ctx) diag.Diagnostics {
	col := c.collector()

	for _, nsName := range sortedKeys(c.namespaceFiles) {
		ns, _ := c.api.Namespace(nsName)
		for _, def := range ns.Defs {
			switch d := def.(type) {
			case *ir.Struct:
				wireStructExtends(c, col, ns, d)
			case *ir.Union:
				wireUnionExtends(c, col, ns, d)
			}
		}
	}

	for _, nsName := range sortedKeys(c.namespaceFiles) {
		ns, _ := c.api.Namespace(nsName)
		for _, def := range ns.Defs {
			switch d := def.(type) {
			case *ir.Struct:
				if s := findStructCycle(d); s != nil {
					col.Errorf(diag.ErrInheritance, s.Pos, "struct %q's inheritance chain is cyclic", s.Name())
				}
			case *ir.Union:
				if u := findUnionCycle(d); u != nil {
					col.Errorf(diag.ErrInheritance, u.Pos, "union %q's subtype chain is cyclic", u.Name())
				}
			}
		}
	}

	return col.Diagnostics()
}

func wireStructExtends(c *ctx, col *diag.Collector, ns *ir.Namespace, s *ir.Struct) {
	astStruct, _ := c.astOf[s].(*ast.Struct)
	if astStruct == nil || astStruct.Extends == "" {
		return
	}
	target, ok := ns.Lookup(astStruct.Extends)
	if !ok {
		col.Errorf(diag.ErrUnresolved, astStruct.ExtPos, "undefined extends target %q", astStruct.Extends)
		return
	}
	parent, ok := target.(*ir.Struct)
	if !ok {
		col.Errorf(diag.ErrKindMismatch, astStruct.ExtPos, "%q is not a struct", astStruct.Extends)
		return
	}
	s.Supertype = parent
	parent.DirectSubtypes = append(parent.DirectSubtypes, s)
}

// wireUnionExtends implements spec.md section 4.3 Phase R4's inverted union
// semantics: `union u extends Y` makes u the supertype of Y (Y is the
// subtype, inheriting u's tags), not the other way around as with structs.
func wireUnionExtends(c *ctx, col *diag.Collector, ns *ir.Namespace, u *ir.Union) {
	astUnion, _ := c.astOf[u].(*ast.Union)
	if astUnion == nil || astUnion.Extends == "" {
		return
	}
	target, ok := ns.Lookup(astUnion.Extends)
	if !ok {
		col.Errorf(diag.ErrUnresolved, astUnion.ExtPos, "undefined extends target %q", astUnion.Extends)
		return
	}
	child, ok := target.(*ir.Union)
	if !ok {
		col.Errorf(diag.ErrKindMismatch, astUnion.ExtPos, "%q is not a union", astUnion.Extends)
		return
	}
	if child.Supertype != nil {
		col.Errorf(diag.ErrInheritance, astUnion.ExtPos,
			"union %q already has a supertype (%q)", child.Name(), child.Supertype.Name())
		return
	}
	child.Supertype = u
	u.Subtypes = append(u.Subtypes, child)
}

// findStructCycle walks s's Supertype chain looking for a repeated
// pointer. It returns the struct where the cycle was detected, or nil.
func findStructCycle(s *ir.Struct) *ir.Struct {
	seen := map[*ir.Struct]bool{}
	for cur := s; cur != nil; cur = cur.Supertype {
		if seen[cur] {
			return s
		}
		seen[cur] = true
	}
	return nil
}

func findUnionCycle(u *ir.Union) *ir.Union {
	seen := map[*ir.Union]bool{}
	for cur := u; cur != nil; cur = cur.Supertype {
		if seen[cur] {
			return u
		}
		seen[cur] = true
	}
	return nil
}

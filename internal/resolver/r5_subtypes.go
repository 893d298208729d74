package resolver

import (
	"github.com/dropbox/stone/diag"
	"github.com/dropbox/stone/ir"
)

// phaseR5SubtypeValidation checks every struct's enumerated-subtypes table
// against the inheritance graph Phase R4 built, per spec.md section 4.3
// Phase R5.
func phaseR5SubtypeValidation(c *ctx) diag.Diagnostics {
	col := c.collector()

	enumerating := func(f func(*ir.Struct)) {
		for _, nsName := range sortedKeys(c.namespaceFiles) {
			ns, _ := c.api.Namespace(nsName)
			for _, def := range ns.Defs {
				if s, ok := def.(*ir.Struct); ok && s.Subtypes != nil {
					f(s)
				}
			}
		}
	}

	enumerating(func(s *ir.Struct) {
		validateSubtypeEntries(col, s)
		validateEnumerationChainStart(col, s)
		validateConcreteDescendants(col, s)
	})

	// Catch-all uniqueness is a whole-tree property, so it's only evaluated
	// once per tree, starting from each tree's root.
	enumerating(func(s *ir.Struct) {
		if s.Supertype != nil && s.Supertype.Subtypes != nil {
			return // not a root; it's reached by the walk from its own root
		}
		checkCatchAllUniqueness(col, s)
	})

	return col.Diagnostics()
}

// validateSubtypeEntries implements spec.md section 4.3 Phase R5 rules 1
// and 2: every enumerated name must be a struct that extends s (directly
// or transitively), tags must not collide with any field name, and no
// struct or tag name may be repeated in the same block.
func validateSubtypeEntries(col *diag.Collector, s *ir.Struct) {
	fieldNames := map[string]bool{}
	for _, f := range s.AllFields() {
		fieldNames[f.Name] = true
	}

	seenTag := map[string]bool{}
	seenType := map[*ir.Struct]bool{}
	for _, e := range s.Subtypes.Entries {
		if seenTag[e.Tag] {
			col.Errorf(diag.ErrRedefinition, e.Pos, "duplicate enumerated-subtype tag %q", e.Tag)
		}
		seenTag[e.Tag] = true

		if fieldNames[e.Tag] {
			col.Errorf(diag.ErrInheritance, e.Pos,
				"subtype tag collides with field name %q", e.Tag)
		}

		if e.Type == nil {
			continue // already reported (unresolved or not-a-struct) in Phase R3
		}
		if seenType[e.Type] {
			col.Errorf(diag.ErrInheritance, e.Pos,
				"struct %q can only be specified once as a subtype", e.Type.Name())
		}
		seenType[e.Type] = true

		if !extendsTransitively(e.Type, s) {
			col.Errorf(diag.ErrInheritance, e.Pos,
				"%q is not a subtype of %q", e.Type.Name(), s.Name())
		}
	}
}

// validateEnumerationChainStart implements rule 3: the enumeration pattern
// cannot start mid-chain — if s enumerates and has a supertype, that
// supertype must enumerate too.
func validateEnumerationChainStart(col *diag.Collector, s *ir.Struct) {
	if s.Supertype != nil && s.Supertype.Subtypes == nil {
		col.Errorf(diag.ErrInheritance, s.Pos,
			"%q cannot enumerate subtypes because its parent %q does not",
			s.Name(), s.Supertype.Name())
	}
}

// validateConcreteDescendants implements rule 4: a struct may only sit in
// the middle of an enumerated-subtypes tree if it too enumerates its own
// subtypes. A leaf-shaped entry that other structs go on to `extends` is
// an error, grounded on original_source's "Subtype cannot be extended."
func validateConcreteDescendants(col *diag.Collector, s *ir.Struct) {
	for _, e := range s.Subtypes.Entries {
		if e.Type == nil {
			continue
		}
		if e.Type.Subtypes == nil && len(e.Type.DirectSubtypes) > 0 {
			col.Errorf(diag.ErrInheritance, e.Pos,
				"subtype %q cannot itself be extended without enumerating its own subtypes",
				e.Type.Name())
		}
	}
}

// checkCatchAllUniqueness implements rule 5 across the whole tree rooted
// at root: at most one struct in the tree may declare `union*`.
func checkCatchAllUniqueness(col *diag.Collector, root *ir.Struct) {
	var catchAlls []*ir.Struct
	var walk func(s *ir.Struct)
	walk = func(s *ir.Struct) {
		if s.Subtypes == nil {
			return
		}
		if s.Subtypes.CatchAll {
			catchAlls = append(catchAlls, s)
		}
		for _, e := range s.Subtypes.Entries {
			if e.Type != nil {
				walk(e.Type)
			}
		}
	}
	walk(root)

	if len(catchAlls) > 1 {
		for _, s := range catchAlls {
			col.Errorf(diag.ErrInheritance, s.Pos,
				"multiple catch-all structs (%q) in one enumerated-subtype tree", s.Name())
		}
	}
}

func extendsTransitively(child, ancestor *ir.Struct) bool {
	for cur := child.Supertype; cur != nil; cur = cur.Supertype {
		if cur == ancestor {
			return true
		}
	}
	return false
}

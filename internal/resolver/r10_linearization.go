package resolver

import (
	"github.com/dropbox/stone/diag"
	"github.com/dropbox/stone/ir"
)

// phaseR10Linearization implements spec.md section 4.3 Phase R10: within
// each namespace, every user-defined Struct/Union is ordered so that it
// comes after its supertype (inheritance) and after every non-nullable
// field's Struct/Union type (value reference) — the order generators that
// emit one type declaration at a time need. Earlier phases already
// guarantee this dependency graph is acyclic: R4 for the supertype edges,
// R9 for the non-nullable-struct-field edges; a non-nullable Union-typed
// field only ever adds an edge to a Union, whose own single edge (its
// Supertype) never points back to a Struct, so the extended graph walked
// here cannot cycle either.
func phaseR10Linearization(c *ctx) diag.Diagnostics {
	for _, nsName := range sortedKeys(c.namespaceFiles) {
		ns, _ := c.api.Namespace(nsName)

		state := map[ir.DataType]visitState{}
		var order []ir.DataType

		var visit func(dt ir.DataType)
		visit = func(dt ir.DataType) {
			if state[dt] != unvisited {
				return
			}
			state[dt] = visiting
			switch d := dt.(type) {
			case *ir.Struct:
				if d.Supertype != nil {
					visit(d.Supertype)
				}
				for _, f := range d.DeclaredFields {
					if f.Nullable {
						continue
					}
					switch f.Type.(type) {
					case *ir.Struct, *ir.Union:
						visit(f.Type)
					}
				}
			case *ir.Union:
				if d.Supertype != nil {
					visit(d.Supertype)
				}
			}
			state[dt] = visited
			// Types imported from another namespace are walked for their
			// dependencies but belong to that namespace's order, not this one.
			switch d := dt.(type) {
			case *ir.Struct:
				if d.Namespace != ns {
					return
				}
			case *ir.Union:
				if d.Namespace != ns {
					return
				}
			}
			order = append(order, dt)
		}

		for _, def := range ns.Defs {
			switch d := def.(type) {
			case *ir.Struct:
				visit(d)
			case *ir.Union:
				visit(d)
			}
		}

		ns.SetLinearization(order)
	}

	return nil
}

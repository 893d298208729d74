package resolver

import (
	"github.com/dropbox/stone/diag"
	"github.com/dropbox/stone/ir"
)

// phaseR9ValueContainment implements spec.md section 4.3 Phase R9: a
// struct S directly contains a struct T's value whenever S has a
// non-nullable field typed T — an infinite value would result if this
// "contains" relation closed into a cycle. A field marked nullable, or
// typed to a Union (which only ever materializes one tag's value, not
// all of them), breaks the chain and is never followed.
func phaseR9ValueContainment(c *ctx) diag.Diagnostics {
	col := c.collector()

	for _, nsName := range sortedKeys(c.namespaceFiles) {
		ns, _ := c.api.Namespace(nsName)
		for _, def := range ns.Defs {
			if s, ok := def.(*ir.Struct); ok {
				detectContainmentCycle(col, s, c.containmentState)
			}
		}
	}

	return col.Diagnostics()
}

func detectContainmentCycle(col *diag.Collector, s *ir.Struct, state map[*ir.Struct]visitState) {
	switch state[s] {
	case visited:
		return
	case visiting:
		col.Errorf(diag.ErrValueContainment, s.Pos,
			"%q participates in a value-containment cycle: a chain of required, non-nullable fields leads back to it", s.Name())
		return
	}
	state[s] = visiting
	for _, f := range s.AllFields() {
		if f.Nullable {
			continue
		}
		if t, ok := f.Type.(*ir.Struct); ok {
			detectContainmentCycle(col, t, state)
		}
	}
	state[s] = visited
}

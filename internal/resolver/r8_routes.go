package resolver

import (
	"github.com/dropbox/stone/diag"
	"github.com/dropbox/stone/internal/ast"
	"github.com/dropbox/stone/ir"
)

// phaseR8Routes implements spec.md section 4.3 Phase R8: route-name
// uniqueness was already enforced by Phase R2's shared per-namespace
// symbol table, and Phase R3 already resolved the request/response/error
// triple, so this phase's remaining job is converting the attribute bag's
// literals and wiring the deprecation-clause domain supplement (spec.md
// section 10, item 2).
func phaseR8Routes(c *ctx) diag.Diagnostics {
	col := c.collector()

	for _, nsName := range sortedKeys(c.namespaceFiles) {
		ns, _ := c.api.Namespace(nsName)
		for _, def := range ns.Defs {
			r, ok := def.(*ir.Route)
			if !ok {
				continue
			}
			astRoute, _ := c.astOf[r].(*ast.Route)
			if astRoute == nil {
				continue
			}
			resolveRouteAttrs(r, astRoute)
			resolveRouteDeprecation(col, ns, r, astRoute)
		}
	}

	return col.Diagnostics()
}

// resolveRouteAttrs converts the attribute bag's already-literal values
// (the grammar's AttrsBlock only accepts Literal, per spec.md section
// 4.2), preserving declaration order per spec.md section 10, item 4.
func resolveRouteAttrs(r *ir.Route, astRoute *ast.Route) {
	for _, a := range astRoute.Attrs {
		r.Attrs = append(r.Attrs, ir.AttrEntry{Key: a.Key, Value: convertLiteral(a.Value)})
	}
}

// resolveRouteDeprecation wires ir.Route.Deprecated/DeprecatedBy from the
// parsed deprecation clause. A `by` target must name another Route in the
// same namespace (original_source/test/test_babel.py rejects both an
// undefined target and a target that names a struct), and a route whose
// replacement is itself already deprecated gets a non-fatal warning — a
// dangling deprecation chain.
func resolveRouteDeprecation(col *diag.Collector, ns *ir.Namespace, r *ir.Route, astRoute *ast.Route) {
	r.Deprecated = astRoute.Deprecated
	if astRoute.DeprecatedBy == "" {
		return
	}
	target, ok := ns.Lookup(astRoute.DeprecatedBy)
	if !ok {
		col.Errorf(diag.ErrUnresolved, astRoute.DeprecatedPos,
			"deprecated-by target %q is not defined in namespace %q", astRoute.DeprecatedBy, ns.Name())
		return
	}
	replacement, ok := target.(*ir.Route)
	if !ok {
		col.Errorf(diag.ErrKindMismatch, astRoute.DeprecatedPos,
			"deprecated-by target %q must be a route", astRoute.DeprecatedBy)
		return
	}
	r.DeprecatedBy = replacement
	if replacement.Deprecated {
		col.Warnf(astRoute.DeprecatedPos,
			"route %q is deprecated in favor of %q, which is itself deprecated", r.Name(), replacement.Name())
	}
}

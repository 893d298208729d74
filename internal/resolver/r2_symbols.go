package resolver

import (
	"github.com/dropbox/stone/diag"
	"github.com/dropbox/stone/internal/ast"
	"github.com/dropbox/stone/ir"
)

// phaseR2NameRegistration walks every namespace's top-level definitions (in
// input file order) and inserts a placeholder ir.Def for each into that
// namespace's symbol table, per spec.md section 4.3 Phase R2. Placeholders
// record only name, kind, owning namespace, position, and (for structs,
// unions and routes) docstring — every other field is filled in by later
// phases. Duplicate definition names within one namespace are
// reported here; import wiring also happens here since it only needs
// names, not resolved types.
func phaseR2NameRegistration(c *ctx) diag.Diagnostics {
	col := c.collector()

	for _, nsName := range sortedKeys(c.namespaceFiles) {
		ns := c.api.EnsureNamespace(nsName)
		for _, f := range c.namespaceFiles[nsName] {
			for _, def := range f.Defs {
				registerDef(c, col, ns, def)
			}
		}
	}

	// Wire imports once every namespace exists (Phase R1 already verified
	// every import target is declared somewhere in the input).
	for _, nsName := range sortedKeys(c.namespaceFiles) {
		ns, _ := c.api.Namespace(nsName)
		seen := map[string]bool{}
		for _, f := range c.namespaceFiles[nsName] {
			for _, imp := range f.Imports {
				if seen[imp.Name] {
					continue
				}
				seen[imp.Name] = true
				if target, ok := c.api.Namespace(imp.Name); ok {
					ns.Imports = append(ns.Imports, target)
				}
			}
		}
	}

	return col.Diagnostics()
}

func registerDef(c *ctx, col *diag.Collector, ns *ir.Namespace, def ast.Def) {
	name := ast.Name(def)
	pos := ast.Pos(def)

	if existing, ok := ns.Lookup(name); ok {
		col.Errorf(diag.ErrRedefinition, pos,
			"namespace %q already defines %q", ns.Name(), name)
		_ = existing
		return
	}

	var placeholder ir.Def
	switch d := def.(type) {
	case *ast.Alias:
		placeholder = &ir.Alias{NameVal: name, Namespace: ns, Pos: pos}
	case *ast.Struct:
		placeholder = &ir.Struct{NameVal: name, Namespace: ns, Doc: d.Doc, Pos: pos}
	case *ast.Union:
		placeholder = &ir.Union{NameVal: name, Namespace: ns, Doc: d.Doc, Pos: pos}
	case *ast.Route:
		placeholder = &ir.Route{NameVal: name, Namespace: ns, Doc: d.Doc, Pos: pos}
	}
	ns.AddDef(placeholder)
	c.astOf[placeholder] = def
}

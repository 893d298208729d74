package resolver

import (
	"github.com/dropbox/stone/diag"
	"github.com/dropbox/stone/internal/ast"
)

// phaseR1NamespaceAggregation groups every parsed file by its declared
// namespace and verifies every `import` target names a namespace declared
// by at least one file in the whole input set, per spec.md section 4.3
// Phase R1. Each ast.File already carries exactly one namespace name (the
// parser enforces that structurally), so "verify each file declares
// exactly one namespace" reduces to accepting the parser's output as-is.
func phaseR1NamespaceAggregation(c *ctx) diag.Diagnostics {
	col := c.collector()

	c.namespaceFiles = make(map[string][]*ast.File)
	for _, f := range c.files {
		if f.Namespace == "" {
			continue // parser already reported a syntax error for this file
		}
		c.namespaceFiles[f.Namespace] = append(c.namespaceFiles[f.Namespace], f)
	}

	for _, f := range c.files {
		for _, imp := range f.Imports {
			if _, ok := c.namespaceFiles[imp.Name]; !ok {
				col.Errorf(diag.ErrUnresolved, imp.Pos,
					"import of undeclared namespace %q", imp.Name)
			}
		}
	}

	return col.Diagnostics()
}

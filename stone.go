// Package stone is the Babel IDL compiler front end: it lexes, parses, and
// semantically resolves Stone source into a frozen ir.Api, per spec.md's
// overview. Compile is the only entry point a driver (a CLI, a build
// plugin, a test) needs.
package stone

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dropbox/stone/diag"
	"github.com/dropbox/stone/internal/ast"
	"github.com/dropbox/stone/internal/parser"
	"github.com/dropbox/stone/internal/resolver"
	"github.com/dropbox/stone/ir"
)

// Source is one input file: its path (used for diagnostic positions and
// import ordering) and raw contents. Acquiring and closing the underlying
// os.File is the driver's job, entirely outside this package (spec.md
// section 5's concurrency/resource model).
type Source struct {
	Path     string
	Contents []byte
}

// options collects the ambient configuration Compile accepts. Every field
// here is ambient (logging, import-name remapping) — never a grammar or
// resolution-behavior toggle, per spec.md's non-goals around an evolving
// live API.
type options struct {
	log            *logrus.Logger
	remapNamespace func(name string) string
}

// Option configures Compile.
type Option func(*options)

// WithLogger attaches a logrus.Logger the resolver reports phase
// transitions to (spec.md section 9's ambient stack). A nil logger (the
// default if this option is never passed) discards all log output.
func WithLogger(log *logrus.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithNamespaceAliasResolution installs a rewrite function applied to
// every file's declared namespace name and every `import` target name
// before Phase R1 groups files by namespace (an empty result leaves the
// name unchanged) —
// an escape hatch for a caller migrating a namespace to a new name without
// touching every source file's import statements. It never changes the
// grammar Compile accepts.
func WithNamespaceAliasResolution(remap func(name string) string) Option {
	return func(o *options) { o.remapNamespace = remap }
}

// Compile lexes, parses, and resolves sources into a frozen ir.Api.
//
// Every source is parsed first; if any file has a lexical or syntax
// error, resolution never runs and Compile returns the parse diagnostics
// alongside a non-nil error (spec.md section 4.3's "a later phase never
// observes a partially-valid result of an earlier one" applied to the
// parser/resolver boundary). Otherwise the resolver's ten phases run in
// order, and Compile returns either a frozen *ir.Api (on success) or the
// diagnostics of the first phase that failed.
func Compile(sources []Source, opts ...Option) (*ir.Api, diag.Diagnostics, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var all diag.Diagnostics
	files := make([]*ast.File, 0, len(sources))
	for i, src := range sources {
		f, diags := parser.Parse(src.Path, src.Contents, i)
		all = append(all, diags...)
		if o.remapNamespace != nil && f != nil {
			remapImports(f, o.remapNamespace)
		}
		if f != nil {
			files = append(files, f)
		}
	}
	all.Sort()
	if all.HasErrors() {
		return nil, all, fmt.Errorf("stone: %d file(s) failed to parse", countFailedFiles(all))
	}

	api, diags := resolver.Resolve(files, o.log)
	all = append(all, diags...)
	all.Sort()
	if api == nil {
		return nil, all, fmt.Errorf("stone: semantic resolution failed")
	}
	return api, all, nil
}

func remapImports(f *ast.File, remap func(string) string) {
	if renamed := remap(f.Namespace); renamed != "" {
		f.Namespace = renamed
	}
	for i := range f.Imports {
		if renamed := remap(f.Imports[i].Name); renamed != "" {
			f.Imports[i].Name = renamed
		}
	}
}

func countFailedFiles(diags diag.Diagnostics) int {
	files := map[string]bool{}
	for _, d := range diags {
		if d.Severity == diag.SeverityError {
			files[d.Pos.File] = true
		}
	}
	return len(files)
}

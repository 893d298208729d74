// Package resolver implements Stone's semantic analyzer: Phases R1–R10 of
// spec.md section 4.3, turning a set of parsed ast.Files into a frozen
// ir.Api. Each phase runs to completion and accumulates every diagnostic it
// finds before the pipeline decides whether to continue, per spec.md
// section 4.3's "Failure semantics" — a later phase never observes a
// partially-valid result of an earlier one.
package resolver

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/dropbox/stone/diag"
	"github.com/dropbox/stone/internal/ast"
	"github.com/dropbox/stone/ir"
)

// ctx is the mutable scratch space threaded through every phase, grounded
// on cedar-go's resolveData cache: a structure that exists only for the
// duration of resolution and is discarded once Resolve returns the frozen
// ir.Api.
type ctx struct {
	api   *ir.Api
	log   *logrus.Logger
	order map[string]int // file path -> index in the original input list

	files          []*ast.File
	namespaceFiles map[string][]*ast.File // namespace name -> contributing files, input order

	// astOf maps each registered ir.Def placeholder back to the ast.Def it
	// was parsed from, so later phases can walk its body. Populated by
	// Phase R2, read by every phase after.
	astOf map[ir.Def]ast.Def

	// aliasState tracks per-alias cycle-detection progress during Phase R3.
	aliasState map[*ir.Alias]visitState

	// containmentState is reused by Phase R9's cycle search.
	containmentState map[*ir.Struct]visitState

	// exampleAst and exampleState back Phase R7's memoized, cycle-detecting
	// walk over cross-example references.
	exampleAst   map[exampleKey]ast.Example
	exampleState map[exampleKey]visitState
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

func newCtx(files []*ast.File, log *logrus.Logger) *ctx {
	order := make(map[string]int, len(files))
	for i, f := range files {
		order[f.Path] = i
	}
	return &ctx{
		api:        ir.New(),
		log:        log,
		order:      order,
		files:      files,
		aliasState:       make(map[*ir.Alias]visitState),
		astOf:            make(map[ir.Def]ast.Def),
		containmentState: make(map[*ir.Struct]visitState),
		exampleAst:       make(map[exampleKey]ast.Example),
		exampleState:     make(map[exampleKey]visitState),
	}
}

func (c *ctx) collector() *diag.Collector {
	return diag.NewMultiFileCollector(func(file string) int { return c.order[file] })
}

// Resolve runs Phases R1 through R10 over files, logging phase
// transitions to log (a nil logger defaults to a discarded-output
// logrus.Logger, per SPEC_FULL.md section 9's "stays silent by default").
// It returns the frozen ir.Api only when every phase completed with zero
// error-severity diagnostics; otherwise it returns the diagnostics
// collected up to and including the first failing phase.
func Resolve(files []*ast.File, log *logrus.Logger) (*ir.Api, diag.Diagnostics) {
	if log == nil {
		log = logrus.New()
		log.Out = discardWriter{}
	}
	c := newCtx(files, log)

	var all diag.Diagnostics

	phases := []struct {
		name string
		run  func(*ctx) diag.Diagnostics
	}{
		{"R1", phaseR1NamespaceAggregation},
		{"R2", phaseR2NameRegistration},
		{"R3", phaseR3TypeRefResolution},
		{"R4", phaseR4InheritanceWiring},
		{"R5", phaseR5SubtypeValidation},
		{"R6", phaseR6FieldValidation},
		{"R7", phaseR7Examples},
		{"R8", phaseR8Routes},
		{"R9", phaseR9ValueContainment},
		{"R10", phaseR10Linearization},
	}

	for _, ph := range phases {
		c.log.WithField("phase", ph.name).Debug("resolver: entering phase")
		diags := ph.run(c)
		all = append(all, diags...)
		if diags.HasErrors() {
			c.log.WithField("phase", ph.name).WithField("errors", len(diags)).
				Warn("resolver: phase failed, aborting pipeline")
			all.Sort()
			return nil, all
		}
	}

	c.api.Freeze()
	all.Sort()
	return c.api, all
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// sortedKeys returns m's string keys in sorted order, used everywhere the
// resolver needs deterministic iteration over a Go map (namespace names,
// symbol tables) — the same determinism concern cedar-go's resolver
// addresses with maps.Keys over its own namespace/common-type caches.
func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

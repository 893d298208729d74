// Package ir's Api type is the root of the frozen graph described in
// spec.md section 3: a mapping from namespace name to Namespace.
package ir

// Api is the top-level IR container spec.md section 3 describes: the
// root handed from internal/resolver's Resolve to whatever code generator
// consumes it.
type Api struct {
	Namespaces     map[string]*Namespace
	NamespaceOrder []string // deterministic (sorted) order, for stable iteration

	frozen bool
}

// New creates an empty Api. Only internal/resolver calls this.
func New() *Api {
	return &Api{Namespaces: make(map[string]*Namespace)}
}

// Namespace looks up a namespace by name.
func (a *Api) Namespace(name string) (*Namespace, bool) {
	ns, ok := a.Namespaces[name]
	return ns, ok
}

// EnsureNamespace returns the Namespace for name, creating it and
// appending it to NamespaceOrder if this is the first time it has been
// seen. Callers that want NamespaceOrder sorted (Phase R2 does) must call
// this in sorted-name order themselves; Api does not sort on their behalf.
// Panics if the Api is already frozen.
func (a *Api) EnsureNamespace(name string) *Namespace {
	if a.frozen {
		panic("stone/ir: EnsureNamespace called on a frozen Api")
	}
	if ns, ok := a.Namespaces[name]; ok {
		return ns
	}
	ns := &Namespace{NameVal: name}
	a.Namespaces[name] = ns
	a.NamespaceOrder = append(a.NamespaceOrder, name)
	return ns
}

// Frozen reports whether Freeze has been called.
func (a *Api) Frozen() bool { return a.frozen }

// Freeze marks the Api and every Namespace it contains as immutable.
// Spec.md section 3's "Lifecycle" calls this the point past which
// "post-resolution mutation is forbidden"; after Freeze, AddDef and
// SetLinearization panic on every Namespace, and EnsureNamespace panics on
// the Api itself.
func (a *Api) Freeze() {
	a.frozen = true
	for _, ns := range a.Namespaces {
		ns.frozen = true
	}
}

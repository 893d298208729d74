package diag

import (
	"github.com/hashicorp/go-multierror"
)

// Collector accumulates diagnostics for a single resolver phase, following
// spec.md section 4.3's rule that a phase reports every error it finds
// before the pipeline decides whether to continue. Internally it batches
// into a *multierror.Error the way containerd's services batch independent
// failures, then flattens back into Diagnostics for the caller.
//
// order resolves a diagnostic's Position.File to its index in the original
// Compile() input list, so a Collector shared across many files (as the
// resolver's phase collectors are) can still sort its output correctly.
// order must not be nil; NewCollector supplies one that maps every file to
// the same input index (single-file lexer/parser use).
type Collector struct {
	order func(file string) int
	diags Diagnostics
	merr  *multierror.Error
}

// NewCollector creates a Collector whose diagnostics are all attributed to
// a single file (the common case inside the lexer and parser).
func NewCollector(file string, inputOrder int) *Collector {
	return &Collector{order: func(string) int { return inputOrder }}
}

// NewMultiFileCollector creates a Collector for use across the resolver,
// which sees every file in a namespace at once.
func NewMultiFileCollector(order func(file string) int) *Collector {
	return &Collector{order: order}
}

// Errorf records an error-severity diagnostic at pos.
func (c *Collector) Errorf(kind error, pos Position, format string, args ...interface{}) {
	d := New(pos, format, args...).WithInputOrder(c.order(pos.File))
	c.diags = append(c.diags, d)
	c.merr = multierror.Append(c.merr, Wrap(kind, d))
}

// Warnf records a warning-severity diagnostic at pos.
func (c *Collector) Warnf(pos Position, format string, args ...interface{}) {
	d := Warningf(pos, format, args...).WithInputOrder(c.order(pos.File))
	c.diags = append(c.diags, d)
}

// Failed reports whether any error-severity diagnostic was recorded.
func (c *Collector) Failed() bool {
	return c.merr != nil && c.merr.Len() > 0
}

// Diagnostics returns every diagnostic recorded so far, in recording order.
func (c *Collector) Diagnostics() Diagnostics {
	return c.diags
}

// Err returns the accumulated *multierror.Error, or nil if no error was
// recorded. Useful for callers that want Go's standard errors.Is/As over
// the whole phase at once.
func (c *Collector) Err() error {
	if c.merr == nil {
		return nil
	}
	return c.merr.ErrorOrNil()
}

// Merge folds another Collector's diagnostics into this one, preserving
// recording order. Used to combine per-file collectors into a per-phase
// stream before sorting.
func (c *Collector) Merge(other *Collector) {
	c.diags = append(c.diags, other.diags...)
	if other.merr != nil {
		c.merr = multierror.Append(c.merr, other.merr.Errors...)
	}
}

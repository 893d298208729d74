package stone_test

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/dropbox/stone"
	"github.com/dropbox/stone/diag"
	"github.com/dropbox/stone/ir"
)

func compile(t *testing.T, src string) *ir.Api {
	t.Helper()
	api, diags, err := stone.Compile([]stone.Source{{Path: "f.stone", Contents: []byte(src)}})
	require.NoError(t, err, "%v", diags)
	require.NotNil(t, api)
	return api
}

// spec.md section 8 scenario 1: minimal struct.
func TestScenarioMinimalStruct(t *testing.T) {
	src := "namespace x\n\nstruct P\n    a Int64\n    b String\n"
	api := compile(t, src)

	ns, ok := api.Namespace("x")
	require.True(t, ok)

	def, ok := ns.Lookup("P")
	require.True(t, ok)
	s := def.(*ir.Struct)
	require.Len(t, s.AllFields(), 2)
	require.Equal(t, "a", s.AllFields()[0].Name)
	require.Equal(t, "b", s.AllFields()[1].Name)
	for _, f := range s.AllFields() {
		require.False(t, f.Nullable)
		require.False(t, f.HasDefault())
	}

	require.Equal(t, []ir.DataType{s}, ns.Linearization)
}

// spec.md section 8 scenario 2: inheritance + example.
func TestScenarioInheritanceAndExample(t *testing.T) {
	src := `namespace x

struct Basic
    id String(min_length=10, max_length=10)
    email String(pattern="a+")

struct Account extends Basic
    name String(min_length=1)?
    status Status

    example default
        id="id-48sa2f0"
        email="alex@example.org"
        name="Alexander the Great"
        status=active

union Status
    active
    inactive Timestamp("%Y")
`
	api := compile(t, src)
	ns, _ := api.Namespace("x")

	accountDef, ok := ns.Lookup("Account")
	require.True(t, ok)
	account := accountDef.(*ir.Struct)

	var names []string
	for _, f := range account.AllFields() {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"id", "email", "name", "status"}, names)

	statusDef, _ := ns.Lookup("Status")
	status := statusDef.(*ir.Union)
	active := status.Tag("active")
	require.NotNil(t, active)
	require.True(t, active.IsVoid())
}

// spec.md section 8 scenario 3: union catch-all.
func TestScenarioUnionCatchAll(t *testing.T) {
	src := "namespace x\n\nunion E\n    no_account\n    perm_denied\n    unknown*\n"
	api := compile(t, src)
	ns, _ := api.Namespace("x")
	def, _ := ns.Lookup("E")
	e := def.(*ir.Union)

	require.Len(t, e.AllTags(), 3)
	catchAll := e.CatchAllTag()
	require.NotNil(t, catchAll)
	require.Equal(t, "unknown", catchAll.Name)
}

// spec.md section 8 scenario 4: enumerated subtypes.
func TestScenarioEnumeratedSubtypes(t *testing.T) {
	src := `namespace x

struct A
    union
        b B
        c C
    w Int64

struct B extends A
    x Int64

struct C extends A
    union*
        c1 C1
        c2 C2
    y Int64

struct C1 extends C
    z Int64

struct C2 extends C
`
	api := compile(t, src)
	ns, _ := api.Namespace("x")

	aDef, _ := ns.Lookup("A")
	a := aDef.(*ir.Struct)
	require.Len(t, a.Subtypes.Entries, 2)
	require.False(t, a.Subtypes.CatchAll)

	cDef, _ := ns.Lookup("C")
	c := cDef.(*ir.Struct)
	require.True(t, c.Subtypes.CatchAll)

	c1Def, _ := ns.Lookup("C1")
	c1 := c1Def.(*ir.Struct)
	require.True(t, c1.IsLeaf())
	c2Def, _ := ns.Lookup("C2")
	c2 := c2Def.(*ir.Struct)
	require.True(t, c2.IsLeaf())
}

// spec.md section 8 scenario 5: field/tag collision error.
func TestScenarioFieldTagCollisionError(t *testing.T) {
	src := `namespace x

struct Resource
    union
        file File
        folder Folder
    file String

struct File extends Resource

struct Folder extends Resource
`
	_, diags, err := stone.Compile([]stone.Source{{Path: "f.stone", Contents: []byte(src)}})
	require.Error(t, err)
	require.True(t, diags.HasErrors())

	var found bool
	for _, d := range diags {
		if d.Severity == diag.SeverityError {
			found = true
		}
	}
	require.True(t, found)
}

// spec.md section 8 scenario 6: default on nullable.
func TestScenarioDefaultOnNullableError(t *testing.T) {
	src := "namespace x\n\nstruct P\n    name String? = \"x\"\n"
	_, diags, err := stone.Compile([]stone.Source{{Path: "f.stone", Contents: []byte(src)}})
	require.Error(t, err)
	require.True(t, diags.HasErrors())
}

// Invariant: an alias pointing to another alias resolves transitively; an
// alias cycle is rejected.
func TestAliasTransitive(t *testing.T) {
	src := "namespace x\n\nalias A = Int64\nalias B = A\nalias C = B\n\nstruct P\n    v C\n"
	api := compile(t, src)
	ns, _ := api.Namespace("x")
	def, _ := ns.Lookup("P")
	p := def.(*ir.Struct)
	prim, ok := p.AllFields()[0].Type.(*ir.Primitive)
	require.True(t, ok)
	require.Equal(t, ir.Int64, prim.Kind)
}

func TestAliasCycleError(t *testing.T) {
	src := "namespace x\n\nalias A = B\nalias B = A\n"
	_, diags, err := stone.Compile([]stone.Source{{Path: "f.stone", Contents: []byte(src)}})
	require.Error(t, err)
	require.True(t, diags.HasErrors())
}

// Boundary behavior: a self-referential struct with the self-field marked
// nullable is accepted; the same without nullability is a value-
// containment-cycle error.
func TestSelfReferenceNullableAccepted(t *testing.T) {
	src := "namespace x\n\nstruct Node\n    next Node?\n"
	compile(t, src)
}

func TestSelfReferenceNonNullableRejected(t *testing.T) {
	src := "namespace x\n\nstruct Node\n    next Node\n"
	_, diags, err := stone.Compile([]stone.Source{{Path: "f.stone", Contents: []byte(src)}})
	require.Error(t, err)
	require.True(t, diags.HasErrors())
}

// Boundary behavior: empty struct body is accepted.
func TestEmptyStructAccepted(t *testing.T) {
	src := "namespace x\n\nstruct Empty\n"
	api := compile(t, src)
	ns, _ := api.Namespace("x")
	def, _ := ns.Lookup("Empty")
	s := def.(*ir.Struct)
	require.Empty(t, s.AllFields())
}

// spec.md section 8's "resolving repeatedly yields structurally equal
// IRs" testable property: Compile is a pure function of its sources, so
// running it twice over the same input must freeze two structurally
// identical (deep-equal) ir.Api graphs. frozen is the only unexported
// field anywhere in the ir package (on Api and Namespace), so it's the
// only thing cmpopts.IgnoreUnexported needs to name.
func TestCompileIsIdempotent(t *testing.T) {
	src := `namespace x

struct Basic
    id String(min_length=10, max_length=10)
    email String(pattern="a+")

struct Account extends Basic
    name String(min_length=1)?
    status Status

    example default
        id="id-48sa2f0"
        email="alex@example.org"
        name="Alexander the Great"
        status=active

union Status
    active
    inactive Timestamp("%Y")

route old_route(Void, Void, Void) deprecated by new_route
    attrs
        style = "rpc"

route new_route(Void, Void, Void)
`
	api1 := compile(t, src)
	api2 := compile(t, src)

	opts := cmp.Options{
		cmpopts.IgnoreUnexported(ir.Api{}, ir.Namespace{}),
		// *regexp.Regexp carries unexported fields go-cmp can't walk;
		// compare by source pattern instead, which is all Pattern's
		// identity means here.
		cmp.Comparer(func(a, b *regexp.Regexp) bool {
			if a == nil || b == nil {
				return a == b
			}
			return a.String() == b.String()
		}),
	}
	if diff := cmp.Diff(api1, api2, opts...); diff != "" {
		t.Fatalf("resolving the same sources twice produced different IRs (-first +second):\n%s", diff)
	}
}

func TestRouteDeprecationChain(t *testing.T) {
	src := "namespace x\n\nroute old_route(Void, Void, Void) deprecated by new_route\n\nroute new_route(Void, Void, Void)\n"
	api := compile(t, src)
	ns, _ := api.Namespace("x")
	def, _ := ns.Lookup("old_route")
	r := def.(*ir.Route)
	require.True(t, r.Deprecated)
	require.NotNil(t, r.DeprecatedBy)
	require.Equal(t, "new_route", r.DeprecatedBy.Name())
}

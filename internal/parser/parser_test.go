package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/dropbox/stone/internal/ast"
	"github.com/dropbox/stone/internal/parser"
)

func TestParseMinimalStruct(t *testing.T) {
	src := "namespace x\n\nstruct P\n    a Int64\n    b String\n"
	f, diags := parser.Parse("f.stone", []byte(src), 0)
	require.False(t, diags.HasErrors(), "%v", diags)
	require.Equal(t, "x", f.Namespace)
	require.Len(t, f.Defs, 1)

	s, ok := f.Defs[0].(*ast.Struct)
	require.True(t, ok)
	require.Equal(t, "P", s.NameVal)
	require.Len(t, s.Fields, 2)
	require.Equal(t, "a", s.Fields[0].Name)
	require.Equal(t, "Int64", s.Fields[0].Type.Name)
	require.Equal(t, "b", s.Fields[1].Name)
	require.Equal(t, "String", s.Fields[1].Type.Name)
}

func TestParseStructExtendsAndNullableField(t *testing.T) {
	src := "namespace x\n\nstruct Basic\n    id String\n\nstruct Account extends Basic\n    name String?\n"
	f, diags := parser.Parse("f.stone", []byte(src), 0)
	require.False(t, diags.HasErrors(), "%v", diags)
	require.Len(t, f.Defs, 2)

	account := f.Defs[1].(*ast.Struct)
	require.Equal(t, "Basic", account.Extends)
	require.True(t, account.Fields[0].Type.Nullable)
}

func TestParseFieldDefaultTag(t *testing.T) {
	src := "namespace x\n\nunion Status\n    active\n    inactive Timestamp(\"%Y\")\n\nstruct Account\n    status Status = active\n"
	f, diags := parser.Parse("f.stone", []byte(src), 0)
	require.False(t, diags.HasErrors(), "%v", diags)

	s := f.Defs[1].(*ast.Struct)
	require.Equal(t, "active", s.Fields[0].DefaultTag)
	require.Nil(t, s.Fields[0].Default)
}

func TestParseUnionCatchAllTag(t *testing.T) {
	src := "namespace x\n\nunion E\n    no_account\n    perm_denied\n    unknown*\n"
	f, diags := parser.Parse("f.stone", []byte(src), 0)
	require.False(t, diags.HasErrors(), "%v", diags)

	u := f.Defs[0].(*ast.Union)
	require.Len(t, u.Tags, 3)
	require.True(t, u.Tags[2].CatchAll)
	require.False(t, u.Tags[0].CatchAll)
}

func TestParseEnumeratedSubtypesBlock(t *testing.T) {
	src := "namespace x\n\nstruct A\n    union\n        b B\n        c C\n    w Int64\n\nstruct B extends A\n    x Int64\n\nstruct C extends A\n    y Int64\n"
	f, diags := parser.Parse("f.stone", []byte(src), 0)
	require.False(t, diags.HasErrors(), "%v", diags)

	a := f.Defs[0].(*ast.Struct)
	require.NotNil(t, a.Subtypes)
	require.Len(t, a.Subtypes.Entries, 2)
	require.Equal(t, "b", a.Subtypes.Entries[0].Tag)
	require.Equal(t, "B", a.Subtypes.Entries[0].Type.Name)
	require.Len(t, a.Fields, 1)
	require.Equal(t, "w", a.Fields[0].Name)
}

func TestParseRouteWithAttrsAndDeprecation(t *testing.T) {
	src := "namespace x\n\nroute old_route(Void, Void, Void) deprecated by new_route\n    attrs\n        style = \"rpc\"\n\nroute new_route(Void, Void, Void)\n"
	f, diags := parser.Parse("f.stone", []byte(src), 0)
	require.False(t, diags.HasErrors(), "%v", diags)

	r := f.Defs[0].(*ast.Route)
	require.True(t, r.Deprecated)
	require.Equal(t, "new_route", r.DeprecatedBy)
	require.Len(t, r.Attrs, 1)
	require.Equal(t, "style", r.Attrs[0].Key)
	require.Equal(t, "rpc", r.Attrs[0].Value.String)
}

func TestParseListTypeRefArgument(t *testing.T) {
	src := "namespace x\n\nalias IDs = List(UInt64, max_items=10)\n"
	f, diags := parser.Parse("f.stone", []byte(src), 0)
	require.False(t, diags.HasErrors(), "%v", diags)

	a := f.Defs[0].(*ast.Alias)
	require.Equal(t, "List", a.Target.Name)
	require.Equal(t, "UInt64", a.Target.Args[0].Type.Name)
}

// spec.md section 8's "parsing twice yields equal ASTs" testable property.
func TestParseTwiceYieldsEqualAST(t *testing.T) {
	src := `namespace x

struct Basic
    id String(min_length=10, max_length=10)
    email String(pattern="a+")

struct Account extends Basic
    name String(min_length=1)?
    status Status

union Status
    active
    inactive Timestamp("%Y")

    example default
        id="id-48sa2f0"
        email="alex@example.org"
        name="Alexander the Great"
        status=active

route old_route(Void, Void, Void) deprecated by new_route
    attrs
        style = "rpc"

route new_route(Void, Void, Void)
`
	f1, diags1 := parser.Parse("f.stone", []byte(src), 0)
	require.False(t, diags1.HasErrors(), "%v", diags1)
	f2, diags2 := parser.Parse("f.stone", []byte(src), 0)
	require.False(t, diags2.HasErrors(), "%v", diags2)

	if diff := cmp.Diff(f1, f2); diff != "" {
		t.Fatalf("parsing the same source twice produced different ASTs (-first +second):\n%s", diff)
	}
}

func TestParseSyntaxErrorUnexpectedToken(t *testing.T) {
	src := "namespace x\n\nstruct P\n    a \n"
	_, diags := parser.Parse("f.stone", []byte(src), 0)
	require.True(t, diags.HasErrors())
}

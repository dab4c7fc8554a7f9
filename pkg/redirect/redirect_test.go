package redirect

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawerks/dataroot/pkg/catalog"
	"github.com/datawerks/dataroot/pkg/errors"
	"github.com/datawerks/dataroot/pkg/paths"
	"github.com/datawerks/dataroot/pkg/scope"
	"github.com/datawerks/dataroot/pkg/sourcetree"
	"github.com/datawerks/dataroot/pkg/testutil"
	"github.com/datawerks/dataroot/pkg/types"
)

type fixture struct {
	redirector *Redirector
	sourceDir  string
	treesDir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	sourceDir := testutil.TempDir(t, "source")
	treesDir := testutil.TempDir(t, "trees")

	cat, err := catalog.New(map[string]string{"Tau": sourceDir})
	require.NoError(t, err)

	builder, err := sourcetree.New(&sourcetree.Options{TreesDir: treesDir})
	require.NoError(t, err)

	redirector, err := New(cat, WithBuilder(builder))
	require.NoError(t, err)

	return &fixture{redirector: redirector, sourceDir: sourceDir, treesDir: treesDir}
}

func TestNewRequiresCatalog(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRedirectPlainDirectoryRoundTrip(t *testing.T) {
	fx := newFixture(t)
	other := testutil.TempDir(t, "other")

	sc := scope.New()
	defer func() { require.NoError(t, sc.Close()) }()

	resolved, err := fx.redirector.Redirect("Tau", &Target{Path: other}, WithScope(sc))
	require.NoError(t, err)

	canonical, err := paths.Canonicalize(other)
	require.NoError(t, err)
	assert.Equal(t, canonical, resolved)

	effective, err := fx.redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, resolved, effective)
}

func TestRedirectResolvesSymlinkedTargets(t *testing.T) {
	fx := newFixture(t)
	other := testutil.TempDir(t, "other")
	link := filepath.Join(testutil.TempDir(t, "links"), "alias")
	testutil.CreateSymlink(t, other, link)

	resolved, err := fx.redirector.Redirect("Tau", &Target{Path: link})
	require.NoError(t, err)

	canonical, err := paths.Canonicalize(other)
	require.NoError(t, err)
	assert.Equal(t, canonical, resolved)
}

func TestRedirectNilTargetClears(t *testing.T) {
	fx := newFixture(t)
	other := testutil.TempDir(t, "other")

	_, err := fx.redirector.Redirect("Tau", &Target{Path: other})
	require.NoError(t, err)

	resolved, err := fx.redirector.Redirect("Tau", nil)
	require.NoError(t, err)
	assert.Empty(t, resolved)

	effective, err := fx.redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, fx.sourceDir, effective)
}

func TestRedirectSingleFileBuildsTree(t *testing.T) {
	fx := newFixture(t)
	scattered := testutil.TempDir(t, "scattered")
	file := testutil.CreateFile(t, scattered, "f.dat", "f")

	sc := scope.New()
	defer func() { require.NoError(t, sc.Close()) }()

	resolved, err := fx.redirector.Redirect("Tau", &Target{Path: file},
		WithScope(sc), LinkOthers(false))
	require.NoError(t, err)

	assert.Equal(t, fx.treesDir, filepath.Dir(resolved))
	testutil.AssertSymlink(t, filepath.Join(resolved, "f.dat"), file)
	assert.ElementsMatch(t, []string{"f.dat"}, testutil.ListDir(t, resolved))

	effective, err := fx.redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, resolved, effective)
}

func TestRedirectFilesDerivesDestAliases(t *testing.T) {
	fx := newFixture(t)
	scattered := testutil.TempDir(t, "scattered")
	fileA := testutil.CreateFile(t, scattered, "a.dat", "a")
	fileB := testutil.CreateFile(t, scattered, "b.dat", "b")
	fileC := testutil.CreateFile(t, scattered, "c.dat", "c")

	sc := scope.New()
	defer func() { require.NoError(t, sc.Close()) }()

	resolved, err := fx.redirector.Redirect("Tau", &Target{Files: []types.FileMapping{
		{Source: fileA},                         // empty dest: base name
		{Dest: "sub/", Source: fileB},           // trailing separator: directory
		{Dest: "renamed.dat", Source: fileC},    // explicit dest
	}}, WithScope(sc), LinkOthers(false))
	require.NoError(t, err)

	testutil.AssertSymlink(t, filepath.Join(resolved, "a.dat"), fileA)
	testutil.AssertSymlink(t, filepath.Join(resolved, "sub", "b.dat"), fileB)
	testutil.AssertSymlink(t, filepath.Join(resolved, "renamed.dat"), fileC)
	assert.ElementsMatch(t, []string{"a.dat", "sub", "renamed.dat"}, testutil.ListDir(t, resolved))
}

func TestRedirectLinkOthersByDefault(t *testing.T) {
	fx := newFixture(t)
	testutil.CreateFile(t, fx.sourceDir, "f1.dat", "one")
	testutil.CreateFile(t, fx.sourceDir, "f2.dat", "two")
	sub := testutil.CreateDir(t, fx.sourceDir, "sub")
	testutil.CreateFile(t, sub, "f3.dat", "three")

	scattered := testutil.TempDir(t, "scattered")
	override := testutil.CreateFile(t, scattered, "override.dat", "new one")

	sc := scope.New()
	defer func() { require.NoError(t, sc.Close()) }()

	resolved, err := fx.redirector.Redirect("Tau", &Target{Files: []types.FileMapping{
		{Dest: "f1.dat", Source: override},
	}}, WithScope(sc))
	require.NoError(t, err)

	// f1 swapped, everything else identical to the original tree
	testutil.AssertSymlink(t, filepath.Join(resolved, "f1.dat"), override)
	testutil.AssertSymlink(t, filepath.Join(resolved, "f2.dat"), filepath.Join(fx.sourceDir, "f2.dat"))
	testutil.AssertSymlink(t, filepath.Join(resolved, "sub"), sub)
	testutil.AssertFileContent(t, filepath.Join(resolved, "sub", "f3.dat"), "three")
	assert.ElementsMatch(t, []string{"f1.dat", "f2.dat", "sub"}, testutil.ListDir(t, resolved))
}

func TestRedirectScopedRestoresOnClose(t *testing.T) {
	fx := newFixture(t)
	other := testutil.TempDir(t, "other")

	sc := scope.New()
	resolved, err := fx.redirector.Redirect("Tau", &Target{Path: other}, WithScope(sc))
	require.NoError(t, err)

	effective, err := fx.redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, resolved, effective)

	require.NoError(t, sc.Close())

	effective, err = fx.redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, fx.sourceDir, effective)
}

func TestRedirectNestedScopesLayer(t *testing.T) {
	fx := newFixture(t)
	outerDir := testutil.TempDir(t, "outer")
	innerDir := testutil.TempDir(t, "inner")

	outer := scope.New()
	outerPath, err := fx.redirector.Redirect("Tau", &Target{Path: outerDir}, WithScope(outer))
	require.NoError(t, err)

	inner := scope.New()
	innerPath, err := fx.redirector.Redirect("Tau", &Target{Path: innerDir}, WithScope(inner))
	require.NoError(t, err)

	effective, err := fx.redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, innerPath, effective)

	require.NoError(t, inner.Close())
	effective, err = fx.redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, outerPath, effective)

	require.NoError(t, outer.Close())
	effective, err = fx.redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, fx.sourceDir, effective)
}

func TestRedirectScopedTreeRemovedOnClose(t *testing.T) {
	fx := newFixture(t)
	scattered := testutil.TempDir(t, "scattered")
	file := testutil.CreateFile(t, scattered, "f.dat", "f")

	sc := scope.New()
	resolved, err := fx.redirector.Redirect("Tau", &Target{Path: file},
		WithScope(sc), LinkOthers(false))
	require.NoError(t, err)
	assert.True(t, testutil.DirExists(t, resolved))

	require.NoError(t, sc.Close())
	assert.False(t, testutil.DirExists(t, resolved))
	assert.Empty(t, testutil.ListDir(t, fx.treesDir))
}

func TestRedirectContainmentViolation(t *testing.T) {
	fx := newFixture(t)
	nested := testutil.CreateDir(t, fx.sourceDir, "nested")

	_, err := fx.redirector.Redirect("Tau", &Target{Path: nested})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrContainment),
		"expected CONTAINMENT, got %v", err)

	// Store untouched
	effective, err := fx.redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, fx.sourceDir, effective)
}

func TestRedirectContainmentReleasesBuiltTree(t *testing.T) {
	sourceDir := testutil.TempDir(t, "source")
	cat, err := catalog.New(map[string]string{"Tau": sourceDir})
	require.NoError(t, err)

	// Trees placed inside the default source dir: the build succeeds,
	// containment then fails and must remove the tree again.
	treesInside := filepath.Join(sourceDir, "trees-inside")
	builder, err := sourcetree.New(&sourcetree.Options{TreesDir: treesInside})
	require.NoError(t, err)

	redirector, err := New(cat, WithBuilder(builder))
	require.NoError(t, err)

	scattered := testutil.TempDir(t, "scattered")
	file := testutil.CreateFile(t, scattered, "f.dat", "f")

	_, err = redirector.Redirect("Tau", &Target{Path: file}, LinkOthers(false))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrContainment),
		"expected CONTAINMENT, got %v", err)

	assert.Empty(t, testutil.ListDir(t, treesInside))

	effective, err := redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, sourceDir, effective)
}

func TestRedirectToDefaultSourceDirAllowed(t *testing.T) {
	fx := newFixture(t)

	resolved, err := fx.redirector.Redirect("Tau", &Target{Path: fx.sourceDir})
	require.NoError(t, err)

	canonical, err := paths.Canonicalize(fx.sourceDir)
	require.NoError(t, err)
	assert.Equal(t, canonical, resolved)
}

func TestRedirectMissingTarget(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.redirector.Redirect("Tau", &Target{Path: "/does/not/exist"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPathResolve))

	effective, err := fx.redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, fx.sourceDir, effective)
}

func TestRedirectMissingFileSource(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.redirector.Redirect("Tau", &Target{Files: []types.FileMapping{
		{Dest: "f.dat", Source: "/does/not/exist"},
	}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPathResolve))
	assert.Empty(t, testutil.ListDir(t, fx.treesDir))
}

func TestRedirectMalformedTargets(t *testing.T) {
	fx := newFixture(t)
	other := testutil.TempDir(t, "other")
	file := testutil.CreateFile(t, other, "f.dat", "f")

	tests := []struct {
		name   string
		target *Target
	}{
		{"empty target", &Target{}},
		{"both path and files", &Target{
			Path:  other,
			Files: []types.FileMapping{{Dest: "f.dat", Source: file}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.redirector.Redirect("Tau", tt.target)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		})
	}
}

func TestRedirectUnknownDataset(t *testing.T) {
	fx := newFixture(t)
	other := testutil.TempDir(t, "other")

	_, err := fx.redirector.Redirect("Nope", &Target{Path: other})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownDataset))

	err = fx.redirector.Clear("Nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownDataset))

	_, err = fx.redirector.SourceDir("Nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownDataset))
}

func TestRedirectOnClosedScope(t *testing.T) {
	fx := newFixture(t)
	other := testutil.TempDir(t, "other")
	scattered := testutil.TempDir(t, "scattered")
	file := testutil.CreateFile(t, scattered, "f.dat", "f")

	sc := scope.New()
	require.NoError(t, sc.Close())

	_, err := fx.redirector.Redirect("Tau", &Target{Path: other}, WithScope(sc))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrScopeClosed))

	_, err = fx.redirector.Redirect("Tau", &Target{Path: file}, WithScope(sc))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrScopeClosed))
	assert.Empty(t, testutil.ListDir(t, fx.treesDir))

	effective, err := fx.redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, fx.sourceDir, effective)
}

func TestClearScopedRestoresRedirect(t *testing.T) {
	fx := newFixture(t)
	other := testutil.TempDir(t, "other")

	resolved, err := fx.redirector.Redirect("Tau", &Target{Path: other})
	require.NoError(t, err)

	sc := scope.New()
	require.NoError(t, fx.redirector.Clear("Tau", WithScope(sc)))

	effective, err := fx.redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, fx.sourceDir, effective)

	require.NoError(t, sc.Close())

	effective, err = fx.redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, resolved, effective)
}

func TestSourceDirHonorsEnvOverride(t *testing.T) {
	fx := newFixture(t)
	envDir := testutil.TempDir(t, "env")
	t.Setenv("DATAROOT_SRC_TAU", envDir)

	effective, err := fx.redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, envDir, effective)

	// An installed redirection still wins over the env override
	other := testutil.TempDir(t, "other")
	resolved, err := fx.redirector.Redirect("Tau", &Target{Path: other})
	require.NoError(t, err)

	effective, err = fx.redirector.SourceDir("Tau")
	require.NoError(t, err)
	assert.Equal(t, resolved, effective)
}

func TestRedirectContainmentAgainstEnvOverride(t *testing.T) {
	fx := newFixture(t)
	envDir := testutil.TempDir(t, "env")
	t.Setenv("DATAROOT_SRC_TAU", envDir)

	// Inside the overridden default: rejected
	nested := testutil.CreateDir(t, envDir, "nested")
	_, err := fx.redirector.Redirect("Tau", &Target{Path: nested})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrContainment))

	// Inside the declared (but overridden) default: allowed now
	declared := testutil.CreateDir(t, fx.sourceDir, "nested")
	resolved, err := fx.redirector.Redirect("Tau", &Target{Path: declared})
	require.NoError(t, err)

	canonical, err := paths.Canonicalize(declared)
	require.NoError(t, err)
	assert.Equal(t, canonical, resolved)
}

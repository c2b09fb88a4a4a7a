package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/sameehj/hlsflow/pkg/backend"
	"github.com/sameehj/hlsflow/pkg/types"
)

func buildBuiltin(t *testing.T, only ...string) (*backend.Env, []*backend.Backend) {
	t.Helper()
	c, err := Builtin()
	require.NoError(t, err)
	env := backend.NewEnv(nil)
	built, err := c.Build(env, only...)
	require.NoError(t, err)
	return env, built
}

func TestBuiltinCatalog(t *testing.T) {
	t.Parallel()

	env, built := buildBuiltin(t)
	require.Len(t, built, 2)
	vivado, vitis := built[0], built[1]
	require.Equal(t, "vivado", vivado.Name)
	require.Equal(t, "vitis", vitis.Name)

	require.Equal(t, []string{"vivado:validate_conv_implementation"}, vivado.ExtraPasses)
	// Extras subtracts only initializers, writer and fifo, so derived validators
	// and templates are also collected into vitis:extras.
	require.Equal(t, []string{
		"vitis:validate_conv_implementation",
		"vitis:validate_strategy",
		"vitis:dense_config_template",
		"vitis:conv1d_config_template",
	}, vitis.ExtraPasses)

	def, err := env.Flows.Get(vitis.Default)
	require.NoError(t, err)
	want := []types.FlowKey{
		types.MustParseFlowKey("optimize"),
		types.MustParseFlowKey("vitis:validation"),
		types.MustParseFlowKey("vivado:init_layers"),
		types.MustParseFlowKey("vivado:streaming"),
		types.MustParseFlowKey("vivado:quantization"),
		types.MustParseFlowKey("vivado:optimize_layers"),
		types.MustParseFlowKey("vivado:specific_types"),
		types.MustParseFlowKey("vivado:extras"),
		types.MustParseFlowKey("vitis:apply_templates"),
		types.MustParseFlowKey("vivado:apply_templates"),
	}
	if diff := cmp.Diff(want, def.Requires); diff != "" {
		t.Fatalf("vitis default requirements mismatch (-want +got):\n%s", diff)
	}

	for _, b := range built {
		unreached, err := backend.Check(env, b)
		require.NoError(t, err)
		require.Empty(t, unreached, b.Name)
	}
	require.NoError(t, env.Flows.Validate())

	refs, err := vitis.BuildSequence(env.Flows)
	require.NoError(t, err)
	ids := types.IDs(refs)
	require.Equal(t, "channels_last_converter", ids[0])
	require.Equal(t, []string{"make_stamp", "vitis:write_hls"}, ids[len(ids)-2:])
	require.Less(t, indexOf(ids, "vivado:init_dense"), indexOf(ids, "vitis:validate_strategy"))
	require.Less(t, indexOf(ids, "vitis:dense_config_template"), indexOf(ids, "vivado:dense_config_template"))
	require.NotContains(t, ids, "vivado:write_hls")
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func TestBuildSelectionIncludesBases(t *testing.T) {
	t.Parallel()

	env, built := buildBuiltin(t, "Vitis")
	require.Len(t, built, 2)
	require.True(t, env.Flows.Has(types.MustParseFlowKey("vivado:ip")))

	env, built = buildBuiltin(t, "vivado")
	require.Len(t, built, 1)
	require.False(t, env.Flows.Has(types.MustParseFlowKey("vitis:ip")))

	c, err := Builtin()
	require.NoError(t, err)
	_, err = c.Build(backend.NewEnv(nil), "quartus")
	require.ErrorContains(t, err, "unknown backend quartus")
}

func TestPredicatesFromCatalog(t *testing.T) {
	t.Parallel()

	env, _ := buildBuiltin(t)
	ok, err := env.Passes.Applicable("vitis", "vitis:init_conv1d", "Conv1D")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = env.Passes.Applicable("vitis", "vitis:init_conv1d", "Dense")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = env.Passes.Applicable("", "make_stamp", "Dense")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = env.Passes.Applicable("vivado", "vivado:clone_output", "Input")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPassDeclPredicate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		decl  PassDecl
		layer string
		want  bool
	}{
		{PassDecl{ID: "a", LayerTypes: []string{"Dense"}}, "Dense", true},
		{PassDecl{ID: "a", SkipLayerTypes: []string{"Dense"}}, "Dense", false},
		{PassDecl{ID: "a", SkipLayerTypes: []string{"Dense"}}, "Conv2D", true},
		{PassDecl{ID: "a", LayerTypes: []string{"Dense", "Conv2D"}, SkipLayerTypes: []string{"Conv2D"}}, "Conv2D", false},
		{PassDecl{ID: "a", LayerTypes: []string{"Dense", "Conv2D"}, SkipLayerTypes: []string{"Conv2D"}}, "Dense", true},
	}
	for _, tc := range cases {
		if got := tc.decl.predicate().Match(tc.layer); got != tc.want {
			t.Errorf("%+v.Match(%q) = %v, want %v", tc.decl, tc.layer, got, tc.want)
		}
	}
	require.Nil(t, PassDecl{ID: "a"}.predicate())
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"derived before base": `
backends:
  - {name: vitis, base: vivado, writer: [w]}
  - {name: vivado, writer: [w]}
`,
		"duplicate backend": `
backends:
  - {name: vivado, writer: [w]}
  - {name: Vivado, writer: [w]}
`,
		"missing name": `
backends:
  - {writer: [w]}
`,
		"not yaml": `backends: [`,
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	doc := `
common:
  optimize: [O1]
passes:
  - backend: base
    ids:
      - P1
      - {id: P2, layerTypes: [Dense]}
      - P3
  - backend: derived
    ids: [W1, X1]
backends:
  - name: base
    initializers: [P1, P2]
    writer: [P3]
  - name: derived
    base: base
    validators: [V1]
    writer: [P3, W1]
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, PassDecl{ID: "P2", LayerTypes: []string{"Dense"}}, c.Passes[0].IDs[1])

	env := backend.NewEnv(nil)
	built, err := c.Build(env)
	require.NoError(t, err)
	require.Equal(t, []string{"X1"}, built[1].ExtraPasses)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestBuildDuplicatePass(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(`
common: {optimize: [O1]}
passes:
  - {backend: vivado, ids: [a, a]}
`))
	require.NoError(t, err)
	_, err = c.Build(backend.NewEnv(nil))
	require.Error(t, err)
}

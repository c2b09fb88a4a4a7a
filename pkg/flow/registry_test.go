package flow

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/sameehj/hlsflow/pkg/types"
)

func key(s string) types.FlowKey { return types.MustParseFlowKey(s) }

func TestRegisterAndGet(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	convert, err := r.Register("convert", "", []string{"channels_last"}, nil)
	require.NoError(t, err)
	require.Equal(t, key("convert"), convert)

	initKey, err := r.Register("init_layers", "Vivado", []string{"vivado:init_dense"}, []types.FlowKey{convert})
	require.NoError(t, err)
	require.Equal(t, key("vivado:init_layers"), initKey)

	got, err := r.Get(initKey)
	require.NoError(t, err)
	want := types.Flow{
		Name:     "init_layers",
		Backend:  "vivado",
		Passes:   []string{"vivado:init_dense"},
		Requires: []types.FlowKey{convert},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("flow mismatch (-want +got):\n%s", diff)
	}

	got.Passes[0] = "mutated"
	got.Requires[0] = key("mutated")
	again, err := r.Lookup("vivado", "init_layers")
	require.NoError(t, err)
	require.Equal(t, want, again)
}

func TestRegisterCopiesInputs(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	passes := []string{"a", "b"}
	k, err := r.Register("write", "vivado", passes, nil)
	require.NoError(t, err)
	passes[0] = "changed"

	f, err := r.Get(k)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, f.Passes)
}

func TestRegisterDuplicateLeavesRegistryUnchanged(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.Register("write", "vivado", []string{"make_stamp"}, nil)
	require.NoError(t, err)

	_, err = r.Register("write", "vivado", []string{"other"}, nil)
	require.ErrorIs(t, err, ErrDuplicate)

	f, err := r.Lookup("vivado", "write")
	require.NoError(t, err)
	require.Equal(t, []string{"make_stamp"}, f.Passes)
	require.Len(t, r.Keys(), 1)
}

func TestRegisterMissingRequirementStoresNothing(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.Register("validation", "vitis", []string{"vitis:validate_strategy"}, []types.FlowKey{key("vivado:init_layers")})
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, r.Has(key("vitis:validation")))
	require.Empty(t, r.Keys())
}

func TestRegisterSelfRequirement(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.Register("ip", "vivado", nil, []types.FlowKey{key("vivado:ip")})
	require.ErrorIs(t, err, ErrCycle)
}

func TestRegisterEmptyFlow(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry().Register("extras", "vitis", nil, nil)
	require.ErrorIs(t, err, ErrEmptyFlow)
}

func TestRegisterEmptyName(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.Register("", "vitis", []string{"a"}, nil)
	require.ErrorIs(t, err, ErrInvalid)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	require.Contains(t, err.Error(), "flow name is required")
	require.Empty(t, r.Keys())
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry().Get(key("vitis:ip"))
	require.ErrorIs(t, err, ErrNotFound)

	var flowErr *Error
	require.ErrorAs(t, err, &flowErr)
	require.Equal(t, key("vitis:ip"), flowErr.Key)
}

func TestFlowsFor(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	opt, _ := r.Register("optimize", "", []string{"fuse"}, nil)
	_, _ = r.Register("init_layers", "vivado", []string{"a"}, []types.FlowKey{opt})
	_, _ = r.Register("init_layers", "vitis", []string{"b"}, []types.FlowKey{opt})
	_, _ = r.Register("write", "vivado", []string{"c"}, nil)

	require.Equal(t, []types.FlowKey{key("vivado:init_layers"), key("vivado:write")}, r.FlowsFor("Vivado"))
	require.Equal(t, []types.FlowKey{opt}, r.FlowsFor(""))
}

func TestValidateDetectsCycle(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a, _ := r.Register("a", "x", []string{"p1"}, nil)
	b, _ := r.Register("b", "x", []string{"p2"}, []types.FlowKey{a})
	require.NoError(t, r.Validate())

	// Registration cannot produce a cycle, so forge one directly.
	forged := r.flows[a]
	forged.Requires = []types.FlowKey{b}
	r.flows[a] = forged

	err := r.Validate()
	require.ErrorIs(t, err, ErrCycle)
	require.Contains(t, err.Error(), "x:a -> x:b -> x:a")

	_, err = r.Expand(b)
	require.ErrorIs(t, err, ErrCycle)
}

func TestParseFlowKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    types.FlowKey
		wantErr bool
	}{
		{in: "optimize", want: types.FlowKey{Name: "optimize"}},
		{in: "Vivado:init_layers", want: types.FlowKey{Backend: "vivado", Name: "init_layers"}},
		{in: " vitis:ip ", want: types.FlowKey{Backend: "vitis", Name: "ip"}},
		{in: "", wantErr: true},
		{in: ":ip", wantErr: true},
		{in: "vitis:", wantErr: true},
		{in: "a:b:c", wantErr: true},
	}
	for _, tc := range cases {
		got, err := types.ParseFlowKey(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseFlowKey(%q) expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseFlowKey(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if round := got.String(); round != types.MustParseFlowKey(round).String() {
			t.Errorf("round trip of %q changed", round)
		}
	}
}

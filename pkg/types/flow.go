package types

import (
	"fmt"
	"strings"
)

// DefaultFlowName is the flow a backend builds to produce everything it needs.
const DefaultFlowName = "ip"

// FlowKey identifies a flow by owning backend and name. An empty Backend is
// the unscoped namespace shared by every backend.
type FlowKey struct {
	Backend string `yaml:"backend,omitempty" json:"backend,omitempty"`
	Name    string `yaml:"name" json:"name"`
}

// Key builds a FlowKey.
func Key(backend, name string) FlowKey {
	return FlowKey{Backend: BackendName(backend), Name: name}
}

// BackendName normalizes a backend name; "Vivado" and "vivado" are the same scope.
func BackendName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseFlowKey accepts "backend:name" or a bare "name".
func ParseFlowKey(s string) (FlowKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FlowKey{}, fmt.Errorf("empty flow key")
	}
	backend, name, found := strings.Cut(s, ":")
	if !found {
		return FlowKey{Name: s}, nil
	}
	if backend == "" || name == "" || strings.Contains(name, ":") {
		return FlowKey{}, fmt.Errorf("malformed flow key %q", s)
	}
	return Key(backend, name), nil
}

// MustParseFlowKey is ParseFlowKey for static declarations.
func MustParseFlowKey(s string) FlowKey {
	k, err := ParseFlowKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

func (k FlowKey) String() string {
	if k.Backend == "" {
		return k.Name
	}
	return k.Backend + ":" + k.Name
}

// MarshalText lets keys appear as plain strings in yaml and json output.
func (k FlowKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *FlowKey) UnmarshalText(text []byte) error {
	parsed, err := ParseFlowKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Flow is a named pipeline: its requirements run to completion before its own passes.
type Flow struct {
	Name     string    `yaml:"name" json:"name"`
	Backend  string    `yaml:"backend,omitempty" json:"backend,omitempty"`
	Passes   []string  `yaml:"passes" json:"passes"`
	Requires []FlowKey `yaml:"requires" json:"requires"`
}

// Key returns the registry key of the flow.
func (f Flow) Key() FlowKey {
	return FlowKey{Backend: f.Backend, Name: f.Name}
}

// Clone returns a copy that shares no slices with f.
func (f Flow) Clone() Flow {
	out := f
	out.Passes = append([]string(nil), f.Passes...)
	out.Requires = append([]FlowKey(nil), f.Requires...)
	return out
}

// PassRef is one entry of an expanded flow: the pass id and the flow that listed it.
type PassRef struct {
	ID   string  `yaml:"id" json:"id"`
	Flow FlowKey `yaml:"flow" json:"flow"`
}

// IDs projects a pass sequence onto its identifiers.
func IDs(refs []PassRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.ID)
	}
	return out
}

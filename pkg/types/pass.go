package types

// Predicate decides whether a pass applies to a layer type.
type Predicate interface {
	Match(layerType string) bool
}

// PredicateFunc adapts a function to Predicate.
type PredicateFunc func(layerType string) bool

func (f PredicateFunc) Match(layerType string) bool { return f(layerType) }

// Pass is a transformation step registered for a backend. Backend "" means unscoped.
type Pass struct {
	ID        string    `yaml:"id" json:"id"`
	Backend   string    `yaml:"backend,omitempty" json:"backend,omitempty"`
	Predicate Predicate `yaml:"-" json:"-"`
}

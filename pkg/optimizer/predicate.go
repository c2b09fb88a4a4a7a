package optimizer

import (
	"github.com/sameehj/hlsflow/pkg/types"
	"k8s.io/apimachinery/pkg/util/sets"
)

// LayerTypes matches any of the given layer class names, e.g. "Dense" or "Conv2D".
func LayerTypes(layerTypes ...string) types.Predicate {
	allowed := sets.New(layerTypes...)
	return types.PredicateFunc(func(layerType string) bool {
		return allowed.Has(layerType)
	})
}

// Not inverts a predicate.
func Not(p types.Predicate) types.Predicate {
	return types.PredicateFunc(func(layerType string) bool {
		return !p.Match(layerType)
	})
}

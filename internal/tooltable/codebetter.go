package tooltable

import (
	"slices"

	"github.com/shahar-caura/diagroute/internal/catalog"
)

// CodeBetter is the set of diagram types that must be drawn by a code renderer.
// A result with one of these types is never ai_suitable.
type CodeBetter struct {
	types map[string]struct{}
}

// NewCodeBetter builds the set from a catalog.
func NewCodeBetter(cat *catalog.Catalog) CodeBetter {
	s := CodeBetter{types: make(map[string]struct{}, len(cat.CodeBetterTypes))}
	for _, typ := range cat.CodeBetterTypes {
		s.types[typ] = struct{}{}
	}
	return s
}

// Contains reports whether diagramType is in the set.
func (c CodeBetter) Contains(diagramType string) bool {
	_, ok := c.types[diagramType]
	return ok
}

// AISuitable applies the override to a classifier's opinion. Without an
// opinion, types outside the set are considered suitable.
func (c CodeBetter) AISuitable(diagramType string, opinion *bool) bool {
	if c.Contains(diagramType) {
		return false
	}
	if opinion != nil {
		return *opinion
	}
	return true
}

// Types returns the members in sorted order.
func (c CodeBetter) Types() []string {
	out := make([]string, 0, len(c.types))
	for typ := range c.types {
		out = append(out, typ)
	}
	slices.Sort(out)
	return out
}

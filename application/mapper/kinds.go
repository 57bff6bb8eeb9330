package mapper

import (
	"strings"

	"flowbuilder/domain/core/valueobjects"
)

// kindRule maps label keywords to a node kind. Rules are ordered by
// priority; the first matching rule wins.
type kindRule struct {
	keywords []string
	kind     valueobjects.NodeKind
}

var kindRules = []kindRule{
	{keywords: []string{"fetch"}, kind: valueobjects.KindParser},
	{keywords: []string{"aging", "dso"}, kind: valueobjects.KindAging},
	{keywords: []string{"excel", "export", "report"}, kind: valueobjects.KindExport},
	{keywords: []string{"outstanding", "calculate"}, kind: valueobjects.KindAllocator},
	{keywords: []string{"sum", "total"}, kind: valueobjects.KindVizAgent},
	{keywords: []string{"filter", "check"}, kind: valueobjects.KindCondition},
	{keywords: []string{"sort", "group", "duplicate"}, kind: valueobjects.KindMatcher},
}

// InferKind derives a node kind from its label and the raw type string the
// backend sent. Keyword rules run in priority order over the lowercased
// label, so "Calculate Aging Days" resolves to aging rather than allocator.
// Unmatched labels fall back to the generic code kind.
func InferKind(label, rawType string) valueobjects.NodeKind {
	haystack := strings.ToLower(label)
	if rawType != "" {
		haystack += " " + strings.ToLower(rawType)
	}

	for _, rule := range kindRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.kind
			}
		}
	}

	return valueobjects.DefaultKind
}

// ResolveKind picks the kind for a mapped node: an explicit known kind from
// the payload wins, otherwise the label keywords decide. The raw type is
// treated as unset when it names a generic renderer type such as "custom".
func ResolveKind(rawType, label string) valueobjects.NodeKind {
	switch strings.ToLower(rawType) {
	case "", "custom", "default":
	default:
		if k := valueobjects.NodeKind(strings.ToLower(rawType)); k.IsValid() {
			return k
		}
	}

	return InferKind(label, rawType)
}

package retention

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidPolicy is wrapped by every policy validation failure.
var ErrInvalidPolicy = errors.New("invalid retention policy")

// Table resolves a memory's category to its retention policy. Construction
// fails fast on any invalid policy; lookups never fail — unknown categories
// resolve to the general policy.
type Table struct {
	policies map[string]Policy
}

// NewTable builds a table from the built-in category defaults with the given
// overrides applied on top. Overrides may extend the category set. Every
// resulting policy is validated; the first violation aborts construction.
func NewTable(overrides map[string]Policy) (*Table, error) {
	policies := defaultPolicies()

	for category, policy := range overrides {
		if category == "" {
			return nil, fmt.Errorf("%w: empty category name", ErrInvalidPolicy)
		}
		policies[category] = policy
	}

	for _, category := range sortedKeys(policies) {
		if err := policies[category].Validate(); err != nil {
			return nil, fmt.Errorf("category %q: %w", category, err)
		}
	}

	return &Table{policies: policies}, nil
}

// Lookup returns the policy for category, falling back to the general policy
// for categories the table does not know.
func (t *Table) Lookup(category string) Policy {
	if p, ok := t.policies[category]; ok {
		return p
	}
	return t.policies[CategoryGeneral]
}

// Categories returns the known category names in sorted order.
func (t *Table) Categories() []string {
	return sortedKeys(t.policies)
}

func sortedKeys(m map[string]Policy) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

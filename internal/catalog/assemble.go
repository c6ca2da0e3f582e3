package catalog

import (
	"context"

	"storefront/internal/domain/spec"
)

// AssembleSpecs pairs each product spec's values with its group's key labels.
// Missing keys or values render as empty strings; specs whose group is gone are skipped.
func (r *Resolver) AssembleSpecs(ctx context.Context, specs []spec.ProductSpec) ([]spec.Table, error) {
	ids := make([]string, 0, len(specs))
	seen := map[string]struct{}{}
	for _, s := range specs {
		if _, ok := seen[s.GroupID]; ok {
			continue
		}
		seen[s.GroupID] = struct{}{}
		ids = append(ids, s.GroupID)
	}

	groups, err := r.store.SpecGroupsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, ErrNotFound
	}
	byID := make(map[string]spec.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}

	out := make([]spec.Table, 0, len(specs))
	for _, s := range specs {
		g, ok := byID[s.GroupID]
		if !ok {
			continue
		}
		out = append(out, spec.Table{
			GroupName: g.Title,
			Specs:     Zip(g.Keys, s.Values),
		})
	}
	return out, nil
}

// Zip pairs keys[i] with values[i]; the shorter side is padded with "".
func Zip(keys, values []string) []spec.Entry {
	n := max(len(keys), len(values))
	out := make([]spec.Entry, n)
	for i := 0; i < n; i++ {
		if i < len(keys) {
			out[i].Name = keys[i]
		}
		if i < len(values) {
			out[i].Value = values[i]
		}
	}
	return out
}

// ValidateValues reports whether values line up one-to-one with the group's keys.
func ValidateValues(g spec.Group, values []string) bool {
	return len(g.Keys) == len(values)
}

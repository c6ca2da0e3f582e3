package catalog

import (
	"context"
	"errors"

	"storefront/internal/domain/category"
	"storefront/internal/domain/spec"
)

// memStore is an in-memory Store. products maps category id to the spec group ids used
// by products assigned to that category.
type memStore struct {
	categories map[string]category.Category
	groups     map[string]spec.Group
	products   map[string][]string

	failWith      error
	categoryCalls int
}

func newMemStore() *memStore {
	return &memStore{
		categories: map[string]category.Category{},
		groups:     map[string]spec.Group{},
		products:   map[string][]string{},
	}
}

func (m *memStore) addCategory(id, name, parent string) {
	c := category.Category{ID: id, Name: name, Slug: id}
	if parent != "" {
		p := parent
		c.ParentID = &p
	}
	m.categories[id] = c
}

func (m *memStore) addGroup(id, title string, keys ...string) {
	m.groups[id] = spec.Group{ID: id, Title: title, Keys: keys}
}

func (m *memStore) assign(categoryID string, groupIDs ...string) {
	m.products[categoryID] = append(m.products[categoryID], groupIDs...)
}

func (m *memStore) CategoryByID(_ context.Context, id string) (category.Category, error) {
	m.categoryCalls++
	if m.failWith != nil {
		return category.Category{}, m.failWith
	}
	c, ok := m.categories[id]
	if !ok {
		return category.Category{}, ErrNotFound
	}
	return c, nil
}

func (m *memStore) SpecGroupsForCategory(_ context.Context, categoryID string) ([]spec.Group, error) {
	var out []spec.Group
	seen := map[string]bool{}
	for _, id := range m.products[categoryID] {
		if g, ok := m.groups[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memStore) PathCandidates(_ context.Context, leafID, parentID string, depth int) ([]category.Category, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []category.Category
	seen := map[string]bool{}
	for _, start := range []string{leafID, parentID} {
		current := start
		for lvl := 0; lvl <= depth && current != ""; lvl++ {
			c, ok := m.categories[current]
			if !ok || seen[current] {
				break
			}
			seen[current] = true
			out = append(out, c)
			if c.ParentID == nil {
				break
			}
			current = *c.ParentID
		}
	}
	return out, nil
}

func (m *memStore) SpecGroupsByIDs(_ context.Context, ids []string) ([]spec.Group, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []spec.Group
	for _, id := range ids {
		if g, ok := m.groups[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

var errBoom = errors.New("connection reset")

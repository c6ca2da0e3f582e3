// Package catalog resolves the category-derived views of the storefront: the spec groups a
// category inherits from its ancestors, breadcrumb paths, and display-ready spec tables.
package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"storefront/internal/domain/category"
	"storefront/internal/domain/spec"
)

const (
	DefaultMaxPathDepth = 4
	categoryURLPrefix   = "/list/"
)

type PathEntry struct {
	ID       string  `json:"id"`
	ParentID *string `json:"parent_id"`
	Name     string  `json:"name"`
	URL      string  `json:"url"`
}

type Options struct {
	// MaxPathDepth caps breadcrumb length, leaf included.
	MaxPathDepth int
	CacheSize    int
	CacheTTL     time.Duration
}

type Resolver struct {
	store        Store
	log          *zap.Logger
	maxPathDepth int
	specCache    *expirable.LRU[string, []spec.Group]

	// generation is bumped by Invalidate; a walk that started under an older
	// generation must not repopulate the cache.
	cacheMu    sync.Mutex
	generation atomic.Uint64
}

func NewResolver(store Store, log *zap.Logger, opts Options) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{
		store:        store,
		log:          log,
		maxPathDepth: opts.MaxPathDepth,
	}
	if r.maxPathDepth <= 0 {
		r.maxPathDepth = DefaultMaxPathDepth
	}
	if opts.CacheSize > 0 {
		r.specCache = expirable.NewLRU[string, []spec.Group](opts.CacheSize, nil, opts.CacheTTL)
	}
	return r
}

// Invalidate drops cached spec inheritance results. Call after any catalog write.
func (r *Resolver) Invalidate() {
	if r.specCache == nil {
		return
	}
	r.cacheMu.Lock()
	r.generation.Add(1)
	r.specCache.Purge()
	r.cacheMu.Unlock()
}

func (r *Resolver) cacheSpecs(categoryID string, groups []spec.Group, startedAt uint64) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	if r.generation.Load() != startedAt {
		return
	}
	r.specCache.Add(categoryID, cloneGroups(groups))
}

// CategorySpecs walks from categoryID up to its root and returns every spec group used by
// products along the way, ancestors first. A group found at several levels appears once,
// at the position of its ancestor-most occurrence.
func (r *Resolver) CategorySpecs(ctx context.Context, categoryID string) ([]spec.Group, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return nil, ErrInvalidCategoryID
	}
	generation := r.generation.Load()
	if r.specCache != nil {
		if groups, ok := r.specCache.Get(categoryID); ok {
			return cloneGroups(groups), nil
		}
	}

	// levels[0] is the requested category, the last entry the root.
	var levels [][]spec.Group
	seenCategories := map[string]struct{}{}

	current := categoryID
	for current != "" {
		if _, ok := seenCategories[current]; ok {
			r.log.Warn("category cycle detected", zap.String("category_id", categoryID), zap.String("revisited", current))
			return nil, ErrCategoryCycle
		}
		seenCategories[current] = struct{}{}

		cat, err := r.store.CategoryByID(ctx, current)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}

		groups, err := r.store.SpecGroupsForCategory(ctx, current)
		if err != nil {
			return nil, err
		}
		levels = append(levels, groups)

		if cat.ParentID == nil {
			break
		}
		current = *cat.ParentID
	}

	out := make([]spec.Group, 0)
	seenGroups := map[string]struct{}{}
	for i := len(levels) - 1; i >= 0; i-- {
		for _, g := range levels[i] {
			if _, ok := seenGroups[g.ID]; ok {
				continue
			}
			seenGroups[g.ID] = struct{}{}
			out = append(out, g)
		}
	}

	if r.specCache != nil {
		r.cacheSpecs(categoryID, out, generation)
	}
	return out, nil
}

// PathByCategoryID builds the root-to-leaf breadcrumb for a leaf and its direct parent.
// It returns nil when either id is blank, so root categories need Breadcrumb instead.
func (r *Resolver) PathByCategoryID(ctx context.Context, categoryID, parentID string) ([]PathEntry, error) {
	categoryID = strings.TrimSpace(categoryID)
	parentID = strings.TrimSpace(parentID)
	if categoryID == "" || parentID == "" {
		return nil, nil
	}

	candidates, err := r.store.PathCandidates(ctx, categoryID, parentID, r.maxPathDepth)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]category.Category, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	var path []PathEntry
	visited := map[string]struct{}{}
	current := categoryID
	for len(path) < r.maxPathDepth {
		c, ok := byID[current]
		if !ok {
			break
		}
		if _, dup := visited[current]; dup {
			r.log.Warn("category cycle in breadcrumb", zap.String("category_id", categoryID), zap.String("revisited", current))
			break
		}
		visited[current] = struct{}{}

		path = append([]PathEntry{toPathEntry(c)}, path...)
		if c.IsRoot() {
			break
		}
		current = *c.ParentID
	}
	return path, nil
}

// Breadcrumb is PathByCategoryID for callers that only know the category id.
func (r *Resolver) Breadcrumb(ctx context.Context, categoryID string) ([]PathEntry, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return nil, ErrInvalidCategoryID
	}
	c, err := r.store.CategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if c.IsRoot() {
		return []PathEntry{toPathEntry(c)}, nil
	}
	return r.PathByCategoryID(ctx, c.ID, *c.ParentID)
}

func toPathEntry(c category.Category) PathEntry {
	return PathEntry{
		ID:       c.ID,
		ParentID: c.ParentID,
		Name:     c.Name,
		URL:      categoryURLPrefix + c.Slug,
	}
}

func cloneGroups(in []spec.Group) []spec.Group {
	out := make([]spec.Group, len(in))
	copy(out, in)
	return out
}

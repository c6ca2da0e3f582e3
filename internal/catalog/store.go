package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain/category"
	"storefront/internal/domain/spec"
)

// Store is the read side the resolvers run against.
type Store interface {
	// CategoryByID returns ErrNotFound when no row matches.
	CategoryByID(ctx context.Context, id string) (category.Category, error)
	// SpecGroupsForCategory returns the groups referenced by products assigned to the category.
	SpecGroupsForCategory(ctx context.Context, categoryID string) ([]spec.Group, error)
	// PathCandidates returns the leaf, the parent and their ancestors up to depth levels.
	PathCandidates(ctx context.Context, leafID, parentID string, depth int) ([]category.Category, error)
	SpecGroupsByIDs(ctx context.Context, ids []string) ([]spec.Group, error)
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) CategoryByID(ctx context.Context, id string) (category.Category, error) {
	var c category.Category
	err := s.db.QueryRow(ctx, `
		SELECT id, name, slug, parent_id, COALESCE(description,''), created_at, updated_at
		FROM categories WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return category.Category{}, ErrNotFound
	}
	if err != nil {
		return category.Category{}, fmt.Errorf("category lookup: %w", err)
	}
	return c, nil
}

func (s *PGStore) SpecGroupsForCategory(ctx context.Context, categoryID string) ([]spec.Group, error) {
	rows, err := s.db.Query(ctx, `
		SELECT sg.id, sg.title, sg.keys
		FROM spec_groups sg
		WHERE sg.id IN (
			SELECT ps.spec_group_id
			FROM product_specs ps
			JOIN product_categories pc ON pc.product_id = ps.product_id
			WHERE pc.category_id = $1
		)
		ORDER BY sg.title ASC, sg.id ASC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("spec groups for category: %w", err)
	}
	return collectGroups(rows)
}

func (s *PGStore) PathCandidates(ctx context.Context, leafID, parentID string, depth int) ([]category.Category, error) {
	rows, err := s.db.Query(ctx, `
		WITH RECURSIVE chain AS (
			SELECT id, name, slug, parent_id, description, created_at, updated_at, 0 AS lvl
			FROM categories
			WHERE id = $1 OR id = $2
			UNION
			SELECT c.id, c.name, c.slug, c.parent_id, c.description, c.created_at, c.updated_at, chain.lvl + 1
			FROM categories c
			JOIN chain ON c.id = chain.parent_id
			WHERE chain.lvl < $3
		)
		SELECT DISTINCT ON (id) id, name, slug, parent_id, COALESCE(description,''), created_at, updated_at
		FROM chain
		ORDER BY id, lvl
	`, leafID, parentID, depth)
	if err != nil {
		return nil, fmt.Errorf("path candidates: %w", err)
	}
	defer rows.Close()

	var out []category.Category
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PGStore) SpecGroupsByIDs(ctx context.Context, ids []string) ([]spec.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, title, keys
		FROM spec_groups
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("spec groups by id: %w", err)
	}
	return collectGroups(rows)
}

func collectGroups(rows pgx.Rows) ([]spec.Group, error) {
	defer rows.Close()
	var out []spec.Group
	for rows.Next() {
		var g spec.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Keys); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/db"
	"storefront/internal/domain/category"
	"storefront/internal/util"
)

var ErrNotFound = errors.New("category not found")

const maxSlugAttempts = 5

const categoryColumns = `id, name, slug, parent_id, COALESCE(description,''), created_at, updated_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func scanCategory(row pgx.Row) (category.Category, error) {
	var c category.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return category.Category{}, ErrNotFound
	}
	return c, err
}

// List returns every category; parentID narrows it to the children of one node, and an
// empty non-nil parentID to the roots.
func (r *Repo) List(ctx context.Context, parentID *string) ([]category.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories`
	args := []any{}
	if parentID != nil {
		if *parentID == "" {
			q += ` WHERE parent_id IS NULL`
		} else {
			q += ` WHERE parent_id = $1`
			args = append(args, *parentID)
		}
	}
	q += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []category.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ByID(ctx context.Context, id string) (category.Category, error) {
	return scanCategory(r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
}

// AncestorIDs walks up from id (exclusive) and returns the ids met on the way, nearest
// first. The walk is bounded so a corrupted tree cannot hang the query.
func (r *Repo) AncestorIDs(ctx context.Context, id string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		WITH RECURSIVE up AS (
			SELECT parent_id, 1 AS lvl FROM categories WHERE id = $1
			UNION ALL
			SELECT c.parent_id, up.lvl + 1
			FROM categories c JOIN up ON c.id = up.parent_id
			WHERE up.lvl < 64
		)
		SELECT parent_id FROM up WHERE parent_id IS NOT NULL ORDER BY lvl
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			return nil, err
		}
		out = append(out, pid)
	}
	return out, rows.Err()
}

func (r *Repo) HasChildren(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE parent_id = $1)`, id).Scan(&ok)
	return ok, err
}

// withFreeSlug runs write with the slug of name, then name-2, name-3 and so on while
// the slug collides with another category.
func withFreeSlug(name string, write func(slug string) (category.Category, error)) (category.Category, error) {
	base := util.Slugify(name)
	var lastErr error
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		c, err := write(util.SlugAttempt(base, attempt))
		if err == nil {
			return c, nil
		}
		if !db.IsUniqueViolation(err) {
			return category.Category{}, err
		}
		lastErr = err
	}
	return category.Category{}, fmt.Errorf("slug %q still taken after %d attempts: %w", base, maxSlugAttempts, lastErr)
}

// Create inserts a category, suffixing the slug when it collides with an existing one.
func (r *Repo) Create(ctx context.Context, name string, parentID *string, description string) (category.Category, error) {
	id := uuid.NewString()
	return withFreeSlug(name, func(slug string) (category.Category, error) {
		return scanCategory(r.db.QueryRow(ctx, `
			INSERT INTO categories (id, name, slug, parent_id, description)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+categoryColumns,
			id, name, slug, parentID, description))
	})
}

type UpdateInput struct {
	Name        *string
	Description *string
	// ParentID set to "" moves the category to the root.
	ParentID *string
}

// Update applies the non-nil fields. A rename moves the slug along with the name.
func (r *Repo) Update(ctx context.Context, id string, in UpdateInput) (category.Category, error) {
	moveParent := in.ParentID != nil
	var parent *string
	if moveParent && *in.ParentID != "" {
		parent = in.ParentID
	}

	write := func(slug *string) (category.Category, error) {
		return scanCategory(r.db.QueryRow(ctx, `
			UPDATE categories
			SET
			  name = COALESCE($2, name),
			  slug = COALESCE($3, slug),
			  description = COALESCE($4, description),
			  parent_id = CASE WHEN $5 THEN $6 ELSE parent_id END,
			  updated_at = now()
			WHERE id = $1
			RETURNING `+categoryColumns,
			id, in.Name, slug, in.Description, moveParent, parent))
	}

	if in.Name == nil {
		return write(nil)
	}
	return withFreeSlug(*in.Name, func(slug string) (category.Category, error) {
		return write(&slug)
	})
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/catalog"
	"storefront/internal/domain/product"
	"storefront/internal/domain/spec"
)

var (
	ErrNotFound         = errors.New("product not found")
	ErrUnknownSpecGroup = errors.New("unknown spec group")
	ErrSpecMismatch     = errors.New("spec values do not match the group's keys")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CreatedBy   int64
	// CategoryIDs in display order; the first one drives the breadcrumb.
	CategoryIDs []string

	Specs []CreateSpecInput
}

type CreateSpecInput struct {
	GroupID string
	Values  []string
}

func (r *Repo) CreateProduct(ctx context.Context, in CreateProductInput) (product.Product, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return product.Product{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var p product.Product
	err = tx.QueryRow(ctx, `
		INSERT INTO products (id, name, description, price, created_by, is_active)
		VALUES ($1,$2,$3,$4,$5,true)
		RETURNING id, name, COALESCE(description,''), price, is_active, created_by, created_at, updated_at
	`, uuid.NewString(), in.Name, in.Description, in.Price, in.CreatedBy).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.IsActive, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return product.Product{}, err
	}

	for i, catID := range in.CategoryIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO product_categories (product_id, category_id, position)
			VALUES ($1,$2,$3)
		`, p.ID, catID, i)
		if err != nil {
			return product.Product{}, fmt.Errorf("category assignment failed: %w", err)
		}
		p.CategoryIDs = append(p.CategoryIDs, catID)
	}

	for _, s := range in.Specs {
		var keys []string
		err := tx.QueryRow(ctx, `SELECT keys FROM spec_groups WHERE id = $1`, s.GroupID).Scan(&keys)
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, fmt.Errorf("%w: %s", ErrUnknownSpecGroup, s.GroupID)
		}
		if err != nil {
			return product.Product{}, err
		}
		if err := checkSpecValues(s.GroupID, keys, s.Values); err != nil {
			return product.Product{}, err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO product_specs (product_id, spec_group_id, spec_values)
			VALUES ($1,$2,$3)
		`, p.ID, s.GroupID, s.Values)
		if err != nil {
			return product.Product{}, fmt.Errorf("spec insert failed: %w", err)
		}
		p.Specs = append(p.Specs, spec.ProductSpec{ProductID: p.ID, GroupID: s.GroupID, Values: s.Values})
	}

	if err := tx.Commit(ctx); err != nil {
		return product.Product{}, err
	}
	return p, nil
}

// checkSpecValues rejects value lists that would not zip one to one with the
// group's keys.
func checkSpecValues(groupID string, keys, values []string) error {
	if !catalog.ValidateValues(spec.Group{ID: groupID, Keys: keys}, values) {
		return fmt.Errorf("%w: group %s has %d keys, got %d values",
			ErrSpecMismatch, groupID, len(keys), len(values))
	}
	return nil
}

func (r *Repo) ListPublic(ctx context.Context, categorySlug *string) ([]product.Product, error) {
	q := `
		SELECT
		  p.id, p.name, COALESCE(p.description,''), p.price, p.is_active, p.created_at, p.updated_at,
		  COALESCE(array_agg(pc.category_id ORDER BY pc.position) FILTER (WHERE pc.category_id IS NOT NULL), '{}')
		FROM products p
		LEFT JOIN product_categories pc ON pc.product_id = p.id
		WHERE p.is_active = true
	`
	args := []any{}
	if categorySlug != nil && *categorySlug != "" {
		q += `
		  AND EXISTS (
		    SELECT 1 FROM product_categories fpc
		    JOIN categories c ON c.id = fpc.category_id
		    WHERE fpc.product_id = p.id AND c.slug = $1
		  )`
		args = append(args, *categorySlug)
	}
	q += " GROUP BY p.id ORDER BY p.created_at DESC "

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&p.CategoryIDs,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProductPublic(ctx context.Context, id string) (product.Product, error) {
	var p product.Product
	err := r.db.QueryRow(ctx, `
		SELECT
		  p.id, p.name, COALESCE(p.description,''), p.price, p.is_active, p.created_at, p.updated_at,
		  COALESCE(array_agg(pc.category_id ORDER BY pc.position) FILTER (WHERE pc.category_id IS NOT NULL), '{}')
		FROM products p
		LEFT JOIN product_categories pc ON pc.product_id = p.id
		WHERE p.id = $1 AND p.is_active = true
		GROUP BY p.id
	`, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&p.CategoryIDs,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return product.Product{}, ErrNotFound
	}
	if err != nil {
		return product.Product{}, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT product_id, spec_group_id, spec_values
		FROM product_specs
		WHERE product_id = $1
		ORDER BY created_at ASC, spec_group_id ASC
	`, p.ID)
	if err != nil {
		return product.Product{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var s spec.ProductSpec
		if err := rows.Scan(&s.ProductID, &s.GroupID, &s.Values); err != nil {
			return product.Product{}, err
		}
		p.Specs = append(p.Specs, s)
	}
	return p, rows.Err()
}

func (r *Repo) Deactivate(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `UPDATE products SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

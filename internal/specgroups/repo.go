package specgroups

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain/spec"
)

var (
	ErrNotFound  = errors.New("spec group not found")
	ErrKeysInUse = errors.New("key count change conflicts with existing product specs")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func scanGroup(row pgx.Row) (spec.Group, error) {
	var g spec.Group
	err := row.Scan(&g.ID, &g.Title, &g.Keys, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return spec.Group{}, ErrNotFound
	}
	return g, err
}

func (r *Repo) List(ctx context.Context) ([]spec.Group, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, keys, created_at, updated_at
		FROM spec_groups
		ORDER BY title ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []spec.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repo) ByID(ctx context.Context, id string) (spec.Group, error) {
	return scanGroup(r.db.QueryRow(ctx, `
		SELECT id, title, keys, created_at, updated_at
		FROM spec_groups WHERE id = $1
	`, id))
}

func (r *Repo) Create(ctx context.Context, title string, keys []string) (spec.Group, error) {
	return scanGroup(r.db.QueryRow(ctx, `
		INSERT INTO spec_groups (id, title, keys)
		VALUES ($1, $2, $3)
		RETURNING id, title, keys, created_at, updated_at
	`, uuid.NewString(), title, keys))
}

// Update replaces title and/or keys. Changing the key count of a group already used by
// products is refused, since their stored values would no longer line up.
func (r *Repo) Update(ctx context.Context, id string, title *string, keys []string) (spec.Group, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return spec.Group{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if keys != nil {
		var mismatched bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM product_specs
				WHERE spec_group_id = $1 AND cardinality(spec_values) <> $2
			)
		`, id, len(keys)).Scan(&mismatched)
		if err != nil {
			return spec.Group{}, err
		}
		if mismatched {
			return spec.Group{}, ErrKeysInUse
		}
	}

	g, err := scanGroup(tx.QueryRow(ctx, `
		UPDATE spec_groups
		SET
		  title = COALESCE($2, title),
		  keys = COALESCE($3, keys),
		  updated_at = now()
		WHERE id = $1
		RETURNING id, title, keys, created_at, updated_at
	`, id, title, keys))
	if err != nil {
		return spec.Group{}, err
	}
	return g, tx.Commit(ctx)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM spec_groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package catalog

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/category"
)

// pgTestStore loads the migration into a throwaway schema of DATABASE_URL.
func pgTestStore(t *testing.T) (*PGStore, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	schema := "catalog_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	admin, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	_, err = admin.Exec(ctx, `CREATE SCHEMA `+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), `DROP SCHEMA `+schema+` CASCADE`)
		_ = admin.Close(context.Background())
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ddl, err := os.ReadFile("../../migrations/0001_init.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(ddl))
	require.NoError(t, err)

	return NewPGStore(pool), pool
}

// seedChain stores c0 <- c1 <- c2 <- c3 <- c4 with group A used at c0 and C at c4.
func seedChain(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()
	stmts := []string{
		`INSERT INTO categories (id, name, slug, parent_id) VALUES
			('c0','Home','home',NULL),
			('c1','Furniture','furniture','c0'),
			('c2','Tables','tables','c1'),
			('c3','Desks','desks','c2'),
			('c4','Standing Desks','standing-desks','c3')`,
		`INSERT INTO spec_groups (id, title, keys) VALUES
			('A','General',ARRAY['Brand','Model']),
			('C','Frame',ARRAY['Motor','Lift'])`,
		`INSERT INTO products (id, name) VALUES ('p0','Rug'), ('p4','Lift Desk')`,
		`INSERT INTO product_categories (product_id, category_id) VALUES ('p0','c0'), ('p4','c4')`,
		`INSERT INTO product_specs (product_id, spec_group_id, spec_values) VALUES
			('p0','A',ARRAY['Acme','R1']),
			('p4','C',ARRAY['Dual','120kg'])`,
	}
	for _, q := range stmts {
		_, err := pool.Exec(ctx, q)
		require.NoError(t, err)
	}
}

func categoryIDs(cs []category.Category) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestPGStorePathCandidates(t *testing.T) {
	store, pool := pgTestStore(t)
	seedChain(t, pool)
	ctx := context.Background()

	all, err := store.PathCandidates(ctx, "c4", "c3", DefaultMaxPathDepth)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c0", "c1", "c2", "c3", "c4"}, categoryIDs(all))

	near, err := store.PathCandidates(ctx, "c4", "c3", 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c2", "c3", "c4"}, categoryIDs(near))

	for _, c := range all {
		if c.ID == "c0" {
			assert.Nil(t, c.ParentID)
			assert.Equal(t, "home", c.Slug)
		}
	}
}

func TestPGStoreLookups(t *testing.T) {
	store, pool := pgTestStore(t)
	seedChain(t, pool)
	ctx := context.Background()

	_, err := store.CategoryByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	groups, err := store.SpecGroupsForCategory(ctx, "c4")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"Motor", "Lift"}, groups[0].Keys)

	byID, err := store.SpecGroupsByIDs(ctx, []string{"A", "nope"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, groupIDs(byID))
}

func TestPGStoreBackedResolver(t *testing.T) {
	store, pool := pgTestStore(t)
	seedChain(t, pool)
	r := NewResolver(store, nil, Options{})
	ctx := context.Background()

	path, err := r.PathByCategoryID(ctx, "c4", "c3")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2", "c3", "c4"}, pathIDs(path))
	assert.Equal(t, "/list/standing-desks", path[3].URL)

	groups, err := r.CategorySpecs(ctx, "c4")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, groupIDs(groups))
}

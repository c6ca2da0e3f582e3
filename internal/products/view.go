package products

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"storefront/internal/catalog"
	"storefront/internal/domain/product"
	"storefront/internal/domain/spec"
)

// View is the product detail page model.
type View struct {
	product.Product
	SpecTable  []spec.Table         `json:"spec_table"`
	Breadcrumb []catalog.PathEntry `json:"breadcrumb"`
}

type viewResolver interface {
	AssembleSpecs(ctx context.Context, specs []spec.ProductSpec) ([]spec.Table, error)
	Breadcrumb(ctx context.Context, categoryID string) ([]catalog.PathEntry, error)
}

// buildView decorates p with its spec table and breadcrumb. Missing pieces render as
// empty sections; only unexpected failures are logged.
func buildView(ctx context.Context, res viewResolver, log *zap.Logger, p product.Product) View {
	v := View{
		Product:    p,
		SpecTable:  []spec.Table{},
		Breadcrumb: []catalog.PathEntry{},
	}

	if len(p.Specs) > 0 {
		tables, err := res.AssembleSpecs(ctx, p.Specs)
		switch {
		case err == nil:
			v.SpecTable = tables
		case !errors.Is(err, catalog.ErrNotFound):
			log.Error("assemble product specs", zap.Error(err), zap.String("product_id", p.ID))
		}
	}

	if len(p.CategoryIDs) > 0 {
		path, err := res.Breadcrumb(ctx, p.CategoryIDs[0])
		switch catalog.Kind(err) {
		case catalog.KindNone:
			if path != nil {
				v.Breadcrumb = path
			}
		case catalog.KindInternal, catalog.KindCycle:
			log.Error("resolve product breadcrumb", zap.Error(err), zap.String("product_id", p.ID))
		}
	}
	return v
}

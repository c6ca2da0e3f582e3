package product

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/spec"
)

type Product struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Price       decimal.Decimal    `json:"price"`
	IsActive    bool               `json:"is_active"`
	CreatedBy   *int64             `json:"created_by,omitempty"`
	CategoryIDs []string           `json:"category_ids"`
	Specs       []spec.ProductSpec `json:"specs,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

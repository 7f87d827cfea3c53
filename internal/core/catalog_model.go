package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProductInput holds the fields required to create or update a product.
// InitialStock is only honoured on create; stock changes afterwards go through the InventoryLedger.
type ProductInput struct {
	Name         string
	Category     string
	Size         string
	Color        string
	Description  string
	UnitPrice    decimal.Decimal
	UnitCost     *decimal.Decimal
	InitialStock int
	MinStock     *int
	SchoolID     *int
}

// CatalogService provides product master data operations.
type CatalogService interface {
	// CreateProduct rejects an active duplicate of (name, size, color, school).
	CreateProduct(ctx context.Context, input ProductInput) (*Product, error)

	// UpdateProduct rewrites descriptive fields and prices. Stock is never touched.
	UpdateProduct(ctx context.Context, id int, input ProductInput) (*Product, error)

	GetProduct(ctx context.Context, id int) (*Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)

	// DeactivateProduct hides a product from new orders. Historical order lines are unaffected.
	DeactivateProduct(ctx context.Context, id int) error

	// DeleteProduct removes a product, or deactivates it when order lines still reference it.
	// It reports whether the row was actually removed.
	DeleteProduct(ctx context.Context, id int) (bool, error)
}

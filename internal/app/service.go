package app

import (
	"context"

	"uniform-store/internal/core"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// PlaceOrder creates a PENDING order and reserves stock for every line atomically.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResult, error)

	// GetOrder returns a single order with its lines and recomputed totals.
	GetOrder(ctx context.Context, orderID int) (*OrderResult, error)

	// ListOrders returns orders newest first, optionally filtered by school, client and status.
	ListOrders(ctx context.Context, req ListOrdersRequest) (*OrderListResult, error)

	// TransitionStatus moves an order to status (stored or display form accepted).
	TransitionStatus(ctx context.Context, orderID int, status string) (*OrderResult, error)

	// CancelOrder restores the order's stock and removes it. Delivered orders are rejected.
	CancelOrder(ctx context.Context, orderID int) error

	// DeleteOrder restores the order's stock and removes it regardless of status.
	DeleteOrder(ctx context.Context, orderID int) error

	// CheckAvailability fails with *core.InsufficientStockError on the first short item.
	CheckAvailability(ctx context.Context, items []core.StockItem) error

	// SetStock sets a product's absolute stock level as a journalled manual adjustment.
	SetStock(ctx context.Context, req SetStockRequest) (*ProductResult, error)

	// StockMovements returns the stock journal of one product, oldest first.
	StockMovements(ctx context.Context, productID int) (*MovementListResult, error)

	// Catalog
	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResult, error)
	GetProduct(ctx context.Context, productID int) (*ProductResult, error)
	ListProducts(ctx context.Context, req ListProductsRequest) (*ProductListResult, error)
	DeactivateProduct(ctx context.Context, productID int) error

	// DeleteProduct removes a product, or deactivates it when order lines still reference it.
	DeleteProduct(ctx context.Context, productID int) (*DeleteProductResult, error)

	// Parties
	CreateClient(ctx context.Context, req CreateClientRequest) (*ClientResult, error)
	ListClients(ctx context.Context) (*ClientListResult, error)
	DeleteClient(ctx context.Context, clientID int) error
	CreateSchool(ctx context.Context, req CreateSchoolRequest) (*SchoolResult, error)
	ListSchools(ctx context.Context, activeOnly bool) (*SchoolListResult, error)

	// Reports
	GetMetrics(ctx context.Context) (*core.Metrics, error)
	GetOrdersByStatus(ctx context.Context) (*StatusReportResult, error)
	GetLowStock(ctx context.Context) (*ProductListResult, error)
	GetProductMargins(ctx context.Context) (*MarginReportResult, error)

	// Seed loads the default schools and a demo catalog. Existing rows are left alone.
	Seed(ctx context.Context) (*SeedResult, error)

	// Close releases the underlying store.
	Close() error
}

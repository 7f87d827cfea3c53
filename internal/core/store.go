package core

import (
	"context"
	"time"
)

// CatalogStore persists products. Stock columns are exposed separately through StockStore.
type CatalogStore interface {
	GetProduct(ctx context.Context, id int) (*Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	// InsertProduct assigns p.ID and p.CreatedAt.
	InsertProduct(ctx context.Context, p *Product) error
	// UpdateProduct rewrites descriptive fields, price, cost, threshold and school. Never stock.
	UpdateProduct(ctx context.Context, p *Product) error
	SetProductActive(ctx context.Context, id int, active bool) error
	DeleteProduct(ctx context.Context, id int) error
	// CountActiveDuplicates counts active products other than p.ID sharing name, size, color and school.
	CountActiveDuplicates(ctx context.Context, p *Product) (int, error)
	CountOrderLinesForProduct(ctx context.Context, productID int) (int, error)
}

// StockStore mutates Product.stock. Only the InventoryLedger may call it.
type StockStore interface {
	// UpdateStock adds delta (may be negative) to the product's stock unconditionally.
	UpdateStock(ctx context.Context, productID, delta int) error
	// DecrementStock subtracts qty only if stock >= qty, as one conditional update.
	// It reports whether the row was changed.
	DecrementStock(ctx context.Context, productID, qty int) (bool, error)
	InsertMovement(ctx context.Context, m *StockMovement) error
	ListMovements(ctx context.Context, productID int) ([]StockMovement, error)
}

// PartyStore persists clients and schools.
type PartyStore interface {
	GetClient(ctx context.Context, id int) (*Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	InsertClient(ctx context.Context, c *Client) error
	UpdateClient(ctx context.Context, c *Client) error
	DeleteClient(ctx context.Context, id int) error
	CountOrdersForClient(ctx context.Context, clientID int) (int, error)

	GetSchool(ctx context.Context, id int) (*School, error)
	FindSchoolByName(ctx context.Context, name string) (*School, error)
	ListSchools(ctx context.Context, activeOnly bool) ([]School, error)
	InsertSchool(ctx context.Context, s *School) error
	SetSchoolActive(ctx context.Context, id int, active bool) error
}

// OrderStore persists orders and their lines. Only the OrderService may call it.
type OrderStore interface {
	// InsertOrder writes the header and every line, assigning IDs and CreatedAt.
	InsertOrder(ctx context.Context, o *Order) error
	// GetOrder returns the header without lines. lock requests a row lock held until the
	// surrounding transaction ends, where the backend supports it.
	GetOrder(ctx context.Context, id int, lock bool) (*Order, error)
	GetOrderLines(ctx context.Context, orderID int) ([]OrderLine, error)
	// ListOrders returns headers, newest first.
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id int, status OrderStatus, deliveredAt *time.Time) error
	// DeleteOrder removes the order and, by cascade, its lines.
	DeleteOrder(ctx context.Context, id int) error
	CountOrdersByStatus(ctx context.Context) (map[OrderStatus]int, error)
}

// Tx is a unit of work. Every method runs inside the same database transaction.
type Tx interface {
	CatalogStore
	StockStore
	PartyStore
	OrderStore
}

// Store is the storage abstraction implemented by the postgres and sqlite adapters.
// Methods called directly on a Store run outside any explicit transaction.
type Store interface {
	Tx
	// WithTx runs fn in a transaction, committing when fn returns nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

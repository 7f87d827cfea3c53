package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// Metrics is the dashboard summary.
// DeliveredSales is the value of every DELIVERED order, recomputed from its lines.
type Metrics struct {
	TotalOrders    int                 `json:"total_orders"`
	PendingOrders  int                 `json:"pending_orders"`
	TotalClients   int                 `json:"total_clients"`
	LowStockCount  int                 `json:"low_stock_products"`
	DeliveredSales decimal.Decimal     `json:"delivered_sales"`
	OrdersByStatus map[OrderStatus]int `json:"orders_by_status"`
}

// StatusCount is one row of the orders-by-status breakdown.
type StatusCount struct {
	Status OrderStatus `json:"status"`
	Count  int         `json:"count"`
}

// ProductMargin reports a product's markup. Cost is zero when the product has no recorded cost.
type ProductMargin struct {
	ProductID int             `json:"product_id"`
	Label     string          `json:"label"`
	Price     decimal.Decimal `json:"price"`
	Cost      decimal.Decimal `json:"cost"`
	MarginPct decimal.Decimal `json:"margin_pct"`
}

// ReportingService provides read-only aggregates. It never mutates state.
type ReportingService interface {
	Metrics(ctx context.Context) (*Metrics, error)

	// OrdersByStatus returns a count for every status in lifecycle order, zero-filled.
	OrdersByStatus(ctx context.Context) ([]StatusCount, error)

	// LowStock returns active products at or below their minimum-stock threshold.
	LowStock(ctx context.Context) ([]Product, error)

	// ProductMargins returns (price - cost) / price * 100 for every active product.
	ProductMargins(ctx context.Context) ([]ProductMargin, error)
}

type reportingService struct {
	store     Store
	inventory InventoryLedger
}

// NewReportingService constructs a ReportingService.
func NewReportingService(store Store, inventory InventoryLedger) ReportingService {
	return &reportingService{store: store, inventory: inventory}
}

func (s *reportingService) Metrics(ctx context.Context) (*Metrics, error) {
	counts, err := s.store.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, NewStorageError("count orders by status", err)
	}
	m := &Metrics{DeliveredSales: decimal.Zero, OrdersByStatus: make(map[OrderStatus]int, len(AllStatuses))}
	for _, st := range AllStatuses {
		m.OrdersByStatus[st] = counts[st]
		m.TotalOrders += counts[st]
	}
	m.PendingOrders = counts[StatusPending]

	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, NewStorageError("list clients", err)
	}
	m.TotalClients = len(clients)

	low, err := s.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	m.LowStockCount = len(low)

	delivered := StatusDelivered
	orders, err := s.store.ListOrders(ctx, OrderFilter{Status: &delivered})
	if err != nil {
		return nil, NewStorageError("list delivered orders", err)
	}
	for _, o := range orders {
		lines, err := s.store.GetOrderLines(ctx, o.ID)
		if err != nil {
			return nil, NewStorageError("read order lines", err)
		}
		m.DeliveredSales = m.DeliveredSales.Add(ComputeLineTotals(lines).ValueTotal)
	}
	m.DeliveredSales = RoundMoney(m.DeliveredSales)
	return m, nil
}

func (s *reportingService) OrdersByStatus(ctx context.Context) ([]StatusCount, error) {
	counts, err := s.store.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, NewStorageError("count orders by status", err)
	}
	result := make([]StatusCount, 0, len(AllStatuses))
	for _, st := range AllStatuses {
		result = append(result, StatusCount{Status: st, Count: counts[st]})
	}
	return result, nil
}

func (s *reportingService) LowStock(ctx context.Context) ([]Product, error) {
	products, err := s.store.ListProducts(ctx, ProductFilter{})
	if err != nil {
		return nil, NewStorageError("list products", err)
	}
	var low []Product
	for _, p := range products {
		if s.inventory.IsBelowThreshold(p) {
			low = append(low, p)
		}
	}
	return low, nil
}

func (s *reportingService) ProductMargins(ctx context.Context) ([]ProductMargin, error) {
	products, err := s.store.ListProducts(ctx, ProductFilter{})
	if err != nil {
		return nil, NewStorageError("list products", err)
	}
	margins := make([]ProductMargin, 0, len(products))
	for _, p := range products {
		cost := decimal.Zero
		if p.UnitCost != nil {
			cost = *p.UnitCost
		}
		margins = append(margins, ProductMargin{
			ProductID: p.ID,
			Label:     p.Label(),
			Price:     p.UnitPrice,
			Cost:      cost,
			MarginPct: Margin(p.UnitPrice, cost),
		})
	}
	return margins, nil
}

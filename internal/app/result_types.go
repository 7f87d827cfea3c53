package app

import "uniform-store/internal/core"

// OrderResult is returned by order lifecycle operations.
type OrderResult struct {
	Order *core.Order
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.Order
}

// ProductResult is returned by catalog and stock operations on one product.
type ProductResult struct {
	Product  *core.Product
	LowStock bool
}

// ProductListResult is returned by ListProducts and GetLowStock.
type ProductListResult struct {
	Products []core.Product
}

// DeleteProductResult reports whether DeleteProduct removed the row or only deactivated it.
type DeleteProductResult struct {
	Deleted     bool
	Deactivated bool
}

// MovementListResult is returned by StockMovements.
type MovementListResult struct {
	ProductID int
	Movements []core.StockMovement
}

// ClientResult is returned by CreateClient.
type ClientResult struct {
	Client *core.Client
}

// ClientListResult is returned by ListClients.
type ClientListResult struct {
	Clients []core.Client
}

// SchoolResult is returned by CreateSchool.
type SchoolResult struct {
	School *core.School
}

// SchoolListResult is returned by ListSchools.
type SchoolListResult struct {
	Schools []core.School
}

// StatusReportResult is returned by GetOrdersByStatus.
type StatusReportResult struct {
	Counts []core.StatusCount
	Total  int
}

// MarginReportResult is returned by GetProductMargins.
type MarginReportResult struct {
	Margins []core.ProductMargin
}

// SeedResult counts the rows Seed created.
type SeedResult struct {
	SchoolsCreated  int
	ProductsCreated int
}

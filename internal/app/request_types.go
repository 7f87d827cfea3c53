package app

import (
	"github.com/shopspring/decimal"
)

// PlaceOrderRequest is the input for placing a new order.
type PlaceOrderRequest struct {
	ClientID             int
	SchoolID             *int
	Lines                []OrderLineInput
	ExpectedDeliveryDate string // YYYY-MM-DD, optional
	PaymentMethod        string
	Notes                string
}

// OrderLineInput is a single line within a PlaceOrderRequest. The unit price is always
// captured from the product at placement time.
type OrderLineInput struct {
	ProductID int
	Quantity  int
}

// ListOrdersRequest filters ListOrders. Empty Status means any status.
type ListOrdersRequest struct {
	SchoolID *int
	ClientID *int
	Status   string
}

// SetStockRequest sets a product's absolute stock level.
type SetStockRequest struct {
	ProductID int
	Quantity  int
	Note      string
}

// CreateProductRequest is the input for adding a product to the catalog.
type CreateProductRequest struct {
	Name        string
	Category    string
	Size        string
	Color       string
	Description string
	UnitPrice   decimal.Decimal
	UnitCost    *decimal.Decimal
	Stock       int
	MinStock    *int // nil means core.DefaultMinStock
	SchoolID    *int
}

// ListProductsRequest filters ListProducts.
type ListProductsRequest struct {
	SchoolID        *int
	Category        string
	IncludeInactive bool
}

// CreateClientRequest is the input for registering a client.
type CreateClientRequest struct {
	Name      string
	Phone     string
	Email     string
	Address   string
	BirthDate string // YYYY-MM-DD, optional
}

// CreateSchoolRequest is the input for registering a school.
type CreateSchoolRequest struct {
	Name    string
	Address string
	Phone   string
}

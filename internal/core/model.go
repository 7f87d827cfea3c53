package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Catalog attribute values offered by the shop's forms. They are not enforced by the
// stores; products may carry any category, size or color string.
var (
	KidsSizes         = []string{"2", "4", "6", "8", "10", "12"}
	AdultSizes        = []string{"PP", "P", "M", "G", "GG"}
	ProductCategories = []string{"Shirts", "Pants/Shorts", "Sweaters", "Accessories", "Other"}
	PaymentMethods    = []string{"Cash", "Credit Card", "Debit Card", "PIX", "Bank Transfer"}
)

// DefaultMinStock is the low-stock threshold applied when a product is created without one.
const DefaultMinStock = 5

// School is a customer institution whose uniforms the shop sells.
type School struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"is_active"`
}

// Client is a retail customer (usually a parent) who places orders.
type Client struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	Address      string     `json:"address"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	RegisteredAt time.Time  `json:"registered_at"`
}

// Product is a sellable uniform item. Stock is only ever changed through the InventoryLedger.
type Product struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Size        string           `json:"size"`
	Color       string           `json:"color"`
	Description string           `json:"description"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	Stock       int              `json:"stock"`
	MinStock    int              `json:"min_stock"`
	SchoolID    *int             `json:"school_id,omitempty"`
	SchoolName  string           `json:"school_name,omitempty"` // joined from schools
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Label renders "Name (size, color)" for messages and tables.
func (p Product) Label() string {
	var parts []string
	if p.Size != "" {
		parts = append(parts, p.Size)
	}
	if p.Color != "" {
		parts = append(parts, p.Color)
	}
	if len(parts) == 0 {
		return p.Name
	}
	return fmt.Sprintf("%s (%s)", p.Name, strings.Join(parts, ", "))
}

// ProductFilter narrows ListProducts. Zero value lists every active product.
type ProductFilter struct {
	SchoolID        *int
	Category        string
	IncludeInactive bool
}

// Order is a client's order header. QuantityTotal and ValueTotal are derived from Lines.
type Order struct {
	ID                   int             `json:"id"`
	ClientID             int             `json:"client_id"`
	ClientName           string          `json:"client_name"` // joined from clients
	SchoolID             *int            `json:"school_id,omitempty"`
	SchoolName           string          `json:"school_name,omitempty"` // joined from schools
	Status               OrderStatus     `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date,omitempty"`
	DeliveredAt          *time.Time      `json:"delivered_at,omitempty"`
	PaymentMethod        string          `json:"payment_method"`
	Notes                string          `json:"notes"`
	QuantityTotal        int             `json:"quantity_total"`
	ValueTotal           decimal.Decimal `json:"value_total"`
	Lines                []OrderLine     `json:"lines"`
}

// OrderLine is one product line on an order. UnitPrice is captured when the order is placed.
type OrderLine struct {
	ID          int             `json:"id"`
	OrderID     int             `json:"order_id"`
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"` // joined from products
	Size        string          `json:"size"`         // joined from products
	Color       string          `json:"color"`        // joined from products
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderFilter narrows ListOrders. Nil fields are not applied.
type OrderFilter struct {
	SchoolID *int
	ClientID *int
	Status   *OrderStatus
}

// StockItem is a requested product quantity, used for availability checks and reservations.
type StockItem struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// MovementKind classifies a StockMovement.
type MovementKind string

const (
	MovementReserve MovementKind = "RESERVE"
	MovementRelease MovementKind = "RELEASE"
	MovementAdjust  MovementKind = "ADJUST"
)

// StockMovement is an append-only journal row written for every stock change.
// Quantity is signed: negative for reservations, positive for releases.
type StockMovement struct {
	ID        int          `json:"id"`
	ProductID int          `json:"product_id"`
	OrderID   *int         `json:"order_id,omitempty"`
	Kind      MovementKind `json:"kind"`
	Quantity  int          `json:"quantity"`
	Note      string       `json:"note"`
	CreatedAt time.Time    `json:"created_at"`
}

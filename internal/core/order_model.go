package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the delivery lifecycle state of an order.
// Status progresses through the state machine:
//
//	PENDING → IN_PRODUCTION → READY_FOR_DELIVERY → DELIVERED
//	any non-terminal status → DELIVERED | CANCELLED
type OrderStatus string

const (
	StatusPending          OrderStatus = "PENDING"
	StatusInProduction     OrderStatus = "IN_PRODUCTION"
	StatusReadyForDelivery OrderStatus = "READY_FOR_DELIVERY"
	StatusDelivered        OrderStatus = "DELIVERED"
	StatusCancelled        OrderStatus = "CANCELLED"
)

// AllStatuses lists statuses in lifecycle order.
var AllStatuses = []OrderStatus{
	StatusPending, StatusInProduction, StatusReadyForDelivery, StatusDelivered, StatusCancelled,
}

// progress ranks the non-terminal statuses; forward moves only.
var progress = map[OrderStatus]int{
	StatusPending:          0,
	StatusInProduction:     1,
	StatusReadyForDelivery: 2,
}

// ParseOrderStatus accepts the stored form ("IN_PRODUCTION") and the display form ("In Production").
func ParseOrderStatus(s string) (OrderStatus, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, st := range AllStatuses {
		if string(st) == norm {
			return st, nil
		}
	}
	return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown order status %q", s)}
}

// IsTerminal reports whether no further transitions are allowed out of s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Label returns the human-readable status name.
func (s OrderStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProduction:
		return "In Production"
	case StatusReadyForDelivery:
		return "Ready for Delivery"
	case StatusDelivered:
		return "Delivered"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// CanTransition reports whether from → to is an allowed edge.
func CanTransition(from, to OrderStatus) bool {
	if from.IsTerminal() || from == to {
		return false
	}
	switch to {
	case StatusDelivered, StatusCancelled:
		return true
	}
	fromRank, ok := progress[from]
	if !ok {
		return false
	}
	toRank, ok := progress[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// PlaceOrderRequest is the input for OrderService.PlaceOrder.
type PlaceOrderRequest struct {
	ClientID             int
	SchoolID             *int
	Lines                []StockItem
	ExpectedDeliveryDate *time.Time
	PaymentMethod        string
	Notes                string
}

// Totals are the derived order aggregates.
type Totals struct {
	QuantityTotal int             `json:"quantity_total"`
	ValueTotal    decimal.Decimal `json:"value_total"`
}

// ComputeLineTotals sums quantities and subtotals of lines.
func ComputeLineTotals(lines []OrderLine) Totals {
	t := Totals{ValueTotal: decimal.Zero}
	for _, l := range lines {
		t.QuantityTotal += l.Quantity
		t.ValueTotal = t.ValueTotal.Add(l.Subtotal)
	}
	t.ValueTotal = RoundMoney(t.ValueTotal)
	return t
}

// RoundMoney rounds a monetary amount to 2 fractional digits.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineSubtotal returns quantity × unit price rounded to cents.
func LineSubtotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return RoundMoney(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

var hundred = decimal.NewFromInt(100)

// Margin returns (price - cost) / price * 100 rounded to 2 dp. A zero price yields 0.
func Margin(price, cost decimal.Decimal) decimal.Decimal {
	if price.IsZero() {
		return decimal.Zero
	}
	return price.Sub(cost).Div(price).Mul(hundred).Round(2)
}

package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// OrderService manages the order lifecycle and drives the InventoryLedger at each transition.
// It is the only writer of orders and order lines.
type OrderService interface {
	// PlaceOrder validates the request, captures current unit prices, persists the order as
	// PENDING and reserves stock for every line, all in one transaction.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error)
	// TransitionStatus moves an order along the status machine. Moving to DELIVERED stamps
	// the delivery date. Moving to CANCELLED only changes the label; stock is untouched.
	TransitionStatus(ctx context.Context, orderID int, to OrderStatus) (*Order, error)
	// CancelOrder releases the order's stock and removes it. Delivered orders cannot be cancelled.
	CancelOrder(ctx context.Context, orderID int) error
	// DeleteOrder releases the order's stock and removes it regardless of status.
	DeleteOrder(ctx context.Context, orderID int) error

	// Queries
	GetOrder(ctx context.Context, orderID int) (*Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)
	ComputeTotals(ctx context.Context, orderID int) (Totals, error)
}

type orderService struct {
	store     Store
	inventory InventoryLedger
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService constructs an OrderService. A nil logger disables logging.
func NewOrderService(store Store, inventory InventoryLedger, logger *zap.Logger) OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &orderService{store: store, inventory: inventory, logger: logger.Named("orders"), now: time.Now}
}

// ── Order Lifecycle ──────────────────────────────────────────────────────────

func (s *orderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, ErrNoItems
	}
	for i, l := range req.Lines {
		if l.Quantity <= 0 {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("lines[%d].quantity", i),
				Message: fmt.Sprintf("quantity must be positive, got %d", l.Quantity),
			}
		}
	}

	var orderID int
	err := s.store.WithTx(ctx, func(tx Tx) error {
		if _, err := tx.GetClient(ctx, req.ClientID); err != nil {
			return NewStorageError("read client", err)
		}
		if req.SchoolID != nil {
			if _, err := tx.GetSchool(ctx, *req.SchoolID); err != nil {
				return NewStorageError("read school", err)
			}
		}

		lines := make([]OrderLine, 0, len(req.Lines))
		for _, item := range req.Lines {
			p, err := tx.GetProduct(ctx, item.ProductID)
			if err != nil {
				return NewStorageError("read product", err)
			}
			if !p.IsActive {
				return &ValidationError{
					Field:   "product_id",
					Message: fmt.Sprintf("product %d (%s) is inactive", p.ID, p.Name),
				}
			}
			lines = append(lines, OrderLine{
				ProductID: p.ID,
				Quantity:  item.Quantity,
				UnitPrice: RoundMoney(p.UnitPrice),
				Subtotal:  LineSubtotal(item.Quantity, p.UnitPrice),
			})
		}

		// Fail before writing anything; ReserveTx repeats the check atomically.
		if err := checkAvailability(ctx, tx, req.Lines); err != nil {
			return err
		}

		totals := ComputeLineTotals(lines)
		o := &Order{
			ClientID:             req.ClientID,
			SchoolID:             req.SchoolID,
			Status:               StatusPending,
			ExpectedDeliveryDate: req.ExpectedDeliveryDate,
			PaymentMethod:        req.PaymentMethod,
			Notes:                req.Notes,
			QuantityTotal:        totals.QuantityTotal,
			ValueTotal:           totals.ValueTotal,
			Lines:                lines,
		}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return NewStorageError("insert order", err)
		}

		if err := s.inventory.ReserveTx(ctx, tx, &o.ID, req.Lines); err != nil {
			return err
		}
		orderID = o.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("order placed",
		zap.Int("order_id", o.ID),
		zap.Int("client_id", o.ClientID),
		zap.Int("lines", len(o.Lines)),
		zap.String("value_total", o.ValueTotal.StringFixed(2)))
	return o, nil
}

func (s *orderService) TransitionStatus(ctx context.Context, orderID int, to OrderStatus) (*Order, error) {
	to, err := ParseOrderStatus(string(to))
	if err != nil {
		return nil, err
	}

	var from OrderStatus
	err = s.store.WithTx(ctx, func(tx Tx) error {
		o, err := tx.GetOrder(ctx, orderID, true)
		if err != nil {
			return NewStorageError("read order", err)
		}
		from = o.Status
		if !CanTransition(from, to) {
			return &InvalidTransitionError{From: from, To: to}
		}

		var deliveredAt *time.Time
		if to == StatusDelivered {
			t := s.now()
			deliveredAt = &t
		}
		if err := tx.UpdateOrderStatus(ctx, orderID, to, deliveredAt); err != nil {
			return NewStorageError("update order status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.Int("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return s.GetOrder(ctx, orderID)
}

func (s *orderService) CancelOrder(ctx context.Context, orderID int) error {
	err := s.store.WithTx(ctx, func(tx Tx) error {
		o, err := tx.GetOrder(ctx, orderID, true)
		if err != nil {
			return NewStorageError("read order", err)
		}
		if o.Status == StatusDelivered {
			return &InvalidTransitionError{From: o.Status, To: StatusCancelled}
		}
		return s.releaseAndDeleteTx(ctx, tx, orderID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("order cancelled", zap.Int("order_id", orderID))
	return nil
}

func (s *orderService) DeleteOrder(ctx context.Context, orderID int) error {
	err := s.store.WithTx(ctx, func(tx Tx) error {
		if _, err := tx.GetOrder(ctx, orderID, true); err != nil {
			return NewStorageError("read order", err)
		}
		return s.releaseAndDeleteTx(ctx, tx, orderID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("order deleted", zap.Int("order_id", orderID))
	return nil
}

// releaseAndDeleteTx restores stock for every line and removes the order. The order row
// must already be locked by the caller so a concurrent call sees it gone.
func (s *orderService) releaseAndDeleteTx(ctx context.Context, tx Tx, orderID int) error {
	lines, err := tx.GetOrderLines(ctx, orderID)
	if err != nil {
		return NewStorageError("read order lines", err)
	}
	if len(lines) > 0 {
		items := make([]StockItem, len(lines))
		for i, l := range lines {
			items[i] = StockItem{ProductID: l.ProductID, Quantity: l.Quantity}
		}
		if err := s.inventory.ReleaseTx(ctx, tx, &orderID, items); err != nil {
			return err
		}
	}
	if err := tx.DeleteOrder(ctx, orderID); err != nil {
		return NewStorageError("delete order", err)
	}
	return nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *orderService) GetOrder(ctx context.Context, orderID int) (*Order, error) {
	o, err := s.store.GetOrder(ctx, orderID, false)
	if err != nil {
		return nil, NewStorageError("read order", err)
	}
	if err := s.attachLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error) {
	if filter.Status != nil {
		status, err := ParseOrderStatus(string(*filter.Status))
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	orders, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, NewStorageError("list orders", err)
	}
	for i := range orders {
		if err := s.attachLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *orderService) ComputeTotals(ctx context.Context, orderID int) (Totals, error) {
	if _, err := s.store.GetOrder(ctx, orderID, false); err != nil {
		return Totals{}, NewStorageError("read order", err)
	}
	lines, err := s.store.GetOrderLines(ctx, orderID)
	if err != nil {
		return Totals{}, NewStorageError("read order lines", err)
	}
	return ComputeLineTotals(lines), nil
}

// attachLines loads lines and overwrites the stored totals with values recomputed from them.
func (s *orderService) attachLines(ctx context.Context, o *Order) error {
	lines, err := s.store.GetOrderLines(ctx, o.ID)
	if err != nil {
		return NewStorageError("read order lines", err)
	}
	o.Lines = lines
	totals := ComputeLineTotals(lines)
	o.QuantityTotal = totals.QuantityTotal
	o.ValueTotal = totals.ValueTotal
	return nil
}

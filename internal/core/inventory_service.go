package core

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// InventoryLedger is the only component permitted to change Product.stock.
// Every change appends a StockMovement in the same transaction.
type InventoryLedger interface {
	// CheckAvailability fails with *InsufficientStockError on the first short item. Read-only.
	CheckAvailability(ctx context.Context, items []StockItem) error
	// Reserve re-validates and decrements stock for every item in its own transaction.
	Reserve(ctx context.Context, items []StockItem) error
	// Release increments stock for every item in its own transaction.
	Release(ctx context.Context, items []StockItem) error
	// IsBelowThreshold reports stock <= minimum-stock threshold.
	IsBelowThreshold(p Product) bool

	// Adjust applies a manual signed correction. The result may not go below zero.
	Adjust(ctx context.Context, productID, delta int, note string) error
	// SetStock sets the absolute stock level by adjusting with the computed delta.
	SetStock(ctx context.Context, productID, quantity int, note string) error
	Movements(ctx context.Context, productID int) ([]StockMovement, error)

	// TX-scoped operations: work within a caller-provided transaction.
	// Used by OrderService to keep stock changes atomic with order writes.

	// ReserveTx decrements stock with one conditional update per product. Any failure leaves
	// the caller's transaction to be rolled back, so either every decrement lands or none does.
	ReserveTx(ctx context.Context, tx Tx, orderID *int, items []StockItem) error
	// ReleaseTx increments stock unconditionally for every item.
	ReleaseTx(ctx context.Context, tx Tx, orderID *int, items []StockItem) error
	AdjustTx(ctx context.Context, tx Tx, productID, delta int, note string) error
}

type inventoryLedger struct {
	store  Store
	logger *zap.Logger
}

// NewInventoryLedger constructs an InventoryLedger over store. A nil logger disables logging.
func NewInventoryLedger(store Store, logger *zap.Logger) InventoryLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inventoryLedger{store: store, logger: logger.Named("inventory")}
}

// mergeItems validates quantities and folds repeated products into one item, sorted by product
// ID so every transaction locks product rows in the same order.
func mergeItems(items []StockItem) ([]StockItem, error) {
	index := make(map[int]int, len(items))
	merged := make([]StockItem, 0, len(items))
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("lines[%d].quantity", i),
				Message: fmt.Sprintf("quantity must be positive, got %d", it.Quantity),
			}
		}
		if pos, ok := index[it.ProductID]; ok {
			merged[pos].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	slices.SortFunc(merged, func(a, b StockItem) int { return cmp.Compare(a.ProductID, b.ProductID) })
	return merged, nil
}

func (l *inventoryLedger) CheckAvailability(ctx context.Context, items []StockItem) error {
	return checkAvailability(ctx, l.store, items)
}

func checkAvailability(ctx context.Context, q CatalogStore, items []StockItem) error {
	merged, err := mergeItems(items)
	if err != nil {
		return err
	}
	for _, it := range merged {
		p, err := q.GetProduct(ctx, it.ProductID)
		if err != nil {
			return NewStorageError("read product stock", err)
		}
		if p.Stock < it.Quantity {
			return &InsufficientStockError{ProductID: it.ProductID, Requested: it.Quantity, Available: p.Stock}
		}
	}
	return nil
}

func (l *inventoryLedger) Reserve(ctx context.Context, items []StockItem) error {
	return l.store.WithTx(ctx, func(tx Tx) error {
		return l.ReserveTx(ctx, tx, nil, items)
	})
}

func (l *inventoryLedger) Release(ctx context.Context, items []StockItem) error {
	return l.store.WithTx(ctx, func(tx Tx) error {
		return l.ReleaseTx(ctx, tx, nil, items)
	})
}

func (l *inventoryLedger) ReserveTx(ctx context.Context, tx Tx, orderID *int, items []StockItem) error {
	merged, err := mergeItems(items)
	if err != nil {
		return err
	}

	for _, it := range merged {
		ok, err := tx.DecrementStock(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return NewStorageError(fmt.Sprintf("reserve stock for product %d", it.ProductID), err)
		}
		if !ok {
			// Either the product is gone or a concurrent reservation won the last units.
			p, err := tx.GetProduct(ctx, it.ProductID)
			if err != nil {
				return NewStorageError("read product stock", err)
			}
			return &InsufficientStockError{ProductID: it.ProductID, Requested: it.Quantity, Available: p.Stock}
		}

		if err := tx.InsertMovement(ctx, &StockMovement{
			ProductID: it.ProductID,
			OrderID:   orderID,
			Kind:      MovementReserve,
			Quantity:  -it.Quantity,
			Note:      movementNote("Stock reserved", orderID),
		}); err != nil {
			return NewStorageError("insert reservation movement", err)
		}

		p, err := tx.GetProduct(ctx, it.ProductID)
		if err != nil {
			return NewStorageError("read product stock", err)
		}
		if l.IsBelowThreshold(*p) {
			l.logger.Warn("low stock",
				zap.Int("product_id", p.ID),
				zap.String("product", p.Name),
				zap.Int("stock", p.Stock),
				zap.Int("min_stock", p.MinStock))
		}
	}
	return nil
}

func (l *inventoryLedger) ReleaseTx(ctx context.Context, tx Tx, orderID *int, items []StockItem) error {
	merged, err := mergeItems(items)
	if err != nil {
		return err
	}

	for _, it := range merged {
		if err := tx.UpdateStock(ctx, it.ProductID, it.Quantity); err != nil {
			return NewStorageError(fmt.Sprintf("release stock for product %d", it.ProductID), err)
		}
		if err := tx.InsertMovement(ctx, &StockMovement{
			ProductID: it.ProductID,
			OrderID:   orderID,
			Kind:      MovementRelease,
			Quantity:  it.Quantity,
			Note:      movementNote("Stock released", orderID),
		}); err != nil {
			return NewStorageError("insert release movement", err)
		}
	}
	return nil
}

func (l *inventoryLedger) IsBelowThreshold(p Product) bool {
	return p.Stock <= p.MinStock
}

func (l *inventoryLedger) Adjust(ctx context.Context, productID, delta int, note string) error {
	if delta == 0 {
		return nil
	}
	err := l.store.WithTx(ctx, func(tx Tx) error {
		return l.AdjustTx(ctx, tx, productID, delta, note)
	})
	if err != nil {
		return err
	}
	l.logger.Info("stock adjusted", zap.Int("product_id", productID), zap.Int("delta", delta))
	return nil
}

func (l *inventoryLedger) AdjustTx(ctx context.Context, tx Tx, productID, delta int, note string) error {
	if delta == 0 {
		return nil
	}
	if delta < 0 {
		ok, err := tx.DecrementStock(ctx, productID, -delta)
		if err != nil {
			return NewStorageError("adjust stock", err)
		}
		if !ok {
			p, err := tx.GetProduct(ctx, productID)
			if err != nil {
				return NewStorageError("read product stock", err)
			}
			return &InsufficientStockError{ProductID: productID, Requested: -delta, Available: p.Stock}
		}
	} else if err := tx.UpdateStock(ctx, productID, delta); err != nil {
		return NewStorageError("adjust stock", err)
	}

	if note == "" {
		note = "Manual stock adjustment"
	}
	if err := tx.InsertMovement(ctx, &StockMovement{
		ProductID: productID,
		Kind:      MovementAdjust,
		Quantity:  delta,
		Note:      note,
	}); err != nil {
		return NewStorageError("insert adjustment movement", err)
	}
	return nil
}

func (l *inventoryLedger) SetStock(ctx context.Context, productID, quantity int, note string) error {
	if quantity < 0 {
		return &ValidationError{Field: "quantity", Message: fmt.Sprintf("stock cannot be negative, got %d", quantity)}
	}
	var delta int
	err := l.store.WithTx(ctx, func(tx Tx) error {
		p, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return NewStorageError("read product stock", err)
		}
		delta = quantity - p.Stock
		return l.AdjustTx(ctx, tx, productID, delta, note)
	})
	if err != nil {
		return err
	}
	if delta != 0 {
		l.logger.Info("stock set", zap.Int("product_id", productID), zap.Int("stock", quantity), zap.Int("delta", delta))
	}
	return nil
}

func (l *inventoryLedger) Movements(ctx context.Context, productID int) ([]StockMovement, error) {
	if _, err := l.store.GetProduct(ctx, productID); err != nil {
		return nil, NewStorageError("read product", err)
	}
	movements, err := l.store.ListMovements(ctx, productID)
	if err != nil {
		return nil, NewStorageError("list stock movements", err)
	}
	return movements, nil
}

func movementNote(prefix string, orderID *int) string {
	if orderID == nil {
		return prefix
	}
	return fmt.Sprintf("%s for order %d", prefix, *orderID)
}

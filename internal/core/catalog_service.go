package core

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

type catalogService struct {
	store     Store
	inventory InventoryLedger
	logger    *zap.Logger
}

// NewCatalogService constructs a CatalogService. Initial stock is booked through inventory.
func NewCatalogService(store Store, inventory InventoryLedger, logger *zap.Logger) CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &catalogService{store: store, inventory: inventory, logger: logger.Named("catalog")}
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if input.UnitPrice.IsNegative() {
		return &ValidationError{Field: "unit_price", Message: "unit price cannot be negative"}
	}
	if input.UnitCost != nil && input.UnitCost.IsNegative() {
		return &ValidationError{Field: "unit_cost", Message: "unit cost cannot be negative"}
	}
	if input.MinStock != nil && *input.MinStock < 0 {
		return &ValidationError{Field: "min_stock", Message: "minimum stock cannot be negative"}
	}
	if input.InitialStock < 0 {
		return &ValidationError{Field: "stock", Message: "initial stock cannot be negative"}
	}
	return nil
}

// applyInput copies input onto p, leaving stock alone.
func applyInput(p *Product, input ProductInput) {
	p.Name = strings.TrimSpace(input.Name)
	p.Category = input.Category
	p.Size = input.Size
	p.Color = input.Color
	p.Description = input.Description
	p.UnitPrice = RoundMoney(input.UnitPrice)
	if input.UnitCost != nil {
		cost := RoundMoney(*input.UnitCost)
		p.UnitCost = &cost
	} else {
		p.UnitCost = nil
	}
	if input.MinStock != nil {
		p.MinStock = *input.MinStock
	}
	p.SchoolID = input.SchoolID
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	p := &Product{MinStock: DefaultMinStock, IsActive: true}
	applyInput(p, input)

	err := s.store.WithTx(ctx, func(tx Tx) error {
		if p.SchoolID != nil {
			if _, err := tx.GetSchool(ctx, *p.SchoolID); err != nil {
				return NewStorageError("read school", err)
			}
		}
		n, err := tx.CountActiveDuplicates(ctx, p)
		if err != nil {
			return NewStorageError("check duplicate product", err)
		}
		if n > 0 {
			return ErrDuplicateProduct
		}
		if err := tx.InsertProduct(ctx, p); err != nil {
			return NewStorageError("insert product", err)
		}
		if input.InitialStock > 0 {
			return s.inventory.AdjustTx(ctx, tx, p.ID, input.InitialStock, "Initial stock")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created", zap.Int("product_id", p.ID), zap.String("name", p.Name))
	return s.store.GetProduct(ctx, p.ID)
}

func (s *catalogService) UpdateProduct(ctx context.Context, id int, input ProductInput) (*Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(tx Tx) error {
		p, err := tx.GetProduct(ctx, id)
		if err != nil {
			return NewStorageError("read product", err)
		}
		applyInput(p, input)
		if p.SchoolID != nil {
			if _, err := tx.GetSchool(ctx, *p.SchoolID); err != nil {
				return NewStorageError("read school", err)
			}
		}
		if p.IsActive {
			n, err := tx.CountActiveDuplicates(ctx, p)
			if err != nil {
				return NewStorageError("check duplicate product", err)
			}
			if n > 0 {
				return ErrDuplicateProduct
			}
		}
		if err := tx.UpdateProduct(ctx, p); err != nil {
			return NewStorageError("update product", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetProduct(ctx, id)
}

func (s *catalogService) GetProduct(ctx context.Context, id int) (*Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, NewStorageError("read product", err)
	}
	return p, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	products, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, NewStorageError("list products", err)
	}
	return products, nil
}

func (s *catalogService) DeactivateProduct(ctx context.Context, id int) error {
	if err := s.store.SetProductActive(ctx, id, false); err != nil {
		return NewStorageError("deactivate product", err)
	}
	s.logger.Info("product deactivated", zap.Int("product_id", id))
	return nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int) (bool, error) {
	var removed bool
	err := s.store.WithTx(ctx, func(tx Tx) error {
		if _, err := tx.GetProduct(ctx, id); err != nil {
			return NewStorageError("read product", err)
		}
		n, err := tx.CountOrderLinesForProduct(ctx, id)
		if err != nil {
			return NewStorageError("count order lines", err)
		}
		if n > 0 {
			if err := tx.SetProductActive(ctx, id, false); err != nil {
				return NewStorageError("deactivate product", err)
			}
			return nil
		}
		if err := tx.DeleteProduct(ctx, id); err != nil {
			return NewStorageError("delete product", err)
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if removed {
		s.logger.Info("product deleted", zap.Int("product_id", id))
	} else {
		s.logger.Info("product referenced by orders, deactivated instead", zap.Int("product_id", id))
	}
	return removed, nil
}

package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"uniform-store/internal/core"
)

const dateLayout = "2006-01-02"

type appService struct {
	store            core.Store
	inventory        core.InventoryLedger
	orderService     core.OrderService
	catalogService   core.CatalogService
	partyService     core.PartyService
	reportingService core.ReportingService
	logger           *zap.Logger
}

// NewAppService wires every core service over store and returns the facade.
func NewAppService(store core.Store, logger *zap.Logger) ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	inventory := core.NewInventoryLedger(store, logger)
	return &appService{
		store:            store,
		inventory:        inventory,
		orderService:     core.NewOrderService(store, inventory, logger),
		catalogService:   core.NewCatalogService(store, inventory, logger),
		partyService:     core.NewPartyService(store, logger),
		reportingService: core.NewReportingService(store, inventory),
		logger:           logger,
	}
}

// parseDate parses an optional YYYY-MM-DD value. Empty input yields nil.
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, &core.ValidationError{Field: field, Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value)}
	}
	return &t, nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *appService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResult, error) {
	expected, err := parseDate("expected_delivery_date", req.ExpectedDeliveryDate)
	if err != nil {
		return nil, err
	}

	lines := make([]core.StockItem, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.StockItem{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	order, err := s.orderService.PlaceOrder(ctx, core.PlaceOrderRequest{
		ClientID:             req.ClientID,
		SchoolID:             req.SchoolID,
		Lines:                lines,
		ExpectedDeliveryDate: expected,
		PaymentMethod:        strings.TrimSpace(req.PaymentMethod),
		Notes:                strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) GetOrder(ctx context.Context, orderID int) (*OrderResult, error) {
	order, err := s.orderService.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) ListOrders(ctx context.Context, req ListOrdersRequest) (*OrderListResult, error) {
	filter := core.OrderFilter{SchoolID: req.SchoolID, ClientID: req.ClientID}
	if req.Status != "" {
		status, err := core.ParseOrderStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	orders, err := s.orderService.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders}, nil
}

func (s *appService) TransitionStatus(ctx context.Context, orderID int, status string) (*OrderResult, error) {
	to, err := core.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	order, err := s.orderService.TransitionStatus(ctx, orderID, to)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) CancelOrder(ctx context.Context, orderID int) error {
	return s.orderService.CancelOrder(ctx, orderID)
}

func (s *appService) DeleteOrder(ctx context.Context, orderID int) error {
	return s.orderService.DeleteOrder(ctx, orderID)
}

// ── Stock ────────────────────────────────────────────────────────────────────

func (s *appService) CheckAvailability(ctx context.Context, items []core.StockItem) error {
	if len(items) == 0 {
		return core.ErrNoItems
	}
	return s.inventory.CheckAvailability(ctx, items)
}

func (s *appService) SetStock(ctx context.Context, req SetStockRequest) (*ProductResult, error) {
	if err := s.inventory.SetStock(ctx, req.ProductID, req.Quantity, strings.TrimSpace(req.Note)); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, req.ProductID)
}

func (s *appService) StockMovements(ctx context.Context, productID int) (*MovementListResult, error) {
	movements, err := s.inventory.Movements(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &MovementListResult{ProductID: productID, Movements: movements}, nil
}

// ── Catalog ──────────────────────────────────────────────────────────────────

func (s *appService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResult, error) {
	p, err := s.catalogService.CreateProduct(ctx, core.ProductInput{
		Name:         req.Name,
		Category:     req.Category,
		Size:         req.Size,
		Color:        req.Color,
		Description:  req.Description,
		UnitPrice:    req.UnitPrice,
		UnitCost:     req.UnitCost,
		InitialStock: req.Stock,
		MinStock:     req.MinStock,
		SchoolID:     req.SchoolID,
	})
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p, LowStock: s.inventory.IsBelowThreshold(*p)}, nil
}

func (s *appService) GetProduct(ctx context.Context, productID int) (*ProductResult, error) {
	p, err := s.catalogService.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p, LowStock: s.inventory.IsBelowThreshold(*p)}, nil
}

func (s *appService) ListProducts(ctx context.Context, req ListProductsRequest) (*ProductListResult, error) {
	products, err := s.catalogService.ListProducts(ctx, core.ProductFilter{
		SchoolID:        req.SchoolID,
		Category:        req.Category,
		IncludeInactive: req.IncludeInactive,
	})
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) DeactivateProduct(ctx context.Context, productID int) error {
	return s.catalogService.DeactivateProduct(ctx, productID)
}

func (s *appService) DeleteProduct(ctx context.Context, productID int) (*DeleteProductResult, error) {
	removed, err := s.catalogService.DeleteProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &DeleteProductResult{Deleted: removed, Deactivated: !removed}, nil
}

// ── Parties ──────────────────────────────────────────────────────────────────

func (s *appService) CreateClient(ctx context.Context, req CreateClientRequest) (*ClientResult, error) {
	birth, err := parseDate("birth_date", req.BirthDate)
	if err != nil {
		return nil, err
	}
	c, err := s.partyService.CreateClient(ctx, core.ClientInput{
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		BirthDate: birth,
	})
	if err != nil {
		return nil, err
	}
	return &ClientResult{Client: c}, nil
}

func (s *appService) ListClients(ctx context.Context) (*ClientListResult, error) {
	clients, err := s.partyService.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	return &ClientListResult{Clients: clients}, nil
}

func (s *appService) DeleteClient(ctx context.Context, clientID int) error {
	return s.partyService.DeleteClient(ctx, clientID)
}

func (s *appService) CreateSchool(ctx context.Context, req CreateSchoolRequest) (*SchoolResult, error) {
	school, err := s.partyService.CreateSchool(ctx, core.SchoolInput{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		return nil, err
	}
	return &SchoolResult{School: school}, nil
}

func (s *appService) ListSchools(ctx context.Context, activeOnly bool) (*SchoolListResult, error) {
	schools, err := s.partyService.ListSchools(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	return &SchoolListResult{Schools: schools}, nil
}

// ── Reports ──────────────────────────────────────────────────────────────────

func (s *appService) GetMetrics(ctx context.Context) (*core.Metrics, error) {
	return s.reportingService.Metrics(ctx)
}

func (s *appService) GetOrdersByStatus(ctx context.Context) (*StatusReportResult, error) {
	counts, err := s.reportingService.OrdersByStatus(ctx)
	if err != nil {
		return nil, err
	}
	res := &StatusReportResult{Counts: counts}
	for _, c := range counts {
		res.Total += c.Count
	}
	return res, nil
}

func (s *appService) GetLowStock(ctx context.Context) (*ProductListResult, error) {
	products, err := s.reportingService.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) GetProductMargins(ctx context.Context) (*MarginReportResult, error) {
	margins, err := s.reportingService.ProductMargins(ctx)
	if err != nil {
		return nil, err
	}
	return &MarginReportResult{Margins: margins}, nil
}

func (s *appService) Close() error {
	return s.store.Close()
}

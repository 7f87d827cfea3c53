package core_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"uniform-store/internal/core"
	"uniform-store/internal/db"
	"uniform-store/internal/store/sqlite"
)

// testEnv bundles the core services over a fresh in-memory SQLite store.
type testEnv struct {
	ctx       context.Context
	store     core.Store
	inventory core.InventoryLedger
	orders    core.OrderService
	catalog   core.CatalogService
	parties   core.PartyService
	reports   core.ReportingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env, err := openTestEnv(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.store.Close() })
	return env
}

// openTestEnv migrates a fresh in-memory database. The caller closes env.store.
func openTestEnv(ctx context.Context) (*testEnv, error) {
	gdb, err := db.OpenSQLite(db.MemoryPath, zap.NewNop())
	if err != nil {
		return nil, err
	}
	store := sqlite.New(gdb)
	if err := store.AutoMigrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	inventory := core.NewInventoryLedger(store, nil)
	return &testEnv{
		ctx:       ctx,
		store:     store,
		inventory: inventory,
		orders:    core.NewOrderService(store, inventory, nil),
		catalog:   core.NewCatalogService(store, inventory, nil),
		parties:   core.NewPartyService(store, nil),
		reports:   core.NewReportingService(store, inventory),
	}, nil
}

func (e *testEnv) school(t *testing.T, name string) *core.School {
	t.Helper()
	s, err := e.parties.CreateSchool(e.ctx, core.SchoolInput{Name: name})
	require.NoError(t, err)
	return s
}

func (e *testEnv) client(t *testing.T, name string) *core.Client {
	t.Helper()
	c, err := e.parties.CreateClient(e.ctx, core.ClientInput{Name: name, Phone: "(11) 5555-0000"})
	require.NoError(t, err)
	return c
}

// product creates an active product with the given price and stock and the default threshold.
func (e *testEnv) product(t *testing.T, name, price string, stock int) *core.Product {
	t.Helper()
	p, err := e.catalog.CreateProduct(e.ctx, core.ProductInput{
		Name:         name,
		Category:     "Shirts",
		Size:         "M",
		Color:        "Branco",
		UnitPrice:    decimal.RequireFromString(price),
		InitialStock: stock,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) stockOf(t *testing.T, productID int) int {
	t.Helper()
	p, err := e.catalog.GetProduct(e.ctx, productID)
	require.NoError(t, err)
	return p.Stock
}

func (e *testEnv) place(clientID int, items ...core.StockItem) (*core.Order, error) {
	return e.orders.PlaceOrder(e.ctx, core.PlaceOrderRequest{ClientID: clientID, Lines: items})
}

func item(productID, qty int) core.StockItem {
	return core.StockItem{ProductID: productID, Quantity: qty}
}

func intPtr(v int) *int { return &v }

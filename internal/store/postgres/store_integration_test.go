//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"uniform-store/internal/core"
	"uniform-store/internal/db"
	"uniform-store/internal/store/postgres"
	"uniform-store/migrations"
)

// setupPool starts a PostgreSQL container, applies the embedded migrations and returns a pool.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("uniforms"),
		tcpostgres.WithUsername("shop"),
		tcpostgres.WithPassword("shop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := db.NewPool(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool, migrations.FS, zap.NewNop()))
	return pool
}

type services struct {
	inventory core.InventoryLedger
	orders    core.OrderService
	catalog   core.CatalogService
	parties   core.PartyService
	reports   core.ReportingService
}

func newServices(store core.Store) services {
	logger := zap.NewNop()
	inventory := core.NewInventoryLedger(store, logger)
	return services{
		inventory: inventory,
		orders:    core.NewOrderService(store, inventory, logger),
		catalog:   core.NewCatalogService(store, inventory, logger),
		parties:   core.NewPartyService(store, logger),
		reports:   core.NewReportingService(store, inventory),
	}
}

func TestPostgresStore(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	svc := newServices(postgres.New(pool))

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, db.Migrate(ctx, pool, migrations.FS, nil))

		var applied int
		require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM schema_migrations").Scan(&applied))
		assert.Equal(t, 1, applied)
	})

	school, err := svc.parties.CreateSchool(ctx, core.SchoolInput{Name: "Municipal"})
	require.NoError(t, err)
	client, err := svc.parties.CreateClient(ctx, core.ClientInput{Name: "Ana Souza"})
	require.NoError(t, err)

	newProduct := func(t *testing.T, name string, stock int) *core.Product {
		t.Helper()
		p, err := svc.catalog.CreateProduct(ctx, core.ProductInput{
			Name:         name,
			Category:     "Shirts",
			Size:         "M",
			Color:        "Branco",
			UnitPrice:    decimal.RequireFromString("29.90"),
			InitialStock: stock,
			SchoolID:     &school.ID,
		})
		require.NoError(t, err)
		return p
	}
	stockOf := func(t *testing.T, id int) int {
		t.Helper()
		p, err := svc.catalog.GetProduct(ctx, id)
		require.NoError(t, err)
		return p.Stock
	}

	t.Run("duplicate school names are rejected case-insensitively", func(t *testing.T) {
		_, err := svc.parties.CreateSchool(ctx, core.SchoolInput{Name: "municipal"})
		assert.ErrorIs(t, err, core.ErrDuplicateSchool)
	})

	t.Run("place and cancel round-trips stock", func(t *testing.T) {
		p := newProduct(t, "Camiseta", 10)
		order, err := svc.orders.PlaceOrder(ctx, core.PlaceOrderRequest{
			ClientID: client.ID,
			SchoolID: &school.ID,
			Lines:    []core.StockItem{{ProductID: p.ID, Quantity: 3}},
		})
		require.NoError(t, err)
		assert.Equal(t, 7, stockOf(t, p.ID))
		assert.True(t, decimal.RequireFromString("89.70").Equal(order.ValueTotal))

		got, err := svc.orders.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, got.Lines, 1)
		assert.Equal(t, "Municipal", got.SchoolName)

		require.NoError(t, svc.orders.CancelOrder(ctx, order.ID))
		assert.Equal(t, 10, stockOf(t, p.ID))

		_, err = svc.orders.GetOrder(ctx, order.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("failed multi-line order leaves no trace", func(t *testing.T) {
		a := newProduct(t, "Bermuda", 5)
		b := newProduct(t, "Moletom", 1)
		_, err := svc.orders.PlaceOrder(ctx, core.PlaceOrderRequest{
			ClientID: client.ID,
			Lines: []core.StockItem{
				{ProductID: a.ID, Quantity: 2},
				{ProductID: b.ID, Quantity: 2},
			},
		})
		var short *core.InsufficientStockError
		require.ErrorAs(t, err, &short)
		assert.Equal(t, b.ID, short.ProductID)
		assert.Equal(t, 5, stockOf(t, a.ID))
		assert.Equal(t, 1, stockOf(t, b.ID))

		movements, err := svc.inventory.Movements(ctx, a.ID)
		require.NoError(t, err)
		assert.Len(t, movements, 1)
	})

	t.Run("concurrent orders never oversell", func(t *testing.T) {
		const stock, buyers = 5, 20
		p := newProduct(t, "Jaqueta", stock)

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			placed   int
			rejected int
		)
		for i := 0; i < buyers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.orders.PlaceOrder(ctx, core.PlaceOrderRequest{
					ClientID: client.ID,
					Lines:    []core.StockItem{{ProductID: p.ID, Quantity: 1}},
				})
				mu.Lock()
				defer mu.Unlock()
				var short *core.InsufficientStockError
				switch {
				case err == nil:
					placed++
				case errors.As(err, &short):
					rejected++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, stock, placed)
		assert.Equal(t, buyers-stock, rejected)
		assert.Equal(t, 0, stockOf(t, p.ID))
	})

	t.Run("delete after label-only cancel releases once", func(t *testing.T) {
		p := newProduct(t, "Calça", 4)
		order, err := svc.orders.PlaceOrder(ctx, core.PlaceOrderRequest{
			ClientID: client.ID,
			Lines:    []core.StockItem{{ProductID: p.ID, Quantity: 4}},
		})
		require.NoError(t, err)

		_, err = svc.orders.TransitionStatus(ctx, order.ID, core.StatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, 0, stockOf(t, p.ID))

		require.NoError(t, svc.orders.DeleteOrder(ctx, order.ID))
		assert.Equal(t, 4, stockOf(t, p.ID))
	})

	t.Run("client with orders cannot be deleted", func(t *testing.T) {
		err := svc.parties.DeleteClient(ctx, client.ID)
		assert.ErrorIs(t, err, core.ErrHasOrders)
	})

	t.Run("reports", func(t *testing.T) {
		counts, err := svc.reports.OrdersByStatus(ctx)
		require.NoError(t, err)
		total := 0
		for _, c := range counts {
			total += c.Count
		}
		assert.Equal(t, 5, total)

		low, err := svc.reports.LowStock(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, low)
	})

	t.Run("opposite line order does not deadlock", func(t *testing.T) {
		const rounds = 40
		a := newProduct(t, "Blusa", 2*rounds)
		b := newProduct(t, "Saia", 2*rounds)

		var wg sync.WaitGroup
		for i := 0; i < rounds; i++ {
			lines := []core.StockItem{{ProductID: a.ID, Quantity: 1}, {ProductID: b.ID, Quantity: 1}}
			if i%2 == 1 {
				lines[0], lines[1] = lines[1], lines[0]
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				order, err := svc.orders.PlaceOrder(ctx, core.PlaceOrderRequest{ClientID: client.ID, Lines: lines})
				if err != nil {
					t.Errorf("place: %v", err)
					return
				}
				if err := svc.orders.CancelOrder(ctx, order.ID); err != nil {
					t.Errorf("cancel: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 2*rounds, stockOf(t, a.ID))
		assert.Equal(t, 2*rounds, stockOf(t, b.ID))
	})
}

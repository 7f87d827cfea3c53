package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uniform-store/internal/core"
)

func TestInventory_CheckAvailability(t *testing.T) {
	env := newTestEnv(t)
	shirt := env.product(t, "Camiseta", "29.90", 5)
	shorts := env.product(t, "Bermuda", "39.90", 0)

	require.NoError(t, env.inventory.CheckAvailability(env.ctx, []core.StockItem{item(shirt.ID, 5)}))

	err := env.inventory.CheckAvailability(env.ctx, []core.StockItem{item(shirt.ID, 1), item(shorts.ID, 1)})
	var short *core.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, shorts.ID, short.ProductID)
	assert.Equal(t, 0, short.Available)

	err = env.inventory.CheckAvailability(env.ctx, []core.StockItem{item(9999, 1)})
	assert.ErrorIs(t, err, core.ErrNotFound)

	// Read-only: nothing moved.
	assert.Equal(t, 5, env.stockOf(t, shirt.ID))
}

func TestInventory_ReserveAndRelease(t *testing.T) {
	env := newTestEnv(t)
	shirt := env.product(t, "Camiseta", "29.90", 5)
	shorts := env.product(t, "Bermuda", "39.90", 2)

	require.NoError(t, env.inventory.Reserve(env.ctx, []core.StockItem{item(shirt.ID, 2), item(shorts.ID, 2)}))
	assert.Equal(t, 3, env.stockOf(t, shirt.ID))
	assert.Equal(t, 0, env.stockOf(t, shorts.ID))

	// Second line short: the first decrement must roll back.
	err := env.inventory.Reserve(env.ctx, []core.StockItem{item(shirt.ID, 1), item(shorts.ID, 1)})
	var short *core.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 3, env.stockOf(t, shirt.ID))

	require.NoError(t, env.inventory.Release(env.ctx, []core.StockItem{item(shirt.ID, 2), item(shorts.ID, 2)}))
	assert.Equal(t, 5, env.stockOf(t, shirt.ID))
	assert.Equal(t, 2, env.stockOf(t, shorts.ID))
}

func TestInventory_RejectsNonPositiveQuantities(t *testing.T) {
	env := newTestEnv(t)
	shirt := env.product(t, "Camiseta", "29.90", 5)

	var ve *core.ValidationError
	assert.ErrorAs(t, env.inventory.Reserve(env.ctx, []core.StockItem{item(shirt.ID, -1)}), &ve)
	assert.ErrorAs(t, env.inventory.Release(env.ctx, []core.StockItem{item(shirt.ID, 0)}), &ve)
	assert.Equal(t, 5, env.stockOf(t, shirt.ID))
}

func TestInventory_IsBelowThreshold(t *testing.T) {
	env := newTestEnv(t)
	assert.True(t, env.inventory.IsBelowThreshold(core.Product{Stock: 5, MinStock: 5}))
	assert.True(t, env.inventory.IsBelowThreshold(core.Product{Stock: 0, MinStock: 0}))
	assert.False(t, env.inventory.IsBelowThreshold(core.Product{Stock: 6, MinStock: 5}))
}

func TestInventory_SetStock(t *testing.T) {
	env := newTestEnv(t)
	shirt := env.product(t, "Camiseta", "29.90", 5)

	require.NoError(t, env.inventory.SetStock(env.ctx, shirt.ID, 12, "Stock count"))
	assert.Equal(t, 12, env.stockOf(t, shirt.ID))

	require.NoError(t, env.inventory.SetStock(env.ctx, shirt.ID, 0, ""))
	assert.Equal(t, 0, env.stockOf(t, shirt.ID))

	var ve *core.ValidationError
	assert.ErrorAs(t, env.inventory.SetStock(env.ctx, shirt.ID, -1, ""), &ve)
	assert.ErrorIs(t, env.inventory.SetStock(env.ctx, 9999, 3, ""), core.ErrNotFound)

	movements, err := env.inventory.Movements(env.ctx, shirt.ID)
	require.NoError(t, err)
	require.Len(t, movements, 3)
	var sum int
	notes := map[string]bool{}
	for _, m := range movements {
		assert.Equal(t, core.MovementAdjust, m.Kind)
		sum += m.Quantity
		notes[m.Note] = true
	}
	assert.Equal(t, 0, sum, "movements must add up to the current stock")
	assert.True(t, notes["Stock count"])
	assert.True(t, notes["Manual stock adjustment"])
}

func TestInventory_AdjustCannotGoNegative(t *testing.T) {
	env := newTestEnv(t)
	shirt := env.product(t, "Camiseta", "29.90", 3)

	err := env.inventory.Adjust(env.ctx, shirt.ID, -4, "damaged")
	var short *core.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 3, short.Available)

	require.NoError(t, env.inventory.Adjust(env.ctx, shirt.ID, -3, "damaged"))
	assert.Equal(t, 0, env.stockOf(t, shirt.ID))
}

func TestInventory_MovementsMatchStock(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(t, "Ana")
	shirt := env.product(t, "Camiseta", "29.90", 10)

	o1, err := env.place(client.ID, item(shirt.ID, 3))
	require.NoError(t, err)
	_, err = env.place(client.ID, item(shirt.ID, 2))
	require.NoError(t, err)
	require.NoError(t, env.orders.CancelOrder(env.ctx, o1.ID))
	require.NoError(t, env.inventory.Adjust(env.ctx, shirt.ID, 4, "delivery from supplier"))

	movements, err := env.inventory.Movements(env.ctx, shirt.ID)
	require.NoError(t, err)
	var sum int
	for _, m := range movements {
		sum += m.Quantity
	}
	assert.Equal(t, env.stockOf(t, shirt.ID), sum)
	assert.Equal(t, 12, sum)

	_, err = env.inventory.Movements(env.ctx, 9999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

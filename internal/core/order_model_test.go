package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		StatusPending:          {StatusInProduction, StatusReadyForDelivery, StatusDelivered, StatusCancelled},
		StatusInProduction:     {StatusReadyForDelivery, StatusDelivered, StatusCancelled},
		StatusReadyForDelivery: {StatusDelivered, StatusCancelled},
		StatusDelivered:        nil,
		StatusCancelled:        nil,
	}
	for _, from := range AllStatuses {
		want := map[OrderStatus]bool{}
		for _, to := range allowed[from] {
			want[to] = true
		}
		for _, to := range AllStatuses {
			assert.Equal(t, want[to], CanTransition(from, to), "%s → %s", from, to)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	for in, want := range map[string]OrderStatus{
		"PENDING":            StatusPending,
		"In Production":      StatusInProduction,
		"ready-for-delivery": StatusReadyForDelivery,
		" delivered ":        StatusDelivered,
	} {
		got, err := ParseOrderStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseOrderStatus("shipped")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestMoney(t *testing.T) {
	d := decimal.RequireFromString

	assert.True(t, d("10.01").Equal(RoundMoney(d("10.005"))))
	assert.True(t, d("89.70").Equal(LineSubtotal(3, d("29.90"))))
	assert.True(t, d("0.99").Equal(LineSubtotal(3, d("0.33"))))

	totals := ComputeLineTotals([]OrderLine{
		{Quantity: 2, Subtotal: d("59.80")},
		{Quantity: 1, Subtotal: d("89.90")},
	})
	assert.Equal(t, 3, totals.QuantityTotal)
	assert.True(t, d("149.70").Equal(totals.ValueTotal))

	empty := ComputeLineTotals(nil)
	assert.Equal(t, 0, empty.QuantityTotal)
	assert.True(t, empty.ValueTotal.IsZero())

	assert.True(t, d("51.67").Equal(Margin(d("29.90"), d("14.45"))), "got %s", Margin(d("29.90"), d("14.45")))
	assert.True(t, Margin(decimal.Zero, d("5")).IsZero())
}

func TestMergeItems(t *testing.T) {
	merged, err := mergeItems([]StockItem{{ProductID: 2, Quantity: 1}, {ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, []StockItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 4}}, merged)

	_, err = mergeItems([]StockItem{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 0}})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "lines[1].quantity", ve.Field)
}

func TestProductLabel(t *testing.T) {
	assert.Equal(t, "Camiseta (8, Branco)", Product{Name: "Camiseta", Size: "8", Color: "Branco"}.Label())
	assert.Equal(t, "Boné (Azul)", Product{Name: "Boné", Color: "Azul"}.Label())
	assert.Equal(t, "Boné", Product{Name: "Boné"}.Label())
}

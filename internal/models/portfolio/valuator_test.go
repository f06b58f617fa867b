package portfolio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoksin/walletBot/internal/models/bottypes"
)

type fakeLots struct {
	lots []bottypes.InvestmentLot
}

func (f *fakeLots) GetInvestments(ctx context.Context, userID int64) ([]bottypes.InvestmentLot, error) {
	return f.lots, nil
}

type fakeOracle struct {
	prices map[string]float64
}

func (f *fakeOracle) GetPrice(ctx context.Context, asset string) (float64, bool) {
	price, ok := f.prices[asset]
	return price, ok
}

func TestValuateMath(t *testing.T) {
	storage := &fakeLots{lots: []bottypes.InvestmentLot{
		{Asset: "X", Quantity: 10, PurchasePrice: 5},
		{Asset: "X", Quantity: 5, PurchasePrice: 7},
	}}
	oracle := &fakeOracle{prices: map[string]float64{"X": 8}}

	summaries, err := NewValuator(storage, oracle).Valuate(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	got := summaries[0]
	assert.Equal(t, "X", got.Asset)
	assert.InDelta(t, 15, got.TotalQuantity, 1e-9)
	assert.InDelta(t, 85, got.TotalCost, 1e-9)
	assert.InDelta(t, 85.0/15.0, got.AvgPrice, 1e-9)
	require.True(t, got.PriceAvailable)
	assert.InDelta(t, 8, got.CurrentPrice, 1e-9)
	assert.InDelta(t, 120, got.CurrentValue, 1e-9)
	assert.InDelta(t, 35, got.Gain, 1e-9)
	assert.InDelta(t, 35.0/85.0*100, got.GainPercent, 1e-9)
}

func TestValuatePriceUnavailable(t *testing.T) {
	storage := &fakeLots{lots: []bottypes.InvestmentLot{
		{Asset: "X", Quantity: 2, PurchasePrice: 3},
	}}
	oracle := &fakeOracle{prices: map[string]float64{}}

	summaries, err := NewValuator(storage, oracle).Valuate(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	got := summaries[0]
	assert.False(t, got.PriceAvailable)
	assert.InDelta(t, 2, got.TotalQuantity, 1e-9)
	assert.InDelta(t, 3, got.AvgPrice, 1e-9)
	assert.Zero(t, got.CurrentValue)
	assert.Zero(t, got.Gain)
}

func TestValuateFirstEncounterOrder(t *testing.T) {
	// Список приходит из хранилища последними покупками вперёд;
	// порядок активов в сводке повторяет порядок первого появления.
	storage := &fakeLots{lots: []bottypes.InvestmentLot{
		{Asset: "BTC", Quantity: 1, PurchasePrice: 100},
		{Asset: "AAPL", Quantity: 5, PurchasePrice: 7},
		{Asset: "BTC", Quantity: 2, PurchasePrice: 90},
		{Asset: "GOLD", Quantity: 1, PurchasePrice: 2000},
	}}
	oracle := &fakeOracle{prices: map[string]float64{"BTC": 120, "AAPL": 8, "GOLD": 2100}}

	summaries, err := NewValuator(storage, oracle).Valuate(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, "BTC", summaries[0].Asset)
	assert.Equal(t, "AAPL", summaries[1].Asset)
	assert.Equal(t, "GOLD", summaries[2].Asset)
	assert.InDelta(t, 3, summaries[0].TotalQuantity, 1e-9)
}

func TestValuateEmptyPortfolio(t *testing.T) {
	summaries, err := NewValuator(&fakeLots{}, &fakeOracle{}).Valuate(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shoksin/walletBot/internal/clients/marketdata"
)

type fakeMarketData struct {
	calls int
	price float64
	err   error

	lastKind   marketdata.QuoteKind
	lastSymbol string
	lastExtra  map[string]string
}

func (f *fakeMarketData) FetchPrice(ctx context.Context, kind marketdata.QuoteKind, symbol string, extraParams map[string]string) (float64, error) {
	f.calls++
	f.lastKind = kind
	f.lastSymbol = symbol
	f.lastExtra = extraParams
	return f.price, f.err
}

func TestGetPriceCachesWithinFreshnessWindow(t *testing.T) {
	client := &fakeMarketData{price: 196.45}
	oracle := NewOracle(client, DefaultFreshnessPeriod)

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oracle.now = func() time.Time { return current }

	price, ok := oracle.GetPrice(context.Background(), "AAPL")
	assert.True(t, ok)
	assert.InDelta(t, 196.45, price, 1e-9)

	// Второй вызов внутри окна — без запроса к провайдеру.
	current = current.Add(299 * time.Second)
	price, ok = oracle.GetPrice(context.Background(), "AAPL")
	assert.True(t, ok)
	assert.InDelta(t, 196.45, price, 1e-9)
	assert.Equal(t, 1, client.calls)

	// После истечения окна — новый запрос.
	current = current.Add(2 * time.Second)
	client.price = 201.10
	price, ok = oracle.GetPrice(context.Background(), "AAPL")
	assert.True(t, ok)
	assert.InDelta(t, 201.10, price, 1e-9)
	assert.Equal(t, 2, client.calls)
}

func TestGetPriceFailureIsNotCached(t *testing.T) {
	client := &fakeMarketData{err: errors.New("rate limited")}
	oracle := NewOracle(client, DefaultFreshnessPeriod)

	_, ok := oracle.GetPrice(context.Background(), "BTC")
	assert.False(t, ok)

	// Сбой не кэшируется: следующий вызов повторяет запрос.
	client.err = nil
	client.price = 64123.10
	price, ok := oracle.GetPrice(context.Background(), "BTC")
	assert.True(t, ok)
	assert.InDelta(t, 64123.10, price, 1e-9)
	assert.Equal(t, 2, client.calls)
}

func TestGetPriceUnknownSymbol(t *testing.T) {
	client := &fakeMarketData{price: 1}
	oracle := NewOracle(client, DefaultFreshnessPeriod)

	_, ok := oracle.GetPrice(context.Background(), "UNOBTAINIUM")
	assert.False(t, ok)
	assert.Zero(t, client.calls, "unmapped symbol must not reach the provider")
}

func TestGetPriceRouting(t *testing.T) {
	tests := []struct {
		asset      string
		wantKind   marketdata.QuoteKind
		wantSymbol string
		wantExtra  map[string]string
	}{
		{asset: "AAPL", wantKind: marketdata.QuoteEquity, wantSymbol: "AAPL"},
		{asset: "ETH", wantKind: marketdata.QuoteFXRate, wantSymbol: "ETH", wantExtra: map[string]string{"to_currency": "USD"}},
		{asset: "CRUDE_OIL", wantKind: marketdata.QuoteCommodity, wantSymbol: "WTI"},
	}

	for _, tt := range tests {
		client := &fakeMarketData{price: 10}
		oracle := NewOracle(client, DefaultFreshnessPeriod)

		_, ok := oracle.GetPrice(context.Background(), tt.asset)
		assert.True(t, ok)
		assert.Equal(t, tt.wantKind, client.lastKind, tt.asset)
		assert.Equal(t, tt.wantSymbol, client.lastSymbol, tt.asset)
		assert.Equal(t, tt.wantExtra, client.lastExtra, tt.asset)
	}
}

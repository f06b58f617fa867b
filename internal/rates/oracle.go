// Package rates Кэширующий оракул цен активов поверх клиента рыночных данных.
package rates

import (
	"context"
	"sync"
	"time"

	"github.com/shoksin/walletBot/internal/clients/marketdata"
	"github.com/shoksin/walletBot/internal/logger"
)

// DefaultFreshnessPeriod Время жизни закэшированной цены.
const DefaultFreshnessPeriod = 300 * time.Second

// MarketDataClient Интерфейс клиента рыночных данных.
type MarketDataClient interface {
	FetchPrice(ctx context.Context, kind marketdata.QuoteKind, symbol string, extraParams map[string]string) (float64, error)
}

// Маршрут запроса котировки для одного актива.
type quoteRoute struct {
	kind        marketdata.QuoteKind
	symbol      string
	extraParams map[string]string
}

func equityRoute(symbol string) quoteRoute {
	return quoteRoute{kind: marketdata.QuoteEquity, symbol: symbol}
}

func cryptoRoute(symbol string) quoteRoute {
	return quoteRoute{kind: marketdata.QuoteFXRate, symbol: symbol, extraParams: map[string]string{"to_currency": "USD"}}
}

func commodityRoute(symbol string) quoteRoute {
	return quoteRoute{kind: marketdata.QuoteCommodity, symbol: symbol}
}

// Статическая таблица маршрутизации: актив -> запрос к провайдеру.
// Ограничивает кэш фиксированным набором символов.
var assetRoutes = map[string]quoteRoute{
	// Акции.
	"AAPL":  equityRoute("AAPL"),
	"MSFT":  equityRoute("MSFT"),
	"AMZN":  equityRoute("AMZN"),
	"GOOGL": equityRoute("GOOGL"),
	"META":  equityRoute("META"),
	"TSLA":  equityRoute("TSLA"),
	"NVDA":  equityRoute("NVDA"),
	"JPM":   equityRoute("JPM"),
	"WMT":   equityRoute("WMT"),
	"V":     equityRoute("V"),
	// Криптовалюты.
	"BTC":  cryptoRoute("BTC"),
	"ETH":  cryptoRoute("ETH"),
	"BNB":  cryptoRoute("BNB"),
	"XRP":  cryptoRoute("XRP"),
	"ADA":  cryptoRoute("ADA"),
	"SOL":  cryptoRoute("SOL"),
	"DOGE": cryptoRoute("DOGE"),
	"DOT":  cryptoRoute("DOT"),
	"AVAX": cryptoRoute("AVAX"),
	"SHIB": cryptoRoute("SHIB"),
	// Сырьевые товары.
	"GOLD":      commodityRoute("GOLD"),
	"SILVER":    commodityRoute("SILVER"),
	"CRUDE_OIL": commodityRoute("WTI"),
	"NAT_GAS":   commodityRoute("NATURAL_GAS"),
	"COPPER":    commodityRoute("COPPER"),
}

type cacheEntry struct {
	price     float64
	fetchedAt time.Time
}

// Oracle Оракул цен: кэш в памяти процесса с окном свежести.
// Неудачные запросы не кэшируются — следующий вызов повторит запрос.
type Oracle struct {
	client    MarketDataClient
	freshness time.Duration
	now       func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func NewOracle(client MarketDataClient, freshness time.Duration) *Oracle {
	if freshness <= 0 {
		freshness = DefaultFreshnessPeriod
	}
	return &Oracle{
		client:    client,
		freshness: freshness,
		now:       time.Now,
		cache:     map[string]cacheEntry{},
	}
}

// GetPrice Текущая цена актива. Второй результат false, если цена недоступна:
// неизвестный символ либо сбой провайдера.
func (o *Oracle) GetPrice(ctx context.Context, asset string) (float64, bool) {
	route, known := assetRoutes[asset]
	if !known {
		logger.Debug("Unknown asset symbol", "asset", asset)
		return 0, false
	}

	o.mu.Lock()
	entry, cached := o.cache[asset]
	if cached && o.now().Sub(entry.fetchedAt) < o.freshness {
		o.mu.Unlock()
		return entry.price, true
	}
	o.mu.Unlock()

	// Запрос вне блокировки: гонка двух промахов даст лишний запрос,
	// это допустимо.
	price, err := o.client.FetchPrice(ctx, route.kind, route.symbol, route.extraParams)
	if err != nil {
		logger.Warning("Failed to fetch asset price", "asset", asset, "err", err)
		return 0, false
	}

	o.mu.Lock()
	o.cache[asset] = cacheEntry{price: price, fetchedAt: o.now()}
	o.mu.Unlock()

	return price, true
}

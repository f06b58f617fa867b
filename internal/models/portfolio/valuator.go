// Package portfolio Оценка портфеля: агрегация покупок по активам и сведение
// с текущими ценами.
package portfolio

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/shoksin/walletBot/internal/models/bottypes"
)

// InvestmentLister Чтение покупок владельца из хранилища.
type InvestmentLister interface {
	GetInvestments(ctx context.Context, userID int64) ([]bottypes.InvestmentLot, error)
}

// PriceOracle Источник текущих цен активов.
type PriceOracle interface {
	GetPrice(ctx context.Context, asset string) (float64, bool)
}

// AssetSummary Сводка по одному активу портфеля.
// При PriceAvailable == false поля текущей стоимости не заполнены.
type AssetSummary struct {
	Asset          string
	TotalQuantity  float64
	AvgPrice       float64
	TotalCost      float64
	PriceAvailable bool
	CurrentPrice   float64
	CurrentValue   float64
	Gain           float64
	GainPercent    float64
}

type Valuator struct {
	storage InvestmentLister
	oracle  PriceOracle
}

func NewValuator(storage InvestmentLister, oracle PriceOracle) *Valuator {
	return &Valuator{storage: storage, oracle: oracle}
}

// Денежная арифметика на decimal, чтобы не накапливать ошибку float при
// суммировании большого числа покупок.
type assetPosition struct {
	quantity decimal.Decimal
	cost     decimal.Decimal
}

// Valuate Сводки по всем активам владельца. Порядок активов — порядок первого
// появления в списке покупок (последние покупки первыми).
func (v *Valuator) Valuate(ctx context.Context, userID int64) ([]AssetSummary, error) {
	lots, err := v.storage.GetInvestments(ctx, userID)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0, len(lots))
	positions := map[string]assetPosition{}
	for _, lot := range lots {
		position, seen := positions[lot.Asset]
		if !seen {
			order = append(order, lot.Asset)
		}

		quantity := decimal.NewFromFloat(lot.Quantity)
		price := decimal.NewFromFloat(lot.PurchasePrice)
		position.quantity = position.quantity.Add(quantity)
		position.cost = position.cost.Add(quantity.Mul(price))
		positions[lot.Asset] = position
	}

	summaries := make([]AssetSummary, 0, len(order))
	for _, asset := range order {
		position := positions[asset]

		summary := AssetSummary{
			Asset:         asset,
			TotalQuantity: position.quantity.InexactFloat64(),
			TotalCost:     position.cost.InexactFloat64(),
		}
		// Количество всегда положительно, но на ноль делить всё равно нельзя.
		if !position.quantity.IsZero() {
			summary.AvgPrice = position.cost.Div(position.quantity).InexactFloat64()
		}

		currentPrice, available := v.oracle.GetPrice(ctx, asset)
		if available {
			price := decimal.NewFromFloat(currentPrice)
			value := position.quantity.Mul(price)
			gain := value.Sub(position.cost)

			summary.PriceAvailable = true
			summary.CurrentPrice = currentPrice
			summary.CurrentValue = value.InexactFloat64()
			summary.Gain = gain.InexactFloat64()
			if !position.cost.IsZero() {
				summary.GainPercent = gain.Div(position.cost).Mul(decimal.NewFromInt(100)).InexactFloat64()
			}
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

package messages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shoksin/walletBot/internal/models/bottypes"
)

// Сценарий добавления инвестиции: класс актива -> актив -> количество ->
// цена покупки -> запись.

const (
	txtSelectAssetClass = "Select asset category:"
	txtInvalidQuantity  = "❌ Invalid number. Please enter quantity again:"
	txtEnterPrice       = "Enter purchase price per unit (in USD):"
	txtInvalidPrice     = "❌ Invalid price. Please enter price again:"
	txtEmptyPortfolio   = "Your portfolio is empty."
	btnInvestmentsBack  = "🔙 Back"
)

// Фиксированные списки активов по классам.
var (
	stockAssets     = []string{"AAPL", "MSFT", "AMZN", "GOOGL", "META", "TSLA", "NVDA", "JPM", "WMT", "V"}
	cryptoAssets    = []string{"BTC", "ETH", "BNB", "XRP", "ADA", "SOL", "DOGE", "DOT", "AVAX", "SHIB"}
	commodityAssets = []string{"GOLD", "SILVER", "CRUDE_OIL", "NAT_GAS", "COPPER"}
)

var assetClassRosters = map[string][]string{
	"stocks":      stockAssets,
	"crypto":      cryptoAssets,
	"commodities": commodityAssets,
}

func (m *Model) investmentsCommand(ctx context.Context, msg Message) error {
	m.sessions.Set(msg.UserID, Session{State: StateInvestSelectingCategory})
	return m.tgClient.ShowInlineButtons(txtSelectAssetClass, investmentClassButtons(), msg.UserID)
}

func investmentClassButtons() []bottypes.TgRowButtons {
	return []bottypes.TgRowButtons{
		{{DisplayName: "📈 Stocks", Value: "inv_cat:stocks"}},
		{{DisplayName: "💱 Crypto", Value: "inv_cat:crypto"}},
		{{DisplayName: "⛏️ Commodities", Value: "inv_cat:commodities"}},
	}
}

func investmentAssetButtons(class string) []bottypes.TgRowButtons {
	roster := assetClassRosters[class]
	buttons := make([]bottypes.TgInlineButton, 0, len(roster)+1)
	for _, asset := range roster {
		buttons = append(buttons, bottypes.TgInlineButton{
			DisplayName: asset,
			Value:       "inv_asset:" + asset,
		})
	}
	buttons = append(buttons, bottypes.TgInlineButton{
		DisplayName: btnInvestmentsBack,
		Value:       "inv_back",
	})
	return buttonRows(buttons, expenseButtonsPerRow)
}

func (m *Model) selectInvestmentClass(ctx context.Context, msg Message, class string) error {
	if _, known := assetClassRosters[class]; !known {
		return nil
	}

	m.sessions.Set(msg.UserID, Session{State: StateInvestSelectingAsset})
	text := fmt.Sprintf("Select %s asset:", capitalize(class))
	return m.tgClient.ShowInlineButtons(text, investmentAssetButtons(class), msg.UserID)
}

func (m *Model) backToInvestmentClassSelection(ctx context.Context, msg Message) error {
	m.sessions.Set(msg.UserID, Session{State: StateInvestSelectingCategory})
	return m.tgClient.ShowInlineButtons(txtSelectAssetClass, investmentClassButtons(), msg.UserID)
}

func (m *Model) selectInvestmentAsset(ctx context.Context, msg Message, session Session, asset string) error {
	session.State = StateInvestEnteringQuantity
	session.Asset = asset
	m.sessions.Set(msg.UserID, session)
	return m.tgClient.SendMessage(msg.UserID, fmt.Sprintf("Enter quantity of *%s*:", asset))
}

// Невалидное количество не прерывает сценарий.
func (m *Model) enterInvestmentQuantity(ctx context.Context, msg Message, session Session) error {
	quantity, valid := parsePositiveNumber(msg.Text)
	if !valid {
		return m.tgClient.SendMessage(msg.UserID, txtInvalidQuantity)
	}

	session.State = StateInvestEnteringPrice
	session.Quantity = quantity
	m.sessions.Set(msg.UserID, session)
	return m.tgClient.SendMessage(msg.UserID, txtEnterPrice)
}

// Последний шаг: запись покупки с текущей датой, сессия завершается.
func (m *Model) enterInvestmentPrice(ctx context.Context, msg Message, session Session) error {
	price, valid := parsePositiveNumber(msg.Text)
	if !valid {
		return m.tgClient.SendMessage(msg.UserID, txtInvalidPrice)
	}

	date := msg.Date
	if date.IsZero() {
		date = time.Now()
	}

	if err := m.storage.AddInvestment(ctx, msg.UserID, session.Asset, session.Quantity, price, date); err != nil {
		return err
	}

	m.sessions.Clear(msg.UserID)
	text := fmt.Sprintf("✅ Recorded: *%s* of *%s* @ *%s*",
		fmtQuantity(session.Quantity), session.Asset, formatUSD(price))
	return m.sendMainMenu(msg.UserID, text)
}

// Сводка портфеля: по каждому активу количество, средняя цена и доходность.
// Недоступная цена не валит весь ответ — актив показывается без текущей оценки.
func (m *Model) viewPortfolioCommand(ctx context.Context, msg Message) error {
	summaries, err := m.valuator.Valuate(ctx, msg.UserID)
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		return m.sendMainMenu(msg.UserID, txtEmptyPortfolio)
	}

	var sb strings.Builder
	sb.WriteString("📈 *Your Portfolio*:\n\n")
	for _, summary := range summaries {
		sb.WriteString(fmt.Sprintf("*%s* — %s units\n", summary.Asset, fmtQuantity(summary.TotalQuantity)))
		sb.WriteString(fmt.Sprintf("Avg Price: %s\n", formatUSD(summary.AvgPrice)))

		if !summary.PriceAvailable {
			sb.WriteString("Current: N/A\n\n")
			continue
		}

		sb.WriteString(fmt.Sprintf("Current: %s\n", formatUSD(summary.CurrentPrice)))
		sb.WriteString(fmt.Sprintf("Gain: %s\n\n", formatGain(summary.Gain, summary.GainPercent)))
	}

	return m.sendMainMenu(msg.UserID, strings.TrimSpace(sb.String()))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatGain(gain, gainPercent float64) string {
	if gain >= 0 {
		return fmt.Sprintf("+%s (+%.1f%%)", formatUSD(gain), gainPercent)
	}
	return fmt.Sprintf("-%s (%.1f%%)", formatUSD(-gain), gainPercent)
}

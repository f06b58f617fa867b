package messages

import (
	"context"
	"fmt"
	"strings"

	"github.com/shoksin/walletBot/internal/logger"
	"github.com/shoksin/walletBot/internal/models/bottypes"
	"github.com/shoksin/walletBot/internal/models/stats"
)

const txtSelectStatsPeriod = "📊 Select a period to view your spending stats:"

func (m *Model) statsCommand(ctx context.Context, msg Message) error {
	return m.tgClient.ShowInlineButtons(txtSelectStatsPeriod, statsPeriodButtons(), msg.UserID)
}

func statsPeriodButtons() []bottypes.TgRowButtons {
	return []bottypes.TgRowButtons{
		{{DisplayName: "📅 Day", Value: "stats_period:" + string(stats.WindowDay)}},
		{{DisplayName: "📅 Week", Value: "stats_period:" + string(stats.WindowWeek)}},
		{{DisplayName: "📅 Month", Value: "stats_period:" + string(stats.WindowMonth)}},
		{{DisplayName: "📅 3 Months", Value: "stats_period:" + string(stats.WindowQuarter)}},
	}
}

// Отчёт за период: текстовая сводка, затем два графика. Сбой отрисовки
// графиков не отменяет отчёт — пользователь получает сообщение об ошибке.
func (m *Model) showStats(ctx context.Context, msg Message, period string) error {
	report, err := m.stats.WindowedStats(ctx, msg.UserID, stats.WindowKind(period))
	if err != nil {
		return err
	}

	if len(report.AllCategories) == 0 {
		return m.sendMainMenu(msg.UserID, fmt.Sprintf("📭 No expenses found for %s.", strings.ToLower(report.Title)))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 %s\n\n", report.Title))
	sb.WriteString(fmt.Sprintf("💰 Total Spend: %s\n\n", formatUSD(report.TotalSpend)))
	sb.WriteString("Top Categories:\n")
	for _, total := range report.TopCategories {
		sb.WriteString(fmt.Sprintf("• %s %s: %s\n", categoryEmoji(total.Category), total.Category, formatUSD(total.Total)))
	}

	if err := m.sendMainMenu(msg.UserID, sb.String()); err != nil {
		return err
	}

	if err := m.sendStatsCharts(msg.UserID, report); err != nil {
		logger.Warning("Failed to send stats charts", "userID", msg.UserID, "err", err)
		return m.tgClient.SendMessage(msg.UserID, fmt.Sprintf("❌ Error generating charts: %v", err))
	}
	return nil
}

// Графики рисуются во временные файлы; после отправки файлы удаляются.
func (m *Model) sendStatsCharts(userID int64, report stats.Report) error {
	barPath, err := m.charts.BarChart(report.AllCategories, report.Title)
	if err != nil {
		return err
	}
	defer m.charts.Cleanup(barPath)

	piePath, err := m.charts.PieChart(report.AllCategories, report.Title)
	if err != nil {
		return err
	}
	defer m.charts.Cleanup(piePath)

	if err := m.tgClient.SendPhoto(barPath, report.Title+" - Bar Chart", userID); err != nil {
		return err
	}
	return m.tgClient.SendPhoto(piePath, report.Title+" - Pie Chart", userID)
}

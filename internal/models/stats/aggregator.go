// Package stats Агрегация расходов по временным окнам для отчётов и графиков.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/shoksin/walletBot/internal/helpers/timeutils"
	"github.com/shoksin/walletBot/internal/models/bottypes"
)

// WindowKind Период отчёта.
type WindowKind string

const (
	WindowDay     WindowKind = "day"
	WindowWeek    WindowKind = "week"
	WindowMonth   WindowKind = "month"
	WindowQuarter WindowKind = "quarter"
)

// В отчётном сообщении показываются не более пяти категорий;
// полный список остаётся для графиков.
const topCategoriesLimit = 5

var windowLookbackDays = map[WindowKind]int{
	WindowDay:     1,
	WindowWeek:    7,
	WindowMonth:   30,
	WindowQuarter: 90,
}

var windowTitles = map[WindowKind]string{
	WindowDay:     "Daily Spending",
	WindowWeek:    "Weekly Spending",
	WindowMonth:   "Monthly Spending",
	WindowQuarter: "Last 3 Months Spending",
}

// SpendingStorage Чтение сгруппированных сумм из хранилища.
type SpendingStorage interface {
	GetSpendingStats(ctx context.Context, userID int64, start, end time.Time) ([]bottypes.CategoryTotal, error)
}

// Report Готовый отчёт о расходах за окно.
type Report struct {
	Title         string
	TotalSpend    float64
	TopCategories []bottypes.CategoryTotal // Не более пяти, по убыванию суммы.
	AllCategories []bottypes.CategoryTotal // Полный список для графиков.
}

type Aggregator struct {
	storage SpendingStorage
	now     func() time.Time
}

func NewAggregator(storage SpendingStorage) *Aggregator {
	return &Aggregator{storage: storage, now: time.Now}
}

// WindowedStats Отчёт о расходах владельца за выбранный период.
func (a *Aggregator) WindowedStats(ctx context.Context, userID int64, kind WindowKind) (Report, error) {
	days, known := windowLookbackDays[kind]
	if !known {
		return Report{}, fmt.Errorf("unknown stats window %q", kind)
	}

	end := a.now()
	start := timeutils.DaysBack(end, days)

	totals, err := a.storage.GetSpendingStats(ctx, userID, start, end)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Title:         windowTitles[kind],
		AllCategories: totals,
	}
	for _, total := range totals {
		report.TotalSpend += total.Total
	}

	report.TopCategories = totals
	if len(totals) > topCategoriesLimit {
		report.TopCategories = totals[:topCategoriesLimit]
	}

	return report, nil
}

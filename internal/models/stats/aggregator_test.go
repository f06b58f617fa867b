package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoksin/walletBot/internal/models/bottypes"
)

type fakeSpendingStorage struct {
	totals    []bottypes.CategoryTotal
	lastStart time.Time
	lastEnd   time.Time
}

func (f *fakeSpendingStorage) GetSpendingStats(ctx context.Context, userID int64, start, end time.Time) ([]bottypes.CategoryTotal, error) {
	f.lastStart = start
	f.lastEnd = end
	return f.totals, nil
}

func TestWindowedStatsLookback(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		kind      WindowKind
		wantDays  int
		wantTitle string
	}{
		{WindowDay, 1, "Daily Spending"},
		{WindowWeek, 7, "Weekly Spending"},
		{WindowMonth, 30, "Monthly Spending"},
		{WindowQuarter, 90, "Last 3 Months Spending"},
	}

	for _, tt := range tests {
		storage := &fakeSpendingStorage{}
		aggregator := NewAggregator(storage)
		aggregator.now = func() time.Time { return now }

		report, err := aggregator.WindowedStats(context.Background(), 1, tt.kind)
		require.NoError(t, err)

		assert.Equal(t, tt.wantTitle, report.Title)
		assert.Equal(t, now, storage.lastEnd)
		assert.Equal(t, now.AddDate(0, 0, -tt.wantDays), storage.lastStart)
	}
}

func TestWindowedStatsTotalsAndTopFive(t *testing.T) {
	storage := &fakeSpendingStorage{totals: []bottypes.CategoryTotal{
		{Category: "Transport", Total: 60},
		{Category: "Food", Total: 50},
		{Category: "Health", Total: 40},
		{Category: "Utilities", Total: 30},
		{Category: "Shopping", Total: 20},
		{Category: "Entertainment", Total: 10},
		{Category: "Other", Total: 5},
	}}
	aggregator := NewAggregator(storage)

	report, err := aggregator.WindowedStats(context.Background(), 1, WindowWeek)
	require.NoError(t, err)

	assert.InDelta(t, 215, report.TotalSpend, 1e-9)
	assert.Len(t, report.TopCategories, 5)
	assert.Equal(t, "Transport", report.TopCategories[0].Category)
	assert.Equal(t, "Shopping", report.TopCategories[4].Category)
	assert.Len(t, report.AllCategories, 7, "full set kept for charting")
}

func TestWindowedStatsUnknownWindow(t *testing.T) {
	aggregator := NewAggregator(&fakeSpendingStorage{})

	_, err := aggregator.WindowedStats(context.Background(), 1, WindowKind("year"))
	assert.Error(t, err)
}

func TestWindowedStatsEmpty(t *testing.T) {
	aggregator := NewAggregator(&fakeSpendingStorage{})

	report, err := aggregator.WindowedStats(context.Background(), 1, WindowDay)
	require.NoError(t, err)
	assert.Zero(t, report.TotalSpend)
	assert.Empty(t, report.TopCategories)
}

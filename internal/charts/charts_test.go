package charts

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoksin/walletBot/internal/models/bottypes"
)

var testTotals = []bottypes.CategoryTotal{
	{Category: "Food", Total: 42.5},
	{Category: "Transport", Total: 17},
}

func TestBarChartRendersFile(t *testing.T) {
	renderer := NewRenderer(t.TempDir())

	path, err := renderer.BarChart(testTotals, "Weekly Spending")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPieChartRendersFile(t *testing.T) {
	renderer := NewRenderer(t.TempDir())

	path, err := renderer.PieChart(testTotals, "Weekly Spending")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestChartsEmptyData(t *testing.T) {
	renderer := NewRenderer(t.TempDir())

	_, err := renderer.BarChart(nil, "Weekly Spending")
	assert.Error(t, err)

	_, err = renderer.PieChart(nil, "Weekly Spending")
	assert.Error(t, err)
}

func TestCleanupRemovesFiles(t *testing.T) {
	renderer := NewRenderer(t.TempDir())

	barPath, err := renderer.BarChart(testTotals, "Daily Spending")
	require.NoError(t, err)
	piePath, err := renderer.PieChart(testTotals, "Daily Spending")
	require.NoError(t, err)

	renderer.Cleanup(barPath, piePath, "")

	_, err = os.Stat(barPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(piePath)
	assert.True(t, os.IsNotExist(err))
}

// Package charts Отрисовка графиков расходов во временные PNG-файлы.
package charts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shoksin/walletBot/internal/logger"
	"github.com/shoksin/walletBot/internal/models/bottypes"
	"github.com/wcharczuk/go-chart/v2"
)

// Renderer Рендерер графиков. Файлы складываются во временный каталог,
// за их удаление после отправки отвечает вызывающий код (Cleanup).
type Renderer struct {
	dir string
}

func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

func (r *Renderer) chartValues(totals []bottypes.CategoryTotal) []chart.Value {
	values := make([]chart.Value, 0, len(totals))
	for _, total := range totals {
		values = append(values, chart.Value{
			Label: total.Category,
			Value: total.Total,
		})
	}
	return values
}

func (r *Renderer) outputPath(prefix string) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create charts dir: %w", err)
	}
	return filepath.Join(r.dir, fmt.Sprintf("%s_%s.png", prefix, uuid.NewString())), nil
}

func (r *Renderer) render(path string, renderFn func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if err := renderFn(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// BarChart Столбчатая диаграмма расходов по категориям.
func (r *Renderer) BarChart(totals []bottypes.CategoryTotal, title string) (string, error) {
	if len(totals) == 0 {
		return "", fmt.Errorf("no data to chart")
	}

	path, err := r.outputPath("bar")
	if err != nil {
		return "", err
	}

	graph := chart.BarChart{
		Title:    title,
		Height:   512,
		BarWidth: 60,
		Bars:     r.chartValues(totals),
	}

	if err := r.render(path, func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	}); err != nil {
		return "", err
	}
	return path, nil
}

// PieChart Круговая диаграмма долей категорий.
func (r *Renderer) PieChart(totals []bottypes.CategoryTotal, title string) (string, error) {
	if len(totals) == 0 {
		return "", fmt.Errorf("no data to chart")
	}

	path, err := r.outputPath("pie")
	if err != nil {
		return "", err
	}

	graph := chart.PieChart{
		Title:  title,
		Width:  512,
		Height: 512,
		Values: r.chartValues(totals),
	}

	if err := r.render(path, func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	}); err != nil {
		return "", err
	}
	return path, nil
}

// Cleanup Удаление отправленных файлов графиков.
func (r *Renderer) Cleanup(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warning("Failed to remove chart file", "path", path, "err", err)
		}
	}
}

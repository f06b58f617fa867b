package metrics

import (
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shoksin/walletBot/internal/clients/tg"
	"github.com/shoksin/walletBot/internal/logger"
	"github.com/shoksin/walletBot/internal/models/messages"
)

// Метрики.
var (
	InFlightRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tg",
		Subsystem: "messages",
		Name:      "in_flight_requests", // Количество сообщений в обработке.
	})
	SummaryResponseTime = promauto.NewSummary(prometheus.SummaryOpts{
		Namespace: "tg",
		Subsystem: "messages",
		Name:      "summary_response_time_seconds", // Время обработки сообщений.
		Objectives: map[float64]float64{
			0.5:  0.1,
			0.9:  0.01,
			0.99: 0.001,
		},
	})
	HistogramResponseTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tg",
			Subsystem: "messages",
			Name:      "histogram_response_time_seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"cmd"},
	)
)

// Метки команд: тексты меню и префиксы callback-данных.
var commandLabels = map[string]string{
	"/start":           "start",
	"➕ Add Expense":    "add_expense",
	"📋 View Expenses":  "view_expenses",
	"🗑️ Delete Expense": "delete_expense",
	"📊 Statistics":     "stats",
	"💰 Investments":    "investments",
	"💼 View Portfolio": "portfolio",
	"❌ Cancel":         "cancel",
}

var callbackLabels = map[string]string{
	"category":      "select_category",
	"add_category":  "add_category",
	"amount":        "select_amount",
	"custom_amount": "custom_amount",
	"stats_period":  "stats_period",
	"inv_cat":       "invest_class",
	"inv_asset":     "invest_asset",
}

// StartMetricsServer Запуск HTTP-сервера метрик.
func StartMetricsServer(address string) {
	http.Handle("/", promhttp.Handler())

	logger.Info("Start metrics service", "address", address)
	go func() {
		// Для просмотра значений метрик по адресу http://<address>/
		err := http.ListenAndServe(address, nil)
		if err != nil {
			logger.Error("Metrics public error", "err", err)
		}
	}()
}

// MetricsMiddleware Функция сбора метрик.
func MetricsMiddleware(next tg.HandlerFunc) tg.HandlerFunc {
	handler := tg.HandlerFunc(func(tgUpdate tgbotapi.Update, c *tg.Client, msgModel *messages.Model) {
		InFlightRequests.Inc()
		startTime := time.Now()

		next.RunFunc(tgUpdate, c, msgModel)

		duration := time.Since(startTime)
		InFlightRequests.Dec()

		// Сохранение метрик продолжительности обработки.
		SummaryResponseTime.Observe(duration.Seconds())
		HistogramResponseTime.WithLabelValues(commandLabel(tgUpdate)).Observe(duration.Seconds())
	})

	return handler
}

// Определение команды для сохранения в метрике.
func commandLabel(tgUpdate tgbotapi.Update) string {
	if tgUpdate.CallbackQuery != nil {
		prefix, _, _ := strings.Cut(tgUpdate.CallbackQuery.Data, ":")
		if label, found := callbackLabels[prefix]; found {
			return label
		}
		return "none"
	}

	if tgUpdate.Message != nil {
		if label, found := commandLabels[tgUpdate.Message.Text]; found {
			return label
		}
	}
	return "none"
}

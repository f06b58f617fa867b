package main

import (
	"context"
	"time"

	"github.com/shoksin/walletBot/internal/charts"
	"github.com/shoksin/walletBot/internal/clients/marketdata"
	"github.com/shoksin/walletBot/internal/clients/tg"
	"github.com/shoksin/walletBot/internal/config"
	"github.com/shoksin/walletBot/internal/helpers/dbutils"
	"github.com/shoksin/walletBot/internal/logger"
	"github.com/shoksin/walletBot/internal/metrics"
	dbmodel "github.com/shoksin/walletBot/internal/models/db"
	"github.com/shoksin/walletBot/internal/models/messages"
	"github.com/shoksin/walletBot/internal/models/portfolio"
	"github.com/shoksin/walletBot/internal/models/stats"
	"github.com/shoksin/walletBot/internal/rates"
	"github.com/shoksin/walletBot/internal/tracing"
)

// default settings
var (
	connectionStringDB  = "data/wallet.db"
	marketDataBaseURL   = "" // Пустое значение — адрес провайдера по умолчанию.
	priceCachePeriod    = rates.DefaultFreshnessPeriod
	metricsAddress      = "0.0.0.0:8080"
	tracingOTLPEndpoint = "localhost:4318"
	chartsDir           = "charts"
)

func main() {
	defer logger.Sync()

	logger.Info("Application start")

	ctx := context.Background()

	cfg, err := config.New()
	if err != nil {
		logger.Fatal("Error to get config", "err", err)
	}

	setConfig(cfg.GetConfig())

	db, err := dbutils.NewDBConnect(connectionStringDB)
	if err != nil {
		logger.Fatal("Error connecting to database", "err", err)
	}

	if err := dbmodel.CreateTables(ctx, db); err != nil {
		logger.Fatal("Error creating database tables", "err", err)
	}

	storage := dbmodel.NewUserStorage(db)

	marketDataClient := marketdata.New(marketDataBaseURL, cfg.GetConfig().MarketDataAPIKey)
	oracle := rates.NewOracle(marketDataClient, priceCachePeriod)

	valuator := portfolio.NewValuator(storage, oracle)
	aggregator := stats.NewAggregator(storage)
	chartRenderer := charts.NewRenderer(chartsDir)

	// Оборачивание в Middleware функции обработки сообщения для метрик и трейсинга.
	tgClient, err := tg.New(cfg, tracing.TracingMiddleware(metrics.MetricsMiddleware(tg.ProcessingMessages)))
	if err != nil {
		logger.Fatal("Error init tg client", "err", err)
	}

	msgModel := messages.New(ctx, tgClient, storage, messages.NewSessionStore(), aggregator, valuator, chartRenderer)

	shutdownTracing, err := tracing.Init(ctx, tracingOTLPEndpoint)
	if err != nil {
		logger.Warning("Tracing disabled", "err", err)
	} else {
		defer func() {
			if err := shutdownTracing(ctx); err != nil {
				logger.Error("Error shutting down tracing", "err", err)
			}
		}()
	}

	metrics.StartMetricsServer(metricsAddress)

	tgClient.ListenUpdates(msgModel)

	logger.Info("Application stop")
}

func setConfig(config config.Config) {
	if config.ConnectionStringDB != "" {
		connectionStringDB = config.ConnectionStringDB
	}

	if config.MarketDataBaseURL != "" {
		marketDataBaseURL = config.MarketDataBaseURL
	}

	if config.PriceCachePeriod > 0 {
		priceCachePeriod = time.Duration(config.PriceCachePeriod) * time.Second
	}

	if config.MetricsAddress != "" {
		metricsAddress = config.MetricsAddress
	}

	if config.TracingOTLPEndpoint != "" {
		tracingOTLPEndpoint = config.TracingOTLPEndpoint
	}
}

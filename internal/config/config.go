package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shoksin/walletBot/internal/logger"
	"gopkg.in/yaml.v3"
)

const configFile = "data/config.yaml"

type Config struct {
	Token               string `yaml:"token"`
	MarketDataAPIKey    string `yaml:"market_data_api_key"`
	MarketDataBaseURL   string `yaml:"market_data_base_url"`
	ConnectionStringDB  string `yaml:"connection_string_db"`
	PriceCachePeriod    int64  `yaml:"price_cache_period"`    // Время жизни закэшированной цены актива (в секундах).
	MetricsAddress      string `yaml:"metrics_address"`       // Адрес HTTP-сервера метрик.
	TracingOTLPEndpoint string `yaml:"tracing_otlp_endpoint"` // Адрес OTLP-экспортера (Jaeger).
}

type Service struct {
	config Config
}

func New() (*Service, error) {
	s := &Service{}

	// Секреты подтягиваются из окружения (.env не обязателен).
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found", "err", err)
	}

	rawYAML, err := os.ReadFile(configFile)
	if err != nil {
		logger.Error("Error read config file", "err", err)
		return nil, fmt.Errorf("reading config error: %v", err)
	}

	err = yaml.Unmarshal(rawYAML, &s.config)
	if err != nil {
		logger.Error("Error to unmarshal config data", "err", err)
		return nil, fmt.Errorf("unmarhaling config error: %v", err)
	}

	// Переменные окружения имеют приоритет над yaml.
	if token := os.Getenv("BOT_TOKEN"); token != "" {
		s.config.Token = token
	}
	if key := os.Getenv("MARKET_DATA_API_KEY"); key != "" {
		s.config.MarketDataAPIKey = key
	}

	return s, nil
}

func (s *Service) Token() string {
	return s.config.Token
}

func (s *Service) GetConfig() Config {
	return s.config
}

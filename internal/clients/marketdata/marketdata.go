// Package marketdata Клиент внешнего провайдера рыночных данных (Alpha Vantage).
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// QuoteKind Тип запрашиваемой котировки.
type QuoteKind string

const (
	QuoteEquity    QuoteKind = "GLOBAL_QUOTE"
	QuoteFXRate    QuoteKind = "CURRENCY_EXCHANGE_RATE"
	QuoteCommodity QuoteKind = "COMMODITY"
)

const defaultBaseURL = "https://www.alphavantage.co/query"

// Запрос к провайдеру не должен подвешивать вызывающего.
const requestTimeout = 5 * time.Second

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// FetchPrice Запрос цены у провайдера. Любой сбой (сеть, лимиты, кривой ответ)
// возвращается ошибкой, наверх он не эскалируется.
func (c *Client) FetchPrice(ctx context.Context, kind QuoteKind, symbol string, extraParams map[string]string) (float64, error) {
	params := url.Values{}
	params.Set("function", string(kind))
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)
	for key, value := range extraParams {
		params.Set(key, value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request %s %s: %w", kind, symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("request %s %s: unexpected status %d", kind, symbol, resp.StatusCode)
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode response for %s: %w", symbol, err)
	}

	// "Error Message" — ошибка провайдера, "Note" — маркер превышения лимита запросов.
	for _, marker := range []string{"Error Message", "Note"} {
		if _, found := payload[marker]; found {
			return 0, fmt.Errorf("provider error for %s: %s", symbol, marker)
		}
	}

	raw, err := extractPrice(kind, payload)
	if err != nil {
		return 0, fmt.Errorf("parse response for %s: %w", symbol, err)
	}

	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q for %s: %w", raw, symbol, err)
	}
	return price, nil
}

func extractPrice(kind QuoteKind, payload map[string]json.RawMessage) (string, error) {
	switch kind {
	case QuoteEquity:
		var quote struct {
			Price string `json:"05. price"`
		}
		if err := unmarshalField(payload, "Global Quote", &quote); err != nil {
			return "", err
		}
		if quote.Price == "" {
			return "", fmt.Errorf("empty equity quote")
		}
		return quote.Price, nil

	case QuoteFXRate:
		var rate struct {
			ExchangeRate string `json:"5. Exchange Rate"`
		}
		if err := unmarshalField(payload, "Realtime Currency Exchange Rate", &rate); err != nil {
			return "", err
		}
		if rate.ExchangeRate == "" {
			return "", fmt.Errorf("empty exchange rate")
		}
		return rate.ExchangeRate, nil

	case QuoteCommodity:
		// Провайдер отдаёт ряд значений, актуальное — последнее.
		var series []struct {
			Value string `json:"value"`
		}
		if err := unmarshalField(payload, "data", &series); err != nil {
			return "", err
		}
		if len(series) == 0 || series[len(series)-1].Value == "" {
			return "", fmt.Errorf("empty commodity series")
		}
		return series[len(series)-1].Value, nil
	}

	return "", fmt.Errorf("unknown quote kind %q", kind)
}

func unmarshalField(payload map[string]json.RawMessage, field string, dest any) error {
	raw, found := payload[field]
	if !found {
		return fmt.Errorf("field %q missing", field)
	}
	return json.Unmarshal(raw, dest)
}

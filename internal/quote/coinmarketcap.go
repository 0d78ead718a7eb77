package quote

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	DefaultCoinMarketCapURL = "https://pro-api.coinmarketcap.com"
	DefaultTimeout          = 10 * time.Second
	quotesLatestPath        = "/v1/cryptocurrency/quotes/latest"
	apiKeyHeader            = "X-CMC_PRO_API_KEY"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CoinMarketCapOptions parameterise the CoinMarketCap provider.
type CoinMarketCapOptions struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// CoinMarketCap is a Provider backed by the CoinMarketCap pro API.
type CoinMarketCap struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

type cmcStatus struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type cmcQuote struct {
	Price *float64 `json:"price"`
}

type cmcAsset struct {
	Symbol string              `json:"symbol"`
	Quote  map[string]cmcQuote `json:"quote"`
}

type cmcQuotesResponse struct {
	Status cmcStatus           `json:"status"`
	Data   map[string]cmcAsset `json:"data"`
}

// NewCoinMarketCap builds a CoinMarketCap provider.
func NewCoinMarketCap(opts CoinMarketCapOptions, logger *zap.Logger) *CoinMarketCap {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultCoinMarketCapURL
	}
	return &CoinMarketCap{
		client:  &fasthttp.Client{},
		baseURL: baseURL,
		apiKey:  opts.APIKey,
		timeout: timeout,
		logger:  logger.Named("coinmarketcap"),
	}
}

// Quote implements Provider.
func (c *CoinMarketCap) Quote(ctx context.Context, symbol string, convert string) (float64, error) {
	if c.apiKey == "" {
		return 0, fmt.Errorf("coinmarketcap api key not configured")
	}
	if symbol == "" || convert == "" {
		return 0, fmt.Errorf("symbol and convert currency are required")
	}

	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("convert", convert)
	requestURL := c.baseURL + quotesLatestPath + "?" + query.Encode()

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	c.logger.Debug("request quote", zap.String("symbol", symbol), zap.String("convert", convert))

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return 0, fmt.Errorf("quote %s: %w", symbol, err)
		}
	} else if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		return 0, fmt.Errorf("quote %s: %w", symbol, err)
	}

	body := resp.Body()
	var payload cmcQuotesResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode() != fasthttp.StatusOK {
		if decodeErr == nil && payload.Status.ErrorMessage != "" {
			return 0, fmt.Errorf("quote %s: status %d: %s", symbol, resp.StatusCode(), payload.Status.ErrorMessage)
		}
		return 0, fmt.Errorf("quote %s: status %d", symbol, resp.StatusCode())
	}
	if decodeErr != nil {
		return 0, fmt.Errorf("decode quote %s: %w", symbol, decodeErr)
	}
	if payload.Status.ErrorCode != 0 {
		return 0, fmt.Errorf("quote %s: api error %d: %s", symbol, payload.Status.ErrorCode, payload.Status.ErrorMessage)
	}

	asset, ok := payload.Data[symbol]
	if !ok {
		return 0, fmt.Errorf("quote %s: symbol missing from response", symbol)
	}
	q, ok := asset.Quote[convert]
	if !ok || q.Price == nil {
		return 0, fmt.Errorf("quote %s: no %s price in response", symbol, convert)
	}
	return *q.Price, nil
}

var _ Provider = (*CoinMarketCap)(nil)

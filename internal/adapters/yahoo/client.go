package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"nseScreener/internal/domain"
	"nseScreener/internal/ports"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	defaultSuffix  = ".NS" // NSE cash segment on Yahoo Finance
)

// Client implements the ports.CandleSource interface against the Yahoo
// Finance chart API. NSE symbols are mapped by appending the exchange
// suffix (e.g. "RELIANCE" -> "RELIANCE.NS").
type Client struct {
	httpClient *http.Client
	baseURL    string
	suffix     string
	logger     ports.Logger
	maxRetries int
	retryDelay time.Duration
}

// Config holds configuration specific to the Yahoo client adapter.
type Config struct {
	Logger         ports.Logger
	BaseURL        string        // Overridable for tests
	Suffix         string        // Exchange suffix appended to symbols; defaults to ".NS"
	RequestTimeout time.Duration // Per-request timeout (e.g. 15 * time.Second)
	MaxRetries     int           // Retry attempts for transient failures
	RetryDelay     time.Duration // Delay between retries
}

// New creates a new Yahoo Finance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Yahoo client")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	suffix := cfg.Suffix
	if suffix == "" {
		suffix = defaultSuffix
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		suffix:     suffix,
		logger:     cfg.Logger,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}, nil
}

// chartResponse mirrors the fields of the v8 chart payload we consume.
// Quote arrays may contain nulls for halted sessions, hence the pointers.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyCandles fetches daily bars for the symbol over [from, to],
// ascending by timestamp with duplicates dropped.
func (c *Client) DailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]domain.Candle, error) {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(symbol+c.suffix))
	query := url.Values{
		"period1":  {strconv.FormatInt(from.Unix(), 10)},
		"period2":  {strconv.FormatInt(to.Unix(), 10)},
		"interval": {"1d"},
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("fetch candles for %s: %w: %w", symbol, ports.ErrContextCanceled, ctx.Err())
			case <-time.After(c.retryDelay):
			}
			c.logger.Warn(ctx, "Retrying candle fetch", map[string]interface{}{"symbol": symbol, "attempt": attempt})
		}

		candles, err := c.fetchOnce(ctx, symbol, endpoint, query)
		if err == nil {
			return candles, nil
		}
		lastErr = err

		// Permanent failures are not retried.
		if errors.Is(err, ports.ErrSymbolNotFound) || errors.Is(err, ports.ErrInvalidRequest) ||
			errors.Is(err, ports.ErrContextCanceled) || errors.Is(err, ports.ErrNoData) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, symbol, endpoint string, query url.Values) ([]domain.Candle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build candle request for %s: %w", symbol, err)
	}
	// Yahoo rejects requests without a browser-like agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; nseScreener/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("fetch candles for %s: %w: %w", symbol, ports.ErrContextCanceled, err)
		}
		return nil, fmt.Errorf("fetch candles for %s: %w: %w", symbol, ports.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("fetch candles for %s: %w", symbol, ports.ErrSymbolNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("fetch candles for %s: %w", symbol, ports.ErrRateLimited)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("fetch candles for %s: status %d: %w", symbol, resp.StatusCode, ports.ErrProviderUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch candles for %s: status %d: %w", symbol, resp.StatusCode, ports.ErrInvalidRequest)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read candle response for %s: %w", symbol, err)
	}

	var payload chartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse candle response for %s: %w", symbol, err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("fetch candles for %s: %s: %w", symbol, payload.Chart.Error.Description, ports.ErrSymbolNotFound)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("fetch candles for %s: %w", symbol, ports.ErrNoData)
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	candles := make([]domain.Candle, 0, len(result.Timestamp))
	var lastTS int64
	for i, ts := range result.Timestamp {
		if ts <= lastTS && len(candles) > 0 {
			continue // drop duplicates and out-of-order bars
		}
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) || i >= len(quote.Volume) {
			break
		}
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue // halted or partial session
		}
		var volume int64
		if quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}
		candles = append(candles, domain.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      *quote.Open[i],
			High:      *quote.High[i],
			Low:       *quote.Low[i],
			Close:     *quote.Close[i],
			Volume:    volume,
		})
		lastTS = ts
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("fetch candles for %s: %w", symbol, ports.ErrNoData)
	}
	c.logger.Debug(ctx, "Fetched candles", map[string]interface{}{"symbol": symbol, "count": len(candles)})
	return candles, nil
}

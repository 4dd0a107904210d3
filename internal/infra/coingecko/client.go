// Package coingecko is the Remote Data Client for the CoinGecko v3 API.
package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coin_dash/internal/domain"
	"coin_dash/internal/infra"

	"github.com/shopspring/decimal"
)

// Credential placement, see Client.request.
const (
	HeaderAPIKey = "x-cg-demo-api-key"
	QueryAPIKey  = "x_cg_demo_api_key"
)

var _ domain.MarketDataClient = (*Client)(nil)

// Client is the CoinGecko REST client (Boundary Layer).
// Every error it returns is a *domain.APIError.
type Client struct {
	baseURL    string
	apiKey     string
	mode       string
	userAgent  string
	httpClient *http.Client
	metrics    *infra.Metrics
	logger     *slog.Logger
}

// NewClient creates a client for the endpoint and credential mode in cfg.
func NewClient(cfg *infra.Config) *Client {
	c := NewClientWithConfig(cfg.BaseURL(), cfg.API.APIKey, cfg.API.Mode)
	c.httpClient.Timeout = cfg.Timeout()
	if cfg.API.UserAgent != "" {
		c.userAgent = cfg.API.UserAgent
	}
	return c
}

// NewClientWithConfig creates a client with an explicit base URL, key and mode.
func NewClientWithConfig(baseURL, apiKey, mode string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		mode:      mode,
		userAgent: infra.DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		metrics: infra.GlobalMetrics,
		logger:  slog.Default().With("module", "coingecko_client"),
	}
}

// GetMarkets returns /coins/markets rows for params merged over the defaults.
// A non-nil but empty IDs filter matches nothing and makes no request.
func (c *Client) GetMarkets(ctx context.Context, params domain.MarketsParams) ([]domain.MarketCoin, error) {
	p := params.WithDefaults()
	if p.IDs != nil && len(p.IDs) == 0 {
		return []domain.MarketCoin{}, nil
	}

	q := url.Values{}
	q.Set("vs_currency", p.Currency)
	q.Set("order", string(p.Order))
	q.Set("per_page", strconv.Itoa(p.PerPage))
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("sparkline", strconv.FormatBool(p.Sparkline))
	q.Set("price_change_percentage", strings.Join(p.ChangeWindows, ","))
	if p.IDs != nil {
		q.Set("ids", strings.Join(p.IDs, ","))
	}

	coins := []domain.MarketCoin{}
	if err := c.request(ctx, "/coins/markets", q, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// GetCoinDetail returns /coins/{id} without the heavy sub-resources.
func (c *Client) GetCoinDetail(ctx context.Context, id string) (*domain.CoinDetail, error) {
	if id == "" {
		return nil, domain.NormalizeError(&domain.ValidationError{Field: "id", Err: domain.ErrMissingParam})
	}

	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")

	var detail domain.CoinDetail
	if err := c.request(ctx, "/coins/"+url.PathEscape(id), q, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

type marketChartResponse struct {
	Prices [][2]float64 `json:"prices"`
}

// GetHistory returns the price series of id over r. currency defaults to usd.
func (c *Client) GetHistory(ctx context.Context, id string, r domain.TimeRange, currency string) (*domain.PriceHistory, error) {
	if id == "" {
		return nil, domain.NormalizeError(&domain.ValidationError{Field: "id", Err: domain.ErrMissingParam})
	}
	if !r.Valid() {
		return nil, domain.NormalizeError(&domain.ValidationError{Field: "days", Err: errors.New("unsupported range " + strconv.Itoa(r.Days()))})
	}
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	q := url.Values{}
	q.Set("vs_currency", currency)
	q.Set("days", strconv.Itoa(r.Days()))

	var resp marketChartResponse
	if err := c.request(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", q, &resp); err != nil {
		return nil, err
	}
	if resp.Prices == nil {
		return nil, c.fail(&domain.ValidationError{Field: "prices", Err: domain.ErrNoChartData})
	}

	history := &domain.PriceHistory{
		CoinID: id,
		Range:  r,
		Points: make([]domain.PricePoint, 0, len(resp.Prices)),
	}
	for _, p := range resp.Prices {
		history.Points = append(history.Points, domain.PricePoint{
			Time:  time.UnixMilli(int64(p[0])),
			Price: decimal.NewFromFloat(p[1]),
		})
	}
	return history, nil
}

type searchResponse struct {
	Coins []domain.SearchCoin `json:"coins"`
}

// Search returns coins matching query, ranked by the provider.
// A blank query returns nothing without touching the network.
func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchCoin, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchCoin{}, nil
	}

	q := url.Values{}
	q.Set("query", query)

	var resp searchResponse
	if err := c.request(ctx, "/search", q, &resp); err != nil {
		return nil, err
	}
	if resp.Coins == nil {
		return []domain.SearchCoin{}, nil
	}
	return resp.Coins, nil
}

// request performs GET {base}{path}?{query} and decodes the JSON body into out.
// In development mode the key travels in a header to the local proxy; in
// production it is embedded as a query parameter.
func (c *Client) request(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	if c.apiKey != "" && c.mode == infra.ModeProduction {
		query.Set(QueryAPIKey, c.apiKey)
	}

	reqURL := c.baseURL + path
	if enc := query.Encode(); enc != "" {
		reqURL += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return c.fail(&domain.TransportError{Op: path, Err: err})
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" && c.mode == infra.ModeDevelopment {
		req.Header.Set(HeaderAPIKey, c.apiKey)
	}

	c.logger.Debug("Sending API request", slog.String("path", path), slog.String("mode", c.mode))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordRequest(time.Since(start))
	if err != nil {
		return c.fail(&domain.TransportError{Op: path, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(&domain.TransportError{Op: path, Status: resp.StatusCode, Err: errors.New(resp.Status)})
	}
	if err != nil {
		return c.fail(&domain.TransportError{Op: path, Err: err})
	}

	if err := json.Unmarshal(body, out); err != nil {
		return c.fail(&domain.ParseError{Op: path, Err: err})
	}
	return nil
}

// fail records and normalizes a typed failure.
func (c *Client) fail(err error) error {
	c.metrics.RecordError()
	c.logger.Warn("API request failed", slog.Any("error", err))
	return domain.NormalizeError(err)
}

package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"

	"github.com/APWalter/trade-journal/internal/apperr"
	"github.com/APWalter/trade-journal/internal/models"
	"github.com/APWalter/trade-journal/pkg/utils"
)

// DefaultSchwabBaseURL is the production Schwab Trader API base.
const DefaultSchwabBaseURL = "https://api.schwabapi.com/trader/v1"

// maxOrderResults caps a single order-history page. The engine re-syncs
// overlapping windows, so a truncated page is recovered on a later pass.
const maxOrderResults = 3000

// SchwabClient implements OrderFetcher against the Schwab Trader API.
type SchwabClient struct {
	baseURL    string
	httpClient *http.Client
	retry      utils.RetryConfig
	logger     zerolog.Logger
}

// SchwabConfig holds configuration for the Schwab client.
type SchwabConfig struct {
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewSchwabClient creates a new Schwab order-history client.
func NewSchwabClient(cfg SchwabConfig) *SchwabClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultSchwabBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	retry := utils.DefaultRetryConfig()
	retry.IsRetryable = isRetryable

	return &SchwabClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		retry:      retry,
		logger:     cfg.Logger,
	}
}

// isRetryable retries transport failures and upstream 5xx responses.
// Credential errors and other 4xx responses fail the attempt outright.
func isRetryable(err error) bool {
	if apperr.IsAuthError(err) {
		return false
	}
	var upstream *apperr.UpstreamError
	if apperr.As(err, &upstream) {
		return upstream.Status >= 500
	}
	return true
}

// orderQuery is the order-history query string.
type orderQuery struct {
	FromEnteredTime string `url:"fromEnteredTime"`
	ToEnteredTime   string `url:"toEnteredTime"`
	Status          string `url:"status"`
	MaxResults      int    `url:"maxResults"`
}

// FetchOrders fetches filled orders for an account and date window.
//
// A missing token is apperr.ErrTokenMissing; a 401 maps to
// apperr.ErrTokenExpired; any other non-2xx surfaces as an
// UpstreamError carrying status and body. Transport-level failures are
// retried with backoff before giving up.
func (c *SchwabClient) FetchOrders(ctx context.Context, token, accountID string, from, to time.Time) ([]models.Order, error) {
	if token == "" {
		return nil, apperr.ErrTokenMissing
	}

	params, err := query.Values(orderQuery{
		FromEnteredTime: from.UTC().Format(time.RFC3339),
		ToEnteredTime:   to.UTC().Format(time.RFC3339),
		Status:          string(models.OrderStatusFilled),
		MaxResults:      maxOrderResults,
	})
	if err != nil {
		return nil, apperr.Wrap(err, "building order query")
	}

	url := fmt.Sprintf("%s/accounts/%s/orders?%s", c.baseURL, accountID, params.Encode())

	start := time.Now()
	orders, err := utils.RetryWithResult(ctx, c.retry, func() ([]models.Order, error) {
		return c.fetchOnce(ctx, url, token)
	})
	c.logger.Debug().
		Str("account", accountID).
		Dur("duration", time.Since(start)).
		Int("orders", len(orders)).
		Err(err).
		Msg("Fetched order history")

	return orders, err
}

func (c *SchwabClient) fetchOnce(ctx context.Context, url, token string) ([]models.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(err, "calling broker API")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apperr.ErrTokenExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.NewUpstreamError(resp.StatusCode, string(body))
	}

	var orders []models.Order
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		return nil, apperr.Wrap(err, "decoding order history")
	}

	return orders, nil
}

// Package api is the HTTP client for the read-only NFT analytics API.
package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nftdash/pkg/format"
	"nftdash/pkg/models"
	"nftdash/pkg/observability"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	PathTimeBased        = "/time-based-data"
	PathTopBuyersSellers = "/top-buyers-sellers"
	PathMarketplace      = "/marketplace-comparison"
	PathTopResale        = "/top-resale-token"
	PathTokenTransaction = "/token-transaction"
	PathNFTDetails       = "/nft-details"
	PathTokenOwned       = "/token-owned"
)

// maxErrorBody caps how much of a failed response body ends up in a StatusError.
const maxErrorBody = 200

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, <= 0 disables limiting
	RateBurst int
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

// Client fetches analytics data. It is safe for concurrent use.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewClient creates a Client for the API rooted at opts.BaseURL.
func NewClient(opts Options) *Client {
	client := resty.New()
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	client.SetTimeout(opts.Timeout)
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetHeader("Accept", "application/json")

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http:    client,
		limiter: limiter,
		logger:  logger.Named("api"),
		metrics: opts.Metrics,
	}
}

// get performs a single GET and decodes a 2xx JSON body into out.
func (c *Client) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Endpoint: path, Err: err}
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	c.metrics.ObserveRequest(path, time.Since(start).Seconds())
	if err != nil {
		c.metrics.RequestFailed(path, "transport")
		c.logger.Warn("request failed", zap.String("endpoint", path), zap.Error(err))
		return &TransportError{Endpoint: path, Err: err}
	}

	if !resp.IsSuccess() {
		c.metrics.RequestFailed(path, "status")
		c.logger.Warn("non-success status",
			zap.String("endpoint", path),
			zap.Int("status", resp.StatusCode()))
		return &StatusError{
			Endpoint:   path,
			StatusCode: resp.StatusCode(),
			Body:       format.TruncateString(strings.TrimSpace(string(resp.Body())), maxErrorBody),
		}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		c.metrics.RequestFailed(path, "decode")
		c.logger.Warn("malformed response", zap.String("endpoint", path), zap.Error(err))
		return &TransportError{Endpoint: path, Err: fmt.Errorf("decode response: %w", err)}
	}

	c.logger.Debug("request ok",
		zap.String("endpoint", path),
		zap.Duration("latency", time.Since(start)))
	return nil
}

func intervalParam(interval models.Interval) map[string]string {
	return map[string]string{"interval": strconv.Itoa(int(interval))}
}

// FetchTimeBased fetches the aggregate summary for an interval.
func (c *Client) FetchTimeBased(ctx context.Context, interval models.Interval) (*models.TimeBasedResponse, error) {
	var out models.TimeBasedResponse
	if err := c.get(ctx, PathTimeBased, intervalParam(interval), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchTopBuyersSellers fetches the buyer and seller rankings.
func (c *Client) FetchTopBuyersSellers(ctx context.Context, interval models.Interval) (*models.BuyerSellerResponse, error) {
	var out models.BuyerSellerResponse
	if err := c.get(ctx, PathTopBuyersSellers, intervalParam(interval), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchMarketplaceComparison fetches per-marketplace aggregates.
func (c *Client) FetchMarketplaceComparison(ctx context.Context, interval models.Interval) (*models.MarketplaceResponse, error) {
	var out models.MarketplaceResponse
	if err := c.get(ctx, PathMarketplace, intervalParam(interval), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchTopResale fetches the most profitable resold tokens.
func (c *Client) FetchTopResale(ctx context.Context, interval models.Interval) (*models.ResaleResponse, error) {
	var out models.ResaleResponse
	if err := c.get(ctx, PathTopResale, intervalParam(interval), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchTokenTransactions fetches the sale history of a single token.
func (c *Client) FetchTokenTransactions(ctx context.Context, tokenID int, interval models.Interval) (*models.TokenTransactionResponse, error) {
	params := intervalParam(interval)
	params["token_id"] = strconv.Itoa(tokenID)
	var out models.TokenTransactionResponse
	if err := c.get(ctx, PathTokenTransaction, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchNFTDetails fetches image and rarity metadata for a token.
func (c *Client) FetchNFTDetails(ctx context.Context, tokenID string) (*models.NFTDetails, error) {
	var out models.NFTDetails
	if err := c.get(ctx, PathNFTDetails, map[string]string{"token_id": tokenID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchTokenOwned lists the token ids held by a wallet.
func (c *Client) FetchTokenOwned(ctx context.Context, address string) (*models.TokenOwnedResponse, error) {
	var out models.TokenOwnedResponse
	if err := c.get(ctx, PathTokenOwned, map[string]string{"address": address}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// probeTargets lists the endpoints and sample parameters used by Probe.
var probeTargets = []struct {
	path   string
	params map[string]string
}{
	{PathTimeBased, map[string]string{"interval": "0"}},
	{PathTopBuyersSellers, map[string]string{"interval": "0"}},
	{PathMarketplace, map[string]string{"interval": "0"}},
	{PathTopResale, map[string]string{"interval": "0"}},
	{PathTokenTransaction, map[string]string{"interval": "0", "token_id": "0"}},
	{PathNFTDetails, map[string]string{"token_id": "0"}},
}

// Probe calls every read endpoint once and reports latency and status.
func (c *Client) Probe(ctx context.Context) []models.EndpointResult {
	results := make([]models.EndpointResult, 0, len(probeTargets))
	for _, target := range probeTargets {
		results = append(results, c.probeOne(ctx, target.path, target.params))
	}
	return results
}

func (c *Client) probeOne(ctx context.Context, path string, params map[string]string) models.EndpointResult {
	start := time.Now()
	var body map[string]interface{}
	err := c.get(ctx, path, params, &body)
	res := models.EndpointResult{Path: path, Latency: time.Since(start)}

	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		res.Status = "error"
		res.HTTPStatus = statusErr.StatusCode
		res.Error = err.Error()
	case err != nil:
		res.Status = "error"
		res.Error = err.Error()
	default:
		res.HTTPStatus = 200
		res.Status = "ok"
		if data, ok := body["data"].([]interface{}); ok && len(data) == 0 {
			res.Status = "empty"
		}
	}
	return res
}

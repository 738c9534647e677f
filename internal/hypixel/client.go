package hypixel

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.hypixel.net"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryWait  = 1 * time.Second
	DefaultMaxWait    = 10 * time.Second
)

// Client fetches auction data from the Hypixel HTTP API.
type Client struct {
	http    *resty.Client
	baseURL string
	apiKey  string
	logger  *log.Logger
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key sent with every request. The active
// auction endpoints are public; the key only raises rate limits.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.http.SetRetryCount(n)
	}
}

// WithLogger sets the logger for request failures.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Hypixel API client. An empty baseURL uses the
// public endpoint.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := resty.New().
		SetTimeout(DefaultTimeout).
		SetRetryCount(DefaultMaxRetries).
		SetRetryWaitTime(DefaultRetryWait).
		SetRetryMaxWaitTime(DefaultMaxWait)

	c := &Client{
		http:    httpClient,
		baseURL: baseURL,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Metadata fetches page zero of the catalog and returns its pagination
// header without the page body.
func (c *Client) Metadata(ctx context.Context) (*PageMetadata, error) {
	page, err := c.FetchPage(ctx, 0)
	if err != nil {
		return nil, err
	}
	return &PageMetadata{
		TotalPages:    page.TotalPages,
		TotalAuctions: page.TotalAuctions,
	}, nil
}

// FetchPage retrieves one page of active auctions.
func (c *Client) FetchPage(ctx context.Context, page int) (*AuctionPage, error) {
	var result AuctionPage

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetResult(&result)
	if c.apiKey != "" {
		req.SetHeader("API-Key", c.apiKey)
	}

	resp, err := req.Get(c.baseURL + "/skyblock/auctions")
	if err != nil {
		return nil, fmt.Errorf("fetch auctions page %d: %w", page, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch auctions page %d: status %d", page, resp.StatusCode())
	}
	if !result.Success {
		return nil, fmt.Errorf("fetch auctions page %d: api reported failure: %s", page, result.Cause)
	}

	return &result, nil
}

// EndedAuctions retrieves auctions that ended within the last minute.
func (c *Client) EndedAuctions(ctx context.Context) ([]EndedAuction, error) {
	var result endedResponse

	req := c.http.R().
		SetContext(ctx).
		SetResult(&result)
	if c.apiKey != "" {
		req.SetHeader("API-Key", c.apiKey)
	}

	resp, err := req.Get(c.baseURL + "/v2/skyblock/auctions_ended")
	if err != nil {
		return nil, fmt.Errorf("fetch ended auctions: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch ended auctions: status %d", resp.StatusCode())
	}
	if !result.Success {
		return nil, fmt.Errorf("fetch ended auctions: api reported failure: %s", result.Cause)
	}

	return result.Auctions, nil
}

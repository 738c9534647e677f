package valuation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// Default configuration values.
const (
	DefaultTimeout         = 30 * time.Second
	DefaultCacheTTL        = 5 * time.Minute
	DefaultCacheMaxEntries = 100000
)

// Client evaluates items against an external valuation HTTP service,
// caching per-item results by payload hash.
type Client struct {
	http    *resty.Client
	baseURL string
	cache   *resultCache
	clock   func() time.Time
	logger  *log.Logger
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithCacheTTL sets how long a cached result stays valid.
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache.ttl = ttl
	}
}

// WithCacheMaxEntries sets the cache entry bound that triggers purging.
func WithCacheMaxEntries(n int) ClientOption {
	return func(c *Client) {
		c.cache.maxEntries = n
	}
}

// WithLogger sets the logger for request failures.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock overrides the time source. Used by tests to cross TTL
// boundaries deterministically.
func WithClock(clock func() time.Time) ClientOption {
	return func(c *Client) {
		c.clock = clock
	}
}

// NewClient creates a valuation client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		http:    resty.New().SetTimeout(DefaultTimeout),
		baseURL: baseURL,
		cache:   newResultCache(DefaultCacheTTL, DefaultCacheMaxEntries),
		clock:   time.Now,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Evaluator = (*Client)(nil)

// batchRequest is the wire shape of the batch evaluation call.
type batchRequest struct {
	Items  []string        `json:"items"`
	Prices json.RawMessage `json:"prices"`
}

// batchResponse is the wire shape of the batch evaluation reply.
// Results are positional: results[i] answers items[i].
type batchResponse struct {
	Results []Result `json:"results"`
}

// EvaluateBatch returns one outcome per item, in input order. Cached
// results are served without a service call; the misses go out in a
// single sub-batch. A failed sub-batch marks every miss as
// service-unavailable without touching the hits.
func (c *Client) EvaluateBatch(ctx context.Context, items []string, prices json.RawMessage) []Outcome {
	outcomes := make([]Outcome, len(items))
	now := c.clock()

	var (
		missItems []string
		missIdx   []int
	)
	for i, item := range items {
		if result, ok := c.cache.get(cacheKey(item), now); ok {
			r := result
			outcomes[i] = Outcome{Result: &r, FromCache: true}
			continue
		}
		missItems = append(missItems, item)
		missIdx = append(missIdx, i)
	}

	if len(missItems) == 0 {
		return outcomes
	}

	results, err := c.evaluateRemote(ctx, missItems, prices)
	if err != nil {
		c.logger.Printf("valuation: batch of %d items failed: %v", len(missItems), err)
		for _, i := range missIdx {
			outcomes[i] = Outcome{Err: fmt.Errorf("%w: %v", ErrServiceUnavailable, err)}
		}
		return outcomes
	}

	now = c.clock()
	for pos, i := range missIdx {
		r := results[pos]
		outcomes[i] = Outcome{Result: &r}
		if r.Success {
			c.cache.put(cacheKey(missItems[pos]), r, now)
		}
	}
	return outcomes
}

// evaluateRemote performs the single batch call for cache misses.
func (c *Client) evaluateRemote(ctx context.Context, items []string, prices json.RawMessage) ([]Result, error) {
	if len(prices) == 0 {
		prices = json.RawMessage("{}")
	}

	var result batchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(batchRequest{Items: items, Prices: prices}).
		SetResult(&result).
		Post(c.baseURL + "/evaluate-batch")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("status %d", resp.StatusCode())
	}
	if len(result.Results) != len(items) {
		return nil, fmt.Errorf("got %d results for %d items", len(result.Results), len(items))
	}
	return result.Results, nil
}

// CacheSize returns the current number of cached results.
func (c *Client) CacheSize() int {
	return c.cache.len()
}

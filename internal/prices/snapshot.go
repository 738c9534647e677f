package prices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

// ErrSourceUnavailable is returned by Refresh when every feed fetch
// failed and no table could be updated.
var ErrSourceUnavailable = errors.New("prices: all feed sources unavailable")

// Default feed endpoints.
const (
	DefaultPricesURL     = "https://raw.githubusercontent.com/SkyHelperBot/Prices/main/prices.json"
	DefaultLowestBINURL  = "https://moulberry.codes/lowestbin.json"
	DefaultDailySalesURL = "https://moulberry.codes/auction_averages/3day.json"

	DefaultFeedTimeout = 30 * time.Second
)

// Cache file names, one per table.
const (
	pricesFile     = "prices.json"
	lowestBINFile  = "lowestbin.json"
	dailySalesFile = "dailysales.json"
)

// FeedURLs names the three market data documents.
type FeedURLs struct {
	Prices     string
	LowestBIN  string
	DailySales string
}

// DefaultFeedURLs returns the public feed endpoints.
func DefaultFeedURLs() FeedURLs {
	return FeedURLs{
		Prices:     DefaultPricesURL,
		LowestBIN:  DefaultLowestBINURL,
		DailySales: DefaultDailySalesURL,
	}
}

// Tables is one immutable generation of market data. A new generation
// is built on every refresh; readers never see partial updates.
type Tables struct {
	// Prices is the valuation reference document, forwarded opaquely to
	// the valuation service.
	Prices json.RawMessage
	// LowestBIN maps item id to the lowest competing BIN price.
	LowestBIN map[string]float64
	// DailySales maps item id to recent average daily sale volume.
	DailySales map[string]float64
}

func emptyTables() *Tables {
	return &Tables{
		Prices:     json.RawMessage("{}"),
		LowestBIN:  map[string]float64{},
		DailySales: map[string]float64{},
	}
}

// Snapshot holds the current market data generation behind an atomic
// pointer. Refresh builds a new generation; Current is lock-free.
type Snapshot struct {
	current  atomic.Pointer[Tables]
	http     *resty.Client
	urls     FeedURLs
	cacheDir string
	logger   *log.Logger
}

// Options configures NewSnapshot.
type Options struct {
	URLs     FeedURLs      // zero value uses the public endpoints
	CacheDir string        // local cache directory, "" disables caching
	Timeout  time.Duration // per-feed timeout, 0 uses the default
	Logger   *log.Logger
}

// NewSnapshot creates a snapshot starting from empty tables.
func NewSnapshot(opts Options) *Snapshot {
	urls := opts.URLs
	if urls.Prices == "" {
		urls.Prices = DefaultPricesURL
	}
	if urls.LowestBIN == "" {
		urls.LowestBIN = DefaultLowestBINURL
	}
	if urls.DailySales == "" {
		urls.DailySales = DefaultDailySalesURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultFeedTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Snapshot{
		http:     resty.New().SetTimeout(timeout),
		urls:     urls,
		cacheDir: opts.CacheDir,
		logger:   logger,
	}
	s.current.Store(emptyTables())
	return s
}

// Current returns the latest tables. Never nil.
func (s *Snapshot) Current() *Tables {
	return s.current.Load()
}

// Refresh fetches the three feeds concurrently and swaps in a new
// generation. A failed feed keeps that table's previous data; the swap
// happens even on partial success. Returns ErrSourceUnavailable only
// when every fetch failed.
func (s *Snapshot) Refresh(ctx context.Context) error {
	old := s.current.Load()
	next := &Tables{
		Prices:     old.Prices,
		LowestBIN:  old.LowestBIN,
		DailySales: old.DailySales,
	}

	var pricesOK, binOK, salesOK bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := s.fetch(gctx, s.urls.Prices)
		if err != nil {
			s.logger.Printf("prices: refresh prices feed: %v", err)
			return nil
		}
		next.Prices = raw
		pricesOK = true
		return nil
	})
	g.Go(func() error {
		var table map[string]float64
		_, err := s.fetchInto(gctx, s.urls.LowestBIN, &table)
		if err != nil {
			s.logger.Printf("prices: refresh lowest bin feed: %v", err)
			return nil
		}
		next.LowestBIN = table
		binOK = true
		return nil
	})
	g.Go(func() error {
		var table map[string]float64
		_, err := s.fetchInto(gctx, s.urls.DailySales, &table)
		if err != nil {
			s.logger.Printf("prices: refresh daily sales feed: %v", err)
			return nil
		}
		next.DailySales = table
		salesOK = true
		return nil
	})
	_ = g.Wait()

	if !pricesOK && !binOK && !salesOK {
		return ErrSourceUnavailable
	}

	s.current.Store(next)
	s.writeCache(next, pricesOK, binOK, salesOK)
	return nil
}

// LoadCached populates tables from the local cache directory. Missing
// or unreadable files leave the corresponding table untouched; serving
// stale data beats serving nothing on cold start.
func (s *Snapshot) LoadCached() error {
	if s.cacheDir == "" {
		return nil
	}

	old := s.current.Load()
	next := &Tables{
		Prices:     old.Prices,
		LowestBIN:  old.LowestBIN,
		DailySales: old.DailySales,
	}
	loaded := 0

	if data, err := os.ReadFile(filepath.Join(s.cacheDir, pricesFile)); err == nil && json.Valid(data) {
		next.Prices = data
		loaded++
	}
	if data, err := os.ReadFile(filepath.Join(s.cacheDir, lowestBINFile)); err == nil {
		var table map[string]float64
		if json.Unmarshal(data, &table) == nil {
			next.LowestBIN = table
			loaded++
		}
	}
	if data, err := os.ReadFile(filepath.Join(s.cacheDir, dailySalesFile)); err == nil {
		var table map[string]float64
		if json.Unmarshal(data, &table) == nil {
			next.DailySales = table
			loaded++
		}
	}

	if loaded > 0 {
		s.current.Store(next)
	}
	return nil
}

// fetch retrieves one feed document and validates it parses as JSON.
func (s *Snapshot) fetch(ctx context.Context, url string) (json.RawMessage, error) {
	resp, err := s.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("status %d", resp.StatusCode())
	}
	body := resp.Body()
	if !json.Valid(body) {
		return nil, errors.New("response is not valid json")
	}
	return json.RawMessage(body), nil
}

// fetchInto retrieves one feed document and decodes it into v.
func (s *Snapshot) fetchInto(ctx context.Context, url string, v interface{}) (json.RawMessage, error) {
	raw, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return raw, nil
}

// writeCache persists the freshly fetched tables. Cache write failures
// are logged, never fatal.
func (s *Snapshot) writeCache(t *Tables, pricesOK, binOK, salesOK bool) {
	if s.cacheDir == "" {
		return
	}
	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		s.logger.Printf("prices: create cache dir: %v", err)
		return
	}

	if pricesOK {
		s.writeFile(pricesFile, t.Prices)
	}
	if binOK {
		s.marshalFile(lowestBINFile, t.LowestBIN)
	}
	if salesOK {
		s.marshalFile(dailySalesFile, t.DailySales)
	}
}

func (s *Snapshot) writeFile(name string, data []byte) {
	if err := os.WriteFile(filepath.Join(s.cacheDir, name), data, 0o644); err != nil {
		s.logger.Printf("prices: write cache %s: %v", name, err)
	}
}

func (s *Snapshot) marshalFile(name string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Printf("prices: marshal cache %s: %v", name, err)
		return
	}
	s.writeFile(name, data)
}

// Package velo is a thin client for the Velo market-data REST API. It covers
// the two calls this service needs: the futures product catalog and the
// historical rows query. Rows responses are CSV and are decoded lazily, one
// row per Next call, in vendor order.
package velo

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nctrnlman/api-crypto/internal/model"
)

const basicAuthUser = "api"

// FuturesProduct is one entry of the vendor's futures catalog.
type FuturesProduct struct {
	Exchange string `json:"exchange"`
	Coin     string `json:"coin"`
	Product  string `json:"product"`
}

// RowsParams selects a historical time-series slice.
type RowsParams struct {
	Type       string
	Columns    []string
	Exchanges  []string
	Products   []string
	Begin      int64 // epoch millis, inclusive
	End        int64 // epoch millis, exclusive
	Resolution int   // minutes per row
}

// MarketDataClient is the capability the normalizer consumes. *Client is the
// real implementation; tests substitute fakes.
type MarketDataClient interface {
	Futures(ctx context.Context) ([]FuturesProduct, error)
	Rows(ctx context.Context, params RowsParams) (RowIterator, error)
}

// RowIterator walks a rows response lazily, in vendor order. Check Err after
// Next reports false; a nil Err means clean end of stream.
type RowIterator interface {
	Next() (model.FuturesRow, bool)
	Err() error
	Close() error
}

type Config struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	RateLimiter    *rate.Limiter
}

func DefaultConfig(baseURL, apiKey string) *Config {
	return &Config{
		BaseURL:        baseURL,
		APIKey:         apiKey,
		RequestTimeout: 10 * time.Second,
		RateLimiter:    rate.NewLimiter(rate.Limit(2), 5),
	}
}

type Client struct {
	cfg        *Config
	httpClient *http.Client
}

func NewClient(cfg *Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// Futures fetches the full futures product catalog.
func (c *Client) Futures(ctx context.Context) ([]FuturesProduct, error) {
	resp, err := c.get(ctx, "futures", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var products []FuturesProduct
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode futures catalog: %w", err)
	}
	return products, nil
}

// Rows starts a historical rows query. The caller owns the iterator and must
// drain or Close it.
func (c *Client) Rows(ctx context.Context, params RowsParams) (RowIterator, error) {
	query := url.Values{}
	query.Set("type", params.Type)
	query.Set("columns", strings.Join(params.Columns, ","))
	query.Set("exchanges", strings.Join(params.Exchanges, ","))
	query.Set("products", strings.Join(params.Products, ","))
	query.Set("begin", strconv.FormatInt(params.Begin, 10))
	query.Set("end", strconv.FormatInt(params.End, 10))
	query.Set("resolution", strconv.Itoa(params.Resolution))

	resp, err := c.get(ctx, "rows", query)
	if err != nil {
		return nil, err
	}
	return newRowIterator(resp.Body), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	if err := c.cfg.RateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(basicAuthUser, c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("velo %s request: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("velo %s: unexpected status %d", path, resp.StatusCode)
	}
	return resp, nil
}

// csvRowIterator decodes a rows response one CSV record at a time. The
// header line determines column positions; columns this service does not
// know are skipped.
type csvRowIterator struct {
	body   io.ReadCloser
	reader *csv.Reader
	cols   map[string]int
	err    error
}

func newRowIterator(body io.ReadCloser) *csvRowIterator {
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1
	return &csvRowIterator{body: body, reader: reader}
}

// Next returns the next row. It reports false when the stream is exhausted or
// broken; check Err afterwards.
func (it *csvRowIterator) Next() (model.FuturesRow, bool) {
	if it.err != nil {
		return model.FuturesRow{}, false
	}
	if it.cols == nil {
		header, err := it.reader.Read()
		if err != nil {
			it.finish(err)
			return model.FuturesRow{}, false
		}
		it.cols = make(map[string]int, len(header))
		for i, name := range header {
			it.cols[strings.TrimSpace(name)] = i
		}
	}

	record, err := it.reader.Read()
	if err != nil {
		it.finish(err)
		return model.FuturesRow{}, false
	}

	row, err := it.decode(record)
	if err != nil {
		it.finish(err)
		return model.FuturesRow{}, false
	}
	return row, true
}

// Err returns the first failure hit while iterating, nil on clean EOF.
func (it *csvRowIterator) Err() error {
	return it.err
}

// Close releases the underlying response body. Safe to call more than once.
func (it *csvRowIterator) Close() error {
	if it.body == nil {
		return nil
	}
	err := it.body.Close()
	it.body = nil
	return err
}

func (it *csvRowIterator) finish(err error) {
	if err != nil && err != io.EOF {
		it.err = fmt.Errorf("read rows: %w", err)
	}
	it.Close()
}

func (it *csvRowIterator) decode(record []string) (model.FuturesRow, error) {
	var row model.FuturesRow

	if s, ok := it.field(record, "exchange"); ok {
		row.Exchange = s
	}
	if s, ok := it.field(record, "product"); ok {
		row.Product = s
	}
	if s, ok := it.field(record, "time"); ok && s != "" {
		t, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return row, fmt.Errorf("bad time %q: %w", s, err)
		}
		row.Time = t
	}
	if s, ok := it.field(record, "funding_rate"); ok && s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return row, fmt.Errorf("bad funding_rate %q: %w", s, err)
		}
		row.FundingRate = f
	}
	if s, ok := it.field(record, "total_trades"); ok && s != "" {
		// Some resolutions report aggregated counts as floats.
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return row, fmt.Errorf("bad total_trades %q: %w", s, err)
		}
		row.TotalTrades = int64(f)
	}

	return row, nil
}

func (it *csvRowIterator) field(record []string, name string) (string, bool) {
	idx, ok := it.cols[name]
	if !ok || idx >= len(record) {
		return "", false
	}
	return strings.TrimSpace(record[idx]), true
}

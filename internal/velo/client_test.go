package velo

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nctrnlman/api-crypto/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(DefaultConfig(server.URL, "test-key"))
}

func TestFutures(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/futures", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"exchange":"binance-futures","coin":"BTC","product":"BTCUSDT"},
			{"exchange":"bybit","coin":"ETH","product":"ETH-PERP"}
		]`)
	})

	products, err := client.Futures(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, FuturesProduct{Exchange: "binance-futures", Coin: "BTC", Product: "BTCUSDT"}, products[0])

	user, key, ok := parseBasicAuth(gotAuth)
	require.True(t, ok, "request must carry basic auth")
	assert.Equal(t, basicAuthUser, user)
	assert.Equal(t, "test-key", key)
}

func TestFuturesNon200(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.Futures(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestRowsDecodesCSVInOrder(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rows", r.URL.Path)
		gotQuery = r.URL.RawQuery
		io.WriteString(w, "exchange,product,time,funding_rate,total_trades\n"+
			"binance-futures,BTCUSDT,1700000000000,0.0001,523\n"+
			"bybit,BTCUSDT,1700000060000,-0.0002,7\n")
	})

	it, err := client.Rows(context.Background(), RowsParams{
		Type:       "futures",
		Columns:    []string{"funding_rate", "total_trades"},
		Exchanges:  []string{"binance-futures", "bybit"},
		Products:   []string{"BTCUSDT"},
		Begin:      1700000000000,
		End:        1700000120000,
		Resolution: 1,
	})
	require.NoError(t, err)
	defer it.Close()

	var rows []model.FuturesRow
	for {
		row, ok := it.Next()
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	require.NoError(t, it.Err())

	require.Len(t, rows, 2)
	assert.Equal(t, model.FuturesRow{
		Exchange: "binance-futures", Product: "BTCUSDT",
		Time: 1700000000000, FundingRate: 0.0001, TotalTrades: 523,
	}, rows[0])
	assert.Equal(t, model.FuturesRow{
		Exchange: "bybit", Product: "BTCUSDT",
		Time: 1700000060000, FundingRate: -0.0002, TotalTrades: 7,
	}, rows[1])

	assert.Contains(t, gotQuery, "type=futures")
	assert.Contains(t, gotQuery, "resolution=1")
	assert.Contains(t, gotQuery, "begin=1700000000000")
}

func TestRowsSkipsUnknownColumns(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "exchange,product,time,funding_rate,total_trades,open_interest\n"+
			"bybit,ETH-PERP,1700000000000,0.0005,11,123456.7\n")
	})

	it, err := client.Rows(context.Background(), RowsParams{Products: []string{"ETH-PERP"}})
	require.NoError(t, err)
	defer it.Close()

	row, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, int64(11), row.TotalTrades)

	_, ok = it.Next()
	assert.False(t, ok)
	assert.NoError(t, it.Err())
}

func TestRowsMalformedValueSurfacesError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "time,funding_rate,total_trades\n"+
			"1700000000000,0.0001,10\n"+
			"not-a-number,0.0002,20\n")
	})

	it, err := client.Rows(context.Background(), RowsParams{Products: []string{"BTCUSDT"}})
	require.NoError(t, err)
	defer it.Close()

	_, ok := it.Next()
	require.True(t, ok)

	_, ok = it.Next()
	assert.False(t, ok)
	assert.Error(t, it.Err())
}

func TestRowsEmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "time,funding_rate,total_trades\n")
	})

	it, err := client.Rows(context.Background(), RowsParams{Products: []string{"BTCUSDT"}})
	require.NoError(t, err)
	defer it.Close()

	_, ok := it.Next()
	assert.False(t, ok)
	assert.NoError(t, it.Err())
}

// parseBasicAuth decodes an Authorization header without needing a request.
func parseBasicAuth(header string) (user, pass string, ok bool) {
	req := &http.Request{Header: http.Header{"Authorization": []string{header}}}
	return req.BasicAuth()
}

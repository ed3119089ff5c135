package data

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedamin/halal-screener/internal/config"
)

func chartTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/GOOD.NS":
			fmt.Fprint(w, `{"chart":{"result":[{
				"meta":{"shortName":"Good Corp","regularMarketPrice":102.5},
				"timestamp":[1700000000,1700086400,1700172800],
				"indicators":{"quote":[{
					"open":[100,101,102],
					"high":[101,102,103],
					"low":[99,100,101],
					"close":[100.5,101.5,102.5],
					"volume":[1000,2000,3000]
				}]}
			}],"error":null}}`)
		case "/v8/finance/chart/MISSING.NS":
			fmt.Fprint(w, `{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
}

func testChartProvider(baseURL string) *ChartProvider {
	return NewChartProvider("yahoo", config.ProviderConfig{
		BaseURL:        baseURL,
		RequestTimeout: 2 * time.Second,
		RateLimitRPS:   100,
		RateLimitBurst: 10,
	})
}

func TestChartProvider_GetHistory(t *testing.T) {
	srv := chartTestServer(t)
	defer srv.Close()

	p := testChartProvider(srv.URL)
	bars, err := p.GetHistory(context.Background(), "GOOD.NS", "1y", "1d")
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, 100.5, bars[0].Close)
	assert.Equal(t, int64(3000), bars[2].Volume)
	assert.True(t, bars[1].Timestamp.After(bars[0].Timestamp))
}

func TestChartProvider_UnknownSymbolIsEmptyNotError(t *testing.T) {
	srv := chartTestServer(t)
	defer srv.Close()

	p := testChartProvider(srv.URL)
	bars, err := p.GetHistory(context.Background(), "MISSING.NS", "1y", "1d")
	require.NoError(t, err)
	assert.Empty(t, bars)

	price, err := p.GetQuote(context.Background(), "MISSING.NS")
	require.NoError(t, err)
	assert.Zero(t, price)
}

func TestChartProvider_ServerErrorIsProviderFailure(t *testing.T) {
	srv := chartTestServer(t)
	defer srv.Close()

	p := testChartProvider(srv.URL)
	_, err := p.GetHistory(context.Background(), "BROKEN.NS", "1y", "1d")
	require.Error(t, err)
}

func TestChartProvider_BatchPartialResults(t *testing.T) {
	srv := chartTestServer(t)
	defer srv.Close()

	p := testChartProvider(srv.URL)
	prices, err := p.GetBatchPrices(context.Background(), []string{"GOOD.NS", "BROKEN.NS", "MISSING.NS"})
	require.NoError(t, err)

	// Only the healthy symbol comes back; failures are omitted.
	assert.Equal(t, map[string]float64{"GOOD.NS": 102.5}, prices)
}

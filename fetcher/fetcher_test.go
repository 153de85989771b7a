package fetcher

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPayload = `[
  {"code": "USD", "name": "US DOLLAR", "buy": "26,090.00", "transfer": "26,120.00", "sell": "26,380.00"},
  {"code": "KWD", "name": "KUWAITI DINAR", "buy": "-", "transfer": "82,512.11", "sell": "85,815.73"},
  {"code": "", "name": "broken", "buy": 1},
  {"code": "VND", "name": "Vietnam Dong", "buy": 1, "transfer": 1, "sell": 1}
]`

func relayServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("default path", func(t *testing.T) {
		t.Parallel()

		f, err := New("http://relay.local:8080")
		require.NoError(t, err)

		assert.Equal(t, "http://relay.local:8080/v1/relay/vcb", f.Endpoint())
	})

	t.Run("custom path", func(t *testing.T) {
		t.Parallel()

		f, err := New("http://relay.local/api/", WithPath("rates.json"))
		require.NoError(t, err)

		assert.Equal(t, "http://relay.local/api/rates.json", f.Endpoint())
	})

	t.Run("invalid base URL", func(t *testing.T) {
		t.Parallel()

		for _, baseURL := range []string{"", "relay.local", "://nope"} {
			_, err := New(baseURL)

			assert.ErrorIs(t, err, errInvalidBaseURL, baseURL)
		}
	})
}

func TestFetcher_FetchRates(t *testing.T) {
	t.Parallel()

	t.Run("normalized rates in order", func(t *testing.T) {
		t.Parallel()

		srv := relayServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, DefaultRelayPath, r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(testPayload))
		})

		f, err := New(srv.URL)
		require.NoError(t, err)

		rates := f.FetchRates(context.Background())
		require.Len(t, rates, 3)

		usd := rates[0]

		assert.Equal(t, "USD", usd.Code)
		assert.Equal(t, "US DOLLAR", usd.Name)
		require.NotNil(t, usd.Buy)
		assert.Equal(t, 26090.0, *usd.Buy)

		kwd := rates[1]

		assert.Equal(t, "KWD", kwd.Code)
		assert.Nil(t, kwd.Buy)
		require.NotNil(t, kwd.Sell)
		assert.InDelta(t, 85815.73, *kwd.Sell, 1e-9)

		assert.Equal(t, "VND", rates[2].Code)
	})

	t.Run("retries failed requests", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		srv := relayServer(t, func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)

				return
			}

			_, _ = w.Write([]byte(testPayload))
		})

		f, err := New(
			srv.URL,
			WithRetryNum(2),
			WithRetryDuration(time.Millisecond),
		)
		require.NoError(t, err)

		rates := f.FetchRates(context.Background())

		assert.Len(t, rates, 3)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after retries", func(t *testing.T) {
		t.Parallel()

		var (
			calls  atomic.Int32
			logBuf bytes.Buffer
		)

		srv := relayServer(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)

			w.WriteHeader(http.StatusBadGateway)
		})

		f, err := New(
			srv.URL,
			WithRetryNum(1),
			WithRetryDuration(time.Millisecond),
			WithLogger(slog.New(slog.NewTextHandler(&logBuf, nil))),
		)
		require.NoError(t, err)

		rates := f.FetchRates(context.Background())

		assert.NotNil(t, rates)
		assert.Empty(t, rates)
		assert.Equal(t, int32(2), calls.Load())
		assert.Contains(t, logBuf.String(), "unable to fetch rates")
	})

	t.Run("invalid payload", func(t *testing.T) {
		t.Parallel()

		var logBuf bytes.Buffer

		srv := relayServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error": "maintenance"}`))
		})

		f, err := New(
			srv.URL,
			WithLogger(slog.New(slog.NewTextHandler(&logBuf, nil))),
		)
		require.NoError(t, err)

		rates := f.FetchRates(context.Background())

		assert.NotNil(t, rates)
		assert.Empty(t, rates)
		assert.Contains(t, logBuf.String(), "level=ERROR")
	})

	t.Run("unreachable relay", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		f, err := New(
			srv.URL,
			WithRetryNum(0),
			WithRetryDuration(time.Millisecond),
		)
		require.NoError(t, err)

		assert.Empty(t, f.FetchRates(context.Background()))
	})
}

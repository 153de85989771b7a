package vcb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/vcbrates/provider/currencies"
	"github.com/sig-0/vcbrates/storage/types"
)

func boardServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.WriteHeader(status)

		_, _ = w.Write([]byte(body))
	}))

	t.Cleanup(srv.Close)

	return srv
}

func TestProvider_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("board quotes", func(t *testing.T) {
		t.Parallel()

		var (
			srv = boardServer(t, http.StatusOK, testBoard)
			p   = NewProvider(NewClient(srv.URL, time.Second*5), DefaultInterval)
		)

		rates, err := p.Fetch(context.Background())
		require.NoError(t, err)

		// AUD and USD quote all three sides, KWD has no cash buying rate
		require.Len(t, rates, 8)

		expectedAsOf := time.Date(2026, time.October, 19, 0, 30, 0, 0, time.UTC)

		for _, rate := range rates {
			assert.Equal(t, currencies.VND, rate.Target)
			assert.Equal(t, VietcombankSource, rate.Source)
			assert.Equal(t, expectedAsOf, rate.AsOf)
			assert.False(t, rate.FetchedAt.IsZero())
		}

		first := rates[0]

		assert.Equal(t, currencies.AUD, first.Base)
		assert.Equal(t, types.RateTypeBUY, first.RateType)
		assert.InDelta(t, 16513.27, first.Rate, 1e-9)

		kwd := rates[3]

		assert.Equal(t, types.Currency("KWD"), kwd.Base)
		assert.Equal(t, types.RateTypeTRANSFER, kwd.RateType)
	})

	t.Run("missing board time", func(t *testing.T) {
		t.Parallel()

		var (
			srv = boardServer(t, http.StatusOK, testRowSet)
			p   = NewProvider(NewClient(srv.URL, time.Second*5), DefaultInterval)
		)

		rates, err := p.Fetch(context.Background())
		require.NoError(t, err)
		require.Len(t, rates, 6)

		for _, rate := range rates {
			assert.Equal(t, rate.FetchedAt, rate.AsOf)
		}
	})

	t.Run("skips the base currency", func(t *testing.T) {
		t.Parallel()

		board := `<ExrateList>
  <Exrate CurrencyCode="VND" CurrencyName="VIETNAM DONG" Buy="1" Transfer="1" Sell="1" />
</ExrateList>`

		var (
			srv = boardServer(t, http.StatusOK, board)
			p   = NewProvider(NewClient(srv.URL, time.Second*5), DefaultInterval)
		)

		_, err := p.Fetch(context.Background())

		assert.ErrorIs(t, err, errNoRates)
	})

	t.Run("no valid quotes", func(t *testing.T) {
		t.Parallel()

		board := `<ExrateList>
  <Exrate CurrencyCode="" CurrencyName="UNKNOWN" Buy="26,090.00" />
  <Exrate CurrencyCode="THB" CurrencyName="THAI BAHT" Buy="-" Transfer="-" Sell="-" />
</ExrateList>`

		var (
			srv = boardServer(t, http.StatusOK, board)
			p   = NewProvider(NewClient(srv.URL, time.Second*5), DefaultInterval)
		)

		_, err := p.Fetch(context.Background())

		assert.ErrorIs(t, err, errNoRates)
	})

	t.Run("upstream error", func(t *testing.T) {
		t.Parallel()

		var (
			srv = boardServer(t, http.StatusServiceUnavailable, "")
			p   = NewProvider(NewClient(srv.URL, time.Second*5), DefaultInterval)
		)

		_, err := p.Fetch(context.Background())

		assert.ErrorIs(t, err, ErrStatusCode)
	})
}

func TestProvider_Metadata(t *testing.T) {
	t.Parallel()

	p := NewProvider(NewClient(DefaultFeedURL, time.Second), time.Minute)

	assert.Equal(t, "Vietcombank", p.Name())
	assert.Equal(t, time.Minute, p.Interval())
}

func TestClient_FetchRecords(t *testing.T) {
	t.Parallel()

	t.Run("board order", func(t *testing.T) {
		t.Parallel()

		var (
			srv    = boardServer(t, http.StatusOK, testBoard)
			client = NewClient(srv.URL, time.Second*5)
		)

		records, err := client.FetchRecords(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 3)

		codes := make([]string, 0, len(records))
		for _, record := range records {
			codes = append(codes, record.Code.String())
		}

		assert.Equal(t, []string{"AUD", "KWD", "USD"}, codes)
	})

	t.Run("ctx canceled", func(t *testing.T) {
		t.Parallel()

		var (
			srv    = boardServer(t, http.StatusOK, testBoard)
			client = NewClient(srv.URL, time.Second*5)
		)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.FetchRecords(ctx)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/vcbrates/fetcher"
	"github.com/sig-0/vcbrates/normalize"
)

func TestWriteTable(t *testing.T) {
	t.Parallel()

	var (
		buy  = 26090.0
		sell = 26380.5
		buf  bytes.Buffer
	)

	require.NoError(t, writeTable(&buf, []normalize.Rate{
		{
			Code: "USD",
			Name: "US DOLLAR",
			Buy:  &buy,
			Sell: &sell,
		},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	fields := strings.Fields(lines[1])

	assert.Equal(t, []string{"USD", "US", "DOLLAR", "26090,00", "-", "26380,50"}, fields)
}

func TestFetchCfg_Exec(t *testing.T) {
	t.Parallel()

	t.Run("missing relay", func(t *testing.T) {
		t.Parallel()

		cfg := &fetchCfg{}

		assert.ErrorIs(
			t,
			cfg.exec(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}),
			errMissingRelay,
		)
	})

	t.Run("relay table", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, fetcher.DefaultRelayPath, r.URL.Path)

			_, _ = w.Write([]byte(`[
				{"code": "EUR", "name": "EURO", "buy": "28.950,10", "transfer": null, "sell": "30.537,16"},
				{"code": "VND", "name": "Vietnam Dong", "buy": 1, "transfer": 1, "sell": 1}
			]`))
		}))
		t.Cleanup(srv.Close)

		var (
			out bytes.Buffer
			cfg = &fetchCfg{
				relayURL: srv.URL,
				path:     fetcher.DefaultRelayPath,
				timeout:  time.Second * 5,
			}
		)

		require.NoError(t, cfg.exec(context.Background(), &out, &bytes.Buffer{}))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)

		assert.Equal(t, []string{"EUR", "EURO", "28950,10", "-", "30537,16"}, strings.Fields(lines[1]))
		assert.Equal(t, []string{"VND", "Vietnam", "Dong", "1,00", "1,00", "1,00"}, strings.Fields(lines[2]))
	})

	t.Run("unreachable relay prints the header only", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		var (
			out bytes.Buffer
			cfg = &fetchCfg{
				relayURL: srv.URL,
				path:     fetcher.DefaultRelayPath,
				timeout:  time.Second,
			}
		)

		require.NoError(t, cfg.exec(context.Background(), &out, &bytes.Buffer{}))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		assert.Len(t, lines, 1)
	})
}

package sql

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/vcbrates/storage/types"
)

type fakeBatchResults struct {
	execErr error
	execs   int
	closed  bool
}

func (f *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	f.execs++

	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func (f *fakeBatchResults) Query() (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (f *fakeBatchResults) QueryRow() pgx.Row {
	return nil
}

func (f *fakeBatchResults) Close() error {
	f.closed = true

	return nil
}

type fakeDB struct {
	results *fakeBatchResults
	batch   *pgx.Batch
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (f *fakeDB) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batch = b

	return f.results
}

func TestStorage_SaveExchangeRates(t *testing.T) {
	t.Parallel()

	asOf := time.Date(2026, time.October, 19, 0, 30, 0, 0, time.UTC)

	rates := []*types.ExchangeRate{
		{
			AsOf:     asOf,
			Base:     types.CurrencyUSD,
			Target:   types.CurrencyVND,
			RateType: types.RateTypeBUY,
			Source:   types.SourceVietcombank,
			Rate:     26090,
		},
		nil,
		{
			AsOf:     asOf,
			Base:     types.CurrencyUSD,
			Target:   types.CurrencyVND,
			RateType: types.RateTypeSELL,
			Source:   types.SourceVietcombank,
			Rate:     26380,
		},
	}

	t.Run("queues one upsert per rate", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{results: &fakeBatchResults{}}

		require.NoError(t, NewStorage(db).SaveExchangeRates(context.Background(), rates))

		require.NotNil(t, db.batch)
		require.Equal(t, 2, db.batch.Len())

		queued := db.batch.QueuedQueries[1]

		assert.Equal(t, saveExchangeRateSQL, queued.SQL)
		assert.Equal(t, "SELL", queued.Arguments[3])

		assert.Equal(t, 2, db.results.execs)
		assert.True(t, db.results.closed)
	})

	t.Run("empty batch", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{results: &fakeBatchResults{}}

		require.NoError(t, NewStorage(db).SaveExchangeRates(context.Background(), nil))

		assert.Nil(t, db.batch)
	})

	t.Run("exec error", func(t *testing.T) {
		t.Parallel()

		var (
			execErr = errors.New("constraint violated")
			db      = &fakeDB{results: &fakeBatchResults{execErr: execErr}}
		)

		err := NewStorage(db).SaveExchangeRates(context.Background(), rates)

		assert.ErrorIs(t, err, execErr)
		assert.Equal(t, 1, db.results.execs)
		assert.True(t, db.results.closed)
	})
}

func TestNumericConversion(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name  string
		value float64
		int   int64
	}{
		{"whole", 26090, 260900000},
		{"two decimals", 16513.27, 165132700},
		{"rounded to 4dp", 1.23456, 12346},
		{"zero", 0, 0},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			n := floatToNumeric(testCase.value)

			assert.True(t, n.Valid)
			assert.EqualValues(t, -4, n.Exp)
			assert.Equal(t, testCase.int, n.Int.Int64())

			assert.InDelta(t, testCase.value, numericToFloat(n), 1e-4)
		})
	}

	t.Run("positive exponent", func(t *testing.T) {
		t.Parallel()

		n := pgtype.Numeric{Int: big.NewInt(26), Exp: 3, Valid: true}

		assert.Equal(t, 26000.0, numericToFloat(n))
	})
}

func TestParseExchangeRate(t *testing.T) {
	t.Parallel()

	ict := time.FixedZone("ICT", 7*60*60)

	row := rateRow{
		AsOf:      pgtype.Timestamptz{Time: time.Date(2026, time.October, 19, 7, 30, 0, 0, ict), Valid: true},
		FetchedAt: pgtype.Timestamptz{},
		Rate:      floatToNumeric(26120),
		Base:      "USD",
		Target:    "VND",
		RateType:  "TRANSFER",
		Source:    "Vietcombank",
	}

	rate := parseExchangeRate(row)
	require.NotNil(t, rate)

	assert.Equal(t, types.RateTypeTRANSFER, rate.RateType)
	assert.Equal(t, 26120.0, rate.Rate)
	assert.Equal(t, time.Date(2026, time.October, 19, 0, 30, 0, 0, time.UTC), rate.AsOf)
	assert.True(t, rate.FetchedAt.IsZero())

	row.Rate = pgtype.Numeric{}

	assert.Nil(t, parseExchangeRate(row))
}

func TestOptionalText(t *testing.T) {
	t.Parallel()

	assert.Nil(t, optionalText[types.Currency](nil))

	target := types.CurrencyVND

	got := optionalText(&target)
	require.NotNil(t, got)
	assert.Equal(t, "VND", *got)
}

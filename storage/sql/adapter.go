package sql

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sig-0/vcbrates/storage"
	"github.com/sig-0/vcbrates/storage/types"
)

// DB is the pgx surface used by the storage.
// It is satisfied by *pgxpool.Pool and *pgx.Conn
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Storage struct {
	db DB
}

func NewStorage(db DB) *Storage {
	return &Storage{
		db: db,
	}
}

// rateRow is a single rate as-of result row
type rateRow struct {
	AsOf      pgtype.Timestamptz `db:"as_of"`
	FetchedAt pgtype.Timestamptz `db:"fetched_at"`
	Rate      pgtype.Numeric     `db:"rate"`
	Base      string             `db:"base"`
	Target    string             `db:"target"`
	RateType  string             `db:"rate_type"`
	Source    string             `db:"source"`
	Total     int64              `db:"total"`
}

func (s *Storage) SaveExchangeRates(
	ctx context.Context,
	rates []*types.ExchangeRate,
) error {
	batch := &pgx.Batch{}

	for _, rate := range rates {
		if rate == nil {
			continue
		}

		batch.Queue(
			saveExchangeRateSQL,
			rate.Base.String(),
			rate.Target.String(),
			floatToNumeric(rate.Rate),
			rate.RateType.String(),
			rate.Source.String(),
			timeToTimestampz(rate.AsOf),
			timeToTimestampz(rate.FetchedAt),
		)
	}

	if batch.Len() == 0 {
		return nil
	}

	results := s.db.SendBatch(ctx, batch)

	for range batch.Len() {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()

			return fmt.Errorf("unable to save exchange rate: %w", err)
		}
	}

	if err := results.Close(); err != nil {
		return fmt.Errorf("unable to save exchange rates: %w", err)
	}

	return nil
}

// RateAsOf fetches the latest rate per matching series.
// An offset past the last series yields an empty page with a zero total
func (s *Storage) RateAsOf(
	ctx context.Context,
	query *types.RateQuery,
	t time.Time,
) (*types.Page[*types.ExchangeRate], error) {
	rows, err := s.db.Query(
		ctx,
		rateAsOfSQL,
		query.Base.String(),
		optionalText(query.Target),
		optionalText(query.Source),
		optionalText(query.RateType),
		timeToTimestampz(t),
		storage.ClampLimit(query.Limit),
		max(query.Offset, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch rates: %w", err)
	}

	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[rateRow])
	if err != nil {
		return nil, fmt.Errorf("unable to read rates: %w", err)
	}

	page := &types.Page[*types.ExchangeRate]{
		Results: make([]*types.ExchangeRate, 0, len(results)),
	}

	for _, row := range results {
		page.Total = row.Total

		if rate := parseExchangeRate(row); rate != nil {
			page.Results = append(page.Results, rate)
		}
	}

	return page, nil
}

func (s *Storage) ListSources(ctx context.Context) ([]types.Source, error) {
	rows, err := s.db.Query(ctx, listSourcesSQL)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch sources: %w", err)
	}

	results, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("unable to read sources: %w", err)
	}

	out := make([]types.Source, 0, len(results))

	for _, src := range results {
		out = append(out, types.Source(src))
	}

	return out, nil
}

func (s *Storage) ListCurrencies(ctx context.Context) ([]types.Currency, error) {
	rows, err := s.db.Query(ctx, listCurrenciesSQL)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch currencies: %w", err)
	}

	results, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("unable to read currencies: %w", err)
	}

	out := make([]types.Currency, 0, len(results))

	for _, code := range results {
		out = append(out, types.Currency(code))
	}

	return out, nil
}

// parseExchangeRate converts the result row to the common Go type
func parseExchangeRate(row rateRow) *types.ExchangeRate {
	if !row.Rate.Valid || row.Rate.Int == nil {
		return nil
	}

	return &types.ExchangeRate{
		Base:      types.Currency(row.Base),
		Target:    types.Currency(row.Target),
		Rate:      numericToFloat(row.Rate),
		RateType:  types.RateType(row.RateType),
		Source:    types.Source(row.Source),
		AsOf:      timestampzToTime(row.AsOf),
		FetchedAt: timestampzToTime(row.FetchedAt),
	}
}

// optionalText converts an optional filter to a nullable query argument
func optionalText[T ~string](v *T) *string {
	if v == nil {
		return nil
	}

	s := string(*v)

	return &s
}

// floatToNumeric converts the float value to a 4dp postgres numeric
func floatToNumeric(value float64) pgtype.Numeric {
	return pgtype.Numeric{
		Int:   big.NewInt(int64(math.Round(value * 1e4))),
		Exp:   -4,
		Valid: true,
	}
}

// numericToFloat converts the postgres value to float
func numericToFloat(value pgtype.Numeric) float64 {
	f, _ := new(big.Rat).SetInt(value.Int).Float64()

	switch {
	case value.Exp > 0:
		f *= math.Pow10(int(value.Exp))
	case value.Exp < 0:
		f /= math.Pow10(int(-value.Exp))
	}

	return f
}

func timeToTimestampz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{
		Time:  t.UTC(),
		Valid: true,
	}
}

func timestampzToTime(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}

	return ts.Time.UTC()
}

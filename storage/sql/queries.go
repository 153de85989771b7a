package sql

const saveExchangeRateSQL = `
INSERT INTO exchange_rates (base, target, rate, rate_type, source, as_of, fetched_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT ON CONSTRAINT exchange_rates_series_as_of_key
DO UPDATE SET rate = EXCLUDED.rate, fetched_at = EXCLUDED.fetched_at`

// rateAsOfSQL picks the latest point per series at the cutoff,
// then pages over the series
const rateAsOfSQL = `
SELECT base, target, rate, rate_type, source, as_of, fetched_at, COUNT(*) OVER () AS total
FROM (
    SELECT DISTINCT ON (target, source, rate_type)
        base, target, rate, rate_type, source, as_of, fetched_at
    FROM exchange_rates
    WHERE base = $1
      AND ($2::TEXT IS NULL OR target = $2)
      AND ($3::TEXT IS NULL OR source = $3)
      AND ($4::TEXT IS NULL OR rate_type = $4)
      AND as_of <= $5
    ORDER BY target, source, rate_type, as_of DESC
) latest
ORDER BY target, source, rate_type
LIMIT $6 OFFSET $7`

const listSourcesSQL = `
SELECT DISTINCT source
FROM exchange_rates
ORDER BY source`

const listCurrenciesSQL = `
SELECT base FROM exchange_rates
UNION
SELECT target FROM exchange_rates
ORDER BY 1`

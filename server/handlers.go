package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sig-0/vcbrates/normalize"
	"github.com/sig-0/vcbrates/storage"
	"github.com/sig-0/vcbrates/storage/types"
)

var (
	errUnableToFetchRates      = errors.New("unable to fetch rates")
	errUnableToFetchCurrencies = errors.New("unable to fetch currencies")
	errUnableToFetchSources    = errors.New("unable to fetch sources")
	errUpstreamUnavailable     = errors.New("unable to fetch rates from upstream")

	errInvalidAsOf     = errors.New("invalid as_of (must be RFC3339)")
	errInvalidLimit    = errors.New("invalid limit")
	errInvalidOffset   = errors.New("invalid offset")
	errInvalidType     = errors.New("invalid type (must be BUY, TRANSFER or SELL)")
	errInvalidCurrency = errors.New("invalid currency (must be 3 letters A-Z)")
)

// baseRecord is the synthetic home currency row appended to the relay payload
var baseRecord = normalize.RawRecord{
	Code:     normalize.Text("VND"),
	Name:     normalize.Text("Vietnam Dong"),
	Buy:      normalize.Number(1),
	Transfer: normalize.Number(1),
	Sell:     normalize.Number(1),
}

// Relay serves the bank rate board as raw JSON records, values untouched
func (s *Server) Relay(w http.ResponseWriter, r *http.Request) {
	records, err := s.relay.FetchRecords(r.Context())
	if err != nil {
		s.logger.Error(
			"unable to relay rate board",
			"err", err,
		)

		writeError(w, http.StatusBadGateway, errUpstreamUnavailable)

		return
	}

	out := make([]normalize.RawRecord, 0, len(records)+1)
	out = append(out, records...)
	out = append(out, baseRecord)

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) RatesForPair(w http.ResponseWriter, r *http.Request) {
	target, err := parseCurrencySymbol(chi.URLParam(r, "target"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	s.rates(w, r, &target)
}

func (s *Server) RatesForBase(w http.ResponseWriter, r *http.Request) {
	s.rates(w, r, nil)
}

// rates serves the latest rates for the base currency, optionally for a single target
func (s *Server) rates(w http.ResponseWriter, r *http.Request, target *types.Currency) {
	var (
		query = r.URL.Query()

		asOfParam   = query.Get("as_of")
		limitParam  = query.Get("limit")
		offsetParam = query.Get("offset")

		sourceParam = query.Get("source")
		typeParam   = query.Get("type")
	)

	// Parse the base currency
	base, err := parseCurrencySymbol(chi.URLParam(r, "base"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the effective date (defaults to now)
	asOf, err := parseAsOf(asOfParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the pagination settings
	limit, offset, err := parseLimitOffset(limitParam, offsetParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the source and rate type (optional)
	source, rateType, err := parseSourceAndType(sourceParam, typeParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	q := &types.RateQuery{
		Base:     base,
		Target:   target,
		Source:   source,
		RateType: rateType,
		Limit:    limit,
		Offset:   offset,
	}

	page, err := s.storage.RateAsOf(r.Context(), q, asOf)
	if err != nil {
		s.logger.Error(
			"unable to fetch rates",
			"base", base,
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) Sources(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListSources(r.Context())
	if err != nil {
		s.logger.Error(
			"unable to fetch sources",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchSources,
		)

		return
	}

	if items == nil {
		items = []types.Source{}
	}

	writeJSON(w, http.StatusOK, &SourcesResponse{
		Results: items,
	})
}

func (s *Server) Currencies(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListCurrencies(r.Context())
	if err != nil {
		s.logger.Error(
			"unable to fetch currencies",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchCurrencies,
		)

		return
	}

	if items == nil {
		items = []types.Currency{}
	}

	writeJSON(w, http.StatusOK, &CurrenciesResponse{
		Results: items,
	})
}

func parseAsOf(asOfRaw string) (time.Time, error) {
	v := strings.TrimSpace(asOfRaw)
	if v == "" {
		return time.Now().UTC(), nil // default is now
	}

	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, errInvalidAsOf
	}

	return t.UTC(), nil
}

func parseLimitOffset(limitRaw, offsetRaw string) (int32, int64, error) {
	var limit int32

	if v := strings.TrimSpace(limitRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return 0, 0, errInvalidLimit
		}

		limit = int32(n)
	}

	var offset int64

	if v := strings.TrimSpace(offsetRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, errInvalidOffset
		}

		offset = n
	}

	return storage.ClampLimit(limit), offset, nil
}

func parseSourceAndType(sourceRaw, typeRaw string) (*types.Source, *types.RateType, error) {
	var src *types.Source

	if v := strings.TrimSpace(sourceRaw); v != "" {
		s := types.Source(v)

		src = &s
	}

	var rt *types.RateType

	if v := strings.TrimSpace(typeRaw); v != "" {
		t := types.RateType(strings.ToUpper(v))
		if !t.Valid() {
			return nil, nil, errInvalidType
		}

		rt = &t
	}

	return src, rt, nil
}

func parseCurrencySymbol(v string) (types.Currency, error) {
	s := strings.ToUpper(strings.TrimSpace(v))
	if len(s) != 3 {
		return "", errInvalidCurrency
	}

	for i := range len(s) {
		if s[i] < 'A' || s[i] > 'Z' {
			return "", errInvalidCurrency
		}
	}

	return types.Currency(s), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, &ErrorResponse{
		Error: err.Error(),
	})
}

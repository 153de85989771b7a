package normalize

import (
	"io"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"
)

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Field lookup order for untyped records. The relay emits the lowercase
// names; the rest cover the bank's own attribute names
var (
	codeKeys     = []string{"code", "currency", "Currency", "CurrencyCode"}
	nameKeys     = []string{"name", "Name", "CurrencyName"}
	buyKeys      = []string{"buy", "Buy"}
	transferKeys = []string{"transfer", "Transfer"}
	sellKeys     = []string{"sell", "Sell"}
)

// RawRecord is a single rate record as received from the feed
type RawRecord struct {
	Code     Value `json:"code"`
	Name     Value `json:"name"`
	Buy      Value `json:"buy"`
	Transfer Value `json:"transfer"`
	Sell     Value `json:"sell"`
}

// Rate is a normalized rate record.
// Nil rate fields are absent, never zero
type Rate struct {
	Buy      *float64 `json:"buy"`
	Transfer *float64 `json:"transfer"`
	Sell     *float64 `json:"sell"`
	Code     string   `json:"code"`
	Name     string   `json:"name"`
}

// Valid reports whether the rate carries both identity fields
func (r Rate) Valid() bool {
	return r.Code != "" && r.Name != ""
}

// Record maps a raw record field by field. It never fails;
// callers filter out records without a code or name
func Record(raw RawRecord) Rate {
	return Rate{
		Code:     strings.TrimSpace(raw.Code.String()),
		Name:     strings.TrimSpace(raw.Name.String()),
		Buy:      parsePtr(raw.Buy),
		Transfer: parsePtr(raw.Transfer),
		Sell:     parsePtr(raw.Sell),
	}
}

// Records normalizes the raw records and drops the ones missing
// a code or name. Feed order is preserved
func Records(raws []RawRecord) []Rate {
	out := make([]Rate, 0, len(raws))

	for _, raw := range raws {
		if r := Record(raw); r.Valid() {
			out = append(out, r)
		}
	}

	return out
}

// Rates normalizes an untyped JSON payload. Anything other than a JSON array
// yields an empty result, and the anomaly is reported to the logger
func Rates(payload []byte, logger *slog.Logger) []Rate {
	if logger == nil {
		logger = noopLogger
	}

	if !gjson.ValidBytes(payload) {
		logger.Error(
			"rate payload is not valid JSON",
			"size", len(payload),
		)

		return []Rate{}
	}

	parsed := gjson.ParseBytes(payload)
	if !parsed.IsArray() {
		logger.Error(
			"rate payload is not an array",
			"type", parsed.Type.String(),
		)

		return []Rate{}
	}

	items := parsed.Array()
	raws := make([]RawRecord, 0, len(items))

	for _, item := range items {
		raws = append(raws, rawRecordFromJSON(item))
	}

	return Records(raws)
}

// rawRecordFromJSON reads a JSON node as a raw record.
// Non-object nodes produce an empty record, which is later filtered out
func rawRecordFromJSON(item gjson.Result) RawRecord {
	if !item.IsObject() {
		return RawRecord{}
	}

	return RawRecord{
		Code:     lookup(item, codeKeys),
		Name:     lookup(item, nameKeys),
		Buy:      lookup(item, buyKeys),
		Transfer: lookup(item, transferKeys),
		Sell:     lookup(item, sellKeys),
	}
}

// lookup returns the first present field out of keys
func lookup(item gjson.Result, keys []string) Value {
	for _, key := range keys {
		if field := item.Get(key); field.Exists() {
			return valueFromJSON(field)
		}
	}

	return Absent()
}

func parsePtr(v Value) *float64 {
	f, ok := ParseNumber(v)
	if !ok {
		return nil
	}

	return &f
}

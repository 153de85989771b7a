package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/sig-0/vcbrates/storage"
	"github.com/sig-0/vcbrates/storage/types"
)

// series identifies a single rate history
type series struct {
	base     types.Currency
	target   types.Currency
	source   types.Source
	rateType types.RateType
}

func seriesOf(r *types.ExchangeRate) series {
	return series{
		base:     r.Base,
		target:   r.Target,
		source:   r.Source,
		rateType: r.RateType,
	}
}

// matches reports whether the series satisfies the query filters
func (s series) matches(query *types.RateQuery) bool {
	if s.base != query.Base {
		return false
	}

	if query.Target != nil && s.target != *query.Target {
		return false
	}

	if query.Source != nil && s.source != *query.Source {
		return false
	}

	if query.RateType != nil && s.rateType != *query.RateType {
		return false
	}

	return true
}

// Storage keeps every rate history in memory,
// each series ordered by effective date
type Storage struct {
	history map[series][]types.ExchangeRate

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		history: make(map[series][]types.ExchangeRate),
	}
}

func (s *Storage) SaveExchangeRates(_ context.Context, rates []*types.ExchangeRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rates {
		if r == nil {
			continue
		}

		elem := *r
		elem.AsOf = elem.AsOf.UTC()
		elem.FetchedAt = elem.FetchedAt.UTC()

		var (
			key    = seriesOf(&elem)
			points = s.history[key]
		)

		i, found := slices.BinarySearchFunc(
			points,
			elem.AsOf,
			func(p types.ExchangeRate, t time.Time) int {
				return p.AsOf.Compare(t)
			},
		)

		if found {
			points[i] = elem // re-fetched board

			continue
		}

		s.history[key] = slices.Insert(points, i, elem)
	}

	return nil
}

func (s *Storage) RateAsOf(
	_ context.Context,
	query *types.RateQuery,
	asOf time.Time,
) (*types.Page[*types.ExchangeRate], error) {
	var (
		cutoff  = asOf.UTC()
		matched = make([]*types.ExchangeRate, 0)
	)

	s.mu.RLock()

	for key, points := range s.history {
		if !key.matches(query) {
			continue
		}

		// first point effective after the cutoff
		i := sort.Search(len(points), func(i int) bool {
			return points[i].AsOf.After(cutoff)
		})

		if i == 0 {
			continue
		}

		latest := points[i-1]
		matched = append(matched, &latest)
	}

	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *types.ExchangeRate) int {
		return cmp.Or(
			cmp.Compare(a.Target, b.Target),
			cmp.Compare(a.Source, b.Source),
			cmp.Compare(a.RateType, b.RateType),
		)
	})

	return paginate(matched, query.Offset, query.Limit), nil
}

// paginate slices out the requested page
func paginate(items []*types.ExchangeRate, offset int64, limit int32) *types.Page[*types.ExchangeRate] {
	total := int64(len(items))

	if offset < 0 || offset >= total {
		return &types.Page[*types.ExchangeRate]{
			Results: []*types.ExchangeRate{},
			Total:   total,
		}
	}

	end := min(offset+int64(storage.ClampLimit(limit)), total)

	return &types.Page[*types.ExchangeRate]{
		Results: items[offset:end],
		Total:   total,
	}
}

func (s *Storage) ListSources(_ context.Context) ([]types.Source, error) {
	seen := make(map[types.Source]struct{})

	s.mu.RLock()

	for key := range s.history {
		seen[key.source] = struct{}{}
	}

	s.mu.RUnlock()

	return slices.Sorted(maps.Keys(seen)), nil
}

func (s *Storage) ListCurrencies(_ context.Context) ([]types.Currency, error) {
	seen := make(map[types.Currency]struct{})

	s.mu.RLock()

	for key := range s.history {
		seen[key.base] = struct{}{}
		seen[key.target] = struct{}{}
	}

	s.mu.RUnlock()

	return slices.Sorted(maps.Keys(seen)), nil
}

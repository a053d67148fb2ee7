package reports

import (
	"github.com/shopspring/decimal"

	"clubledger/internal/core/types"
)

var hundred = decimal.NewFromInt(100)

// share is part/whole*100 rounded to two places, 0 when whole is 0.
func share(part, whole types.Money) types.Money {
	return types.Percent(part, whole).Round(2)
}

// change is (current-previous)/|previous|*100 rounded to two places,
// 0 when previous is 0.
func change(current, previous types.Money) types.Money {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous.Abs()).Mul(hundred).Round(2)
}

// marginPercent is (price-cost)/price*100 rounded to an integer, 0 when price is 0.
func marginPercent(cost, price types.Money) int64 {
	if price.IsZero() {
		return 0
	}
	return types.RoundPercent(price.Sub(cost).Div(price).Mul(hundred))
}

// series accumulates money per bucket key over a fixed, zero-filled key set.
type series struct {
	keys   []string
	values map[string]types.Money
}

func newSeries(keys []string) *series {
	values := make(map[string]types.Money, len(keys))
	for _, k := range keys {
		values[k] = decimal.Zero
	}
	return &series{keys: keys, values: values}
}

// add adds v to key. Keys outside the set are ignored.
func (s *series) add(key string, v types.Money) {
	if cur, ok := s.values[key]; ok {
		s.values[key] = cur.Add(v)
	}
}

func (s *series) get(key string) types.Money {
	return s.values[key]
}

// ordered sums money per key and remembers first-seen order, which is the
// tie-break order of every ranking.
type ordered[K comparable] struct {
	keys   []K
	values map[K]types.Money
}

func newOrdered[K comparable]() *ordered[K] {
	return &ordered[K]{values: make(map[K]types.Money)}
}

func (o *ordered[K]) add(k K, v types.Money) {
	cur, ok := o.values[k]
	if !ok {
		o.keys = append(o.keys, k)
		cur = decimal.Zero
	}
	o.values[k] = cur.Add(v)
}

func (o *ordered[K]) get(k K) types.Money {
	if v, ok := o.values[k]; ok {
		return v
	}
	return decimal.Zero
}

// max returns the key with the largest value; the first seen wins ties.
func (o *ordered[K]) max() (K, types.Money, bool) {
	var best K
	bestVal := decimal.Zero
	found := false
	for _, k := range o.keys {
		if v := o.values[k]; !found || v.GreaterThan(bestVal) {
			best, bestVal, found = k, v, true
		}
	}
	return best, bestVal, found
}

func (o *ordered[K]) total() types.Money {
	t := decimal.Zero
	for _, v := range o.values {
		t = t.Add(v)
	}
	return t
}

func sumSales(rows []SaleRow) types.Money {
	t := decimal.Zero
	for _, r := range rows {
		t = t.Add(r.Total)
	}
	return t
}

func sumExpenses(rows []ExpenseRow) types.Money {
	t := decimal.Zero
	for _, r := range rows {
		t = t.Add(r.Amount)
	}
	return t
}

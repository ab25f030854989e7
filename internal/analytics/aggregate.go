package analytics

import (
	"sort"
	"strings"

	"whodash/internal/dataset"
	apperrors "whodash/internal/errors"
)

// Aggregate is one grouped-mean result. Key holds the dimension
// values the group was built from, in the order the KeyFunc returned
// them.
type Aggregate struct {
	Key   []string `json:"key"`
	Mean  float64  `json:"mean"`
	Count int      `json:"count"`
}

// KeyFunc maps a record to its grouping dimensions. Returning nil
// excludes the record from the grouping entirely, the way a missing
// group label drops a row from a grouped mean.
type KeyFunc func(dataset.Record) []string

// keySep joins dimension values into map keys. It cannot occur in
// source data.
const keySep = "\x1f"

type accumulator struct {
	key   []string
	sum   float64
	count int
}

// MeanBy groups records by key and computes the arithmetic mean of
// Value per group. Records without a usable value join their group
// but contribute to neither numerator nor denominator; a group whose
// records all lack values is omitted, so no NaN means are emitted.
// Output order is first-encounter order of the group keys.
func MeanBy(records []dataset.Record, key KeyFunc) []Aggregate {
	groups := make(map[string]*accumulator)
	var order []string

	for _, rec := range records {
		dims := key(rec)
		if dims == nil {
			continue
		}
		ck := strings.Join(dims, keySep)
		acc, ok := groups[ck]
		if !ok {
			acc = &accumulator{key: dims}
			groups[ck] = acc
			order = append(order, ck)
		}
		if rec.HasValue() {
			acc.sum += rec.Value
			acc.count++
		}
	}

	results := make([]Aggregate, 0, len(order))
	for _, ck := range order {
		acc := groups[ck]
		if acc.count == 0 {
			continue
		}
		results = append(results, Aggregate{
			Key:   acc.key,
			Mean:  acc.sum / float64(acc.count),
			Count: acc.count,
		})
	}
	return results
}

// TopN returns the n aggregates with the largest means in descending
// order. Ties keep the input (first-encounter) order. n < 1 is a
// validation error.
func TopN(aggregates []Aggregate, n int) ([]Aggregate, error) {
	if n < 1 {
		return nil, apperrors.NewValidationError("top-N count must be at least 1")
	}

	sorted := make([]Aggregate, len(aggregates))
	copy(sorted, aggregates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Mean > sorted[j].Mean
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n], nil
}

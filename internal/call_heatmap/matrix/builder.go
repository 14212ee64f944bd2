// Package matrix pivots long-format call records into a dense service matrix.
package matrix

import (
	"fmt"
	"math"
	"sort"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
)

type Options struct {
	// Canonical pins both axes to this list, in order. Empty means the axes
	// are derived from the records.
	Canonical []domain.EntityID
	Aggregate domain.AggregatePolicy
	Unknown   domain.UnknownEntityPolicy
}

// Report describes what the builder did besides filling cells.
type Report struct {
	Records    int
	Duplicates int
	Dropped    []domain.CallRecord
}

// Build pivots records into a matrix. Absent pairs are zero.
func Build(records []domain.CallRecord, opts Options) (*domain.Matrix, *Report, error) {
	if opts.Aggregate == "" {
		opts.Aggregate = domain.AggregateSum
	}
	if opts.Unknown == "" {
		opts.Unknown = domain.UnknownDrop
	}
	if !opts.Aggregate.Valid() {
		return nil, nil, fmt.Errorf("%w: aggregate policy %q", domain.ErrInvalidConfig, opts.Aggregate)
	}
	if !opts.Unknown.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown entity policy %q", domain.ErrInvalidConfig, opts.Unknown)
	}

	var rows, cols []domain.EntityID
	if len(opts.Canonical) > 0 {
		if err := ValidateCanonical(opts.Canonical); err != nil {
			return nil, nil, err
		}
		rows, cols = opts.Canonical, opts.Canonical
	} else {
		rows, cols = axes(records)
	}

	m := domain.NewMatrix(rows, cols)
	rep := &Report{Records: len(records)}
	seen := make(map[[2]int]bool, len(records))

	for _, rec := range records {
		i, j, ok := m.Index(rec.Source, rec.Destination)
		if !ok {
			if opts.Unknown == domain.UnknownFail {
				return nil, nil, unknownErr(m, rec)
			}
			rep.Dropped = append(rep.Dropped, rec)
			continue
		}

		key := [2]int{i, j}
		if !seen[key] {
			seen[key] = true
			m.Values[i][j] = rec.Weight
			continue
		}

		rep.Duplicates++
		switch opts.Aggregate {
		case domain.AggregateSum:
			m.Values[i][j] += rec.Weight
			if math.IsInf(m.Values[i][j], 0) {
				return nil, nil, fmt.Errorf("%w: %s -> %s (line %d): sum overflows float64", domain.ErrMalformedRecord, rec.Source, rec.Destination, rec.Line)
			}
		case domain.AggregateLast:
			m.Values[i][j] = rec.Weight
		case domain.AggregateMax:
			if rec.Weight > m.Values[i][j] {
				m.Values[i][j] = rec.Weight
			}
		case domain.AggregateReject:
			return nil, nil, fmt.Errorf("%w: %s -> %s (line %d)", domain.ErrDuplicatePair, rec.Source, rec.Destination, rec.Line)
		}
	}

	return m, rep, nil
}

// ValidateCanonical rejects empty identifiers and repeats.
func ValidateCanonical(ids []domain.EntityID) error {
	seen := make(map[domain.EntityID]bool, len(ids))
	for i, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty identifier at position %d", domain.ErrInvalidCanonical, i)
		}
		if seen[id] {
			return fmt.Errorf("%w: %q listed more than once", domain.ErrInvalidCanonical, id)
		}
		seen[id] = true
	}
	return nil
}

func axes(records []domain.CallRecord) (rows, cols []domain.EntityID) {
	src := map[domain.EntityID]struct{}{}
	dst := map[domain.EntityID]struct{}{}
	for _, r := range records {
		src[r.Source] = struct{}{}
		dst[r.Destination] = struct{}{}
	}
	return sortedKeys(src), sortedKeys(dst)
}

func sortedKeys(set map[domain.EntityID]struct{}) []domain.EntityID {
	out := make([]domain.EntityID, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func unknownErr(m *domain.Matrix, rec domain.CallRecord) error {
	id := rec.Source
	if _, _, ok := m.Index(rec.Source, m.Cols[0]); ok {
		id = rec.Destination
	}
	if rec.Line > 0 {
		return fmt.Errorf("%w: %q (line %d)", domain.ErrUnknownEntity, id, rec.Line)
	}
	return fmt.Errorf("%w: %q", domain.ErrUnknownEntity, id)
}

package domain

import (
	"fmt"
	"slices"
	"sort"
)

// BinnedMapping is an immutable step function over a single coordinate.
// It holds N strictly increasing edges and exactly N-1 region values;
// region i covers the left-closed interval [edges[i], edges[i+1]).
//
// Coordinates outside the table are clamped: anything below the first edge
// maps to the first region, and anything at or above the last edge maps to
// the last region. A lookup therefore never fails once the mapping is
// built.
//
// BinnedMapping is safe for concurrent use.
type BinnedMapping struct {
	edges  []float64
	values []float64
}

// NewBinnedMapping validates and copies the given edges and values.
// It returns a ConfigError wrapping ErrInvalidBinning when fewer than two
// edges are given, when the edges are not strictly increasing, or when the
// value count is not exactly one less than the edge count.
func NewBinnedMapping(edges, values []float64) (*BinnedMapping, error) {
	if len(edges) < 2 {
		return nil, NewConfigError("edges",
			fmt.Errorf("%w: need at least 2 edges, got %d", ErrInvalidBinning, len(edges)))
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return nil, NewConfigError("edges",
				fmt.Errorf("%w: edges not strictly increasing at index %d (%g >= %g)",
					ErrInvalidBinning, i, edges[i-1], edges[i]))
		}
	}
	if len(values) != len(edges)-1 {
		return nil, NewConfigError("values",
			fmt.Errorf("%w: %d edges require %d values, got %d",
				ErrInvalidBinning, len(edges), len(edges)-1, len(values)))
	}

	return &BinnedMapping{
		edges:  slices.Clone(edges),
		values: slices.Clone(values),
	}, nil
}

// Lookup returns the value of the region containing x. It performs a binary
// search over the edges.
func (bm *BinnedMapping) Lookup(x float64) float64 {
	// Index of the first edge strictly greater than x; the region is the one
	// to its left.
	i := sort.Search(len(bm.edges), func(i int) bool { return bm.edges[i] > x })
	region := i - 1
	if region < 0 {
		region = 0
	}
	if region > len(bm.values)-1 {
		region = len(bm.values) - 1
	}
	return bm.values[region]
}

// Edges returns a copy of the bin edges.
func (bm *BinnedMapping) Edges() []float64 { return slices.Clone(bm.edges) }

// Values returns a copy of the region values.
func (bm *BinnedMapping) Values() []float64 { return slices.Clone(bm.values) }

// Bins returns the number of regions.
func (bm *BinnedMapping) Bins() int { return len(bm.values) }

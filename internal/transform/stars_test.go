package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatingKnownCells(t *testing.T) {
	table := NewRatingTable()

	tests := []struct {
		name         string
		declarations int
		refunds      int
		want         int
	}{
		{"no history", 0, 0, 0},
		{"single declaration", 1, 0, 1},
		{"mid table", 5, 4, 3},
		{"top of triangle", 7, 7, 5},
		{"last row first cell", 15, 0, 4},
		{"last row full", 15, 15, 5},
		{"padded cell is sentinel", 3, 10, RatingUnavailable},
		{"refunds out of bounds", 5, 16, RatingUnavailable},
		{"negative declarations", -1, 0, RatingUnavailable},
		{"negative refunds", 5, -1, RatingUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Rating(tt.declarations, tt.refunds))
		})
	}
}

func TestRatingSaturation(t *testing.T) {
	table := NewRatingTable()

	for _, d := range []int{16, 17, 100} {
		for _, r := range []int{0, 5, 50, -3} {
			assert.Equal(t, 5, table.Rating(d, r), "declarations=%d refunds=%d", d, r)
		}
	}
}

func TestRatingMonotonicInRefunds(t *testing.T) {
	table := NewRatingTable()

	// within the triangle (refunds <= declarations) more refunds never
	// lower the rating
	for d := 0; d < 16; d++ {
		prev := table.Rating(d, 0)
		for r := 1; r <= d; r++ {
			got := table.Rating(d, r)
			assert.GreaterOrEqual(t, got, prev, "declarations=%d refunds=%d", d, r)
			prev = got
		}
	}
}

package transform

// RatingUnavailable is returned when (declarations, refunds) falls outside
// the rating matrix. It is valid data, not an error.
const RatingUnavailable = -1

// ratingSaturation applies from 16 declarations up, before any indexing.
const ratingSaturation = 16

// RatingTable maps declaration/refund history volume to a 0..5 star rating.
// Read-only after construction; safe for concurrent use.
type RatingTable struct {
	matrix [][]int
}

func NewRatingTable() *RatingTable {
	base := [][]int{
		{0},
		{1, 1},
		{1, 1, 1},
		{1, 1, 1, 1},
		{1, 1, 1, 2, 2},
		{1, 1, 2, 2, 3, 3},
		{1, 2, 2, 3, 3, 4, 4},
		{2, 2, 3, 3, 4, 4, 4, 5},
		{2, 3, 3, 4, 4, 4, 5, 5, 5},
		{2, 3, 4, 4, 4, 5, 5, 5, 5, 5},
		{3, 4, 4, 4, 5, 5, 5, 5, 5, 5, 5},
		{3, 4, 4, 5, 5, 5, 5, 5, 5, 5, 5, 5},
		{3, 4, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5},
		{4, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5},
		{4, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5},
		{4, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5},
	}

	width := 0
	for _, row := range base {
		if len(row) > width {
			width = len(row)
		}
	}

	matrix := make([][]int, len(base))
	for i, row := range base {
		padded := make([]int, width)
		copy(padded, row)
		for j := len(row); j < width; j++ {
			padded[j] = RatingUnavailable
		}
		matrix[i] = padded
	}

	return &RatingTable{matrix: matrix}
}

// Rating returns the star rating for the given declaration and refund
// counts. Declarations of 16 or more saturate to 5 regardless of refunds;
// any index outside the padded matrix yields RatingUnavailable.
func (t *RatingTable) Rating(declarations, refunds int) int {
	if declarations >= ratingSaturation {
		return 5
	}
	if declarations < 0 || refunds < 0 || refunds >= len(t.matrix[0]) {
		return RatingUnavailable
	}
	return t.matrix[declarations][refunds]
}

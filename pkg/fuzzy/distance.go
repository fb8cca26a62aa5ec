package fuzzy

// BoundedEditDistance computes the Levenshtein distance between a and b, giving
// up as soon as a whole row of the table is further than maxDiff.
//
// Rows follow the bytes of b, each row is len(a)+1 wide. When the smallest
// cell of the row just filled exceeds maxDiff that value is returned, so the
// result is only exact when it is <= maxDiff. Because of the early exit the
// function is not symmetric in its arguments.
// NoMatch is returned if either string is empty.
func BoundedEditDistance(a, b string, maxDiff int) int {
	if len(a) == 0 || len(b) == 0 {
		return NoMatch
	}

	width := len(a)
	v0 := make([]int, width+1)
	v1 := make([]int, width+1)
	for i := range v0 {
		v0[i] = i
	}

	for row := 1; row <= len(b); row++ {
		v1[0] = row
		rowMin := len(a) + len(b)

		for j := 1; j <= width; j++ {
			cost := 1
			if a[j-1] == b[row-1] {
				cost = 0
			}
			v1[j] = min(v1[j-1]+1, v0[j]+1, v0[j-1]+cost)
			rowMin = min(rowMin, v1[j])
		}

		if rowMin > maxDiff {
			return rowMin
		}
		v0, v1 = v1, v0
	}

	return v0[width]
}

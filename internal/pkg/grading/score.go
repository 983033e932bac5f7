package grading

// CalculateTotalScore sums the chosen option values. Partial maps are summed as-is and values
// are not checked against any rubric.
func CalculateTotalScore(scores map[string]int) int {
	total := 0
	for _, v := range scores {
		total += v
	}
	return total
}

package domain

// LineScore returns the points awarded for clearing n rows with one lock.
func LineScore(n int) int {
	switch n {
	case 0:
		return 0
	case 1:
		return 100
	case 2:
		return 300
	case 3:
		return 500
	case 4:
		return 800
	default:
		return n * 100
	}
}

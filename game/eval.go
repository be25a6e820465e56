package game

// EvaluateLines scores open lines for each side, weighting a line by the square
// of the marks already on it, and returns a score between -1 and 1 from the
// current player's perspective. Terminal states score 1, -1 or 0.
func EvaluateLines(s State) float64 {
	current := s.Player()
	if s.IsEnd() {
		switch s.Winner() {
		case current:
			return 1
		case current.Opponent():
			return -1
		default:
			return 0
		}
	}

	mine, theirs := 0.0, 0.0
	for _, line := range Lines(s.Size()) {
		own, opp := 0, 0
		for _, m := range line {
			switch s.Cell(m.Row, m.Col) {
			case current:
				own++
			case current.Opponent():
				opp++
			}
		}
		// A line holding both marks can no longer be won
		if own > 0 && opp == 0 {
			mine += float64(own * own)
		} else if opp > 0 && own == 0 {
			theirs += float64(opp * opp)
		}
	}

	return normalize(mine, theirs)
}

// Lines returns every row, column and both diagonals of a size×size board.
func Lines(size int) [][]Move {
	lines := make([][]Move, 0, 2*size+2)
	diag := make([]Move, size)
	anti := make([]Move, size)
	for i := 0; i < size; i++ {
		row := make([]Move, size)
		col := make([]Move, size)
		for j := 0; j < size; j++ {
			row[j] = Move{Row: i, Col: j}
			col[j] = Move{Row: j, Col: i}
		}
		lines = append(lines, row, col)
		diag[i] = Move{Row: i, Col: i}
		anti[i] = Move{Row: i, Col: size - 1 - i}
	}
	return append(lines, diag, anti)
}

// normalize normalizes value relative to otherValue to a score between -1 and 1
func normalize(value float64, otherValue float64) float64 {
	total := value + otherValue
	if total == 0 {
		return 0
	}
	return (value - otherValue) / total
}

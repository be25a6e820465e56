package game

import "fmt"

// Move places the current player's mark on a cell.
type Move struct {
	Row int
	Col int
}

// Less orders moves lexicographically by (row, col).
func (m Move) Less(other Move) bool {
	if m.Row != other.Row {
		return m.Row < other.Row
	}
	return m.Col < other.Col
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)", m.Row, m.Col)
}

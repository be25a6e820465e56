package game

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"
)

// Board is an N×N tic-tac-toe position. A player wins by filling a whole row,
// column or diagonal.
type Board struct {
	size    int
	cells   []Player // row-major
	current Player
	moves   int
	winner  Player
	ended   bool
}

// NewBoard returns an empty board with PlayerA to move.
func NewBoard(size int) (*Board, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidBoard, size)
	}
	return &Board{
		size:    size,
		cells:   make([]Player, size*size),
		current: PlayerA,
	}, nil
}

// FromCells builds a board from a square grid and the player to move. The grid
// must be reachable by strict alternation.
func FromCells(grid [][]Player, toMove Player) (*Board, error) {
	size := len(grid)
	b, err := NewBoard(size)
	if err != nil {
		return nil, err
	}
	if toMove != PlayerA && toMove != PlayerB {
		return nil, fmt.Errorf("%w: player to move %d", ErrInvalidBoard, toMove)
	}

	counts := map[Player]int{}
	for r, row := range grid {
		if len(row) != size {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidBoard, r, len(row), size)
		}
		for c, p := range row {
			if p != Empty && p != PlayerA && p != PlayerB {
				return nil, fmt.Errorf("%w: cell (%d,%d) holds %d", ErrInvalidBoard, r, c, p)
			}
			b.cells[r*size+c] = p
			counts[p]++
		}
	}

	a, o := counts[PlayerA], counts[PlayerB]
	switch {
	case a-o > 1 || o-a > 1:
		return nil, fmt.Errorf("%w: %d X against %d O", ErrInvalidBoard, a, o)
	case a > o && toMove != PlayerB, o > a && toMove != PlayerA:
		return nil, fmt.Errorf("%w: %s cannot be to move with %d X against %d O", ErrInvalidBoard, toMove, a, o)
	}

	b.current = toMove
	b.moves = a + o

	winners := map[Player]bool{}
	for _, line := range Lines(size) {
		if w := b.lineOwner(line); w != Empty {
			winners[w] = true
		}
	}
	if len(winners) > 1 {
		return nil, fmt.Errorf("%w: both players have a line", ErrInvalidBoard)
	}
	for w := range winners {
		b.winner = w
		b.ended = true
	}
	if b.moves == size*size {
		b.ended = true
	}
	return b, nil
}

func (b *Board) Size() int { return b.size }

func (b *Board) Cell(row, col int) Player {
	return b.cells[row*b.size+col]
}

// Cells returns a copy of the grid.
func (b *Board) Cells() [][]Player {
	grid := make([][]Player, b.size)
	for r := range grid {
		grid[r] = make([]Player, b.size)
		copy(grid[r], b.cells[r*b.size:(r+1)*b.size])
	}
	return grid
}

func (b *Board) Player() Player { return b.current }

func (b *Board) NumMoves() int { return b.moves }

func (b *Board) IsEnd() bool { return b.ended }

// Winner returns Empty while the game is running or when it ended in a draw.
func (b *Board) Winner() Player { return b.winner }

// LegalMoves returns the empty cells in row-major order, or nil once the game
// is over.
func (b *Board) LegalMoves() []Move {
	if b.ended {
		return nil
	}
	moves := make([]Move, 0, len(b.cells)-b.moves)
	for i, p := range b.cells {
		if p == Empty {
			moves = append(moves, Move{Row: i / b.size, Col: i % b.size})
		}
	}
	return moves
}

// Copy returns a deep copy of the board.
func (b *Board) Copy() *Board {
	cells := make([]Player, len(b.cells))
	copy(cells, b.cells)
	return &Board{
		size:    b.size,
		cells:   cells,
		current: b.current,
		moves:   b.moves,
		winner:  b.winner,
		ended:   b.ended,
	}
}

// Play applies the move in place and passes the turn.
func (b *Board) Play(m Move) error {
	if b.ended {
		return ErrGameOver
	}
	if m.Row < 0 || m.Row >= b.size || m.Col < 0 || m.Col >= b.size {
		return fmt.Errorf("%w: %s is off a %dx%d board", ErrIllegalMove, m, b.size, b.size)
	}
	idx := m.Row*b.size + m.Col
	if b.cells[idx] != Empty {
		return fmt.Errorf("%w: %s is occupied", ErrIllegalMove, m)
	}

	b.cells[idx] = b.current
	b.moves++
	if b.completesLine(m) {
		b.winner = b.current
		b.ended = true
	} else if b.moves == len(b.cells) {
		b.ended = true
	}
	b.current = b.current.Opponent()
	return nil
}

func (b *Board) Successor(m Move) (State, error) {
	next := b.Copy()
	if err := next.Play(m); err != nil {
		return nil, err
	}
	return next, nil
}

func (b *Board) Hash() StateHash {
	hasher := fnv.New64a()

	binary.Write(hasher, binary.LittleEndian, int64(b.current))
	for _, p := range b.cells {
		binary.Write(hasher, binary.LittleEndian, int8(p))
	}

	return StateHash(hasher.Sum64())
}

func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			sb.WriteString(b.Cell(r, c).String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// completesLine reports whether the mark just placed at m fills a line.
func (b *Board) completesLine(m Move) bool {
	for _, line := range Lines(b.size) {
		if contains(line, m) && b.lineOwner(line) != Empty {
			return true
		}
	}
	return false
}

func (b *Board) lineOwner(line []Move) Player {
	owner := b.Cell(line[0].Row, line[0].Col)
	for _, m := range line[1:] {
		if b.Cell(m.Row, m.Col) != owner {
			return Empty
		}
	}
	return owner
}

func contains(line []Move, m Move) bool {
	for _, other := range line {
		if other == m {
			return true
		}
	}
	return false
}

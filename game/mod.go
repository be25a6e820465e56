package game

import "errors"

// Player identifies a side. The zero value marks an empty cell or a draw.
type Player int

const (
	Empty   Player = 0
	PlayerA Player = 1
	PlayerB Player = -1
)

// Opponent returns the other side. Empty has no opponent.
func (p Player) Opponent() Player {
	return -p
}

func (p Player) String() string {
	switch p {
	case PlayerA:
		return "X"
	case PlayerB:
		return "O"
	default:
		return "."
	}
}

var (
	ErrIllegalMove  = errors.New("illegal move")
	ErrGameOver     = errors.New("game is over")
	ErrInvalidBoard = errors.New("invalid board")
)

type StateHash uint64

// State is a read-only view of a tic-tac-toe position. Successor never
// modifies the receiver.
type State interface {
	Size() int
	Cell(row, col int) Player
	Player() Player
	LegalMoves() []Move
	Successor(Move) (State, error)
	IsEnd() bool
	Winner() Player
	NumMoves() int
	Hash() StateHash
}

// Evaluates the game state to a score between -1 and 1 indicating how
// favorable the current player's position is to a winning (positive) outcome.
type Evaluate func(State) float64

// Policy maps each legal move to its probability.
type Policy map[Move]float64

package dqn

import (
	"tictactoe/game"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Channels of an encoded position.
const (
	ChannelPlayerA = iota // cell occupied by PlayerA
	ChannelPlayerB        // cell occupied by PlayerB
	ChannelToMove         // 1 everywhere when PlayerA is to move
	ChannelLegal          // cell is a legal move
	Channels
)

// EncodedState is an immutable (N, N, Channels) tensor describing a position.
type EncodedState struct {
	t *tensor.Dense
}

// NewEncodedState wraps row-major (N, N, Channels) values. The slice is copied.
func NewEncodedState(size int, values []float64) (EncodedState, error) {
	if size < 1 || len(values) != size*size*Channels {
		return EncodedState{}, errors.Errorf("encoded state of size %d needs %d values, got %d", size, size*size*Channels, len(values))
	}
	backing := make([]float64, len(values))
	copy(backing, values)
	return newEncodedState(size, backing), nil
}

func newEncodedState(size int, backing []float64) EncodedState {
	return EncodedState{
		t: tensor.New(tensor.WithShape(size, size, Channels), tensor.WithBacking(backing)),
	}
}

// Size returns the board size N.
func (s EncodedState) Size() int {
	return s.t.Shape()[0]
}

func (s EncodedState) Shape() tensor.Shape {
	return s.t.Shape().Clone()
}

func (s EncodedState) At(row, col, channel int) float64 {
	n := s.Size()
	return s.data()[(row*n+col)*Channels+channel]
}

// Values returns a copy of the row-major tensor data.
func (s EncodedState) Values() []float64 {
	data := s.data()
	values := make([]float64, len(data))
	copy(values, data)
	return values
}

func (s EncodedState) data() []float64 {
	return s.t.Data().([]float64)
}

// Encode converts a position into a fresh EncodedState. Both move selection and
// training go through it so that inference inputs and training inputs share the
// same features.
func Encode(state game.State) (EncodedState, error) {
	if err := validate(state); err != nil {
		return EncodedState{}, err
	}

	n := state.Size()
	backing := make([]float64, n*n*Channels)
	at := func(row, col, channel int) *float64 {
		return &backing[(row*n+col)*Channels+channel]
	}

	toMove := 0.0
	if state.Player() == game.PlayerA {
		toMove = 1
	}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			switch state.Cell(r, c) {
			case game.PlayerA:
				*at(r, c, ChannelPlayerA) = 1
			case game.PlayerB:
				*at(r, c, ChannelPlayerB) = 1
			}
			*at(r, c, ChannelToMove) = toMove
		}
	}
	for _, m := range state.LegalMoves() {
		*at(m.Row, m.Col, ChannelLegal) = 1
	}

	return newEncodedState(n, backing), nil
}

// validate checks the invariants Encode relies on: a square grid of known cell
// values, a player to move, occupancy consistent with strict alternation and
// legal moves on empty cells only.
func validate(state game.State) error {
	if state == nil {
		return errors.Wrap(ErrInvalidState, "nil state")
	}
	n := state.Size()
	if n < 1 {
		return errors.Wrapf(ErrInvalidState, "board size %d", n)
	}

	toMove := state.Player()
	if toMove != game.PlayerA && toMove != game.PlayerB {
		return errors.Wrapf(ErrInvalidState, "player to move %d", toMove)
	}

	a, b := 0, 0
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			switch p := state.Cell(r, c); p {
			case game.PlayerA:
				a++
			case game.PlayerB:
				b++
			case game.Empty:
			default:
				return errors.Wrapf(ErrInvalidState, "cell (%d,%d) holds %d", r, c, p)
			}
		}
	}
	if a-b > 1 || b-a > 1 || (a > b && toMove != game.PlayerB) || (b > a && toMove != game.PlayerA) {
		return errors.Wrapf(ErrInvalidState, "%d X and %d O with %s to move", a, b, toMove)
	}

	for _, m := range state.LegalMoves() {
		if m.Row < 0 || m.Row >= n || m.Col < 0 || m.Col >= n {
			return errors.Wrapf(ErrInvalidState, "legal move %s is off the board", m)
		}
		if state.Cell(m.Row, m.Col) != game.Empty {
			return errors.Wrapf(ErrInvalidState, "legal move %s is occupied", m)
		}
	}
	return nil
}

package dqn

import (
	"testing"

	"tictactoe/game"

	"github.com/stretchr/testify/require"
)

const (
	X = game.PlayerA
	O = game.PlayerB
	e = game.Empty
)

func board(t *testing.T, grid [][]game.Player, toMove game.Player) *game.Board {
	t.Helper()
	b, err := game.FromCells(grid, toMove)
	require.NoError(t, err)
	return b
}

// fakeState lets tests present positions a Board would never produce.
type fakeState struct {
	*game.Board
	player game.Player
	legal  []game.Move
	cell   map[game.Move]game.Player
}

func (f fakeState) Player() game.Player {
	if f.player != 0 {
		return f.player
	}
	return f.Board.Player()
}

func (f fakeState) LegalMoves() []game.Move {
	if f.legal != nil {
		return f.legal
	}
	return f.Board.LegalMoves()
}

func (f fakeState) Cell(row, col int) game.Player {
	if p, ok := f.cell[game.Move{Row: row, Col: col}]; ok {
		return p
	}
	return f.Board.Cell(row, col)
}

func TestEncode(t *testing.T) {
	t.Run("channels describe the position", func(t *testing.T) {
		b := board(t, [][]game.Player{
			{X, e, e},
			{e, O, e},
			{e, e, X},
		}, O)

		s, err := Encode(b)
		require.NoError(t, err)
		require.Equal(t, 3, s.Size())
		require.Equal(t, []int{3, 3, Channels}, []int(s.Shape()))

		require.Equal(t, 1.0, s.At(0, 0, ChannelPlayerA))
		require.Equal(t, 0.0, s.At(0, 0, ChannelPlayerB))
		require.Equal(t, 1.0, s.At(1, 1, ChannelPlayerB))
		require.Equal(t, 1.0, s.At(2, 2, ChannelPlayerA))
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				require.Equal(t, 0.0, s.At(r, c, ChannelToMove), "O is to move")
				require.False(t, s.At(r, c, ChannelPlayerA) == 1 && s.At(r, c, ChannelPlayerB) == 1,
					"cell (%d,%d) is occupied by both players", r, c)
			}
		}
	})

	t.Run("legal channel matches legal moves", func(t *testing.T) {
		b := board(t, [][]game.Player{
			{X, O, e, e},
			{e, X, e, e},
			{e, e, O, e},
			{e, e, e, e},
		}, X)

		s, err := Encode(b)
		require.NoError(t, err)

		legal := map[game.Move]bool{}
		for _, m := range b.LegalMoves() {
			legal[m] = true
		}
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				want := 0.0
				if legal[game.Move{Row: r, Col: c}] {
					want = 1
				}
				require.Equal(t, want, s.At(r, c, ChannelLegal), "cell (%d,%d)", r, c)
				require.Equal(t, 1.0, s.At(r, c, ChannelToMove))
			}
		}
	})

	t.Run("terminal position has an empty legal channel", func(t *testing.T) {
		b := board(t, [][]game.Player{
			{X, X, X},
			{O, O, e},
			{e, e, e},
		}, O)

		s, err := Encode(b)
		require.NoError(t, err)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				require.Equal(t, 0.0, s.At(r, c, ChannelLegal))
			}
		}
	})

	t.Run("returns a fresh encoding each call", func(t *testing.T) {
		b, _ := game.NewBoard(3)
		first, err := Encode(b)
		require.NoError(t, err)
		second, err := Encode(b)
		require.NoError(t, err)

		values := first.Values()
		values[0] = 42
		require.Equal(t, 0.0, first.At(0, 0, ChannelPlayerA), "Values should return a copy")
		require.Equal(t, first.Values(), second.Values())
	})
}

func TestEncodeInvalidState(t *testing.T) {
	b, _ := game.NewBoard(3)
	require.NoError(t, b.Play(game.Move{Row: 0, Col: 0}))

	tests := []struct {
		name  string
		state game.State
	}{
		{"nil state", nil},
		{"no player to move", fakeState{Board: b, player: 9}},
		{"wrong player to move", fakeState{Board: b, player: X}},
		{"unknown cell value", fakeState{Board: b, cell: map[game.Move]game.Player{{Row: 2, Col: 2}: 5}}},
		{"occupied legal move", fakeState{Board: b, legal: []game.Move{{Row: 0, Col: 0}}}},
		{"off-board legal move", fakeState{Board: b, legal: []game.Move{{Row: 3, Col: 1}}}},
		{"too many X", fakeState{Board: b, cell: map[game.Move]game.Player{{Row: 1, Col: 1}: X}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.state)
			require.ErrorIs(t, err, ErrInvalidState)
		})
	}
}

func TestNewEncodedState(t *testing.T) {
	values := make([]float64, 2*2*Channels)
	values[ChannelPlayerB] = 1

	s, err := NewEncodedState(2, values)
	require.NoError(t, err)
	values[ChannelPlayerB] = 0
	require.Equal(t, 1.0, s.At(0, 0, ChannelPlayerB), "input slice should be copied")

	_, err = NewEncodedState(2, values[:5])
	require.Error(t, err)
}

package engine

import (
	"errors"
	"testing"

	"tictactoe/agent"
	"tictactoe/game"

	"github.com/stretchr/testify/require"
)

// scripted plays its moves in order.
type scripted struct {
	moves []game.Move
	err   error
}

func (s *scripted) ChooseMove(game.State) (game.Move, error) {
	if s.err != nil {
		return game.Move{}, s.err
	}
	move := s.moves[0]
	s.moves = s.moves[1:]
	return move, nil
}

func TestLocalEngine(t *testing.T) {
	_, err := LocalEngine(3, nil, agent.NewRandom(1))
	require.Error(t, err)
	_, err = LocalEngine(0, agent.NewRandom(1), agent.NewRandom(2))
	require.ErrorIs(t, err, game.ErrInvalidBoard)
}

func TestLocalRun(t *testing.T) {
	t.Run("first agent plays X and wins", func(t *testing.T) {
		first := &scripted{moves: []game.Move{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}}}
		second := &scripted{moves: []game.Move{{Row: 1, Col: 0}, {Row: 1, Col: 1}}}
		e, err := LocalEngine(3, first, second)
		require.NoError(t, err)

		var observed []game.Move
		e.Observe(func(before, after game.State, move game.Move) {
			require.Equal(t, before.NumMoves()+1, after.NumMoves())
			require.Equal(t, before.Player(), after.Cell(move.Row, move.Col))
			observed = append(observed, move)
		})

		gameMetric, moveMetrics, err := e.Run()

		require.NoError(t, err)
		require.Equal(t, game.PlayerA, gameMetric.Winner)
		require.Equal(t, 5, gameMetric.TotalMoves)
		require.Len(t, moveMetrics, 5)
		require.Len(t, observed, 5)
		for i, m := range moveMetrics {
			require.Equal(t, i+1, m.Step)
			if i%2 == 0 {
				require.Equal(t, game.PlayerA, m.Player)
			} else {
				require.Equal(t, game.PlayerB, m.Player)
			}
		}
	})

	t.Run("random agents finish a game", func(t *testing.T) {
		for seed := uint64(0); seed < 20; seed++ {
			e, err := LocalEngine(4, agent.NewRandom(seed), agent.NewRandom(seed+100))
			require.NoError(t, err)

			gameMetric, moveMetrics, err := e.Run()
			require.NoError(t, err)
			require.True(t, e.State.IsEnd())
			require.Equal(t, e.State.Winner(), gameMetric.Winner)
			require.Len(t, moveMetrics, gameMetric.TotalMoves)
			require.LessOrEqual(t, gameMetric.TotalMoves, 16)
		}
	})

	t.Run("agent errors abort the game", func(t *testing.T) {
		boom := errors.New("boom")
		e, err := LocalEngine(3, agent.NewRandom(1), &scripted{err: boom})
		require.NoError(t, err)

		_, moveMetrics, err := e.Run()
		require.ErrorIs(t, err, boom)
		require.Len(t, moveMetrics, 1)
	})

	t.Run("illegal moves abort the game", func(t *testing.T) {
		first := &scripted{moves: []game.Move{{Row: 1, Col: 1}}}
		second := &scripted{moves: []game.Move{{Row: 1, Col: 1}}}
		e, err := LocalEngine(3, first, second)
		require.NoError(t, err)

		_, _, err = e.Run()
		require.ErrorIs(t, err, game.ErrIllegalMove)
	})
}

package agent

import (
	"errors"
	"testing"

	"tictactoe/dqn"
	"tictactoe/game"
	"tictactoe/searcher"

	"github.com/stretchr/testify/require"
)

var (
	_ Agent       = (*dqn.Agent)(nil)
	_ PolicyAgent = (*dqn.Agent)(nil)
	_ PolicyAgent = (*MCTS)(nil)
	_ Reporter    = (*MCTS)(nil)
)

const (
	X = game.PlayerA
	O = game.PlayerB
	e = game.Empty
)

func newBoard(t *testing.T, grid [][]game.Player, toMove game.Player) *game.Board {
	t.Helper()
	b, err := game.FromCells(grid, toMove)
	require.NoError(t, err)
	return b
}

// mockAgent always plays move and counts its calls.
type mockAgent struct {
	move  game.Move
	calls int
}

func (m *mockAgent) ChooseMove(game.State) (game.Move, error) {
	m.calls++
	return m.move, nil
}

type fixedPolicy game.Policy

func (f fixedPolicy) Policy(game.State) (game.Policy, error) {
	return game.Policy(f), nil
}

func TestRandom(t *testing.T) {
	b := newBoard(t, [][]game.Player{
		{X, O, X},
		{X, O, O},
		{e, e, e},
	}, X)
	r := NewRandom(3)

	seen := map[game.Move]bool{}
	for i := 0; i < 200; i++ {
		move, err := r.ChooseMove(b)
		require.NoError(t, err)
		require.Equal(t, game.Empty, b.Cell(move.Row, move.Col))
		seen[move] = true
	}
	require.Len(t, seen, 3, "Every legal move should be played eventually")

	done := newBoard(t, [][]game.Player{
		{X, X, X},
		{O, O, e},
		{e, e, e},
	}, O)
	_, err := r.ChooseMove(done)
	require.ErrorIs(t, err, game.ErrGameOver)
}

func TestMinimax(t *testing.T) {
	b := newBoard(t, [][]game.Player{
		{X, e, e},
		{e, X, e},
		{O, e, e},
	}, O)

	move, err := NewMinimax(2).ChooseMove(b)
	require.NoError(t, err)
	require.Equal(t, game.Move{Row: 2, Col: 2}, move, "Minimax should block the diagonal")
}

func TestMCTSAgent(t *testing.T) {
	b := newBoard(t, [][]game.Player{
		{X, X, e},
		{O, O, e},
		{e, e, e},
	}, X)
	a := NewMCTS(searcher.NewMCTS(2, searcher.WithEpisodes(1500), searcher.WithMetrics()))

	move, err := a.ChooseMove(b)
	require.NoError(t, err)
	require.Equal(t, game.Move{Row: 0, Col: 2}, move)
	require.Equal(t, 1500, a.LastSearch().Episodes)
}

func TestHybrid(t *testing.T) {
	early := &mockAgent{move: game.Move{Row: 0, Col: 0}}
	late := &mockAgent{move: game.Move{Row: 2, Col: 2}}
	h := NewHybrid(early, late, 4)

	b, _ := game.NewBoard(3)
	move, err := h.ChooseMove(b)
	require.NoError(t, err)
	require.Equal(t, early.move, move)

	endgame := newBoard(t, [][]game.Player{
		{X, O, X},
		{X, O, O},
		{e, e, e},
	}, X)
	move, err = h.ChooseMove(endgame)
	require.NoError(t, err)
	require.Equal(t, late.move, move)

	require.Equal(t, 1, early.calls)
	require.Equal(t, 1, late.calls)
}

func TestHybridWithSearchers(t *testing.T) {
	early := NewMCTS(searcher.NewMCTS(1,
		searcher.WithEpisodes(15),
		searcher.WithRolloutPolicy(searcher.NewAlphaBeta(1, nil).BestMove),
	))
	h := NewHybrid(early, NewMinimax(0), 6)

	b := newBoard(t, [][]game.Player{
		{X, X, e},
		{O, O, e},
		{X, e, e},
	}, O)
	move, err := h.ChooseMove(b)
	require.NoError(t, err)
	require.Equal(t, game.Move{Row: 1, Col: 2}, move, "Exact endgame search should take the win")
}

func TestSampler(t *testing.T) {
	t.Run("rejects non-positive temperature", func(t *testing.T) {
		_, err := NewSampler(fixedPolicy{}, 0, 1)
		require.Error(t, err)
	})

	t.Run("samples in proportion to the policy", func(t *testing.T) {
		a, b := game.Move{Row: 0, Col: 0}, game.Move{Row: 1, Col: 1}
		s, err := NewSampler(fixedPolicy{a: 0.8, b: 0.2}, 1, 11)
		require.NoError(t, err)
		board, _ := game.NewBoard(3)

		counts := map[game.Move]int{}
		for i := 0; i < 2000; i++ {
			move, err := s.ChooseMove(board)
			require.NoError(t, err)
			counts[move]++
		}
		require.InDelta(t, 1600, counts[a], 120)
		require.InDelta(t, 400, counts[b], 120)
	})

	t.Run("empty policy", func(t *testing.T) {
		s, err := NewSampler(fixedPolicy{}, 1, 1)
		require.NoError(t, err)
		board, _ := game.NewBoard(3)

		_, err = s.ChooseMove(board)
		require.ErrorIs(t, err, game.ErrGameOver)
	})

	t.Run("policy errors propagate", func(t *testing.T) {
		approx := errApproximator{}
		d, err := dqn.NewAgent(approx, dqn.WithSeed(1))
		require.NoError(t, err)
		s, err := NewSampler(d, 1, 1)
		require.NoError(t, err)
		board, _ := game.NewBoard(3)

		_, err = s.ChooseMove(board)
		require.ErrorIs(t, err, errPredict)
	})
}

var errPredict = errors.New("predict failed")

type errApproximator struct{}

func (errApproximator) Predict(dqn.EncodedState) (float64, error) { return 0, errPredict }

func (errApproximator) Fit([]dqn.EncodedState, []float64) (float64, error) { return 0, nil }

func TestAdjustTemperature(t *testing.T) {
	a, b := game.Move{Row: 0, Col: 0}, game.Move{Row: 0, Col: 1}
	policy := game.Policy{a: 0.75, b: 0.25}

	require.InDelta(t, 0.75, adjustTemperature(policy, 1)[a], 1e-12)
	require.InDelta(t, 0.9, adjustTemperature(policy, 0.5)[a], 1e-12, "Low temperature should sharpen")
	flat := adjustTemperature(policy, 100)
	require.InDelta(t, 0.5, flat[a], 0.01, "High temperature should flatten")
}

func TestSample(t *testing.T) {
	a, b := game.Move{Row: 0, Col: 0}, game.Move{Row: 1, Col: 0}
	policy := game.Policy{b: 0.5, a: 0.5}

	require.Equal(t, a, sample(policy, 0.1))
	require.Equal(t, b, sample(policy, 0.6))
	require.Equal(t, b, sample(policy, 1.0), "Rounding fallback returns the last move")
}

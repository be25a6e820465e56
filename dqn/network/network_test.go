package network

import (
	"path/filepath"
	"testing"

	"tictactoe/dqn"
	"tictactoe/game"

	"github.com/stretchr/testify/require"
)

func encoded(t *testing.T, size int, moves ...game.Move) dqn.EncodedState {
	t.Helper()
	b, err := game.NewBoard(size)
	require.NoError(t, err)
	for _, m := range moves {
		require.NoError(t, b.Play(m))
	}
	s, err := dqn.Encode(b)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	_, err := New(DefaultConfig(0))
	require.Error(t, err)

	config := DefaultConfig(3)
	config.LearningRate = 0
	_, err = New(config)
	require.Error(t, err)
}

func TestPredict(t *testing.T) {
	n, err := New(DefaultConfig(3))
	require.NoError(t, err)

	for _, s := range []dqn.EncodedState{
		encoded(t, 3),
		encoded(t, 3, game.Move{Row: 1, Col: 1}),
		encoded(t, 3, game.Move{Row: 0, Col: 0}, game.Move{Row: 2, Col: 2}),
	} {
		v, err := n.Predict(s)
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, -1.0)
		require.LessOrEqual(t, v, 1.0)
	}

	_, err = n.Predict(encoded(t, 4))
	require.Error(t, err, "Board size mismatch should be rejected")
}

func TestFit(t *testing.T) {
	n, err := New(DefaultConfig(3))
	require.NoError(t, err)

	states := []dqn.EncodedState{
		encoded(t, 3, game.Move{Row: 1, Col: 1}),
		encoded(t, 3, game.Move{Row: 0, Col: 0}),
	}
	labels := []float64{1, -1}

	loss, err := n.Fit(states, labels)
	require.NoError(t, err)
	require.GreaterOrEqual(t, loss, 0.0)

	_, err = n.Fit(states, labels[:1])
	require.Error(t, err)
	_, err = n.Fit(nil, nil)
	require.Error(t, err)
}

func TestPersistence(t *testing.T) {
	src, err := New(DefaultConfig(3))
	require.NoError(t, err)
	s := encoded(t, 3, game.Move{Row: 0, Col: 1})
	want, err := src.Predict(s)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, src.SaveFile(path))

	dst, err := New(DefaultConfig(3))
	require.NoError(t, err)
	require.NoError(t, dst.LoadFile(path))
	got, err := dst.Predict(s)
	require.NoError(t, err)
	require.InDelta(t, want, got, 1e-9)

	other, err := New(DefaultConfig(4))
	require.NoError(t, err)
	require.Error(t, other.LoadFile(path), "Input width mismatch should be rejected")
	require.Error(t, other.LoadFile(filepath.Join(t.TempDir(), "missing.json")))
}

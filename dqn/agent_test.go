package dqn

import (
	"bytes"
	"testing"

	"tictactoe/game"

	"github.com/stretchr/testify/require"
)

func TestNewAgent(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		a, err := NewAgent(constant(0), WithSeed(1))
		require.NoError(t, err)
		require.Equal(t, DefaultEpsilon, a.Epsilon())
		require.Equal(t, DefaultMemoryCapacity, a.Memory().Cap())
		require.Equal(t, 0, a.Memory().Len())
	})

	t.Run("options", func(t *testing.T) {
		a, err := NewAgent(constant(0), WithSeed(1), WithMemoryCapacity(10), WithExploration(0.5, 0.1, 0.5))
		require.NoError(t, err)
		require.Equal(t, 0.5, a.Epsilon())
		require.Equal(t, 10, a.Memory().Cap())
	})

	t.Run("rejects invalid configuration", func(t *testing.T) {
		_, err := NewAgent(nil)
		require.Error(t, err)
		_, err = NewAgent(constant(0), WithExploration(0.5, 0.9, 0.99))
		require.Error(t, err)
	})
}

func TestAgentRemember(t *testing.T) {
	a, err := NewAgent(constant(0), WithSeed(1))
	require.NoError(t, err)

	before := board(t, [][]game.Player{
		{X, e, e},
		{e, O, e},
		{e, e, e},
	}, X)
	after, err := before.Successor(game.Move{Row: 0, Col: 2})
	require.NoError(t, err)

	require.NoError(t, a.Remember(before, after, 1.0))

	batch, err := a.Memory().SampleBatch(1)
	require.NoError(t, err)
	want, err := Encode(before)
	require.NoError(t, err)
	require.Equal(t, want.Values(), batch[0].State.Values())
	require.Equal(t, 1.0, batch[0].Label)

	require.ErrorIs(t, a.Remember(fakeState{Board: before, player: 9}, after, 0), ErrInvalidState)
	require.Equal(t, 1, a.Memory().Len())
}

func TestAgentChooseMove(t *testing.T) {
	a, err := NewAgent(centerForX(), WithSeed(1), WithExploration(0, 0, 1))
	require.NoError(t, err)
	b, _ := game.NewBoard(3)

	move, err := a.ChooseMove(b)
	require.NoError(t, err)
	require.Equal(t, game.Move{Row: 1, Col: 1}, move)

	policy, err := a.Policy(b)
	require.NoError(t, err)
	require.Len(t, policy, 9)
}

func TestAgentTrain(t *testing.T) {
	approx := constant(0)
	a, err := NewAgent(approx, WithSeed(1), WithExploration(1, 0.01, 0.5))
	require.NoError(t, err)
	b, _ := game.NewBoard(3)

	_, err = a.Train(1)
	require.ErrorIs(t, err, ErrInsufficientSamples)

	for i := 0; i < 4; i++ {
		require.NoError(t, a.Remember(b, b, 0))
	}
	_, err = a.Train(4)
	require.NoError(t, err)
	require.Equal(t, 0.5, a.Epsilon())
	require.Len(t, approx.fitStates, 1)
}

func TestAgentSaveLoad(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		src := &persistentStub{stubApproximator: *constant(0), weight: 0.125}
		a, err := NewAgent(src, WithSeed(1))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, a.Save(&buf))

		dst := &persistentStub{stubApproximator: *constant(0)}
		b, err := NewAgent(dst, WithSeed(1))
		require.NoError(t, err)
		require.NoError(t, b.Load(&buf))
		require.Equal(t, 0.125, dst.weight)
	})

	t.Run("approximator without persistence", func(t *testing.T) {
		a, err := NewAgent(constant(0), WithSeed(1))
		require.NoError(t, err)

		require.Error(t, a.Save(&bytes.Buffer{}))
		require.Error(t, a.Load(&bytes.Buffer{}))
	})

	t.Run("corrupt parameters", func(t *testing.T) {
		a, err := NewAgent(&persistentStub{stubApproximator: *constant(0)}, WithSeed(1))
		require.NoError(t, err)
		require.Error(t, a.Load(bytes.NewBufferString("not a number")))
	})
}

package network

import (
	"math"
	"os"

	"tictactoe/dqn"

	"github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"
	"github.com/pkg/errors"
)

// Config defines the value network architecture
type Config struct {
	Size         int     // Board size N
	HiddenLayers []int   // Hidden layer widths
	LearningRate float64 // SGD learning rate
	Momentum     float64 // SGD momentum
}

func DefaultConfig(size int) Config {
	return Config{
		Size:         size,
		HiddenLayers: []int{64, 16},
		LearningRate: 0.01,
		Momentum:     0.5,
	}
}

// Network is a multilayer perceptron over flattened encoded states with a
// single regression output clamped to [-1, 1].
type Network struct {
	config Config
	neural *deep.Neural
}

func New(config Config) (*Network, error) {
	if config.Size < 1 {
		return nil, errors.Errorf("network board size %d", config.Size)
	}
	if config.LearningRate <= 0 {
		return nil, errors.Errorf("learning rate %v must be positive", config.LearningRate)
	}

	layout := append(append([]int{}, config.HiddenLayers...), 1) // Output: single value
	neural := deep.NewNeural(&deep.Config{
		Inputs:     inputs(config.Size),
		Layout:     layout,
		Activation: deep.ActivationReLU,
		Mode:       deep.ModeRegression,
		Weight:     deep.NewNormal(0.1, 0.0),
		Bias:       true,
		Loss:       deep.LossMeanSquared,
	})

	return &Network{config: config, neural: neural}, nil
}

func inputs(size int) int {
	return size * size * dqn.Channels
}

func (n *Network) Config() Config { return n.config }

// Predict implements dqn.Approximator.
func (n *Network) Predict(state dqn.EncodedState) (float64, error) {
	if state.Size() != n.config.Size {
		return 0, errors.Errorf("network expects a %dx%d board, got %dx%d", n.config.Size, n.config.Size, state.Size(), state.Size())
	}
	return clamp(n.neural.Predict(state.Values())[0]), nil
}

// Fit implements dqn.Approximator with one shuffled SGD epoch over the batch.
// The returned loss is the mean squared error after the epoch.
func (n *Network) Fit(states []dqn.EncodedState, labels []float64) (float64, error) {
	if len(states) != len(labels) {
		return 0, errors.Errorf("%d states but %d labels", len(states), len(labels))
	}
	if len(states) == 0 {
		return 0, errors.New("empty training batch")
	}

	examples := make(training.Examples, len(states))
	for i, s := range states {
		if s.Size() != n.config.Size {
			return 0, errors.Errorf("network expects a %dx%d board, got %dx%d", n.config.Size, n.config.Size, s.Size(), s.Size())
		}
		examples[i] = training.Example{
			Input:    s.Values(),
			Response: []float64{labels[i]},
		}
	}

	trainer := training.NewTrainer(training.NewSGD(n.config.LearningRate, n.config.Momentum, 0.0, false), 0)
	trainer.Train(n.neural, examples, nil, 1)

	predictions := make([][]float64, len(examples))
	responses := make([][]float64, len(examples))
	for i, ex := range examples {
		predictions[i] = []float64{clamp(n.neural.Predict(ex.Input)[0])}
		responses[i] = ex.Response
	}
	loss := deep.GetLoss(deep.LossMeanSquared).F(predictions, responses)
	if math.IsNaN(loss) {
		return 0, errors.New("training diverged")
	}
	return loss, nil
}

// MarshalBinary implements encoding.BinaryMarshaler with go-deep's JSON dump.
func (n *Network) MarshalBinary() ([]byte, error) {
	return n.neural.Marshal()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The stored network
// must match the configured board size.
func (n *Network) UnmarshalBinary(buf []byte) error {
	neural, err := deep.Unmarshal(buf)
	if err != nil {
		return errors.Wrap(err, "decoding network")
	}
	if got := neural.Config.Inputs; got != inputs(n.config.Size) {
		return errors.Errorf("stored network takes %d inputs, want %d", got, inputs(n.config.Size))
	}
	n.neural = neural
	return nil
}

func (n *Network) SaveFile(path string) error {
	buf, err := n.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "encoding network")
	}
	return errors.Wrapf(os.WriteFile(path, buf, 0644), "writing %s", path)
}

func (n *Network) LoadFile(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	return n.UnmarshalBinary(buf)
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

package dqn

import (
	"encoding"
	"io"
	"time"

	"tictactoe/game"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

type Option func(a *Agent)

// Agent is a self-play value-learning player. It owns its memory and
// exploration schedule; it is not safe for concurrent use.
type Agent struct {
	approx         Approximator
	capacity       int
	initialEpsilon float64
	minEpsilon     float64
	epsilonDecay   float64
	rng            *rand.Rand

	memory      *Memory
	exploration *Exploration
	selector    *Selector
	trainer     *Trainer
}

func WithMemoryCapacity(capacity int) Option {
	return func(a *Agent) {
		if capacity > 0 {
			a.capacity = capacity
		}
	}
}

func WithExploration(initial, min, decay float64) Option {
	return func(a *Agent) {
		a.initialEpsilon = initial
		a.minEpsilon = min
		a.epsilonDecay = decay
	}
}

func WithSeed(seed uint64) Option {
	return func(a *Agent) {
		a.rng = rand.New(rand.NewSource(seed))
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(a *Agent) {
		if rng != nil {
			a.rng = rng
		}
	}
}

func NewAgent(approx Approximator, options ...Option) (*Agent, error) {
	if approx == nil {
		return nil, errors.New("agent needs an approximator")
	}
	a := &Agent{ // Default values
		approx:         approx,
		capacity:       DefaultMemoryCapacity,
		initialEpsilon: DefaultEpsilon,
		minEpsilon:     DefaultEpsilonMin,
		epsilonDecay:   DefaultEpsilonDecay,
	}
	for _, option := range options {
		option(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}

	exploration, err := NewExploration(a.initialEpsilon, a.minEpsilon, a.epsilonDecay)
	if err != nil {
		return nil, err
	}
	a.exploration = exploration
	a.memory = NewMemory(a.capacity, a.rng)
	a.selector = NewSelector(approx, exploration, a.rng)
	a.trainer = NewTrainer(approx, a.memory, exploration)
	return a, nil
}

// ChooseMove picks a move under the current exploration rate.
func (a *Agent) ChooseMove(state game.State) (game.Move, error) {
	selection, err := a.selector.SelectMove(state, GreedyExplore)
	if err != nil {
		return game.Move{}, err
	}
	return selection.Move, nil
}

// Policy returns a probability for every legal move.
func (a *Agent) Policy(state game.State) (game.Policy, error) {
	selection, err := a.selector.SelectMove(state, Distribution)
	if err != nil {
		return nil, err
	}
	return selection.Policy, nil
}

// Remember stores the encoding of state paired with label. next is accepted
// for symmetry with the training loop but is not stored: labels are
// undiscounted outcomes.
func (a *Agent) Remember(state, next game.State, label float64) error {
	encoded, err := Encode(state)
	if err != nil {
		return err
	}
	a.memory.Push(Transition{State: encoded, Label: label})
	return nil
}

// Train runs one replay step over batchSize remembered transitions.
func (a *Agent) Train(batchSize int) (float64, error) {
	return a.trainer.Replay(batchSize)
}

func (a *Agent) Epsilon() float64 { return a.exploration.Epsilon() }

func (a *Agent) Memory() *Memory { return a.memory }

// Save writes the approximator's parameters.
func (a *Agent) Save(w io.Writer) error {
	m, ok := a.approx.(encoding.BinaryMarshaler)
	if !ok {
		return errors.Errorf("approximator %T cannot be saved", a.approx)
	}
	buf, err := m.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "marshaling approximator")
	}
	_, err = w.Write(buf)
	return err
}

// Load restores approximator parameters written by Save.
func (a *Agent) Load(r io.Reader) error {
	u, ok := a.approx.(encoding.BinaryUnmarshaler)
	if !ok {
		return errors.Errorf("approximator %T cannot be loaded", a.approx)
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading approximator")
	}
	return errors.Wrap(u.UnmarshalBinary(buf), "unmarshaling approximator")
}

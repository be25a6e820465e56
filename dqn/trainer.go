package dqn

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Trainer fits the approximator on minibatches drawn from memory.
type Trainer struct {
	approx      Approximator
	memory      *Memory
	exploration *Exploration
}

func NewTrainer(approx Approximator, memory *Memory, exploration *Exploration) *Trainer {
	return &Trainer{approx: approx, memory: memory, exploration: exploration}
}

// Replay runs one training pass over a random batch and then decays epsilon.
// The returned loss is informational only.
func (t *Trainer) Replay(batchSize int) (float64, error) {
	batch, err := t.memory.SampleBatch(batchSize)
	if err != nil {
		return 0, err
	}

	states := make([]EncodedState, len(batch))
	labels := make([]float64, len(batch))
	for i, transition := range batch {
		states[i] = transition.State
		labels[i] = transition.Label
	}

	loss, err := t.approx.Fit(states, labels)
	if err != nil {
		return 0, errors.Wrapf(err, "fitting batch of %d", len(batch))
	}
	t.exploration.Decay()

	log.Debug().
		Int("batch", len(batch)).
		Float64("loss", loss).
		Float64("epsilon", t.exploration.Epsilon()).
		Msg("replay step")
	return loss, nil
}

package dqn

import (
	"math"

	"github.com/pkg/errors"
)

const (
	DefaultEpsilon      = 1.0
	DefaultEpsilonMin   = 0.01
	DefaultEpsilonDecay = 0.995
)

// Exploration is an epsilon schedule decayed once per replay step:
// epsilon = max(min, initial * decay^steps).
type Exploration struct {
	initial float64
	min     float64
	decay   float64
	steps   int
}

func NewExploration(initial, min, decay float64) (*Exploration, error) {
	if min < 0 || min > initial || initial > 1 {
		return nil, errors.Errorf("epsilon must satisfy 0 <= min (%v) <= initial (%v) <= 1", min, initial)
	}
	if decay <= 0 || decay > 1 {
		return nil, errors.Errorf("epsilon decay %v outside (0, 1]", decay)
	}
	return &Exploration{initial: initial, min: min, decay: decay}, nil
}

func (e *Exploration) Epsilon() float64 {
	return math.Max(e.min, e.initial*math.Pow(e.decay, float64(e.steps)))
}

// Decay advances the schedule by one replay step.
func (e *Exploration) Decay() {
	e.steps++
}

func (e *Exploration) Steps() int { return e.steps }

package dqn

import (
	"strconv"
)

// stubApproximator predicts with fn and records every Fit call.
type stubApproximator struct {
	fn     func(EncodedState) float64
	fitErr error

	fitStates [][]EncodedState
	fitLabels [][]float64
}

func constant(v float64) *stubApproximator {
	return &stubApproximator{fn: func(EncodedState) float64 { return v }}
}

func (s *stubApproximator) Predict(state EncodedState) (float64, error) {
	return s.fn(state), nil
}

func (s *stubApproximator) Fit(states []EncodedState, labels []float64) (float64, error) {
	if s.fitErr != nil {
		return 0, s.fitErr
	}
	s.fitStates = append(s.fitStates, states)
	s.fitLabels = append(s.fitLabels, labels)
	return 0.25, nil
}

// persistentStub stores a single float as its parameters.
type persistentStub struct {
	stubApproximator
	weight float64
}

func (p *persistentStub) MarshalBinary() ([]byte, error) {
	return []byte(strconv.FormatFloat(p.weight, 'g', -1, 64)), nil
}

func (p *persistentStub) UnmarshalBinary(buf []byte) error {
	w, err := strconv.ParseFloat(string(buf), 64)
	if err != nil {
		return err
	}
	p.weight = w
	return nil
}

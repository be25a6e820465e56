package dqn

// Approximator estimates the value of an encoded position from PlayerA's point
// of view, in [-1, 1], and learns from labeled batches.
type Approximator interface {
	Predict(state EncodedState) (float64, error)
	// Fit performs one training pass over the batch and returns its loss.
	Fit(states []EncodedState, labels []float64) (loss float64, err error)
}

package dqn

import "github.com/pkg/errors"

var (
	// ErrInvalidState reports a malformed game state passed to Encode.
	ErrInvalidState = errors.New("invalid game state")
	// ErrInsufficientSamples reports a batch request larger than the memory.
	ErrInsufficientSamples = errors.New("insufficient samples")
	// ErrDegenerateDistribution reports move weights that sum to zero.
	ErrDegenerateDistribution = errors.New("degenerate move distribution")
	// ErrNoLegalMoves reports move selection on a terminal state.
	ErrNoLegalMoves = errors.New("no legal moves")
)

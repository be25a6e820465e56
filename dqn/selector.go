package dqn

import (
	"math"

	"tictactoe/game"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

type Mode int

const (
	// GreedyExplore picks a random move with probability epsilon and the best
	// scoring move otherwise.
	GreedyExplore Mode = iota
	// Distribution derives a probability for every legal move.
	Distribution
)

type Selection struct {
	Move   game.Move   // set in GreedyExplore mode
	Policy game.Policy // set in Distribution mode
}

// Selector scores each legal move by a one-ply lookahead through the
// approximator.
type Selector struct {
	approx      Approximator
	exploration *Exploration
	rng         *rand.Rand
}

func NewSelector(approx Approximator, exploration *Exploration, rng *rand.Rand) *Selector {
	return &Selector{approx: approx, exploration: exploration, rng: rng}
}

func (s *Selector) SelectMove(state game.State, mode Mode) (Selection, error) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return Selection{}, errors.Wrapf(ErrNoLegalMoves, "after %d moves", state.NumMoves())
	}

	switch mode {
	case GreedyExplore:
		move, err := s.greedy(state, moves)
		return Selection{Move: move}, err
	case Distribution:
		policy, err := s.distribution(state, moves)
		return Selection{Policy: policy}, err
	default:
		return Selection{}, errors.Errorf("unknown selection mode %d", mode)
	}
}

func (s *Selector) greedy(state game.State, moves []game.Move) (game.Move, error) {
	if s.rng.Float64() < s.exploration.Epsilon() {
		return moves[s.rng.Intn(len(moves))], nil
	}

	values, err := s.successorValues(state, moves)
	if err != nil {
		return game.Move{}, err
	}

	// The successor is valued for the opponent, so the mover maximizes its
	// negation. Ties go to the smallest (row, col).
	best := moves[0]
	bestValue := math.Inf(-1)
	for i, m := range moves {
		q := -values[i]
		if q > bestValue || (q == bestValue && m.Less(best)) {
			best, bestValue = m, q
		}
	}
	return best, nil
}

func (s *Selector) distribution(state game.State, moves []game.Move) (game.Policy, error) {
	values, err := s.successorValues(state, moves)
	if err != nil {
		return nil, err
	}

	// Weight grows as the successor looks worse for whoever moves there.
	weights := make([]float64, len(moves))
	sum := 0.0
	for i, v := range values {
		weights[i] = 1 - v
		sum += weights[i]
	}
	if sum == 0 {
		return nil, errors.Wrapf(ErrDegenerateDistribution, "%d moves", len(moves))
	}

	policy := make(game.Policy, len(moves))
	for i, m := range moves {
		policy[m] = weights[i] / sum
	}
	return policy, nil
}

// successorValues returns, for each move, the approximator's value of the
// resulting position from the perspective of the player to move there.
func (s *Selector) successorValues(state game.State, moves []game.Move) ([]float64, error) {
	values := make([]float64, len(moves))
	for i, m := range moves {
		next, err := state.Successor(m)
		if err != nil {
			return nil, errors.Wrapf(err, "successor for %s", m)
		}
		encoded, err := Encode(next)
		if err != nil {
			return nil, err
		}
		v, err := s.approx.Predict(encoded)
		if err != nil {
			return nil, errors.Wrapf(err, "predicting %s", m)
		}
		if math.IsNaN(v) || v < -1 || v > 1 {
			return nil, errors.Errorf("approximator returned %v for %s, want [-1, 1]", v, m)
		}
		values[i] = v * float64(next.Player())
	}
	return values, nil
}

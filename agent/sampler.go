package agent

import (
	"fmt"
	"math"
	"sort"

	"tictactoe/game"

	"golang.org/x/exp/rand"
)

// Sampler draws moves from another agent's policy sharpened or flattened by a
// temperature. Temperature 1 samples the policy as is.
type Sampler struct {
	source      PolicyAgent
	temperature float64
	rng         *rand.Rand
}

func NewSampler(source PolicyAgent, temperature float64, seed uint64) (*Sampler, error) {
	if temperature <= 0 {
		return nil, fmt.Errorf("temperature %v must be positive", temperature)
	}
	return &Sampler{
		source:      source,
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}, nil
}

func (s *Sampler) ChooseMove(state game.State) (game.Move, error) {
	policy, err := s.source.Policy(state)
	if err != nil {
		return game.Move{}, err
	}
	if len(policy) == 0 {
		return game.Move{}, fmt.Errorf("sampler: %w", game.ErrGameOver)
	}
	return sample(adjustTemperature(policy, s.temperature), s.rng.Float64()), nil
}

func adjustTemperature(policy game.Policy, temperature float64) game.Policy {
	// Compute temperature-adjusted move probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make(game.Policy, len(policy))
	for move, p := range policy {
		prob := math.Pow(p, exponent)
		sum += prob
		adjusted[move] = prob
	}
	if sum == 0 {
		return policy
	}
	// Normalize
	for move := range adjusted {
		adjusted[move] /= sum
	}
	return adjusted
}

// sample walks the moves in row-major order until the cumulative probability
// exceeds sampled.
func sample(policy game.Policy, sampled float64) game.Move {
	moves := make([]game.Move, 0, len(policy))
	for move := range policy {
		moves = append(moves, move)
	}
	sort.Slice(moves, func(i, j int) bool { return moves[i].Less(moves[j]) })

	cumulative := 0.0
	for _, move := range moves {
		cumulative += policy[move]
		if sampled < cumulative {
			return move
		}
	}
	return moves[len(moves)-1] // Fallback in case of rounding errors
}

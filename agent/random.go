package agent

import (
	"fmt"

	"tictactoe/game"

	"golang.org/x/exp/rand"
)

// Random plays a uniformly random legal move.
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) ChooseMove(state game.State) (game.Move, error) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return game.Move{}, fmt.Errorf("random agent: %w", game.ErrGameOver)
	}
	return moves[r.rng.Intn(len(moves))], nil
}

package agent

import (
	"tictactoe/experiments/metrics"
	"tictactoe/game"
)

// Agent picks a move for the player to move.
type Agent interface {
	ChooseMove(state game.State) (game.Move, error)
}

// PolicyAgent returns a probability for every legal move.
type PolicyAgent interface {
	Policy(state game.State) (game.Policy, error)
}

// Reporter is implemented by agents that search before moving.
type Reporter interface {
	LastSearch() metrics.SearchMetric
}

// findMax returns the most probable move. Ties go to the smallest move so that
// the result does not depend on map order.
func findMax(policy game.Policy) (game.Move, bool) {
	var maxMove game.Move
	maxProb := -1.0
	for move, prob := range policy {
		if prob > maxProb || (prob == maxProb && move.Less(maxMove)) {
			maxProb = prob
			maxMove = move
		}
	}
	return maxMove, maxProb >= 0
}

package agent

import (
	"fmt"

	"tictactoe/experiments/metrics"
	"tictactoe/game"
	"tictactoe/searcher"
)

// MCTS plays the most visited move of a tree search.
type MCTS struct {
	mcts *searcher.MCTS
	last metrics.SearchMetric
}

func NewMCTS(mcts *searcher.MCTS) *MCTS {
	return &MCTS{mcts: mcts}
}

func (a *MCTS) ChooseMove(state game.State) (game.Move, error) {
	policy, err := a.Policy(state)
	if err != nil {
		return game.Move{}, err
	}
	move, ok := findMax(policy)
	if !ok {
		return game.Move{}, fmt.Errorf("mcts agent: %w", game.ErrGameOver)
	}
	return move, nil
}

// Policy returns the visit share of each root move.
func (a *MCTS) Policy(state game.State) (game.Policy, error) {
	policy, metric, err := a.mcts.Simulate(state)
	a.last = metric
	return policy, err
}

func (a *MCTS) LastSearch() metrics.SearchMetric { return a.last }

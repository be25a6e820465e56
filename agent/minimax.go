package agent

import (
	"tictactoe/game"
	"tictactoe/searcher"
)

// Minimax plays the best move of a depth-limited alpha-beta search.
type Minimax struct {
	search *searcher.AlphaBeta
}

// NewMinimax searches depth plies ahead; a non-positive depth plays perfectly.
func NewMinimax(depth int) *Minimax {
	return &Minimax{search: searcher.NewAlphaBeta(depth, game.EvaluateLines)}
}

func (m *Minimax) ChooseMove(state game.State) (game.Move, error) {
	move, _, err := m.search.Search(state)
	return move, err
}

package searcher

import (
	"fmt"
	"math"

	"tictactoe/game"
)

// AlphaBeta is a depth-limited negamax search with alpha-beta pruning. Leaves
// at the depth limit are scored by the evaluation function from the current
// player's perspective. It holds no search state and is safe for concurrent
// use.
type AlphaBeta struct {
	depth    int
	evaluate game.Evaluate
}

// NewAlphaBeta returns a search limited to depth plies. A non-positive depth
// searches to the end of the game.
func NewAlphaBeta(depth int, evaluate game.Evaluate) *AlphaBeta {
	if depth <= 0 {
		depth = math.MaxInt
	}
	if evaluate == nil {
		evaluate = game.EvaluateLines
	}
	return &AlphaBeta{depth: depth, evaluate: evaluate}
}

func (a *AlphaBeta) Depth() int { return a.depth }

// Search returns the best move for the player to move and its score. Among
// equally scored moves the first in row-major order wins.
func (a *AlphaBeta) Search(state game.State) (game.Move, float64, error) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return game.Move{}, 0, fmt.Errorf("alpha-beta search: %w", game.ErrGameOver)
	}

	best := moves[0]
	alpha, beta := math.Inf(-1), math.Inf(1)
	for _, move := range moves {
		next, err := state.Successor(move)
		if err != nil {
			return game.Move{}, 0, err
		}
		score, err := a.negamax(next, a.depth-1, -beta, -alpha)
		if err != nil {
			return game.Move{}, 0, err
		}
		if score = -score; score > alpha {
			alpha = score
			best = move
		}
	}
	return best, alpha, nil
}

// BestMove adapts Search to a RolloutPolicy.
func (a *AlphaBeta) BestMove(state game.State) (game.Move, error) {
	move, _, err := a.Search(state)
	return move, err
}

func (a *AlphaBeta) negamax(state game.State, depth int, alpha, beta float64) (float64, error) {
	if state.IsEnd() {
		return terminalScore(state), nil
	}
	if depth <= 0 {
		return a.evaluate(state), nil
	}

	value := math.Inf(-1)
	for _, move := range state.LegalMoves() {
		next, err := state.Successor(move)
		if err != nil {
			return 0, err
		}
		score, err := a.negamax(next, depth-1, -beta, -alpha)
		if err != nil {
			return 0, err
		}
		value = math.Max(value, -score)
		alpha = math.Max(alpha, value)
		if alpha >= beta {
			break
		}
	}
	return value, nil
}

// terminalScore ranks decided games above any heuristic score and prefers
// earlier wins and later losses.
func terminalScore(state game.State) float64 {
	empty := float64(state.Size()*state.Size() - state.NumMoves())

	switch state.Winner() {
	case game.Empty:
		return Draw
	case state.Player():
		return 2 + empty
	default:
		return -(2 + empty)
	}
}

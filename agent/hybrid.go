package agent

import "tictactoe/game"

// Hybrid delegates to early while more than threshold cells are empty and to
// late afterwards.
type Hybrid struct {
	early     Agent
	late      Agent
	threshold int
}

func NewHybrid(early, late Agent, threshold int) *Hybrid {
	return &Hybrid{early: early, late: late, threshold: threshold}
}

func (h *Hybrid) ChooseMove(state game.State) (game.Move, error) {
	return h.delegate(state).ChooseMove(state)
}

func (h *Hybrid) delegate(state game.State) Agent {
	empty := state.Size()*state.Size() - state.NumMoves()
	if empty <= h.threshold {
		return h.late
	}
	return h.early
}

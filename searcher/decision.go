package searcher

import (
	"math"
	"sync"

	"tictactoe/game"

	"golang.org/x/exp/rand"
)

// decision is a search tree node. Its statistics are kept from the perspective
// of the player whose move led to it.
type decision struct {
	sync.RWMutex
	parent     *decision
	player     game.Player
	hash       game.StateHash
	unexplored []game.Move
	explored   []game.Move
	children   []*decision
	rewards    float64
	visits     float64
}

func newDecision(parent *decision, player game.Player, state game.State) *decision {
	moves := state.LegalMoves()
	unexplored := make([]game.Move, len(moves))
	copy(unexplored, moves)
	rand.Shuffle(len(unexplored), func(i, j int) {
		unexplored[i], unexplored[j] = unexplored[j], unexplored[i]
	})

	return &decision{
		parent:     parent,
		player:     player,
		hash:       state.Hash(),
		unexplored: unexplored,
		explored:   make([]game.Move, 0, len(moves)),
		children:   make([]*decision, 0, len(moves)),
	}
}

// SelectOrExpand descends one level. It returns the node itself for a terminal
// state, a freshly added child after expansion or the best UCT child with
// selected set.
func (d *decision) SelectOrExpand(state game.State) (*decision, game.State, bool, error) {
	d.Lock()
	defer d.Unlock()

	if len(d.unexplored) == 0 && len(d.children) == 0 { // Terminal node
		return d, state, false, nil
	}

	if len(d.unexplored) > 0 { // Expandable node
		move := d.unexplored[len(d.unexplored)-1]
		next, err := state.Successor(move)
		if err != nil {
			return nil, nil, false, err
		}
		d.unexplored = d.unexplored[:len(d.unexplored)-1]

		child := newDecision(d, state.Player(), next)
		d.explored = append(d.explored, move)
		d.children = append(d.children, child)
		child.applyLoss()
		return child, next, false, nil
	}

	// Fully expanded node
	ith := d.pickChild()
	next, err := state.Successor(d.explored[ith])
	if err != nil {
		return nil, nil, false, err
	}
	child := d.children[ith]
	child.applyLoss()
	return child, next, true, nil
}

func (d *decision) pickChild() int {
	total := 0.0
	for _, child := range d.children {
		total += child.Visits()
	}
	if total == 0 {
		panic("node has children but no visits")
	}
	policy := newUCT(CSquared, total)

	maxIndex := -1
	maxScore := math.Inf(-1)
	for i, child := range d.children {
		if score := child.score(policy); score > maxScore {
			maxScore = score
			maxIndex = i
		}
	}
	return maxIndex
}

// applyLoss records a virtual loss so that concurrent searches spread out.
func (d *decision) applyLoss() {
	d.Lock()
	defer d.Unlock()

	d.rewards += Loss
	d.visits++
}

func (d *decision) reverseLoss() {
	d.rewards -= Loss
	d.visits--
}

func (d *decision) score(policy *uct) float64 {
	d.RLock()
	defer d.RUnlock()

	return policy.evaluate(d.rewards, d.visits)
}

// Backup credits the outcome and returns the parent. score is from player's
// perspective; an Empty player means a draw.
func (d *decision) Backup(player game.Player, score float64) *decision {
	d.Lock()
	defer d.Unlock()

	if d.parent != nil { // Non-root node
		d.reverseLoss()
	}

	switch player {
	case game.Empty:
		d.rewards += Draw
	case d.player:
		d.rewards += score
	default:
		d.rewards -= score
	}
	d.visits++

	return d.parent
}

func (d *decision) Visits() float64 {
	d.RLock()
	defer d.RUnlock()

	return d.visits
}

// Policy returns the share of visits of each explored move.
func (d *decision) Policy() game.Policy {
	d.RLock()
	defer d.RUnlock()

	total := 0.0
	visits := make([]float64, len(d.children))
	for i, child := range d.children {
		visits[i] = child.Visits()
		total += visits[i]
	}

	policy := make(game.Policy, len(d.children))
	for i, move := range d.explored {
		if total > 0 {
			policy[move] = visits[i] / total
		}
	}
	return policy
}

// find returns the descendant at most depth plies below d whose position has
// the given hash.
func (d *decision) find(hash game.StateHash, depth int) *decision {
	if d.hash == hash {
		return d
	}
	if depth == 0 {
		return nil
	}

	d.RLock()
	children := d.children
	d.RUnlock()
	for _, child := range children {
		if found := child.find(hash, depth-1); found != nil {
			return found
		}
	}
	return nil
}

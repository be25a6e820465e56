package searcher

import (
	"math"
	"sync"
	"time"

	"tictactoe/experiments/metrics"
	"tictactoe/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

const MaxCutoff = math.MaxInt

type Option func(mcts *MCTS)

// RolloutPolicy picks the next move during a playout. It must be safe to call
// from several goroutines.
type RolloutPolicy func(state game.State) (game.Move, error)

type MCTS struct {
	goroutines int
	duration   time.Duration
	episodes   int
	cutoff     int
	evaluate   game.Evaluate
	rollout    RolloutPolicy
	root       *decision
	metrics    metrics.Collector
}

func WithDuration(duration time.Duration) Option {
	return func(u *MCTS) {
		if duration > 0 {
			u.duration = duration
		}
	}
}

func WithEpisodes(episodes int) Option {
	return func(u *MCTS) {
		if episodes > 0 {
			u.episodes = episodes
		}
	}
}

func WithCutoff(depth int) Option {
	return func(u *MCTS) {
		if depth > 0 {
			u.cutoff = depth
		}
	}
}

func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(m *MCTS) {
		if evaluate != nil {
			m.evaluate = evaluate
		}
	}
}

func WithRolloutPolicy(rollout RolloutPolicy) Option {
	return func(m *MCTS) {
		if rollout != nil {
			m.rollout = rollout
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(goroutines int, options ...Option) *MCTS {
	if goroutines < 1 {
		goroutines = 1
	}
	m := &MCTS{ // Default values
		goroutines: goroutines,
		cutoff:     MaxCutoff,
		evaluate:   game.EvaluateLines,
		rollout:    RandomRollout,
		metrics:    metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.episodes <= 0 && m.duration <= 0 {
		panic("Must specify search episodes or duration")
	}
	return m
}

// RandomRollout plays a uniformly random legal move.
func RandomRollout(state game.State) (game.Move, error) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return game.Move{}, game.ErrGameOver
	}
	return moves[rand.Intn(len(moves))], nil
}

// Simulate searches from state and returns the visit share of each root move.
// A subtree from the previous search is reused when state is reachable from
// its root within two plies.
func (m *MCTS) Simulate(state game.State) (game.Policy, metrics.SearchMetric, error) {
	m.findRoot(state)

	// Run simulations to collect statistics
	m.metrics.Start(m.goroutines, m.cutoff)
	var err error
	if m.episodes > 0 {
		err = m.iterate(state)
	} else {
		err = m.countdown(state)
	}
	metric := m.metrics.Complete()
	if err != nil {
		return nil, metric, err
	}

	// Output move policy and move finding metrics
	return m.root.Policy(), metric, nil
}

func (m *MCTS) findRoot(state game.State) {
	var root *decision
	if m.root != nil {
		root = m.root.find(state.Hash(), 2)
	}
	if root == nil {
		m.root = newDecision(nil, state.Player().Opponent(), state)
		m.metrics.SetTreeReset(true)
		return
	}

	log.Debug().Msgf("reusing subtree with %v visits", root.Visits())
	root.parent = nil
	m.root = root
	m.metrics.SetTreeReset(false)
}

func (m *MCTS) iterate(state game.State) error {
	task := make(chan any, m.episodes)
	for i := 0; i < m.episodes; i++ {
		task <- nil
	}
	close(task)

	var firstErr error
	var once sync.Once
	var wg sync.WaitGroup
	for i := 0; i < m.goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for range task {
				if err := m.simulate(state); err != nil {
					once.Do(func() { firstErr = err })
					return
				}
				m.metrics.AddEpisode()
			}
		}()
	}

	wg.Wait()
	return firstErr
}

func (m *MCTS) countdown(state game.State) error {
	deadline := time.Now().Add(m.duration)

	var firstErr error
	var once sync.Once
	var wg sync.WaitGroup
	for i := 0; i < m.goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for time.Now().Before(deadline) {
				if err := m.simulate(state); err != nil {
					once.Do(func() { firstErr = err })
					return
				}
				m.metrics.AddEpisode()
			}
		}()
	}

	wg.Wait()
	return firstErr
}

func (m *MCTS) simulate(state game.State) error {
	newNode, newState, err := selectThenExpand(m.root, state)
	if err != nil {
		return err
	}
	player, score, err := m.playout(newState)
	if err != nil {
		return err
	}
	backup(newNode, player, score)
	return nil
}

func selectThenExpand(root *decision, state game.State) (*decision, game.State, error) {
	parent := root
	child, state, selected, err := parent.SelectOrExpand(state)
	for err == nil && selected && child != parent {
		parent = child
		child, state, selected, err = parent.SelectOrExpand(state)
	}
	return child, state, err
}

// playout returns the player an outcome is scored for and the score from that
// player's perspective.
func (m *MCTS) playout(state game.State) (game.Player, float64, error) {
	depth := 0
	// Rollout till game over or for cutoff number of moves
	for !state.IsEnd() && depth < m.cutoff {
		move, err := m.rollout(state)
		if err != nil {
			return game.Empty, 0, err
		}
		if state, err = state.Successor(move); err != nil {
			return game.Empty, 0, err
		}
		depth++
	}

	if state.IsEnd() { // Game over before cutoff
		m.metrics.AddFullPlayout()
		return state.Winner(), Win, nil
	}

	// At cutoff state, return an evaluation score from current player's perspective
	return state.Player(), m.evaluate(state), nil
}

func backup(newNode *decision, player game.Player, score float64) {
	node := newNode
	for node != nil {
		parent := node.Backup(player, score)
		node = parent
	}
}

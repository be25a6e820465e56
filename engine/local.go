package engine

import (
	"fmt"
	"time"

	"tictactoe/agent"
	"tictactoe/experiments/metrics"
	"tictactoe/game"

	"github.com/rs/zerolog/log"
)

// Observer is called after every move with the position before and after it.
type Observer func(before, after game.State, move game.Move)

// Local plays one game between two in-process agents. The first agent moves
// whenever an even number of moves has been played.
type Local struct {
	State    *game.Board
	Agents   [2]agent.Agent
	observer Observer
}

func LocalEngine(size int, first, second agent.Agent) (*Local, error) {
	if first == nil || second == nil {
		return nil, fmt.Errorf("local engine needs two agents")
	}
	state, err := game.NewBoard(size)
	if err != nil {
		return nil, err
	}
	return &Local{
		State:  state,
		Agents: [2]agent.Agent{first, second},
	}, nil
}

// Observe registers a callback for every move played.
func (e *Local) Observe(observer Observer) {
	e.observer = observer
}

// Run executes the game loop until the game ends. An agent error or an illegal
// move aborts the game.
func (e *Local) Run() (metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{StartTime: time.Now()}
	var moveMetrics []metrics.MoveMetric

	for !e.State.IsEnd() {
		agentIndex := e.State.NumMoves() % 2
		player := e.State.Player()

		start := time.Now()
		move, err := e.Agents[agentIndex].ChooseMove(e.State)
		if err != nil {
			return gameMetric, moveMetrics, fmt.Errorf("agent %d at move %d: %w", agentIndex+1, e.State.NumMoves()+1, err)
		}
		moveMetric := metrics.MoveMetric{
			Step:     e.State.NumMoves() + 1,
			Player:   player,
			Move:     move,
			Duration: time.Since(start),
		}
		if r, ok := e.Agents[agentIndex].(agent.Reporter); ok {
			moveMetric.SearchMetric = r.LastSearch()
		}

		before := e.State.Copy()
		if err := e.State.Play(move); err != nil {
			return gameMetric, moveMetrics, fmt.Errorf("agent %d played %s: %w", agentIndex+1, move, err)
		}
		moveMetrics = append(moveMetrics, moveMetric)
		if e.observer != nil {
			e.observer(before, e.State.Copy(), move)
		}
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.Winner = e.State.Winner()
	gameMetric.TotalMoves = e.State.NumMoves()

	log.Debug().Msgf("game over after %d moves, winner %s", gameMetric.TotalMoves, gameMetric.Winner)
	return gameMetric, moveMetrics, nil
}

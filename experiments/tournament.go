package experiments

import (
	"fmt"
	"time"

	"tictactoe/agent"
	"tictactoe/engine"
	"tictactoe/experiments/metrics"
	"tictactoe/game"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Tournament struct {
	RunID   string
	Size    int
	Games   int // Per matchup
	Agents  []string
	Factory Factory
}

func NewTournament(size, games int, agents []string, factory Factory) *Tournament {
	return &Tournament{
		RunID:   uuid.NewString(),
		Size:    size,
		Games:   games,
		Agents:  agents,
		Factory: factory,
	}
}

type Results struct {
	Matchups []metrics.MatchupRecord
	Games    []metrics.GameRecord
	Moves    []metrics.MoveRecord
}

// Run plays every ordered pair of agents, an agent against itself included.
// The first agent of a pair always moves first. A failing game stops the
// tournament.
func (t *Tournament) Run() (Results, error) {
	var results Results
	count := 0

	log.Info().Str("run", t.RunID).Msgf("starting tournament of %d agents...", len(t.Agents))

	for i, name1 := range t.Agents {
		for j, name2 := range t.Agents {
			agent1, agent2, err := t.pair(name1, name2, i == j)
			if err != nil {
				return results, err
			}

			log.Info().Msgf("%s (Player 1) vs %s (Player 2)", name1, name2)
			start := time.Now()
			record := metrics.MatchupRecord{RunID: t.RunID, Agent1: name1, Agent2: name2}

			for g := 0; g < t.Games; g++ {
				e, err := engine.LocalEngine(t.Size, agent1, agent2)
				if err != nil {
					return results, err
				}
				gameMetric, moveMetrics, err := e.Run()
				if err != nil {
					log.Error().Err(err).Msgf("game %d of %s vs %s failed", g+1, name1, name2)
					return results, fmt.Errorf("%s vs %s game %d: %w", name1, name2, g+1, err)
				}

				switch gameMetric.Winner {
				case game.PlayerA:
					record.Wins1++
				case game.PlayerB:
					record.Wins2++
				default:
					record.Ties++
				}

				count++
				results.Games = append(results.Games, metrics.GameRecord{
					ID:         count,
					Agent1:     name1,
					Agent2:     name2,
					GameMetric: gameMetric,
				})
				for _, mm := range moveMetrics {
					results.Moves = append(results.Moves, metrics.MoveRecord{
						Game:       count,
						MoveMetric: mm,
					})
				}
			}

			record.Duration = time.Since(start)
			results.Matchups = append(results.Matchups, record)
			log.Info().
				Int("wins1", record.Wins1).
				Int("wins2", record.Wins2).
				Int("ties", record.Ties).
				Dur("runtime", record.Duration).
				Msgf("Player 1 won %d games, player 2 won %d games, %d ties", record.Wins1, record.Wins2, record.Ties)
		}
	}

	log.Info().Str("run", t.RunID).Msg("completed tournament")
	return results, nil
}

// pair builds the agents of a matchup. An agent facing itself is a single
// instance playing both sides.
func (t *Tournament) pair(name1, name2 string, same bool) (agent.Agent, agent.Agent, error) {
	agent1, err := t.Factory(name1)
	if err != nil {
		return nil, nil, err
	}
	if same {
		return agent1, agent1, nil
	}
	agent2, err := t.Factory(name2)
	if err != nil {
		return nil, nil, err
	}
	return agent1, agent2, nil
}

// Store writes the results under writer's directory.
func (r Results) Store(writer *metrics.Writer) error {
	if err := writer.WriteMatchups(r.Matchups); err != nil {
		return fmt.Errorf("failed to store matchups: %w", err)
	}
	log.Info().Msg("stored matchups")

	if err := writer.WriteGameRecords(r.Games); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(r.Moves); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")
	return nil
}

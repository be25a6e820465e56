package experiments

import (
	"fmt"
	"os"
	"path/filepath"

	"tictactoe/config"
	"tictactoe/dqn"
	"tictactoe/engine"
	"tictactoe/experiments/metrics"
	"tictactoe/game"

	"github.com/rs/zerolog/log"
)

// SelfPlay trains a value-learning agent by letting it play both sides.
type SelfPlay struct {
	size   int
	cfg    config.TrainingConfig
	agent  *dqn.Agent
	report func(metrics.TrainingRecord)
}

func NewSelfPlay(size int, cfg config.TrainingConfig, agent *dqn.Agent) *SelfPlay {
	return &SelfPlay{size: size, cfg: cfg, agent: agent}
}

// OnReport registers a callback for every training record.
func (s *SelfPlay) OnReport(report func(metrics.TrainingRecord)) {
	s.report = report
}

// Run plays cfg.Episodes games. After each game every position reached is
// remembered with the game's outcome and, once memory holds a batch, one
// replay step runs.
func (s *SelfPlay) Run() ([]metrics.TrainingRecord, error) {
	var records []metrics.TrainingRecord
	window := metrics.TrainingRecord{}
	lossSum := 0.0

	log.Info().Msgf("starting self-play for %d episodes...", s.cfg.Episodes)

	for episode := 1; episode <= s.cfg.Episodes; episode++ {
		winner, err := s.playEpisode()
		if err != nil {
			return records, fmt.Errorf("episode %d: %w", episode, err)
		}
		switch winner {
		case game.PlayerA:
			window.WinsA++
		case game.PlayerB:
			window.WinsB++
		default:
			window.Draws++
		}

		if s.agent.Memory().Len() >= s.cfg.BatchSize {
			loss, err := s.agent.Train(s.cfg.BatchSize)
			if err != nil {
				return records, fmt.Errorf("episode %d: %w", episode, err)
			}
			lossSum += loss
			window.Replays++
		}

		if s.cfg.ReportEvery > 0 && episode%s.cfg.ReportEvery == 0 {
			window.Episode = episode
			window.Epsilon = s.agent.Epsilon()
			window.Memory = s.agent.Memory().Len()
			if window.Replays > 0 {
				window.Loss = lossSum / float64(window.Replays)
			}
			records = append(records, window)
			if s.report != nil {
				s.report(window)
			}
			log.Info().
				Int("episode", window.Episode).
				Float64("loss", window.Loss).
				Float64("epsilon", window.Epsilon).
				Int("memory", window.Memory).
				Msgf("X won %d, O won %d, %d draws", window.WinsA, window.WinsB, window.Draws)

			window = metrics.TrainingRecord{}
			lossSum = 0
		}

		if s.cfg.CheckpointEvery > 0 && episode%s.cfg.CheckpointEvery == 0 {
			if err := s.Checkpoint(episode); err != nil {
				return records, err
			}
		}
	}

	log.Info().Msg("completed self-play")
	return records, nil
}

func (s *SelfPlay) playEpisode() (game.Player, error) {
	e, err := engine.LocalEngine(s.size, s.agent, s.agent)
	if err != nil {
		return game.Empty, err
	}
	var positions []game.State
	e.Observe(func(_, after game.State, _ game.Move) {
		positions = append(positions, after)
	})

	gameMetric, _, err := e.Run()
	if err != nil {
		return game.Empty, err
	}

	// Labels are the undiscounted outcome from PlayerA's perspective
	label := float64(gameMetric.Winner)
	for i, position := range positions {
		next := position
		if i+1 < len(positions) {
			next = positions[i+1]
		}
		if err := s.agent.Remember(position, next, label); err != nil {
			return game.Empty, err
		}
	}
	return gameMetric.Winner, nil
}

// Checkpoint writes the model and the replay memory to the checkpoint
// directory.
func (s *SelfPlay) Checkpoint(episode int) error {
	if err := os.MkdirAll(s.cfg.CheckpointDir, 0755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	modelPath := filepath.Join(s.cfg.CheckpointDir, fmt.Sprintf("model-%06d.json", episode))
	if err := SaveModel(s.agent, modelPath); err != nil {
		return err
	}

	memory, err := s.agent.Memory().MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode memory: %w", err)
	}
	memoryPath := filepath.Join(s.cfg.CheckpointDir, fmt.Sprintf("memory-%06d.gob", episode))
	if err := os.WriteFile(memoryPath, memory, 0644); err != nil {
		return fmt.Errorf("failed to write memory: %w", err)
	}

	log.Info().Str("model", modelPath).Str("memory", memoryPath).Msg("stored checkpoint")
	return nil
}

// SaveModel writes the agent's approximator to path.
func SaveModel(agent *dqn.Agent, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	if err := agent.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to save model: %w", err)
	}
	return f.Close()
}

package experiments

import (
	"fmt"

	"tictactoe/agent"
	"tictactoe/config"
	"tictactoe/dqn"
	"tictactoe/dqn/network"
	"tictactoe/game"
	"tictactoe/searcher"
)

// Agent names understood by NewFactory
const (
	Random    = "Random"
	Minimax   = "Minimax"
	MCTS      = "MCTS"
	DQN       = "DQN"
	DQNPolicy = "DQNPolicy"
	Hybrid    = "Hybrid"
)

// Factory builds a fresh agent by name.
type Factory func(name string) (agent.Agent, error)

// NewFactory builds agents from cfg. Each agent gets its own seed derived from
// cfg.Seed.
func NewFactory(cfg config.Config) Factory {
	seed := cfg.Seed
	next := func() uint64 {
		seed++
		return seed
	}

	return func(name string) (agent.Agent, error) {
		switch name {
		case Random:
			return agent.NewRandom(next()), nil
		case Minimax:
			return agent.NewMinimax(cfg.Search.MinimaxDepth), nil
		case MCTS:
			return agent.NewMCTS(createMCTS(cfg.Search, cfg.Search.MCTSEpisodes, nil)), nil
		case DQN:
			// Tournament play exploits: epsilon stays at its floor
			eps := cfg.DQN.EpsilonMin
			return NewDQNAgent(cfg, next(), dqn.WithExploration(eps, eps, 1))
		case DQNPolicy:
			eps := cfg.DQN.EpsilonMin
			d, err := NewDQNAgent(cfg, next(), dqn.WithExploration(eps, eps, 1))
			if err != nil {
				return nil, err
			}
			return agent.NewSampler(d, cfg.DQN.Temperature, next())
		case Hybrid:
			rollout := searcher.NewAlphaBeta(cfg.Search.HybridRollout, game.EvaluateLines)
			early := agent.NewMCTS(createMCTS(cfg.Search, cfg.Search.HybridEpisodes, rollout.BestMove))
			return agent.NewHybrid(early, agent.NewMinimax(0), cfg.Search.HybridThreshold), nil
		default:
			return nil, fmt.Errorf("unknown agent %q", name)
		}
	}
}

// NewDQNAgent builds a value-learning agent over a fresh network, restoring
// the weights at cfg.DQN.ModelPath when set.
func NewDQNAgent(cfg config.Config, seed uint64, options ...dqn.Option) (*dqn.Agent, error) {
	net, err := network.New(network.Config{
		Size:         cfg.BoardSize,
		HiddenLayers: cfg.DQN.HiddenLayers,
		LearningRate: cfg.DQN.LearningRate,
		Momentum:     cfg.DQN.Momentum,
	})
	if err != nil {
		return nil, err
	}
	if cfg.DQN.ModelPath != "" {
		if err := net.LoadFile(cfg.DQN.ModelPath); err != nil {
			return nil, fmt.Errorf("failed to load model: %w", err)
		}
	}

	options = append([]dqn.Option{
		dqn.WithSeed(seed),
		dqn.WithMemoryCapacity(cfg.DQN.MemoryCapacity),
		dqn.WithExploration(cfg.DQN.Epsilon, cfg.DQN.EpsilonMin, cfg.DQN.EpsilonDecay),
	}, options...)
	return dqn.NewAgent(net, options...)
}

func createMCTS(cfg config.SearchConfig, episodes int, rollout searcher.RolloutPolicy) *searcher.MCTS {
	options := []searcher.Option{}

	if episodes > 0 {
		options = append(options, searcher.WithEpisodes(episodes))
	}
	if cfg.MCTSDuration > 0 {
		options = append(options, searcher.WithDuration(cfg.MCTSDuration))
	}
	if cfg.Cutoff > 0 {
		options = append(options, searcher.WithCutoff(cfg.Cutoff))
	}
	if rollout != nil {
		options = append(options, searcher.WithRolloutPolicy(rollout))
	}

	options = append(options, searcher.WithMetrics())
	return searcher.NewMCTS(cfg.Goroutines, options...)
}

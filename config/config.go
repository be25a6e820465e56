package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "TTT_"

type Config struct {
	BoardSize  int              `yaml:"board_size"`
	Seed       uint64           `yaml:"seed"`
	LogLevel   string           `yaml:"log_level"`
	OutputDir  string           `yaml:"output_dir"`
	Tournament TournamentConfig `yaml:"tournament"`
	Search     SearchConfig     `yaml:"search"`
	DQN        DQNConfig        `yaml:"dqn"`
	Training   TrainingConfig   `yaml:"training"`
}

type TournamentConfig struct {
	Games  int      `yaml:"games"` // Per matchup
	Agents []string `yaml:"agents"`
}

type SearchConfig struct {
	Goroutines      int           `yaml:"goroutines"`
	MCTSEpisodes    int           `yaml:"mcts_episodes"`
	MCTSDuration    time.Duration `yaml:"mcts_duration"` // Used when episodes is 0
	Cutoff          int           `yaml:"cutoff"`
	MinimaxDepth    int           `yaml:"minimax_depth"`
	HybridEpisodes  int           `yaml:"hybrid_episodes"`
	HybridRollout   int           `yaml:"hybrid_rollout_depth"`
	HybridThreshold int           `yaml:"hybrid_threshold"` // Empty cells at which exact search takes over
}

type DQNConfig struct {
	MemoryCapacity int     `yaml:"memory_capacity"`
	Epsilon        float64 `yaml:"epsilon"`
	EpsilonMin     float64 `yaml:"epsilon_min"`
	EpsilonDecay   float64 `yaml:"epsilon_decay"`
	Gamma          float64 `yaml:"gamma"` // Carried for completeness; labels are undiscounted
	LearningRate   float64 `yaml:"learning_rate"`
	Momentum       float64 `yaml:"momentum"`
	HiddenLayers   []int   `yaml:"hidden_layers"`
	ModelPath      string  `yaml:"model_path"`
	Temperature    float64 `yaml:"temperature"`
}

type TrainingConfig struct {
	Episodes        int    `yaml:"episodes"`
	BatchSize       int    `yaml:"batch_size"`
	ReportEvery     int    `yaml:"report_every"`
	CheckpointEvery int    `yaml:"checkpoint_every"`
	CheckpointDir   string `yaml:"checkpoint_dir"`
}

func Default() Config {
	return Config{
		BoardSize: 3,
		Seed:      1,
		LogLevel:  "info",
		OutputDir: "results",
		Tournament: TournamentConfig{
			Games:  100,
			Agents: []string{"Random", "Minimax", "MCTS", "DQN", "Hybrid"},
		},
		Search: SearchConfig{
			Goroutines:      1,
			MCTSEpisodes:    100,
			MinimaxDepth:    2,
			HybridEpisodes:  15,
			HybridRollout:   1,
			HybridThreshold: 6,
		},
		DQN: DQNConfig{
			MemoryCapacity: 2000,
			Epsilon:        1.0,
			EpsilonMin:     0.01,
			EpsilonDecay:   0.995,
			Gamma:          0.95,
			LearningRate:   0.01,
			Momentum:       0.5,
			HiddenLayers:   []int{64, 16},
			Temperature:    1.0,
		},
		Training: TrainingConfig{
			Episodes:        5000,
			BatchSize:       32,
			ReportEvery:     100,
			CheckpointEvery: 1000,
			CheckpointDir:   "checkpoints",
		},
	}
}

// Load layers the defaults, the YAML file at path, the dotenv file envFile and
// TTT_* environment variables, later layers winning. Empty paths are skipped
// and a missing envFile is ignored.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		// Variables already set in the environment take precedence over the file
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	ints := map[string]*int{
		"BOARD_SIZE":       &c.BoardSize,
		"GAMES":            &c.Tournament.Games,
		"GOROUTINES":       &c.Search.Goroutines,
		"MCTS_EPISODES":    &c.Search.MCTSEpisodes,
		"MINIMAX_DEPTH":    &c.Search.MinimaxDepth,
		"MEMORY_CAPACITY":  &c.DQN.MemoryCapacity,
		"EPISODES":         &c.Training.Episodes,
		"BATCH_SIZE":       &c.Training.BatchSize,
		"REPORT_EVERY":     &c.Training.ReportEvery,
		"CHECKPOINT_EVERY": &c.Training.CheckpointEvery,
	}
	for key, dst := range ints {
		if value, ok := lookup(key); ok {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = parsed
		}
	}

	floats := map[string]*float64{
		"EPSILON":       &c.DQN.Epsilon,
		"EPSILON_MIN":   &c.DQN.EpsilonMin,
		"EPSILON_DECAY": &c.DQN.EpsilonDecay,
		"LEARNING_RATE": &c.DQN.LearningRate,
		"TEMPERATURE":   &c.DQN.Temperature,
	}
	for key, dst := range floats {
		if value, ok := lookup(key); ok {
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = parsed
		}
	}

	strs := map[string]*string{
		"LOG_LEVEL":      &c.LogLevel,
		"OUTPUT_DIR":     &c.OutputDir,
		"MODEL_PATH":     &c.DQN.ModelPath,
		"CHECKPOINT_DIR": &c.Training.CheckpointDir,
	}
	for key, dst := range strs {
		if value, ok := lookup(key); ok {
			*dst = value
		}
	}

	if value, ok := lookup("SEED"); ok {
		parsed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", EnvPrefix, err)
		}
		c.Seed = parsed
	}
	if value, ok := lookup("AGENTS"); ok {
		c.Tournament.Agents = splitList(value)
	}
	if value, ok := lookup("MCTS_DURATION"); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%sMCTS_DURATION: %w", EnvPrefix, err)
		}
		c.Search.MCTSDuration = parsed
	}
	return nil
}

func lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate checks values no component can work with.
func (c Config) Validate() error {
	switch {
	case c.BoardSize < 1:
		return fmt.Errorf("board size %d must be positive", c.BoardSize)
	case c.Tournament.Games < 0:
		return fmt.Errorf("games per matchup %d must not be negative", c.Tournament.Games)
	case c.Search.Goroutines < 1:
		return fmt.Errorf("goroutines %d must be positive", c.Search.Goroutines)
	case c.Search.MCTSEpisodes <= 0 && c.Search.MCTSDuration <= 0:
		return fmt.Errorf("mcts needs episodes or a duration")
	case c.Search.HybridEpisodes < 1:
		return fmt.Errorf("hybrid episodes %d must be positive", c.Search.HybridEpisodes)
	case c.DQN.MemoryCapacity < 1:
		return fmt.Errorf("memory capacity %d must be positive", c.DQN.MemoryCapacity)
	case c.DQN.Temperature <= 0:
		return fmt.Errorf("temperature %v must be positive", c.DQN.Temperature)
	case c.Training.BatchSize < 1 || c.Training.BatchSize > c.DQN.MemoryCapacity:
		return fmt.Errorf("batch size %d must be between 1 and the memory capacity %d", c.Training.BatchSize, c.DQN.MemoryCapacity)
	}
	return nil
}

package main

import (
	"flag"
	"os"
	"time"

	"tictactoe/config"
	"tictactoe/experiments"
	"tictactoe/experiments/metrics"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	envFile := flag.String("env", ".env", "dotenv file with TTT_* overrides")
	mode := flag.String("mode", "tournament", "tournament or train")
	games := flag.Int("games", 0, "Games per matchup (overrides config)")
	episodes := flag.Int("episodes", 0, "Self-play episodes (overrides config)")
	model := flag.String("model", "", "Model file to load before playing (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *games > 0 {
		cfg.Tournament.Games = *games
	}
	if *episodes > 0 {
		cfg.Training.Episodes = *episodes
	}
	if *model != "" {
		cfg.DQN.ModelPath = *model
	}
	setupLogger(cfg.LogLevel)

	switch *mode {
	case "tournament":
		err = runTournament(cfg)
	case "train":
		err = runTraining(cfg)
	default:
		log.Fatal().Msgf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", *mode)
	}
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
}

func runTournament(cfg config.Config) error {
	tournament := experiments.NewTournament(cfg.BoardSize, cfg.Tournament.Games, cfg.Tournament.Agents, experiments.NewFactory(cfg))
	results, err := tournament.Run()
	if err != nil {
		return err
	}

	writer, err := metrics.NewWriter(cfg.OutputDir)
	if err != nil {
		return err
	}
	return results.Store(writer)
}

func runTraining(cfg config.Config) error {
	// Resume from the model file when it already exists
	start := cfg
	if _, err := os.Stat(cfg.DQN.ModelPath); err != nil {
		start.DQN.ModelPath = ""
	}
	agent, err := experiments.NewDQNAgent(start, cfg.Seed)
	if err != nil {
		return err
	}

	records, err := experiments.NewSelfPlay(cfg.BoardSize, cfg.Training, agent).Run()
	if err != nil {
		return err
	}

	writer, err := metrics.NewWriter(cfg.OutputDir)
	if err != nil {
		return err
	}
	if err := writer.WriteTrainingRecords(records); err != nil {
		return err
	}

	modelPath := cfg.DQN.ModelPath
	if modelPath == "" {
		modelPath = "model.json"
	}
	if err := experiments.SaveModel(agent, modelPath); err != nil {
		return err
	}
	log.Info().Str("model", modelPath).Msg("stored model")
	return nil
}

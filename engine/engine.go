package engine

import "tictactoe/experiments/metrics"

type Engine interface {
	// Run plays one game to the end
	Run() (gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}

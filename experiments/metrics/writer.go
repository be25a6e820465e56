package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// MatchupRecord aggregates the games between two agents. Agent1 always moves
// first.
type MatchupRecord struct {
	RunID    string
	Agent1   string
	Agent2   string
	Wins1    int
	Wins2    int
	Ties     int
	Duration time.Duration
}

type GameRecord struct {
	ID     int
	Agent1 string
	Agent2 string
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type TrainingRecord struct {
	Episode int
	Replays int
	Loss    float64 // Mean replay loss since the previous record
	Epsilon float64
	Memory  int
	WinsA   int
	WinsB   int
	Draws   int
}

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of dir named by the current timestamp.
func NewWriter(dir string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405.000Z")
	baseDir := filepath.Join(dir, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string { return w.baseDir }

func (w *Writer) WriteMatchups(records []MatchupRecord) error {
	header := []string{"run_id", "agent1", "agent2", "wins1", "wins2", "ties", "duration"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			record.RunID,
			record.Agent1,
			record.Agent2,
			strconv.Itoa(record.Wins1),
			strconv.Itoa(record.Wins2),
			strconv.Itoa(record.Ties),
			record.Duration.String(),
		}
	}
	return w.write("matchups.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "agent1", "agent2", "winner", "total_moves", "start_time", "end_time", "duration"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(record.ID),
			record.Agent1,
			record.Agent2,
			strconv.Itoa(int(record.Winner)),
			strconv.Itoa(record.TotalMoves),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		}
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "player", "row", "col", "duration", "episodes", "full_playouts", "is_tree_reset"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			strconv.Itoa(int(record.Player)),
			strconv.Itoa(record.Move.Row),
			strconv.Itoa(record.Move.Col),
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.FullPlayouts),
			strconv.FormatBool(record.IsTreeReset),
		}
	}
	return w.write("move_records.csv", header, rows)
}

func (w *Writer) WriteTrainingRecords(records []TrainingRecord) error {
	header := []string{"episode", "replays", "loss", "epsilon", "memory", "wins_a", "wins_b", "draws"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(record.Episode),
			strconv.Itoa(record.Replays),
			strconv.FormatFloat(record.Loss, 'g', 6, 64),
			strconv.FormatFloat(record.Epsilon, 'g', 6, 64),
			strconv.Itoa(record.Memory),
			strconv.Itoa(record.WinsA),
			strconv.Itoa(record.WinsB),
			strconv.Itoa(record.Draws),
		}
	}
	return w.write("training.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	// Create a file
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	// Write header
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}

	// Write each row
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write %s row: %w", name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

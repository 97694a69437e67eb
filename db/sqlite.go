package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// PredictionLog is one served prediction.
type PredictionLog struct {
	ID         int64     `json:"id"`
	Model      string    `json:"model"`
	Task       string    `json:"task"`
	Input      string    `json:"input"`
	Prediction string    `json:"prediction"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	DurationMs float64   `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists prediction logs in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers anyway
	database.SetMaxOpenConns(1)

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model VARCHAR(100) NOT NULL,
        task VARCHAR(20) NOT NULL,
        input TEXT NOT NULL,
        prediction TEXT,
        status VARCHAR(20) NOT NULL,
        error TEXT,
        duration_ms REAL DEFAULT 0,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_model_created
        ON predictions (model, created_at);
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, err
	}
	return &Store{db: database}, nil
}

// SavePrediction inserts one prediction log entry
func (s *Store) SavePrediction(ctx context.Context, entry PredictionLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO predictions (model, task, input, prediction, status, error, duration_ms, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Model, entry.Task, entry.Input, entry.Prediction, entry.Status, entry.Error, entry.DurationMs, entry.CreatedAt)
	return err
}

// RecentPredictions returns the newest entries first. An empty model
// matches every model.
func (s *Store) RecentPredictions(ctx context.Context, model string, limit int) ([]PredictionLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, model, task, input, prediction, status, error, duration_ms, created_at
        FROM predictions
        WHERE (? = '' OR model = ?)
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, model, model, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]PredictionLog, 0)
	for rows.Next() {
		var entry PredictionLog
		var prediction, errMsg sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Model, &entry.Task, &entry.Input, &prediction, &entry.Status,
			&errMsg, &entry.DurationMs, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Prediction = prediction.String
		entry.Error = errMsg.String
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

package repository

import (
	"HealthyTrack-Dashboard/internal/model"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// QuizHistoryRepository stores finished quiz attempts in SQLite.
type QuizHistoryRepository struct {
	conn   *sql.DB
	logger *zap.Logger
}

func NewQuizHistoryRepository(dbPath string, logger *zap.Logger) (*QuizHistoryRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dir != "" && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("could not create history directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open quiz history '%s': %w", dbPath, err)
	}
	// sqlite allows one writer; a single connection also keeps :memory: stable.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to reach quiz history: %w", err)
	}
	if err := createHistoryTables(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create quiz history tables: %w", err)
	}

	logger.Info("quiz history ready", zap.String("path", dbPath))
	return &QuizHistoryRepository{conn: conn, logger: logger.Named("quiz_history")}, nil
}

func createHistoryTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS quiz_attempts (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			username TEXT NOT NULL,
			score INTEGER NOT NULL,
			total INTEGER NOT NULL,
			percent INTEGER NOT NULL,
			answers TEXT NOT NULL,
			completed_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_quiz_attempts_user ON quiz_attempts (user_id, completed_at)`)
	return err
}

func (r *QuizHistoryRepository) Close() error {
	return r.conn.Close()
}

// Save records a finished attempt. An empty ID is filled with a new UUID.
func (r *QuizHistoryRepository) Save(ctx context.Context, result *model.QuizResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}

	_, err = r.conn.ExecContext(ctx,
		"INSERT INTO quiz_attempts (id, user_id, username, score, total, percent, answers, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		result.ID, result.UserID, result.Username, result.Score, result.Total, result.Percent, string(answers), result.CompletedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save quiz attempt: %w", err)
	}
	r.logger.Debug("quiz attempt saved", zap.String("id", result.ID), zap.Int64("user_id", result.UserID), zap.Int("percent", result.Percent))
	return nil
}

// Recent returns the user's latest attempts, newest first.
func (r *QuizHistoryRepository) Recent(ctx context.Context, userID int64, limit int) ([]model.QuizResult, error) {
	rows, err := r.conn.QueryContext(ctx,
		"SELECT id, user_id, username, score, total, percent, answers, completed_at FROM quiz_attempts WHERE user_id = ? ORDER BY completed_at DESC, rowid DESC LIMIT ?",
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.QuizResult
	for rows.Next() {
		var (
			res         model.QuizResult
			answers     string
			completedAt int64
		)
		if err := rows.Scan(&res.ID, &res.UserID, &res.Username, &res.Score, &res.Total, &res.Percent, &answers, &completedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(answers), &res.Answers); err != nil {
			return nil, fmt.Errorf("corrupt answers for attempt %s: %w", res.ID, err)
		}
		res.CompletedAt = time.UnixMilli(completedAt)
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *QuizHistoryRepository) Stats(ctx context.Context, userID int64) (*model.QuizStats, error) {
	stats := &model.QuizStats{}
	var (
		best sql.NullInt64
		avg  sql.NullFloat64
	)
	err := r.conn.QueryRowContext(ctx,
		"SELECT COUNT(*), MAX(percent), AVG(percent) FROM quiz_attempts WHERE user_id = ?",
		userID,
	).Scan(&stats.Attempts, &best, &avg)
	if err != nil {
		return nil, err
	}
	if stats.Attempts == 0 {
		return stats, nil
	}
	stats.BestPercent = int(best.Int64)
	stats.AveragePercent = avg.Float64

	recent, err := r.Recent(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(recent) > 0 {
		stats.Last = &recent[0]
	}
	return stats, nil
}

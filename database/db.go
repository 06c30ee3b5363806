package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/korjavin/dailystudybot/models"
)

// DB handles all database operations
type DB struct {
	conn *sqlx.DB
}

// New opens the SQLite database at dbPath and initializes tables
func New(dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
		}
	}

	conn, err := sqlx.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open > %w", err)
	}
	// SQLite allows a single writer
	conn.SetMaxOpenConns(1)

	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping > %w", err)
	}

	if err = createTables(conn); err != nil {
		return nil, fmt.Errorf("createTables > %w", err)
	}

	return &DB{conn: conn}, nil
}

// NewWithConn wraps an existing connection; tables are expected to exist
func NewWithConn(conn *sqlx.DB) *DB {
	return &DB{conn: conn}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sqlx.DB) error {
	// Single-row table holding the rotation anchor
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scheduler_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			start_date TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS concept_deliveries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			day TEXT NOT NULL,
			block_index INTEGER NOT NULL,
			block_count INTEGER NOT NULL,
			sent_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS quiz_polls (
			poll_id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			word TEXT NOT NULL,
			answer TEXT NOT NULL,
			correct_index INTEGER NOT NULL,
			sent_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS quiz_answers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			poll_id TEXT NOT NULL,
			user_id INTEGER NOT NULL,
			option_id INTEGER NOT NULL,
			correct BOOLEAN NOT NULL,
			timestamp INTEGER NOT NULL
		)
	`)
	return err
}

// EnsureStartDate returns the rotation anchor, creating it as today if absent.
// Creation is a single INSERT OR IGNORE, so concurrent first runs agree on one date.
func (db *DB) EnsureStartDate(ctx context.Context, today time.Time) (models.SchedulerState, error) {
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR IGNORE INTO scheduler_state (id, start_date) VALUES (1, ?)",
		today.Format(models.DateLayout),
	)
	if err != nil {
		return models.SchedulerState{}, fmt.Errorf("db.ExecContext(insert scheduler_state) > %w", err)
	}

	return db.GetState(ctx)
}

// GetState reads the rotation anchor. sql.ErrNoRows is returned before initialization.
func (db *DB) GetState(ctx context.Context) (models.SchedulerState, error) {
	var state models.SchedulerState
	if err := db.conn.GetContext(ctx, &state, "SELECT start_date FROM scheduler_state WHERE id = 1"); err != nil {
		return models.SchedulerState{}, fmt.Errorf("db.GetContext(scheduler_state) > %w", err)
	}
	return state, nil
}

// ImportStartDate seeds the anchor from a state.json file written by an earlier
// deployment. It does nothing when the file is missing or the anchor already exists.
func (db *DB) ImportStartDate(ctx context.Context, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	var state models.SchedulerState
	if err := json.Unmarshal(data, &state); err != nil {
		return false, fmt.Errorf("json.Unmarshal(%s) > %w", path, err)
	}
	if _, err := state.Start(); err != nil {
		return false, fmt.Errorf("invalid start_date %q in %s: %w", state.StartDate, path, err)
	}

	result, err := db.conn.ExecContext(ctx,
		"INSERT OR IGNORE INTO scheduler_state (id, start_date) VALUES (1, ?)",
		state.StartDate,
	)
	if err != nil {
		return false, fmt.Errorf("db.ExecContext(import scheduler_state) > %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("RowsAffected > %w", err)
	}
	return n > 0, nil
}

// SaveConceptDelivery records the block sent for a day
func (db *DB) SaveConceptDelivery(ctx context.Context, delivery models.ConceptDelivery) error {
	_, err := db.conn.NamedExecContext(ctx,
		`INSERT INTO concept_deliveries (day, block_index, block_count, sent_at)
		VALUES (:day, :block_index, :block_count, :sent_at)`,
		delivery,
	)
	if err != nil {
		return fmt.Errorf("db.NamedExecContext(insert concept_delivery) > %w", err)
	}
	return nil
}

// RecentConceptDeliveries returns the latest deliveries, newest first
func (db *DB) RecentConceptDeliveries(ctx context.Context, limit int) ([]models.ConceptDelivery, error) {
	var deliveries []models.ConceptDelivery
	err := db.conn.SelectContext(ctx, &deliveries,
		"SELECT day, block_index, block_count, sent_at FROM concept_deliveries ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext(concept_deliveries) > %w", err)
	}
	return deliveries, nil
}

// SaveQuizPoll records a delivered poll so answers can be scored later
func (db *DB) SaveQuizPoll(ctx context.Context, poll models.QuizPoll) error {
	_, err := db.conn.NamedExecContext(ctx,
		`INSERT OR REPLACE INTO quiz_polls (poll_id, run_id, word, answer, correct_index, sent_at)
		VALUES (:poll_id, :run_id, :word, :answer, :correct_index, :sent_at)`,
		poll,
	)
	if err != nil {
		return fmt.Errorf("db.NamedExecContext(insert quiz_poll) > %w", err)
	}
	return nil
}

// GetQuizPoll returns a delivered poll, or nil if the poll is unknown
func (db *DB) GetQuizPoll(ctx context.Context, pollID string) (*models.QuizPoll, error) {
	var poll models.QuizPoll
	err := db.conn.GetContext(ctx, &poll,
		"SELECT poll_id, run_id, word, answer, correct_index, sent_at FROM quiz_polls WHERE poll_id = ?",
		pollID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(quiz_poll) > %w", err)
	}
	return &poll, nil
}

// SaveQuizAnswer records a user's answer to a poll
func (db *DB) SaveQuizAnswer(ctx context.Context, answer models.QuizAnswer) error {
	_, err := db.conn.NamedExecContext(ctx,
		`INSERT INTO quiz_answers (poll_id, user_id, option_id, correct, timestamp)
		VALUES (:poll_id, :user_id, :option_id, :correct, :timestamp)`,
		answer,
	)
	if err != nil {
		return fmt.Errorf("db.NamedExecContext(insert quiz_answer) > %w", err)
	}
	return nil
}

// GetUserStats retrieves statistics about the user's answers
func (db *DB) GetUserStats(ctx context.Context, userID int64) (correct int, incorrect int, err error) {
	err = db.conn.GetContext(ctx, &correct,
		"SELECT COUNT(*) FROM quiz_answers WHERE user_id = ? AND correct = 1",
		userID,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("db.GetContext(correct answers) > %w", err)
	}

	err = db.conn.GetContext(ctx, &incorrect,
		"SELECT COUNT(*) FROM quiz_answers WHERE user_id = ? AND correct = 0",
		userID,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("db.GetContext(incorrect answers) > %w", err)
	}
	return correct, incorrect, nil
}

// GetMostMissedWords gets the words most frequently answered incorrectly
func (db *DB) GetMostMissedWords(ctx context.Context, userID int64, limit int) ([]models.MissedWord, error) {
	var words []models.MissedWord
	err := db.conn.SelectContext(ctx, &words, `
		SELECT p.word AS word, p.answer AS answer, COUNT(*) AS misses
		FROM quiz_answers a
		JOIN quiz_polls p ON p.poll_id = a.poll_id
		WHERE a.user_id = ? AND a.correct = 0
		GROUP BY p.word, p.answer
		ORDER BY misses DESC, p.word ASC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext(missed words) > %w", err)
	}
	return words, nil
}

// Package sqlite stores finished session records in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"dilemma-lab/internal/game"
)

var ErrNotFound = errors.New("not found")

//go:embed schema.sql
var schemaSQL string

type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (creating if needed) the database at path and applies the
// embedded schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	dsn := cleanPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schemaSQL); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveSessionRecord writes the record and its steps in one transaction.
// Saving a session id that already exists is a no-op.
func (s *Store) SaveSessionRecord(ctx context.Context, rec game.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(rec.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO session_records (
		   session_id, recorded_at, strategy_name, num_rounds,
		   payoff_t, payoff_r, payoff_p, payoff_s,
		   human_score, opponent_score, winner
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID,
		toMillis(rec.Timestamp),
		rec.StrategyName,
		rec.NumRounds,
		rec.Payoffs.T, rec.Payoffs.R, rec.Payoffs.P, rec.Payoffs.S,
		rec.FinalScores.Human,
		rec.FinalScores.Opponent,
		rec.Winner,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("insert session record: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO session_steps (
		   session_id, round, human_action, opponent_action,
		   human_payoff, opponent_payoff, done
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare session steps: %w", err)
	}
	defer stmt.Close()
	for _, st := range rec.Steps {
		if _, err := stmt.ExecContext(ctx,
			rec.SessionID, st.Round, string(st.HumanAction), string(st.OpponentAction),
			st.HumanPayoff, st.OpponentPayoff, st.Done,
		); err != nil {
			return fmt.Errorf("insert session step %d: %w", st.Round, err)
		}
	}
	return tx.Commit()
}

func (s *Store) GetSessionRecord(ctx context.Context, sessionID string) (game.Record, error) {
	if err := ctx.Err(); err != nil {
		return game.Record{}, err
	}
	var (
		rec        game.Record
		recordedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT session_id, recorded_at, strategy_name, num_rounds,
		        payoff_t, payoff_r, payoff_p, payoff_s,
		        human_score, opponent_score, winner
		   FROM session_records
		  WHERE session_id = ?`,
		sessionID,
	).Scan(
		&rec.SessionID, &recordedAt, &rec.StrategyName, &rec.NumRounds,
		&rec.Payoffs.T, &rec.Payoffs.R, &rec.Payoffs.P, &rec.Payoffs.S,
		&rec.FinalScores.Human, &rec.FinalScores.Opponent, &rec.Winner,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Record{}, ErrNotFound
	}
	if err != nil {
		return game.Record{}, fmt.Errorf("get session record: %w", err)
	}
	rec.Timestamp = fromMillis(recordedAt)

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT round, human_action, opponent_action, human_payoff, opponent_payoff, done
		   FROM session_steps
		  WHERE session_id = ?
		  ORDER BY round ASC`,
		sessionID,
	)
	if err != nil {
		return game.Record{}, fmt.Errorf("get session steps: %w", err)
	}
	defer rows.Close()
	rec.Steps = []game.RecordStep{}
	for rows.Next() {
		var (
			st              game.RecordStep
			human, opponent string
		)
		if err := rows.Scan(&st.Round, &human, &opponent, &st.HumanPayoff, &st.OpponentPayoff, &st.Done); err != nil {
			return game.Record{}, fmt.Errorf("scan session step: %w", err)
		}
		st.HumanAction = game.Action(human)
		st.OpponentAction = game.Action(opponent)
		rec.Steps = append(rec.Steps, st)
	}
	return rec, rows.Err()
}

func (s *Store) ListSessionRecords(ctx context.Context, limit, offset int) ([]game.RecordSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT session_id, recorded_at, strategy_name, num_rounds,
		        human_score, opponent_score, winner
		   FROM session_records
		  ORDER BY recorded_at DESC, session_id DESC
		  LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list session records: %w", err)
	}
	defer rows.Close()
	out := []game.RecordSummary{}
	for rows.Next() {
		var (
			item       game.RecordSummary
			recordedAt int64
		)
		if err := rows.Scan(&item.SessionID, &recordedAt, &item.StrategyName, &item.NumRounds,
			&item.FinalScores.Human, &item.FinalScores.Opponent, &item.Winner); err != nil {
			return nil, fmt.Errorf("scan session record: %w", err)
		}
		item.Timestamp = fromMillis(recordedAt)
		out = append(out, item)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

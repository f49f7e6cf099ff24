package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"dilemma-lab/internal/game"
)

const insertSessionRecordSQL = `
INSERT INTO session_records (
	session_id, recorded_at, strategy_name, num_rounds,
	payoff_t, payoff_r, payoff_p, payoff_s,
	human_score, opponent_score, winner
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (session_id) DO NOTHING`

const insertSessionStepSQL = `
INSERT INTO session_steps (
	session_id, round, human_action, opponent_action,
	human_payoff, opponent_payoff, done
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

const selectSessionRecordSQL = `
SELECT session_id, recorded_at, strategy_name, num_rounds,
	payoff_t, payoff_r, payoff_p, payoff_s,
	human_score, opponent_score, winner
FROM session_records
WHERE session_id = $1`

const selectSessionStepsSQL = `
SELECT round, human_action, opponent_action, human_payoff, opponent_payoff, done
FROM session_steps
WHERE session_id = $1
ORDER BY round ASC`

const listSessionRecordsSQL = `
SELECT session_id, recorded_at, strategy_name, num_rounds,
	human_score, opponent_score, winner
FROM session_records
ORDER BY recorded_at DESC, session_id DESC
LIMIT $1 OFFSET $2`

// SaveSessionRecord writes the record and its steps in one transaction.
// Saving a session id that already exists is a no-op.
func (s *Store) SaveSessionRecord(ctx context.Context, rec game.Record) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, insertSessionRecordSQL,
		rec.SessionID,
		timestamptzParam(rec.Timestamp),
		rec.StrategyName,
		int4Param(rec.NumRounds),
		int4Param(rec.Payoffs.T),
		int4Param(rec.Payoffs.R),
		int4Param(rec.Payoffs.P),
		int4Param(rec.Payoffs.S),
		int4Param(rec.FinalScores.Human),
		int4Param(rec.FinalScores.Opponent),
		textParam(rec.Winner),
	)
	if err != nil {
		return fmt.Errorf("insert session record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tx.Commit(ctx)
	}

	batch := &pgx.Batch{}
	for _, st := range rec.Steps {
		batch.Queue(insertSessionStepSQL,
			rec.SessionID,
			int4Param(st.Round),
			string(st.HumanAction),
			string(st.OpponentAction),
			int4Param(st.HumanPayoff),
			int4Param(st.OpponentPayoff),
			st.Done,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert session steps: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) GetSessionRecord(ctx context.Context, sessionID string) (game.Record, error) {
	var (
		rec                        game.Record
		recordedAt                 pgtype.Timestamptz
		numRounds, t, r, p, sucker pgtype.Int4
		humanScore, opponentScore  pgtype.Int4
		winner                     pgtype.Text
	)
	err := s.Pool.QueryRow(ctx, selectSessionRecordSQL, sessionID).Scan(
		&rec.SessionID, &recordedAt, &rec.StrategyName, &numRounds,
		&t, &r, &p, &sucker,
		&humanScore, &opponentScore, &winner,
	)
	if err != nil {
		return game.Record{}, mapNotFound(err)
	}
	rec.Timestamp = timeVal(recordedAt)
	rec.NumRounds = intVal(numRounds)
	rec.Payoffs = game.PayoffMatrix{T: intVal(t), R: intVal(r), P: intVal(p), S: intVal(sucker)}
	rec.FinalScores = game.FinalScores{Human: intVal(humanScore), Opponent: intVal(opponentScore)}
	rec.Winner = textVal(winner)

	rows, err := s.Pool.Query(ctx, selectSessionStepsSQL, sessionID)
	if err != nil {
		return game.Record{}, err
	}
	defer rows.Close()
	rec.Steps = []game.RecordStep{}
	for rows.Next() {
		var (
			st                      game.RecordStep
			human, opponent         string
			round, humanPay, oppPay pgtype.Int4
		)
		if err := rows.Scan(&round, &human, &opponent, &humanPay, &oppPay, &st.Done); err != nil {
			return game.Record{}, err
		}
		st.Round = intVal(round)
		st.HumanAction = game.Action(human)
		st.OpponentAction = game.Action(opponent)
		st.HumanPayoff = intVal(humanPay)
		st.OpponentPayoff = intVal(oppPay)
		rec.Steps = append(rec.Steps, st)
	}
	return rec, rows.Err()
}

func (s *Store) ListSessionRecords(ctx context.Context, limit, offset int) ([]game.RecordSummary, error) {
	rows, err := s.Pool.Query(ctx, listSessionRecordsSQL, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []game.RecordSummary{}
	for rows.Next() {
		var (
			item                      game.RecordSummary
			recordedAt                pgtype.Timestamptz
			numRounds                 pgtype.Int4
			humanScore, opponentScore pgtype.Int4
			winner                    pgtype.Text
		)
		if err := rows.Scan(&item.SessionID, &recordedAt, &item.StrategyName, &numRounds, &humanScore, &opponentScore, &winner); err != nil {
			return nil, err
		}
		item.Timestamp = timeVal(recordedAt)
		item.NumRounds = intVal(numRounds)
		item.FinalScores = game.FinalScores{Human: intVal(humanScore), Opponent: intVal(opponentScore)}
		item.Winner = textVal(winner)
		out = append(out, item)
	}
	return out, rows.Err()
}

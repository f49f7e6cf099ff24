package export

import (
	"context"
	"errors"

	"dilemma-lab/internal/game"
)

var ErrRecordNotFound = errors.New("record_not_found")

// Sink persists finished session records. Export must be idempotent on the
// record's session id; the dispatcher may retry a record after a failure.
type Sink interface {
	Name() string
	Export(ctx context.Context, rec game.Record) error
}

// Reader serves exported records back to the transports, newest first.
type Reader interface {
	Load(ctx context.Context, sessionID string) (game.Record, error)
	List(ctx context.Context, limit, offset int) ([]game.RecordSummary, error)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

package export

import (
	"context"
	"errors"

	"dilemma-lab/internal/game"
)

// RecordStore is implemented by the SQL record stores.
type RecordStore interface {
	SaveSessionRecord(ctx context.Context, rec game.Record) error
	GetSessionRecord(ctx context.Context, sessionID string) (game.Record, error)
	ListSessionRecords(ctx context.Context, limit, offset int) ([]game.RecordSummary, error)
}

// StoreSink adapts a RecordStore to Sink and Reader. notFound is the store's
// own not-found error, reported as ErrRecordNotFound.
type StoreSink struct {
	name     string
	store    RecordStore
	notFound error
}

func NewStoreSink(name string, st RecordStore, notFound error) *StoreSink {
	return &StoreSink{name: name, store: st, notFound: notFound}
}

func (s *StoreSink) Name() string { return s.name }

func (s *StoreSink) Export(ctx context.Context, rec game.Record) error {
	return s.store.SaveSessionRecord(ctx, rec)
}

func (s *StoreSink) Load(ctx context.Context, sessionID string) (game.Record, error) {
	rec, err := s.store.GetSessionRecord(ctx, sessionID)
	if err != nil && s.notFound != nil && errors.Is(err, s.notFound) {
		return game.Record{}, ErrRecordNotFound
	}
	return rec, err
}

func (s *StoreSink) List(ctx context.Context, limit, offset int) ([]game.RecordSummary, error) {
	limit, offset = clampPage(limit, offset)
	return s.store.ListSessionRecords(ctx, limit, offset)
}

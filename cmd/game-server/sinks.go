package main

import (
	"context"
	"fmt"
	"strings"

	"dilemma-lab/internal/config"
	"dilemma-lab/internal/export"
	"dilemma-lab/internal/store"
	"dilemma-lab/internal/store/sqlite"

	"github.com/rs/zerolog/log"
)

// recordSinks holds every configured export target. Reader serves record
// queries from the most capable one: Postgres, then SQLite, then files.
type recordSinks struct {
	Sinks   []export.Sink
	Reader  export.Reader
	closers []func()
}

func (s *recordSinks) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openSinks(ctx context.Context, cfg config.ServerConfig) (*recordSinks, error) {
	out := &recordSinks{}
	var readers []export.Reader

	if dsn := strings.TrimSpace(cfg.PostgresDSN); dsn != "" {
		pg, err := store.New(dsn)
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			out.Close()
			return nil, fmt.Errorf("postgres ping: %w", err)
		}
		out.closers = append(out.closers, pg.Close)
		sink := export.NewStoreSink("postgres", pg, store.ErrNotFound)
		out.Sinks = append(out.Sinks, sink)
		readers = append(readers, sink)
	}

	if path := strings.TrimSpace(cfg.SQLitePath); path != "" {
		db, err := sqlite.Open(path)
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		out.closers = append(out.closers, func() { _ = db.Close() })
		sink := export.NewStoreSink("sqlite", db, sqlite.ErrNotFound)
		out.Sinks = append(out.Sinks, sink)
		readers = append(readers, sink)
	}

	if dir := strings.TrimSpace(cfg.ExportDir); dir != "" {
		fs, err := export.NewFileSink(dir)
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("export dir: %w", err)
		}
		out.Sinks = append(out.Sinks, fs)
		readers = append(readers, fs)
	}

	if len(readers) > 0 {
		out.Reader = readers[0]
	}
	names := make([]string, 0, len(out.Sinks))
	for _, s := range out.Sinks {
		names = append(names, s.Name())
	}
	log.Info().Strs("sinks", names).Msg("record_sinks_ready")
	return out, nil
}

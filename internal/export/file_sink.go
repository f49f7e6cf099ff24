package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dilemma-lab/internal/game"
)

// FileSink writes one indented JSON document per session to a directory,
// named after the session id.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) (*FileSink, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("export dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) Dir() string { return s.dir }

func (s *FileSink) Export(_ context.Context, rec game.Record) error {
	path, ok := s.path(rec.SessionID)
	if !ok {
		return fmt.Errorf("export record: invalid session id %q", rec.SessionID)
	}
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".record-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(raw, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close record: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename record: %w", err)
	}
	return nil
}

func (s *FileSink) Load(_ context.Context, sessionID string) (game.Record, error) {
	path, ok := s.path(sessionID)
	if !ok {
		return game.Record{}, ErrRecordNotFound
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return game.Record{}, ErrRecordNotFound
	}
	if err != nil {
		return game.Record{}, fmt.Errorf("read record: %w", err)
	}
	var rec game.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return game.Record{}, fmt.Errorf("decode record %s: %w", sessionID, err)
	}
	return rec, nil
}

// List reads every record in the directory; unreadable files are skipped.
func (s *FileSink) List(ctx context.Context, limit, offset int) ([]game.RecordSummary, error) {
	limit, offset = clampPage(limit, offset)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read export dir: %w", err)
	}
	all := make([]game.RecordSummary, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		rec, err := s.Load(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		all = append(all, rec.Summary())
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Timestamp.Equal(all[j].Timestamp) {
			return all[i].SessionID > all[j].SessionID
		}
		return all[i].Timestamp.After(all[j].Timestamp)
	})
	if offset >= len(all) {
		return []game.RecordSummary{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *FileSink) path(sessionID string) (string, bool) {
	id := strings.TrimSpace(sessionID)
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", false
	}
	return filepath.Join(s.dir, id+".json"), true
}

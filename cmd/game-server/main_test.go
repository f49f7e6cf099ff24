package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"dilemma-lab/internal/config"
	"dilemma-lab/internal/export"
	httptransport "dilemma-lab/internal/transport/http"
)

type flusherRecorder struct {
	*httptest.ResponseRecorder
	flushed bool
}

func (f *flusherRecorder) Flush() {
	f.flushed = true
}

func TestBodyCaptureMiddlewarePreservesFlusher(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "no flusher", http.StatusInternalServerError)
			return
		}
		flusher.Flush()
		w.WriteHeader(http.StatusOK)
	})

	mw := httptransport.BodyCaptureMiddleware(4096)
	rec := &flusherRecorder{ResponseRecorder: httptest.NewRecorder()}
	req := httptest.NewRequest(http.MethodGet, "/api/records", nil)
	mw(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !rec.flushed {
		t.Fatal("expected flusher to be called")
	}
}

func TestBodyCaptureMiddlewareSkipsUpgrade(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if _, ok := w.(*httptest.ResponseRecorder); !ok {
			http.Error(w, "wrapped", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mw := httptransport.BodyCaptureMiddleware(4096)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Upgrade", "websocket")
	mw(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestOpenSinksPrefersSQLiteReaderWithoutPostgres(t *testing.T) {
	dir := t.TempDir()
	sinks, err := openSinks(context.Background(), config.ServerConfig{
		SQLitePath: filepath.Join(dir, "records.db"),
		ExportDir:  filepath.Join(dir, "sessions"),
	})
	if err != nil {
		t.Fatalf("open sinks: %v", err)
	}
	defer sinks.Close()

	if len(sinks.Sinks) != 2 {
		t.Fatalf("expected sqlite and file sinks, got %d", len(sinks.Sinks))
	}
	if sinks.Sinks[0].Name() != "sqlite" || sinks.Sinks[1].Name() != "file" {
		t.Fatalf("unexpected sink order %s, %s", sinks.Sinks[0].Name(), sinks.Sinks[1].Name())
	}
	if s, ok := sinks.Reader.(export.Sink); !ok || s.Name() != "sqlite" {
		t.Fatal("expected sqlite sink to serve reads")
	}
}

func TestOpenSinksAllDisabled(t *testing.T) {
	sinks, err := openSinks(context.Background(), config.ServerConfig{})
	if err != nil {
		t.Fatalf("open sinks: %v", err)
	}
	if len(sinks.Sinks) != 0 || sinks.Reader != nil {
		t.Fatalf("expected no sinks, got %+v", sinks)
	}
}

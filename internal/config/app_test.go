package config

import "testing"

func TestLoadApp(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := LoadApp()
	if err != nil {
		t.Fatalf("LoadApp() error = %v", err)
	}
	if cfg.Log.Level != "warn" || cfg.Server.HTTPAddr != ":9090" {
		t.Fatalf("unexpected app config: %+v", cfg)
	}
}

func TestLoadTestRequiresDSN(t *testing.T) {
	t.Setenv("TEST_POSTGRES_DSN", "")

	if _, err := LoadTest(); err == nil {
		t.Fatal("LoadTest() expected error, got nil")
	}
}

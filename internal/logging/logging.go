package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dilemma-lab/internal/config"
)

var (
	outputMu sync.Mutex
	output   io.Writer = os.Stdout
	file     *sizeLimitedWriter
)

// Init configures the global zerolog logger. With LOG_FILE set, records go
// to both stdout and the size-limited file.
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var console io.Writer = os.Stdout
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	var sink io.Writer = os.Stdout
	var fileWriter *sizeLimitedWriter
	if path := strings.TrimSpace(cfg.File); path != "" {
		w, err := newSizeLimitedWriter(path, cfg.MaxMB)
		if err != nil {
			return err
		}
		fileWriter = w
		console = zerolog.MultiLevelWriter(console, w)
		sink = io.MultiWriter(os.Stdout, w)
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(console).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger

	outputMu.Lock()
	prev := file
	output = sink
	file = fileWriter
	outputMu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// Writer is the raw JSON sink for other loggers, such as the HTTP request
// logger.
func Writer() io.Writer {
	outputMu.Lock()
	defer outputMu.Unlock()
	return output
}

func Close() error {
	outputMu.Lock()
	defer outputMu.Unlock()
	output = os.Stdout
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

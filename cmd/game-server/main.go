package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dilemma-lab/internal/app/play"
	"dilemma-lab/internal/config"
	"dilemma-lab/internal/export"
	"dilemma-lab/internal/game"
	"dilemma-lab/internal/logging"
	"dilemma-lab/internal/session"

	"github.com/rs/zerolog/log"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(logCfg); err != nil {
		panic(err)
	}
	defer logging.Close()
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}
	payoffs, err := game.NewPayoffMatrix(cfg.PayoffT, cfg.PayoffR, cfg.PayoffP, cfg.PayoffS)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid payoff matrix")
	}
	if err := game.ValidateCooperateProbability(cfg.RandomCooperateProb); err != nil {
		log.Fatal().Err(err).Msg("invalid random cooperate probability")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sinks, err := openSinks(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open record sinks failed")
	}
	defer sinks.Close()

	exportCtx, cancelExport := context.WithCancel(context.Background())
	dispatcher := export.NewDispatcher(export.Config{
		Workers:        cfg.ExportWorkers,
		QueueSize:      cfg.ExportQueueSize,
		RetryMax:       cfg.ExportRetryMax,
		RetryBase:      time.Duration(cfg.ExportRetryBaseMS) * time.Millisecond,
		RequestTimeout: time.Duration(cfg.ExportTimeoutMS) * time.Millisecond,
	}, sinks.Sinks...)
	dispatcher.Start(exportCtx)

	svc := play.NewService(play.Config{
		DefaultRounds:        cfg.DefaultRounds,
		MaxRounds:            cfg.MaxRounds,
		Payoffs:              payoffs,
		RandomSeed:           cfg.RandomSeed,
		CooperateProbability: &cfg.RandomCooperateProb,
	}, session.NewStore(), dispatcher, sinks.Reader)
	svc.StartJanitor(ctx,
		time.Duration(cfg.JanitorIntervalSecs)*time.Second,
		time.Duration(cfg.SessionRetainMins)*time.Minute,
	)

	r := newRouter(svc, cfg)
	logRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown_requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	cancelExport()
	dispatcher.Wait()
	log.Info().Msg("server_stopped")
}

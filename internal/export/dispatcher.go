package export

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"dilemma-lab/internal/game"
)

type Config struct {
	Workers        int
	QueueSize      int
	RetryMax       int
	RetryBase      time.Duration
	RequestTimeout time.Duration
}

type exportJob struct {
	Sink    Sink
	Record  game.Record
	Attempt int
}

// Dispatcher delivers finished records to every sink on background workers.
// Enqueue never blocks; a full queue or exhausted retries drop the record
// for that sink with a warning and a metric.
type Dispatcher struct {
	cfg   Config
	sinks []Sink

	dispatchCh chan exportJob
	retryQ     *retryQueue
	done       chan struct{}

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

func NewDispatcher(cfg Config, sinks ...Sink) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	d := &Dispatcher{
		cfg:        cfg,
		sinks:      sinks,
		dispatchCh: make(chan exportJob, cfg.QueueSize),
		done:       make(chan struct{}),
	}
	d.retryQ = newRetryQueue(d.dispatchCh, d.done)
	return d
}

func (d *Dispatcher) Sinks() []Sink {
	out := make([]Sink, len(d.sinks))
	copy(out, d.sinks)
	return out
}

// Start launches the workers. When ctx is cancelled the workers deliver
// whatever is already queued, once, and exit; pending retries are dropped.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return
	}
	d.started = true
	d.mu.Unlock()

	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
	go func() {
		<-ctx.Done()
		close(d.done)
	}()
}

// Wait blocks until every worker has exited after shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) Enqueue(rec game.Record) bool {
	queued := true
	for _, sink := range d.sinks {
		if !d.enqueue(exportJob{Sink: sink, Record: rec}) {
			metricExportDroppedTotal.Add(1)
			log.Warn().
				Str("session_id", rec.SessionID).
				Str("sink", sink.Name()).
				Msg("export_dropped_queue_full")
			queued = false
		}
	}
	return queued
}

func (d *Dispatcher) enqueue(job exportJob) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.dispatchCh <- job:
		metricExportQueuedTotal.Add(1)
		metricExportQueueLen.Set(int64(len(d.dispatchCh)))
		return true
	default:
		return false
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			d.drain()
			return
		case job := <-d.dispatchCh:
			metricExportQueueLen.Set(int64(len(d.dispatchCh)))
			d.process(ctx, job, true)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case job := <-d.dispatchCh:
			d.process(context.Background(), job, false)
		default:
			return
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, job exportJob, retry bool) {
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.RequestTimeout)
	err := job.Sink.Export(sendCtx, job.Record)
	cancel()
	if err == nil {
		metricExportSentTotal.Add(1)
		log.Debug().
			Str("session_id", job.Record.SessionID).
			Str("sink", job.Sink.Name()).
			Int("attempt", job.Attempt).
			Msg("export_sent")
		return
	}

	metricExportFailedTotal.Add(1)
	if retry && d.retryOrDrop(job) {
		log.Warn().Err(err).
			Str("session_id", job.Record.SessionID).
			Str("sink", job.Sink.Name()).
			Int("attempt", job.Attempt).
			Msg("export_failed_retrying")
		return
	}
	if !retry {
		metricExportRetryDroppedTotal.Add(1)
	}
	log.Error().Err(err).
		Str("session_id", job.Record.SessionID).
		Str("sink", job.Sink.Name()).
		Int("attempt", job.Attempt).
		Msg("export_dropped")
}

func (d *Dispatcher) retryOrDrop(job exportJob) bool {
	if job.Attempt >= d.cfg.RetryMax {
		metricExportRetryDroppedTotal.Add(1)
		return false
	}
	job.Attempt++
	metricExportRetryTotal.Add(1)
	delay := d.cfg.RetryBase * time.Duration(1<<(job.Attempt-1))
	d.retryQ.Enqueue(job, delay)
	return true
}

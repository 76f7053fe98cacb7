package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/bozocamp/bc-printer-monitor-render/internal/logger"
	"github.com/bozocamp/bc-printer-monitor-render/internal/roster"
)

// Worker runs the collect-and-push cycle on a fixed interval with bounded
// retry on push failure.
type Worker struct {
	collector *Collector
	client    *PushClient
	entries   []roster.Entry
	log       *logger.Logger

	interval      time.Duration
	retryAttempts int
	retryBackoff  time.Duration

	mu       sync.RWMutex
	lastPush time.Time
	running  bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// WorkerConfig configures the bridge worker.
type WorkerConfig struct {
	Interval      time.Duration // default 60s
	RetryAttempts int           // default 3
	RetryBackoff  time.Duration // default 2s, doubled per attempt
}

// NewWorker creates a Worker with defaults applied.
func NewWorker(collector *Collector, client *PushClient, entries []roster.Entry, log *logger.Logger, cfg WorkerConfig) *Worker {
	if cfg.Interval == 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 2 * time.Second
	}
	if log == nil {
		log = logger.New(logger.WARN, 100)
	}

	return &Worker{
		collector:     collector,
		client:        client,
		entries:       entries,
		log:           log,
		interval:      cfg.Interval,
		retryAttempts: cfg.RetryAttempts,
		retryBackoff:  cfg.RetryBackoff,
		stopCh:        make(chan struct{}),
	}
}

// Start launches the worker goroutine. The first cycle runs immediately.
func (w *Worker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run()
}

// Stop halts the worker and waits for the current cycle to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()
}

// LastPush returns when the most recent successful push completed.
func (w *Worker) LastPush() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastPush
}

func (w *Worker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.cycle()
	for {
		select {
		case <-ticker.C:
			w.cycle()
		case <-w.stopCh:
			return
		}
	}
}

func (w *Worker) cycle() {
	devices := w.collector.Collect(w.entries)

	err := w.retryWithBackoff(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		ack, err := w.client.Push(ctx, devices)
		if err != nil {
			return err
		}
		w.log.Info("Pushed snapshot", "count", len(devices), "online", ack.Online, "snmp", ack.WithSNMP)
		return nil
	})
	if err != nil {
		w.log.Error("Snapshot push failed after retries", "error", err)
		return
	}

	w.mu.Lock()
	w.lastPush = time.Now()
	w.mu.Unlock()
}

// retryWithBackoff retries fn with exponentially growing delays, giving up
// after the configured number of attempts or on shutdown.
func (w *Worker) retryWithBackoff(fn func() error) error {
	var lastErr error
	backoff := w.retryBackoff

	for attempt := 1; attempt <= w.retryAttempts; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt == w.retryAttempts {
			break
		}
		w.log.Warn("Push attempt failed, retrying", "attempt", attempt, "backoff", backoff, "error", lastErr)

		select {
		case <-time.After(backoff):
		case <-w.stopCh:
			return lastErr
		}
		backoff *= 2
	}
	return lastErr
}

// flushworker.go: Background consumer draining the queue on a ticker
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hermes

import (
	"context"
	"errors"
	"sync"
	"time"
)

const defaultFlushInterval = time.Millisecond

// FlushWorker owns the consumer role of a Logger: a single goroutine
// draining the queue on a ticker, with optional adaptive timing.
//
// While a worker is running, no other goroutine may call Flush or
// FlushAll on the same Logger.
//
// Note: this type is exported for type safety but should not be
// constructed directly; use Logger.StartFlushWorker.
type FlushWorker struct {
	logger *Logger
	ctx    context.Context
	cancel context.CancelFunc
	ticker *time.Ticker
	wg     sync.WaitGroup
}

// StartFlushWorker starts the background flush worker using the
// configured flush interval. Returns the existing worker if one is
// already running.
func (l *Logger) StartFlushWorker() *FlushWorker {
	if w := l.worker.Load(); w != nil {
		return w
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &FlushWorker{
		logger: l,
		ctx:    ctx,
		cancel: cancel,
		ticker: time.NewTicker(l.flushInterval),
	}

	if !l.worker.CompareAndSwap(nil, w) {
		cancel()
		w.ticker.Stop()
		return l.worker.Load()
	}

	w.wg.Add(1)
	go w.run()
	return w
}

// StopFlushWorker stops the worker after a final drain. No-op when no
// worker is running.
func (l *Logger) StopFlushWorker() {
	if w := l.worker.Load(); w != nil {
		w.stop()
		l.worker.CompareAndSwap(w, nil)
	}
}

// run executes the consumer loop with optional adaptive timing.
func (w *FlushWorker) run() {
	defer w.ticker.Stop()
	defer w.wg.Done()

	emptyRounds := 0
	for {
		select {
		case <-w.ctx.Done():
			// Final drain before shutdown
			w.drain()
			return
		case <-w.ticker.C:
			flushed := w.drain()
			if w.logger.adaptiveFlush {
				w.adjustFlushTiming(flushed, &emptyRounds)
			}
		}
	}
}

// drain flushes until the queue is empty or an error demands backoff.
// Returns the number of records flushed.
func (w *FlushWorker) drain() int {
	flushed := 0
	for {
		err := w.logger.Flush()
		if err == nil {
			flushed++
			continue
		}
		if !errors.Is(err, ErrEmpty) {
			// Decode or sink failure: the record stays in the queue; back
			// off until the next tick instead of spinning on it.
			w.logger.reportError("flush_worker", err)
		}
		return flushed
	}
}

// adjustFlushTiming adapts the ticker to the observed write velocity:
// back off when the queue is consistently empty, speed up under load.
func (w *FlushWorker) adjustFlushTiming(flushed int, emptyRounds *int) {
	if flushed == 0 {
		*emptyRounds++
		if *emptyRounds >= 10 {
			w.ticker.Reset(5 * time.Millisecond)
			*emptyRounds = 0
		}
		return
	}

	*emptyRounds = 0
	if flushed > 10 {
		w.ticker.Reset(500 * time.Microsecond)
	} else {
		w.ticker.Reset(w.logger.flushInterval)
	}
}

// stop gracefully stops the worker.
func (w *FlushWorker) stop() {
	w.cancel()
	w.wg.Wait()
}

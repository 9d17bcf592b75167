// logger.go: Public API - low-latency structured logging core
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hermes

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

// DefaultCapacity is the default queue capacity in bytes.
const DefaultCapacity = 1 << 20

// FilterEnv is the environment variable consulted for the initial level
// filter, with the shape "target1=level1,target2=level2" (a bare level
// sets the global filter).
const FilterEnv = "HERMES_LOG"

// Logger is the low-latency logging handle.
//
// The hot path records structured arguments into a single-producer,
// single-consumer byte queue with no blocking, no allocation beyond a
// pre-sized arena, and no formatting for arguments implementing
// Encodable. All formatting and I/O is deferred to the flush pass.
//
// Exactly one goroutine may call the recording methods (Log, LogDefer,
// Commit) and exactly one goroutine may call the flushing methods
// (Flush, FlushAll) - either directly or through a flush worker.
// Configuration setters are safe from any goroutine.
type Logger struct {
	producer *Producer
	consumer *Consumer
	arena    *arena
	clock    *Clock
	filter   filter

	sink      atomic.Pointer[sinkRef]
	formatter atomic.Pointer[formatterRef]

	timeCache     *timecache.TimeCache
	errorCallback func(operation string, err error)

	flushInterval time.Duration
	adaptiveFlush bool
	worker        atomic.Pointer[FlushWorker]
	closeOnce     sync.Once

	// Producer-private scratch, reused across records.
	prepared []preparedArg

	// Telemetry (all atomic)
	recordsWritten  atomic.Uint64
	bytesWritten    atomic.Uint64
	droppedFull     atomic.Uint64
	droppedOversize atomic.Uint64
	recordsFlushed  atomic.Uint64
	sinkErrors      atomic.Uint64
}

// Interface values are swapped through pointer boxes so setters are a
// single atomic store.
type sinkRef struct{ sink Sink }

type formatterRef struct{ formatter Formatter }

// preparedArg is one classified argument: either an Encodable to be
// bit-copied, or bytes already formatted into the arena.
type preparedArg struct {
	enc      Encodable
	fmtBytes []byte
}

// New creates a Logger with the given configuration. A nil config uses
// all defaults: a 1MB queue, stdout sink, default formatter, and the
// filter taken from the HERMES_LOG environment variable when set.
func New(config *Config) (*Logger, error) {
	if config == nil {
		config = &Config{}
	}

	capacity, err := config.capacityBytes()
	if err != nil {
		return nil, err
	}
	interval, err := config.flushInterval()
	if err != nil {
		return nil, err
	}

	producer, consumer := newQueue(uint64(capacity))
	tc := timecache.NewWithResolution(time.Millisecond)

	clock := config.Clock
	if clock == nil {
		clock = newCachedClock(tc)
	}
	formatter := config.Formatter
	if formatter == nil {
		formatter, _ = NewFormatter().Build()
	}
	sink := config.Sink
	if sink == nil {
		sink = StdoutSink{}
	}

	l := &Logger{
		producer:      producer,
		consumer:      consumer,
		arena:         newArena(config.ArenaCapacity),
		clock:         clock,
		timeCache:     tc,
		errorCallback: config.ErrorCallback,
		flushInterval: interval,
		adaptiveFlush: config.AdaptiveFlush,
	}
	l.sink.Store(&sinkRef{sink: sink})
	l.formatter.Store(&formatterRef{formatter: formatter})

	global := config.MaxLevel
	targets := config.Targets
	if env := os.Getenv(FilterEnv); env != "" {
		envGlobal, envTargets, parseErr := ParseFilter(env)
		if parseErr != nil {
			l.reportError("filter_env", parseErr)
		}
		if global == DefaultLevelFilter {
			global = envGlobal
		}
		// Explicit config overrides win on conflicting targets.
		for target, level := range targets {
			envTargets = addTargetFilter(envTargets, target, level)
			envTargets[target] = level
		}
		if envTargets != nil {
			targets = envTargets
		}
	}
	l.filter.setGlobal(global)
	l.filter.setTargets(targets)

	return l, nil
}

// Log records one log record and commits it, making it immediately
// visible to the consumer. args are matched positionally against the
// callsite's format markers, with structured field arguments trailing.
//
// Arguments implementing Encodable are bit-copied; everything else is
// formatted into the arena on the calling goroutine (the Fmt fallback).
// Returns ErrNotEnoughSpace when the queue is full (the record is
// dropped) and ErrCapacityExceeded when the record can never fit.
func (l *Logger) Log(md *Metadata, args ...any) error {
	return l.log(md, true, args)
}

// LogDefer records one log record without committing it. The record is
// invisible to the consumer until a later Commit (or committed Log)
// publishes it together with every other deferred record, in order.
func (l *Logger) LogDefer(md *Metadata, args ...any) error {
	return l.log(md, false, args)
}

// Commit publishes all finished but uncommitted records.
func (l *Logger) Commit() {
	l.producer.CommitWrite()
}

func (l *Logger) log(md *Metadata, commit bool, args []any) error {
	if !l.filter.enabled(md.Target, md.Level) {
		return nil
	}

	tick := l.clock.Now()
	defer l.arena.reset()

	prepared := l.prepared[:0]
	allEncoded := len(args) > 0
	var batchID DecodeID
	for _, a := range args {
		if e, ok := a.(Encodable); ok {
			prepared = append(prepared, preparedArg{enc: e})
			id := e.Decoder()
			if batchID == 0 {
				batchID = id
			} else if batchID != id {
				allEncoded = false
			}
			continue
		}
		allEncoded = false
		prepared = append(prepared, preparedArg{fmtBytes: l.arena.formatArg(a)})
	}
	l.prepared = prepared[:0]

	// A batch decode re-applies one decoder until the byte range is
	// exhausted, so decoders that swallow their whole chunk (raw strings,
	// fixed arrays) can only batch alone.
	if allEncoded && len(prepared) > 1 && !selfDelimiting(batchID) {
		allEncoded = false
	}

	total := 0
	if allEncoded {
		total = logHeaderAllEncodedSize
		for _, p := range prepared {
			total += p.enc.BufferSizeRequired()
		}
	} else {
		total = logHeaderNormalSize
		for _, p := range prepared {
			if p.enc != nil {
				total += encodedArgHeaderSize + p.enc.BufferSizeRequired()
			} else {
				total += fmtArgHeaderSize + len(p.fmtBytes)
			}
		}
	}

	if uint64(total) > l.producer.Capacity() {
		l.droppedOversize.Add(1)
		l.reportError("log_oversize", ErrCapacityExceeded)
		return ErrCapacityExceeded
	}

	buf, err := l.producer.PrepareWrite(total)
	if err != nil {
		l.droppedFull.Add(1)
		return err
	}

	cur := newCursorMut(buf, nil)
	if allEncoded {
		err = l.writeBatchRecord(cur, md, tick, batchID, prepared, total)
	} else {
		err = l.writeNormalRecord(cur, md, tick, prepared)
	}
	if err != nil {
		// The reservation is abandoned; the local write cursor is left
		// unchanged and the bytes are never committed.
		l.producer.FinishWrite(0)
		l.reportError("log_encode", err)
		return err
	}

	l.producer.FinishWrite(cur.finish())
	if commit {
		l.producer.CommitWrite()
	}

	l.recordsWritten.Add(1)
	l.bytesWritten.Add(uint64(total))
	return nil
}

func (l *Logger) writeBatchRecord(cur *cursorMut, md *Metadata, tick uint64, batchID DecodeID, prepared []preparedArg, total int) error {
	if err := writeHeaderAllEncoded(cur, md.id, tick, batchID, total-logHeaderAllEncodedSize); err != nil {
		return err
	}
	for _, p := range prepared {
		if err := writeEncodedPayload(cur, p.enc, p.enc.BufferSizeRequired()); err != nil {
			return err
		}
	}
	return nil
}

func (l *Logger) writeNormalRecord(cur *cursorMut, md *Metadata, tick uint64, prepared []preparedArg) error {
	if err := writeHeaderNormal(cur, md.id, tick, len(prepared)); err != nil {
		return err
	}
	for _, p := range prepared {
		if p.enc != nil {
			if err := writeEncodedArg(cur, p.enc); err != nil {
				return err
			}
		} else if err := writeFmtArg(cur, p.fmtBytes); err != nil {
			return err
		}
	}
	return nil
}

// Flush parses one committed record, formats it and hands the line to
// the sink. Returns ErrEmpty when nothing is committed. On a decode or
// sink error the read cursor is not advanced, so a retried flush
// attempts the same record.
func (l *Logger) Flush() error {
	buf, err := l.consumer.PrepareRead()
	if err != nil {
		return err
	}

	cur := newCursorRef(buf, nil)
	md, tick, args, err := decodeRecord(cur)
	if err != nil {
		l.reportError("flush_decode", err)
		return err
	}

	ts := l.clock.WallTime(tick)
	var line string
	if md.JSON {
		// Event records always format as JSON.
		line = eventFormatter.Format(ts, md, args)
	} else {
		line = l.Formatter().Format(ts, md, args)
	}

	if err := l.Sink().FlushOne(line); err != nil {
		l.sinkErrors.Add(1)
		l.reportError("flush_sink", err)
		return fmt.Errorf("%w: %v", ErrSink, err)
	}

	l.consumer.FinishRead(cur.finish())
	l.consumer.CommitRead()
	l.recordsFlushed.Add(1)
	return nil
}

// FlushAll flushes records until the queue is empty. Returns the first
// error other than ErrEmpty.
func (l *Logger) FlushAll() error {
	for {
		err := l.Flush()
		if errors.Is(err, ErrEmpty) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Sink returns the current sink.
func (l *Logger) Sink() Sink {
	return l.sink.Load().sink
}

// SetSink atomically replaces the sink.
func (l *Logger) SetSink(s Sink) {
	if s == nil {
		s = NoopSink{}
	}
	l.sink.Store(&sinkRef{sink: s})
}

// Formatter returns the current formatter.
func (l *Logger) Formatter() Formatter {
	return l.formatter.Load().formatter
}

// SetFormatter atomically replaces the formatter.
func (l *Logger) SetFormatter(f Formatter) {
	if f == nil {
		f, _ = NewFormatter().Build()
	}
	l.formatter.Store(&formatterRef{formatter: f})
}

// MaxLevel returns the current global level filter.
func (l *Logger) MaxLevel() LevelFilter {
	return l.filter.globalLevel()
}

// SetMaxLevel updates the global level filter.
func (l *Logger) SetMaxLevel(level LevelFilter) {
	l.filter.setGlobal(level)
}

// SetTargetFilters replaces the per-target filter overrides.
func (l *Logger) SetTargetFilters(targets map[string]LevelFilter) {
	l.filter.setTargets(targets)
}

// Clock returns the logger's clock.
func (l *Logger) Clock() *Clock {
	return l.clock
}

// Close stops the flush worker if one is running, drains the queue on a
// best-effort basis, stops the time cache and closes the sink when it
// supports closing. Safe to call multiple times.
func (l *Logger) Close() error {
	var closeErr error
	l.closeOnce.Do(func() {
		if w := l.worker.Load(); w != nil {
			w.stop()
		} else {
			_ = l.FlushAll()
		}

		if l.timeCache != nil {
			l.timeCache.Stop()
		}

		if closer, ok := l.Sink().(io.Closer); ok {
			closeErr = closer.Close()
		}
	})
	return closeErr
}

func (l *Logger) reportError(operation string, err error) {
	if l.errorCallback != nil {
		l.errorCallback(operation, err)
	}
}

// Stats is a snapshot of logger telemetry. All counters are collected
// from atomics and safe to query concurrently.
type Stats struct {
	RecordsWritten  uint64 `json:"records_written"`   // Records accepted into the queue
	BytesWritten    uint64 `json:"bytes_written"`     // Total record bytes accepted
	DroppedFull     uint64 `json:"dropped_full"`      // Records dropped on a full queue
	DroppedOversize uint64 `json:"dropped_oversize"`  // Records larger than the queue capacity
	RecordsFlushed  uint64 `json:"records_flushed"`   // Records formatted and sunk
	SinkErrors      uint64 `json:"sink_errors"`       // Lines refused by the sink
	QueueCapacity   uint64 `json:"queue_capacity"`    // Queue capacity in bytes
	WorkerActive    bool   `json:"worker_active"`     // Whether a flush worker is running
	SnapshotUnixMs  int64  `json:"snapshot_unix_ms"`  // Snapshot time
}

// Stats returns current telemetry.
func (l *Logger) Stats() Stats {
	return Stats{
		RecordsWritten:  l.recordsWritten.Load(),
		BytesWritten:    l.bytesWritten.Load(),
		DroppedFull:     l.droppedFull.Load(),
		DroppedOversize: l.droppedOversize.Load(),
		RecordsFlushed:  l.recordsFlushed.Load(),
		SinkErrors:      l.sinkErrors.Load(),
		QueueCapacity:   l.producer.Capacity(),
		WorkerActive:    l.worker.Load() != nil,
		SnapshotUnixMs:  l.timeCache.CachedTime().UnixMilli(),
	}
}

// Global logger handle. Initialized once; later inits return the
// existing handle.
var (
	globalMu     sync.Mutex
	globalLogger atomic.Pointer[Logger]
)

// Init initializes the global logger with a queue of the given byte
// capacity (rounded up to the next power of two). Idempotent: if the
// global logger already exists it is returned unchanged.
func Init(capacity int) *Logger {
	l, _ := InitWithConfig(&Config{Capacity: capacity})
	return l
}

// InitWithConfig initializes the global logger with full configuration.
// Idempotent: if the global logger already exists it is returned
// unchanged and the config is ignored.
func InitWithConfig(config *Config) (*Logger, error) {
	if l := globalLogger.Load(); l != nil {
		return l, nil
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if l := globalLogger.Load(); l != nil {
		return l, nil
	}

	l, err := New(config)
	if err != nil {
		return nil, err
	}
	globalLogger.Store(l)
	return l, nil
}

// Default returns the global logger, initializing it with defaults on
// first use.
func Default() *Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	return Init(DefaultCapacity)
}

// Log records and commits one record on the global logger.
func Log(md *Metadata, args ...any) error {
	return Default().Log(md, args...)
}

// LogDefer records one record on the global logger without committing.
func LogDefer(md *Metadata, args ...any) error {
	return Default().LogDefer(md, args...)
}

// Commit publishes all deferred records on the global logger.
func Commit() {
	Default().Commit()
}

// Flush flushes one record from the global logger.
func Flush() error {
	return Default().Flush()
}

// FlushAll drains the global logger.
func FlushAll() error {
	return Default().FlushAll()
}

// SetSink replaces the global logger's sink.
func SetSink(s Sink) {
	Default().SetSink(s)
}

// SetFormatter replaces the global logger's formatter.
func SetFormatter(f Formatter) {
	Default().SetFormatter(f)
}

// SetMaxLevel updates the global logger's level filter.
func SetMaxLevel(level LevelFilter) {
	Default().SetMaxLevel(level)
}

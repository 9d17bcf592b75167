// Package hermes is a low-latency structured logging core built around a
// single-producer single-consumer byte queue.
//
// The recording hot path never blocks, never allocates beyond a
// pre-sized arena, and never formats arguments that implement the
// Encodable contract: records are framed into the queue as raw bytes
// and all formatting and I/O happens in a separate flush pass.
//
// # Quick Start
//
//	hermes.Init(1024 * 1024)
//
//	var mdReady = hermes.Callsite(hermes.LevelInfo, "engine", "main.go", 42,
//		"engine ready after {} ms")
//
//	hermes.Log(mdReady, hermes.Int64(17))
//	hermes.Flush()
//	// [1706065336][INF] engine ready after 17 ms
//
// # Callsites
//
// Every logging call is associated with a Callsite: static metadata
// (source location, target, level, format string, field names)
// registered once for the lifetime of the process and referenced from
// each record by handle. Structured fields are named in the callsite and
// their arguments are always the trailing arguments of the call:
//
//	var mdFill = hermes.Callsite(hermes.LevelInfo, "engine", "book.go", 10,
//		"order filled", "price", "qty")
//
//	hermes.Log(mdFill, hermes.Float64(99.5), hermes.Uint64(300))
//	// [1706065336][INF] order filled price=99.5 qty=300
//
// # Encodable
//
// Arguments implementing Encodable are bit-copied on the hot path and
// reconstructed as text only when flushed. Built-in implementations
// cover integers, floats, strings and homogeneous sequences. User types
// implement three methods and register a decoder once:
//
//	type Order struct {
//		ID  uint64
//		Qty uint32
//	}
//
//	var orderDecodeID = hermes.RegisterDecoder(decodeOrder)
//
//	func (o Order) BufferSizeRequired() int { return 12 }
//	func (o Order) Decoder() hermes.DecodeID { return orderDecodeID }
//	func (o Order) Encode(dst []byte) []byte {
//		dst = hermes.Uint64(o.ID).Encode(dst)
//		return hermes.Uint32(o.Qty).Encode(dst)
//	}
//
//	func decodeOrder(src []byte) (string, []byte) {
//		id, src := hermes.DecodeValue(hermes.Uint64(0).Decoder(), src)
//		qty, src := hermes.DecodeValue(hermes.Uint32(0).Decoder(), src)
//		return hermes.FormatNamed("Order", []string{"id", "qty"}, []string{id, qty}), src
//	}
//
// Arguments without an Encodable implementation still work: they are
// formatted into the arena on the calling goroutine (the Fmt fallback)
// and copied as UTF-8 bytes.
//
// # Deferred logging
//
// LogDefer records without publishing; a later Commit makes every
// deferred record visible at once. This trades one atomic store per
// record for one per batch:
//
//	logger.LogDefer(mdTick, hermes.Uint64(seq))
//	logger.LogDefer(mdTick, hermes.Uint64(seq+1))
//	logger.Commit()
//
// # Flushing
//
// Flush formats and sinks one record; FlushAll drains the queue. For a
// dedicated consumer goroutine, start the built-in worker:
//
//	logger.StartFlushWorker()
//	defer logger.Close()
//
// Exactly one goroutine may record and exactly one may flush; the queue
// is strictly single-producer, single-consumer.
//
// # Output
//
// Sinks receive fully formatted lines (stdout, stderr, file, no-op).
// Formatters are configured through a builder:
//
//	f, _ := hermes.NewFormatter().
//		WithTimeLayout(time.RFC3339Nano).
//		WithTarget(true).
//		Build()
//	logger.SetFormatter(f)
//
// A pattern string may replace the default layout, and JSON output is
// built in. Event-level callsites always format as JSON regardless of
// the configured formatter.
//
// # Filtering
//
// The global level filter and per-target overrides are adjustable at
// runtime (SetMaxLevel, SetTargetFilters), seeded from the HERMES_LOG
// environment variable ("info", "engine=debug,info", ...), and
// hot-reloadable from a config file via WatchFilterFile.
package hermes

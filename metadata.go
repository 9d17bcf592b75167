// metadata.go: Static per-callsite metadata and its process-wide registry
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hermes

import (
	"sync"
	"sync/atomic"
)

// Metadata describes a single logging callsite. Instances are created
// once (typically as package-level variables), registered for the
// lifetime of the process, and referenced from record headers by handle.
type Metadata struct {
	// Target is the module path or subsystem name used for target
	// filtering.
	Target string

	// File and Line locate the callsite in source.
	File string
	Line uint32

	// Level of every record produced by this callsite.
	Level Level

	// Format is the message format string. Positional arguments are
	// interpolated at the `{}` markers; literal braces are escaped as
	// `{{` and `}}`. An empty format string elides the message.
	Format string

	// Fields are the names of the structured fields attached to this
	// callsite. Field arguments are always the trailing arguments of a
	// logging call, in the same order as Fields.
	Fields []string

	// JSON forces JSON formatting for this callsite regardless of the
	// configured formatter. Always set for event-level callsites.
	JSON bool

	id uint64
}

// Callsite registers the metadata for one logging callsite and returns
// a handle valid for the lifetime of the process.
func Callsite(level Level, target, file string, line uint32, format string, fields ...string) *Metadata {
	return registerMetadata(&Metadata{
		Target: target,
		File:   file,
		Line:   line,
		Level:  level,
		Format: format,
		Fields: fields,
	})
}

// EventCallsite registers an event-level callsite. Event records are
// always formatted as JSON.
func EventCallsite(target, file string, line uint32, format string, fields ...string) *Metadata {
	return registerMetadata(&Metadata{
		Target: target,
		File:   file,
		Line:   line,
		Level:  LevelEvent,
		Format: format,
		Fields: fields,
		JSON:   true,
	})
}

// metadataRegistry maps the handle written into record headers back to
// the static Metadata. Registration appends under a lock; lookups on the
// flush path go through an atomic snapshot.
type metadataRegistry struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[[]*Metadata]
}

var metaRegistry metadataRegistry

func registerMetadata(md *Metadata) *Metadata {
	metaRegistry.mu.Lock()
	defer metaRegistry.mu.Unlock()

	var entries []*Metadata
	if cur := metaRegistry.snapshot.Load(); cur != nil {
		entries = append(entries, *cur...)
	}
	// Handle 0 is reserved as invalid.
	md.id = uint64(len(entries)) + 1
	entries = append(entries, md)
	metaRegistry.snapshot.Store(&entries)

	return md
}

// metadataByID resolves a handle read back from a record header.
func metadataByID(id uint64) (*Metadata, bool) {
	cur := metaRegistry.snapshot.Load()
	if cur == nil || id == 0 || id > uint64(len(*cur)) {
		return nil, false
	}
	return (*cur)[id-1], true
}

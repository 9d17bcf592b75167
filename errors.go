// errors.go: Pre-allocated coded errors shared across the package
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hermes

import (
	goerrors "github.com/agilira/go-errors"
)

// Pre-allocated errors to avoid allocations in hot paths. Match with
// errors.Is.
var (
	// ErrNotEnoughSpace is returned by the write side when the queue does
	// not have enough contiguous free bytes for a record. The record is
	// dropped; logging never blocks.
	ErrNotEnoughSpace = goerrors.New("HERMES_QUEUE_FULL", "not enough space in queue")

	// ErrEmpty is returned by the read side when there is nothing to
	// flush. This is a normal condition during idle periods.
	ErrEmpty = goerrors.New("HERMES_QUEUE_EMPTY", "nothing to read from queue")

	// ErrNotEnoughBytes indicates the readable region ended in the middle
	// of a record. The read cursor is not advanced.
	ErrNotEnoughBytes = goerrors.New("HERMES_SHORT_READ", "queue ended in the middle of a record")

	// ErrUnexpectedValue indicates an unknown discriminant or a decoder
	// that consumed a different number of bytes than it declared. The read
	// cursor is not advanced.
	ErrUnexpectedValue = goerrors.New("HERMES_BAD_DISCRIMINANT", "unexpected value decoded from queue")

	// ErrCapacityExceeded indicates a single record larger than the queue
	// capacity; it can never be written at any occupancy.
	ErrCapacityExceeded = goerrors.New("HERMES_RECORD_TOO_LARGE", "record cannot fit in queue at any occupancy")

	// ErrSink indicates the sink refused a formatted line. The failing
	// record stays in the queue and is retried on the next flush.
	ErrSink = goerrors.New("HERMES_SINK", "sink rejected log line")

	// ErrPattern indicates an invalid formatter pattern string.
	ErrPattern = goerrors.New("HERMES_PATTERN", "invalid formatter pattern")

	// ErrLevelParse indicates an unrecognized level or filter string.
	ErrLevelParse = goerrors.New("HERMES_LEVEL_PARSE", "unrecognized log level")
)

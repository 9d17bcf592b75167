// ring.go: Single-producer single-consumer byte queue with mirrored storage
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hermes

import (
	"math/bits"
	"sync/atomic"
)

const cacheLinePad = 64

// minQueueCapacity keeps the queue large enough for a record header plus
// one argument header and a few payload bytes.
const minQueueCapacity = 64

// queue is the shared state between one Producer and one Consumer.
//
// The backing storage is 2C bytes: a second physical copy mirrors the
// first, so any contiguous span of up to C bytes starting at any logical
// position can be handed out as a single slice, with no wrap split. The
// mirror is maintained by FinishWrite copying each completed range into
// its counterpart half.
//
// Cursors are 64-bit and monotonically increasing; positions are mapped
// into storage with pos&mask. Each side keeps a thread-private view of
// both cursors and refreshes the other side's published cursor only when
// its local snapshot is insufficient. CommitWrite/CommitRead publish with
// a release store; the matching refresh is an acquire load, establishing
// the happens-before edge from every written byte to its read.
type queue struct {
	buf      []byte
	mask     uint64
	capacity uint64

	writePos atomic.Uint64
	_        [cacheLinePad - 8]byte
	readPos  atomic.Uint64
	_        [cacheLinePad - 8]byte
}

// nextPow2 returns the next power of 2 greater than or equal to x.
func nextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	return 1 << (64 - bits.LeadingZeros64(x-1))
}

// newQueue creates an SPSC byte queue with at least the given capacity,
// rounded up to the next power of two, and returns its two endpoints.
// The Producer must be driven by exactly one goroutine, the Consumer by
// exactly one goroutine.
func newQueue(capacity uint64) (*Producer, *Consumer) {
	if capacity < minQueueCapacity {
		capacity = minQueueCapacity
	}
	capacity = nextPow2(capacity)

	q := &queue{
		buf:      make([]byte, 2*capacity),
		mask:     capacity - 1,
		capacity: capacity,
	}
	return &Producer{queue: q}, &Consumer{queue: q}
}

// mirror copies the completed range [start, start+n) into its
// counterpart half so that the byte at physical p mod C always equals
// the byte at (p mod C)+C for every committed position.
func (q *queue) mirror(start, n uint64) {
	if n == 0 {
		return
	}
	c := q.capacity
	end := start + n
	if end <= c {
		copy(q.buf[start+c:end+c], q.buf[start:end])
		return
	}
	copy(q.buf[start+c:2*c], q.buf[start:c])
	copy(q.buf[0:end-c], q.buf[c:end])
}

// Producer is the write endpoint of the queue.
type Producer struct {
	queue     *queue
	writerPos uint64
	readerPos uint64
}

// Capacity returns the queue capacity in bytes.
func (p *Producer) Capacity() uint64 {
	return p.queue.capacity
}

// PrepareWrite returns a writable slice of length >= n starting at the
// current local write position. The slice may be longer than n; only the
// argument to FinishWrite determines how many bytes were consumed.
// Returns ErrNotEnoughSpace if, even after refreshing the local view of
// the read cursor, fewer than n bytes are free.
func (p *Producer) PrepareWrite(n int) ([]byte, error) {
	q := p.queue
	remaining := q.capacity - (p.writerPos - p.readerPos)
	if uint64(n) > remaining {
		// Refresh the published read cursor (acquire) and retry once.
		p.readerPos = q.readPos.Load()
		remaining = q.capacity - (p.writerPos - p.readerPos)
		if uint64(n) > remaining {
			return nil, ErrNotEnoughSpace
		}
	}

	start := p.writerPos & q.mask
	return q.buf[start : start+remaining], nil
}

// FinishWrite advances the local write cursor by n and maintains the
// storage mirror for the completed range. n must not exceed the length
// of the slice returned by the last PrepareWrite.
func (p *Producer) FinishWrite(n int) {
	q := p.queue
	q.mirror(p.writerPos&q.mask, uint64(n))
	p.writerPos += uint64(n)
}

// CommitWrite publishes the local write cursor, making every finished
// record visible to the consumer.
func (p *Producer) CommitWrite() {
	p.queue.writePos.Store(p.writerPos)
}

// Consumer is the read endpoint of the queue.
type Consumer struct {
	queue     *queue
	writerPos uint64
	readerPos uint64
}

// PrepareRead returns a slice over all committed but unread bytes.
// Returns ErrEmpty if, after refreshing the local view of the write
// cursor, no bytes are available.
func (c *Consumer) PrepareRead() ([]byte, error) {
	q := c.queue
	available := c.writerPos - c.readerPos
	if available == 0 {
		// Refresh the published write cursor (acquire) and retry once.
		c.writerPos = q.writePos.Load()
		available = c.writerPos - c.readerPos
		if available == 0 {
			return nil, ErrEmpty
		}
	}

	start := c.readerPos & q.mask
	return q.buf[start : start+available], nil
}

// FinishRead advances the local read cursor by n.
func (c *Consumer) FinishRead(n int) {
	c.readerPos += uint64(n)
}

// CommitRead publishes the local read cursor, freeing the consumed bytes
// for future writes.
func (c *Consumer) CommitRead() {
	c.queue.readPos.Store(c.readerPos)
}

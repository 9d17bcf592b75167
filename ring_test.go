// ring_test.go: SPSC queue unit tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hermes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueCapacityRounding(t *testing.T) {
	p, _ := newQueue(100)
	assert.Equal(t, uint64(128), p.Capacity())

	p, _ = newQueue(0)
	assert.Equal(t, uint64(minQueueCapacity), p.Capacity())

	p, _ = newQueue(64)
	assert.Equal(t, uint64(64), p.Capacity())
}

// Fill and empty the queue repeatedly so the cursors sweep through many
// wrap-arounds.
func TestQueueReadWriteCycles(t *testing.T) {
	p, c := newQueue(64)

	for i := 0; i < 256; i++ {
		// Two writes saturate the queue
		buf, err := p.PrepareWrite(32)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(buf), 32)
		p.FinishWrite(32)
		p.CommitWrite()

		_, err = p.PrepareWrite(32)
		require.NoError(t, err)
		p.FinishWrite(32)
		p.CommitWrite()

		// Full queue rejects even one byte
		_, err = p.PrepareWrite(1)
		require.ErrorIs(t, err, ErrNotEnoughSpace)

		// Two reads drain it
		rbuf, err := c.PrepareRead()
		require.NoError(t, err)
		require.Len(t, rbuf, 64)
		c.FinishRead(32)
		c.CommitRead()

		rbuf, err = c.PrepareRead()
		require.NoError(t, err)
		require.Len(t, rbuf, 32)
		c.FinishRead(32)
		c.CommitRead()

		_, err = c.PrepareRead()
		require.ErrorIs(t, err, ErrEmpty)
	}
}

func TestQueueExactFit(t *testing.T) {
	p, c := newQueue(64)

	buf, err := p.PrepareWrite(64)
	require.NoError(t, err)
	require.Len(t, buf, 64)
	p.FinishWrite(64)
	p.CommitWrite()

	_, err = p.PrepareWrite(1)
	require.ErrorIs(t, err, ErrNotEnoughSpace)

	rbuf, err := c.PrepareRead()
	require.NoError(t, err)
	require.Len(t, rbuf, 64)
	c.FinishRead(64)
	c.CommitRead()

	// Freed space is writable again after the producer refreshes
	buf, err = p.PrepareWrite(64)
	require.NoError(t, err)
	require.Len(t, buf, 64)
}

// Data written across the wrap boundary reads back byte-identical.
func TestQueueWrapDataIntegrity(t *testing.T) {
	p, c := newQueue(64)

	payload := make([]byte, 20)
	for round := 0; round < 50; round++ {
		for i := range payload {
			payload[i] = byte(round + i)
		}

		buf, err := p.PrepareWrite(len(payload))
		require.NoError(t, err)
		copy(buf, payload)
		p.FinishWrite(len(payload))
		p.CommitWrite()

		rbuf, err := c.PrepareRead()
		require.NoError(t, err)
		require.Len(t, rbuf, len(payload))
		assert.Equal(t, payload, rbuf[:len(payload)])
		c.FinishRead(len(payload))
		c.CommitRead()
	}
}

// Every committed byte at physical p mod C must equal the byte at
// (p mod C) + C.
func TestQueueMirroredStorage(t *testing.T) {
	p, c := newQueue(64)
	q := p.queue

	write := func(n int, seed byte) {
		buf, err := p.PrepareWrite(n)
		require.NoError(t, err)
		for i := 0; i < n; i++ {
			buf[i] = seed + byte(i)
		}
		p.FinishWrite(n)
		p.CommitWrite()
	}
	read := func(n int) {
		_, err := c.PrepareRead()
		require.NoError(t, err)
		c.FinishRead(n)
		c.CommitRead()
	}

	// Drive the write region across the wrap boundary
	write(50, 1)
	read(50)
	write(50, 101) // spans [50, 100) physically, wrapping at 64

	capacity := int(q.capacity)
	for i := 0; i < capacity; i++ {
		assert.Equal(t, q.buf[i], q.buf[i+capacity], "mirror mismatch at %d", i)
	}
}

// Finished but uncommitted bytes must stay invisible to the consumer.
func TestQueueDeferredVisibility(t *testing.T) {
	p, c := newQueue(64)

	buf, err := p.PrepareWrite(16)
	require.NoError(t, err)
	copy(buf, "0123456789abcdef")
	p.FinishWrite(16)

	_, err = c.PrepareRead()
	require.ErrorIs(t, err, ErrEmpty)

	p.CommitWrite()

	rbuf, err := c.PrepareRead()
	require.NoError(t, err)
	require.Len(t, rbuf, 16)
	assert.Equal(t, "0123456789abcdef", string(rbuf))
}

// PrepareWrite may return more space than requested; only FinishWrite
// determines consumption.
func TestQueueFinishShorterThanPrepared(t *testing.T) {
	p, c := newQueue(64)

	buf, err := p.PrepareWrite(8)
	require.NoError(t, err)
	require.Len(t, buf, 64)
	copy(buf, "abcd")
	p.FinishWrite(4)
	p.CommitWrite()

	rbuf, err := c.PrepareRead()
	require.NoError(t, err)
	require.Len(t, rbuf, 4)
	assert.Equal(t, "abcd", string(rbuf))
}

func TestQueueCursorAdvance(t *testing.T) {
	p, c := newQueue(64)

	prev := p.queue.writePos.Load()
	_, err := p.PrepareWrite(10)
	require.NoError(t, err)
	p.FinishWrite(10)
	p.CommitWrite()
	assert.Equal(t, prev+10, p.queue.writePos.Load())

	_, err = c.PrepareRead()
	require.NoError(t, err)
	prevRead := p.queue.readPos.Load()
	c.FinishRead(10)
	c.CommitRead()
	assert.Equal(t, prevRead+10, p.queue.readPos.Load())
}

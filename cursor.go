// cursor.go: Read/write cursors over a (head, tail) slice pair
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hermes

import (
	"encoding/binary"
)

// The cursors traverse up to two slices: head, and an optional tail
// holding the remainder after an in-buffer wrap. A fixed-size value
// never straddles the two: if head cannot hold it, the residual head
// bytes are abandoned (still counted as consumed) and the value is
// placed entirely in tail. Reader and writer apply the same tie-break,
// so both sides skip identical residuals.
//
// With the mirrored queue storage the tail is nil and the straddle path
// never triggers; the cursors keep the codec independent of that layout
// choice.

// cursorRef reads through a (head, tail) pair, tracking consumed bytes.
type cursorRef struct {
	head     []byte
	tail     []byte
	hasTail  bool
	consumed int
}

func newCursorRef(head, tail []byte) *cursorRef {
	return &cursorRef{head: head, tail: tail, hasTail: tail != nil}
}

// readU64 reads one little-endian 64-bit value.
func (c *cursorRef) readU64() (uint64, error) {
	b, err := c.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// readBytes reads n bytes, advancing to the tail slice if head has
// fewer than n remaining.
func (c *cursorRef) readBytes(n int) ([]byte, error) {
	if len(c.head) < n {
		if err := c.advance(n); err != nil {
			return nil, err
		}
	}
	chunk := c.head[:n]
	c.head = c.head[n:]
	c.consumed += n
	return chunk, nil
}

// remaining reports the bytes left to read across both slices.
func (c *cursorRef) remaining() int {
	n := len(c.head)
	if c.hasTail {
		n += len(c.tail)
	}
	return n
}

// finish returns the total number of bytes consumed, including any
// abandoned head residual.
func (c *cursorRef) finish() int {
	return c.consumed
}

func (c *cursorRef) advance(n int) error {
	if !c.hasTail || len(c.tail) < n {
		return ErrNotEnoughBytes
	}
	c.consumed += len(c.head)
	c.head = c.tail
	c.tail = nil
	c.hasTail = false
	return nil
}

// cursorMut writes through a (head, tail) pair, tracking written bytes.
type cursorMut struct {
	head    []byte
	tail    []byte
	hasTail bool
	written int
}

func newCursorMut(head, tail []byte) *cursorMut {
	return &cursorMut{head: head, tail: tail, hasTail: tail != nil}
}

// writeU64 writes one little-endian 64-bit value.
func (c *cursorMut) writeU64(v uint64) error {
	b, err := c.next(8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, v)
	return nil
}

// writeBytes copies b into the buffer.
func (c *cursorMut) writeBytes(b []byte) error {
	dst, err := c.next(len(b))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// next reserves the next n bytes for in-place writing.
func (c *cursorMut) next(n int) ([]byte, error) {
	if len(c.head) < n {
		if err := c.advance(n); err != nil {
			return nil, err
		}
	}
	chunk := c.head[:n]
	c.head = c.head[n:]
	c.written += n
	return chunk, nil
}

// finish returns the total number of bytes used, including any
// abandoned head residual. This is the value handed to FinishWrite.
func (c *cursorMut) finish() int {
	return c.written
}

func (c *cursorMut) advance(n int) error {
	if !c.hasTail || len(c.tail) < n {
		return ErrNotEnoughSpace
	}
	// The residual head bytes are dead but still occupy queue space.
	c.written += len(c.head)
	c.head = c.tail
	c.tail = nil
	c.hasTail = false
	return nil
}

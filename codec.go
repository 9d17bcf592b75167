// codec.go: Record framing - log header, argument headers, decode
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hermes

import (
	"unicode/utf8"
)

// A record is a log header followed by its argument stream. All framing
// integers are 8-byte little-endian.
//
// Log header:
//
//	metadata handle | tick | args kind | kind payload
//
// argsNormal carries the argument count; each argument is then preceded
// by its own header. argsAllEncoded carries the shared decode handle and
// the total argument byte length; per-argument headers are omitted and
// the decoder is applied repeatedly until the byte range is exhausted.
//
// Argument headers:
//
//	argFmt     | size            (UTF-8 bytes formatted on the hot path)
//	argEncoded | size | decodeID (bit-copied via Encodable)
const (
	argsAllEncoded uint64 = 1
	argsNormal     uint64 = 2

	argFmt     uint64 = 1
	argEncoded uint64 = 2
)

const (
	logHeaderNormalSize     = 32
	logHeaderAllEncodedSize = 40
	fmtArgHeaderSize        = 16
	encodedArgHeaderSize    = 24
)

// writeHeaderNormal writes a log header announcing count self-describing
// arguments.
func writeHeaderNormal(cur *cursorMut, metaID, tick uint64, count int) error {
	if err := cur.writeU64(metaID); err != nil {
		return err
	}
	if err := cur.writeU64(tick); err != nil {
		return err
	}
	if err := cur.writeU64(argsNormal); err != nil {
		return err
	}
	return cur.writeU64(uint64(count))
}

// writeHeaderAllEncoded writes a log header announcing a single-type
// batch of byteLen argument bytes decoded by decodeID.
func writeHeaderAllEncoded(cur *cursorMut, metaID, tick uint64, decodeID DecodeID, byteLen int) error {
	if err := cur.writeU64(metaID); err != nil {
		return err
	}
	if err := cur.writeU64(tick); err != nil {
		return err
	}
	if err := cur.writeU64(argsAllEncoded); err != nil {
		return err
	}
	if err := cur.writeU64(uint64(decodeID)); err != nil {
		return err
	}
	return cur.writeU64(uint64(byteLen))
}

// writeEncodedArg writes an argEncoded header followed by the argument's
// binary encoding.
func writeEncodedArg(cur *cursorMut, e Encodable) error {
	size := e.BufferSizeRequired()
	if err := cur.writeU64(argEncoded); err != nil {
		return err
	}
	if err := cur.writeU64(uint64(size)); err != nil {
		return err
	}
	if err := cur.writeU64(uint64(e.Decoder())); err != nil {
		return err
	}
	return writeEncodedPayload(cur, e, size)
}

// writeEncodedPayload bit-copies one argument, enforcing the Encodable
// contract that the declared buffer is filled exactly.
func writeEncodedPayload(cur *cursorMut, e Encodable, size int) error {
	dst, err := cur.next(size)
	if err != nil {
		return err
	}
	if rest := e.Encode(dst); len(rest) != 0 {
		return ErrUnexpectedValue
	}
	return nil
}

// writeFmtArg writes an argFmt header followed by pre-formatted UTF-8
// bytes.
func writeFmtArg(cur *cursorMut, b []byte) error {
	if err := cur.writeU64(argFmt); err != nil {
		return err
	}
	if err := cur.writeU64(uint64(len(b))); err != nil {
		return err
	}
	return cur.writeBytes(b)
}

// decodeRecord parses one record from the front of the cursor and
// materializes every argument as a string. On any error the caller must
// not advance its committed read cursor.
func decodeRecord(cur *cursorRef) (*Metadata, uint64, []string, error) {
	metaID, err := cur.readU64()
	if err != nil {
		return nil, 0, nil, err
	}
	md, ok := metadataByID(metaID)
	if !ok {
		return nil, 0, nil, ErrUnexpectedValue
	}

	tick, err := cur.readU64()
	if err != nil {
		return nil, 0, nil, err
	}
	kind, err := cur.readU64()
	if err != nil {
		return nil, 0, nil, err
	}

	var args []string
	switch kind {
	case argsAllEncoded:
		args, err = decodeBatchArgs(cur)
	case argsNormal:
		args, err = decodeNormalArgs(cur)
	default:
		err = ErrUnexpectedValue
	}
	if err != nil {
		return nil, 0, nil, err
	}

	return md, tick, args, nil
}

// decodeBatchArgs applies the single decode function repeatedly until
// the batch byte range is exhausted.
func decodeBatchArgs(cur *cursorRef) ([]string, error) {
	id, err := cur.readU64()
	if err != nil {
		return nil, err
	}
	byteLen, err := cur.readU64()
	if err != nil {
		return nil, err
	}
	fn, ok := decoderByID(DecodeID(id))
	if !ok {
		return nil, ErrUnexpectedValue
	}
	chunk, err := cur.readBytes(int(byteLen))
	if err != nil {
		return nil, err
	}

	var args []string
	for len(chunk) > 0 {
		s, rest := fn(chunk)
		if len(rest) >= len(chunk) {
			// A decoder that consumes nothing would never terminate.
			return nil, ErrUnexpectedValue
		}
		args = append(args, s)
		chunk = rest
	}
	return args, nil
}

// decodeNormalArgs parses count header-argument pairs.
func decodeNormalArgs(cur *cursorRef) ([]string, error) {
	count, err := cur.readU64()
	if err != nil {
		return nil, err
	}

	// count is read from the stream; don't trust it for preallocation.
	var args []string
	for i := uint64(0); i < count; i++ {
		argType, err := cur.readU64()
		if err != nil {
			return nil, err
		}

		switch argType {
		case argFmt:
			size, err := cur.readU64()
			if err != nil {
				return nil, err
			}
			chunk, err := cur.readBytes(int(size))
			if err != nil {
				return nil, err
			}
			if !utf8.Valid(chunk) {
				return nil, ErrUnexpectedValue
			}
			args = append(args, string(chunk))

		case argEncoded:
			size, err := cur.readU64()
			if err != nil {
				return nil, err
			}
			id, err := cur.readU64()
			if err != nil {
				return nil, err
			}
			fn, ok := decoderByID(DecodeID(id))
			if !ok {
				return nil, ErrUnexpectedValue
			}
			chunk, err := cur.readBytes(int(size))
			if err != nil {
				return nil, err
			}
			s, rest := fn(chunk)
			if len(rest) != 0 {
				// The decoder must consume exactly the declared size.
				return nil, ErrUnexpectedValue
			}
			args = append(args, s)

		default:
			return nil, ErrUnexpectedValue
		}
	}
	return args, nil
}

// Package binread provides a fixed-layout cursor over a byte buffer.
//
// A Reader tracks an offset into an in-memory buffer and decodes fixed-width
// values at it, advancing as it goes. Errors are sticky: the first read past
// the end of the buffer latches io.ErrUnexpectedEOF, every later read returns
// a zero value, and callers check Err once after a run of reads instead of
// after every field.
package binread

import (
	"encoding/binary"
	"io"
	"math"
)

// Reader decodes fixed-width values from a byte buffer at a moving offset.
type Reader struct {
	data []byte
	off  int
	err  error
}

// New returns a Reader positioned at the start of data.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first error encountered, or nil.
func (r *Reader) Err() error {
	return r.err
}

// Offset returns the current byte offset.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Seek moves the cursor to an absolute offset.
func (r *Reader) Seek(off int) {
	if r.err != nil {
		return
	}
	if off < 0 || off > len(r.data) {
		r.err = io.ErrUnexpectedEOF
		return
	}
	r.off = off
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) {
	r.Seek(r.off + n)
}

// take returns the next n bytes and advances, or nil once the reader has
// errored or the buffer is exhausted.
func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.data) {
		r.err = io.ErrUnexpectedEOF
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// Uint8 reads one unsigned byte.
func (r *Reader) Uint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Int8 reads one signed byte.
func (r *Reader) Int8() int8 {
	return int8(r.Uint8())
}

// Uint16 reads a 16-bit unsigned integer in the given byte order.
func (r *Reader) Uint16(bo binary.ByteOrder) uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return bo.Uint16(b)
}

// Int16 reads a 16-bit signed integer in the given byte order.
func (r *Reader) Int16(bo binary.ByteOrder) int16 {
	return int16(r.Uint16(bo))
}

// Uint32 reads a 32-bit unsigned integer in the given byte order.
func (r *Reader) Uint32(bo binary.ByteOrder) uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return bo.Uint32(b)
}

// Int32 reads a 32-bit signed integer in the given byte order.
func (r *Reader) Int32(bo binary.ByteOrder) int32 {
	return int32(r.Uint32(bo))
}

// Uint64 reads a 64-bit unsigned integer in the given byte order.
func (r *Reader) Uint64(bo binary.ByteOrder) uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return bo.Uint64(b)
}

// Float32 reads a 32-bit IEEE 754 float in the given byte order.
func (r *Reader) Float32(bo binary.ByteOrder) float32 {
	return math.Float32frombits(r.Uint32(bo))
}

// Float64 reads a 64-bit IEEE 754 float in the given byte order.
func (r *Reader) Float64(bo binary.ByteOrder) float64 {
	return math.Float64frombits(r.Uint64(bo))
}

// Int24 reads a little-endian 24-bit two's-complement integer, sign-extending
// bit 23 into a full int32.
func (r *Reader) Int24() int32 {
	b := r.take(3)
	if b == nil {
		return 0
	}
	v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	if v&0x800000 != 0 {
		v -= 0x1000000
	}
	return v
}

// Bytes reads n raw bytes. The returned slice aliases the underlying buffer.
func (r *Reader) Bytes(n int) []byte {
	return r.take(n)
}

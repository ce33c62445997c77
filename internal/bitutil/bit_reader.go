// Package bitutil provides the bit-level cursor used by the delta decoders.
//
// Values are packed least-significant bit first: the first value of a run
// occupies the low bits of the first byte. Varints and fixed-width aligned
// reads always start on a byte boundary; the cursor is rounded up to the next
// byte before they are read.
package bitutil

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrVarintOverflow is returned when a varint does not fit in 64 bits.
var ErrVarintOverflow = errors.New("bitutil: varint overflows a 64-bit integer")

var bo = binary.LittleEndian

// BitReader is a positional cursor over an immutable byte buffer.
// A BitReader is not safe for concurrent use.
type BitReader struct {
	buf    []byte
	bitPos int // offset of the next unread bit
}

// NewBitReader returns a reader positioned at the first bit of buf.
func NewBitReader(buf []byte) *BitReader {
	r := &BitReader{}
	r.Reset(buf)
	return r
}

// Reset binds the reader to buf and rewinds the cursor.
func (r *BitReader) Reset(buf []byte) {
	r.buf = buf
	r.bitPos = 0
}

// IsByteAligned reports whether the cursor sits on a byte boundary.
func (r *BitReader) IsByteAligned() bool {
	return r.bitPos&7 == 0
}

// BytesLeft returns the number of whole bytes after the next byte boundary.
func (r *BitReader) BytesLeft() int {
	return len(r.buf) - r.bytePos()
}

func (r *BitReader) bitsLeft() int {
	return len(r.buf)*8 - r.bitPos
}

func (r *BitReader) bytePos() int {
	return (r.bitPos + 7) >> 3
}

func (r *BitReader) align() {
	r.bitPos = r.bytePos() << 3
}

// GetValue reads bitWidth bits (0 to 64) as an unsigned value.
func (r *BitReader) GetValue(bitWidth int) (uint64, error) {
	if bitWidth < 0 || bitWidth > 64 {
		return 0, fmt.Errorf("bitutil: invalid bit width %d", bitWidth)
	}
	if bitWidth == 0 {
		return 0, nil
	}
	if bitWidth > r.bitsLeft() {
		return 0, io.ErrUnexpectedEOF
	}

	i := r.bitPos >> 3
	shift := uint(r.bitPos & 7)

	var v uint64
	if i+8 <= len(r.buf) {
		v = bo.Uint64(r.buf[i:]) >> shift
		if shift+uint(bitWidth) > 64 {
			v |= uint64(r.buf[i+8]) << (64 - shift)
		}
	} else {
		// Fewer than 8 bytes remain, gather them one at a time.
		var word uint64
		for j := i; j < len(r.buf); j++ {
			word |= uint64(r.buf[j]) << (8 * uint(j-i))
		}
		v = word >> shift
	}
	if bitWidth < 64 {
		v &= (uint64(1) << bitWidth) - 1
	}
	r.bitPos += bitWidth
	return v, nil
}

// GetAligned reads numBytes (1 to 8) little-endian bytes starting at the next
// byte boundary.
func (r *BitReader) GetAligned(numBytes int) (uint64, error) {
	if numBytes < 1 || numBytes > 8 {
		return 0, fmt.Errorf("bitutil: invalid aligned read of %d bytes", numBytes)
	}
	r.align()
	pos := r.bitPos >> 3
	if pos+numBytes > len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	var v uint64
	for j, b := range r.buf[pos : pos+numBytes] {
		v |= uint64(b) << (8 * uint(j))
	}
	r.bitPos += numBytes * 8
	return v, nil
}

// GetVlqInt reads an unsigned LEB128 varint.
func (r *BitReader) GetVlqInt() (uint64, error) {
	r.align()
	pos := r.bitPos >> 3
	v, n := binary.Uvarint(r.buf[pos:])
	switch {
	case n == 0:
		return 0, io.ErrUnexpectedEOF
	case n < 0:
		return 0, ErrVarintOverflow
	}
	r.bitPos += n * 8
	return v, nil
}

// GetZigZagVlqInt reads a zig-zag encoded signed varint.
func (r *BitReader) GetZigZagVlqInt() (int64, error) {
	u, err := r.GetVlqInt()
	if err != nil {
		return 0, err
	}
	return ZigZagDecode(u), nil
}

// Bytes returns the buffer starting at the next byte boundary. The cursor is
// not moved; callers consuming the bytes directly advance it with SkipBytes.
func (r *BitReader) Bytes() []byte {
	return r.buf[r.bytePos():]
}

// SkipBytes advances the cursor n bytes past the next byte boundary.
func (r *BitReader) SkipBytes(n int) error {
	if n < 0 || n > r.BytesLeft() {
		return io.ErrUnexpectedEOF
	}
	r.align()
	r.bitPos += n * 8
	return nil
}

// SkipBits advances the cursor n bits without aligning it.
func (r *BitReader) SkipBits(n int) error {
	if n < 0 || n > r.bitsLeft() {
		return io.ErrUnexpectedEOF
	}
	r.bitPos += n
	return nil
}

// ZigZagDecode maps a zig-zag encoded integer back to its signed value.
func ZigZagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// ZigZagEncode maps a signed integer onto the unsigned zig-zag space.
func ZigZagEncode(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

package bitutil

import (
	"encoding/binary"
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packLSB packs values at bitWidth bits, least-significant bit first.
func packLSB(values []uint64, bitWidth int) []byte {
	buf := make([]byte, (len(values)*bitWidth+7)/8)
	pos := 0
	for _, v := range values {
		for k := 0; k < bitWidth; k++ {
			if v>>uint(k)&1 != 0 {
				buf[pos/8] |= 1 << uint(pos%8)
			}
			pos++
		}
	}
	return buf
}

func TestGetValueSingleByte(t *testing.T) {
	r := NewBitReader([]byte{0b10110101})

	v, err := r.GetValue(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(0b101), v)

	v, err = r.GetValue(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(0b10110), v)

	_, err = r.GetValue(1)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestGetValueZeroWidth(t *testing.T) {
	r := NewBitReader(nil)
	v, err := r.GetValue(0)
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestGetValueInvalidWidth(t *testing.T) {
	r := NewBitReader(make([]byte, 16))
	_, err := r.GetValue(65)
	assert.Error(t, err)
	_, err = r.GetValue(-1)
	assert.Error(t, err)
}

func TestGetValueAllWidths(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for width := 1; width <= 64; width++ {
		values := make([]uint64, 37)
		for i := range values {
			values[i] = rng.Uint64()
			if width < 64 {
				values[i] &= (uint64(1) << width) - 1
			}
		}
		r := NewBitReader(packLSB(values, width))
		for i, want := range values {
			got, err := r.GetValue(width)
			require.NoErrorf(t, err, "width %d index %d", width, i)
			assert.Equalf(t, want, got, "width %d index %d", width, i)
		}
	}
}

func TestGetValueUnalignedFullWord(t *testing.T) {
	// a single leading bit pushes both 64-bit values across nine bytes
	want := []uint64{math.MaxUint64, 0x0123456789abcdef}
	buf := make([]byte, 17)
	buf[0] = 1
	for n, v := range want {
		for i := 0; i < 64; i++ {
			bit := 1 + 64*n + i
			if v>>uint(i)&1 != 0 {
				buf[bit/8] |= 1 << uint(bit%8)
			}
		}
	}

	r := NewBitReader(buf)
	v, err := r.GetValue(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
	for _, w := range want {
		v, err = r.GetValue(64)
		require.NoError(t, err)
		assert.Equal(t, w, v)
	}
}

func TestGetVlqInt(t *testing.T) {
	var buf []byte
	for _, u := range []uint64{0, 1, 127, 128, 300, math.MaxUint64} {
		buf = binary.AppendUvarint(buf, u)
	}
	r := NewBitReader(buf)
	for _, want := range []uint64{0, 1, 127, 128, 300, math.MaxUint64} {
		got, err := r.GetVlqInt()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := r.GetVlqInt()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestGetVlqIntTruncated(t *testing.T) {
	r := NewBitReader([]byte{0x80, 0x80})
	_, err := r.GetVlqInt()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestGetVlqIntOverflow(t *testing.T) {
	r := NewBitReader([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01})
	_, err := r.GetVlqInt()
	assert.ErrorIs(t, err, ErrVarintOverflow)
}

func TestGetZigZagVlqInt(t *testing.T) {
	tests := []int64{0, -1, 1, -2, 63, -64, math.MaxInt64, math.MinInt64}
	var buf []byte
	for _, v := range tests {
		buf = binary.AppendUvarint(buf, ZigZagEncode(v))
	}
	r := NewBitReader(buf)
	for _, want := range tests {
		got, err := r.GetZigZagVlqInt()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestZigZagMapping(t *testing.T) {
	assert.Equal(t, uint64(0), ZigZagEncode(0))
	assert.Equal(t, uint64(1), ZigZagEncode(-1))
	assert.Equal(t, uint64(2), ZigZagEncode(1))
	assert.Equal(t, uint64(3), ZigZagEncode(-2))
	assert.Equal(t, int64(-2), ZigZagDecode(3))
}

func TestAlignedReadsRoundUp(t *testing.T) {
	r := NewBitReader([]byte{0xff, 0x2a, 0x05, 0x03})
	_, err := r.GetValue(3)
	require.NoError(t, err)
	assert.False(t, r.IsByteAligned())

	v, err := r.GetAligned(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x2a), v)
	assert.True(t, r.IsByteAligned())

	u, err := r.GetVlqInt()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), u)

	_, err = r.GetAligned(2)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBytesAndSkip(t *testing.T) {
	r := NewBitReader([]byte{1, 2, 3, 4, 5})
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, r.Bytes())
	require.NoError(t, r.SkipBytes(2))
	assert.Equal(t, []byte{3, 4, 5}, r.Bytes())
	assert.Equal(t, 3, r.BytesLeft())

	require.NoError(t, r.SkipBits(4))
	assert.False(t, r.IsByteAligned())
	assert.Equal(t, []byte{4, 5}, r.Bytes())

	assert.ErrorIs(t, r.SkipBytes(3), io.ErrUnexpectedEOF)
	require.NoError(t, r.SkipBytes(2))
	assert.Zero(t, r.BytesLeft())
	assert.ErrorIs(t, r.SkipBits(1), io.ErrUnexpectedEOF)
}

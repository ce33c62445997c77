package parquet

import (
	"encoding/binary"
	"fmt"
	"io"
)

// byteArrayLengthSize is the size of the little-endian length preceding each
// PLAIN value and each delta sub-stream.
const byteArrayLengthSize = 4

// PlainByteArrayDecoder decodes PLAIN BYTE_ARRAY values, each stored as a
// 4-byte little-endian length followed by the value bytes. It is the suffix
// source of DeltaByteArrayDecoder.
type PlainByteArrayDecoder struct {
	decoderBase
	data   []byte
	offset int
}

// NewPlainByteArrayDecoder returns a PLAIN decoder of BYTE_ARRAY values.
func NewPlainByteArrayDecoder() *PlainByteArrayDecoder {
	return &PlainByteArrayDecoder{
		decoderBase: decoderBase{typ: ByteArrayType, enc: Plain},
	}
}

// SetData binds the decoder to data holding numValues values, each a 4-byte
// little-endian length followed by that many bytes.
func (d *PlainByteArrayDecoder) SetData(numValues int, data []byte) error {
	d.data = data
	d.offset = 0
	return d.reset(numValues)
}

// DecodeByteArray copies up to len(dst) values into freshly allocated slices.
func (d *PlainByteArrayDecoder) DecodeByteArray(dst []ByteArray) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	n := min(len(dst), d.numValues)
	for i := range dst[:n] {
		v, err := d.next()
		if err != nil {
			d.numValues -= i
			return i, d.fail(err)
		}
		dst[i] = cloneByteArray(v)
	}
	d.numValues -= n
	return n, nil
}

// next returns the next value without copying it. The result aliases the
// bound buffer.
func (d *PlainByteArrayDecoder) next() ([]byte, error) {
	if len(d.data)-d.offset < byteArrayLengthSize {
		return nil, fmt.Errorf("reading value length at offset %d: %w", d.offset, io.ErrUnexpectedEOF)
	}
	length := int64(binary.LittleEndian.Uint32(d.data[d.offset:]))
	start := d.offset + byteArrayLengthSize
	if length > int64(len(d.data)-start) {
		return nil, fmt.Errorf("reading value of length %d at offset %d: %w", length, start, io.ErrUnexpectedEOF)
	}
	end := start + int(length)
	d.offset = end
	return d.data[start:end:end], nil
}

func cloneByteArray(b []byte) ByteArray {
	v := make(ByteArray, len(b))
	copy(v, b)
	return v
}

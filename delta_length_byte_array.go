package parquet

import (
	"fmt"
	"io"
	"slices"
)

// DeltaLengthByteArrayDecoder decodes DELTA_LENGTH_BYTE_ARRAY values, laid
// out as
//
//	[4-byte LE size of the lengths][DELTA_BINARY_PACKED lengths][concatenated values]
type DeltaLengthByteArrayDecoder struct {
	decoderBase
	lengths *DeltaBitPackDecoder[int32]
	data    []byte
	buffer  []int32
}

// NewDeltaLengthByteArrayDecoder returns a DELTA_LENGTH_BYTE_ARRAY decoder.
func NewDeltaLengthByteArrayDecoder() *DeltaLengthByteArrayDecoder {
	return &DeltaLengthByteArrayDecoder{
		decoderBase: decoderBase{typ: ByteArrayType, enc: DeltaLengthByteArray},
		lengths:     NewDeltaInt32Decoder(),
	}
}

// SetData binds the decoder to data. An empty buffer holds no values.
func (d *DeltaLengthByteArrayDecoder) SetData(numValues int, data []byte) error {
	d.data = nil
	if err := d.reset(numValues); err != nil {
		return err
	}
	if len(data) == 0 {
		d.numValues = 0
		return nil
	}

	lengthData, valueData, err := splitLengthPrefixed(data)
	if err != nil {
		d.numValues = 0
		return fmt.Errorf("%s: lengths: %w", d.enc, err)
	}
	d.data = valueData
	return d.lengths.SetData(numValues, lengthData)
}

// DecodeByteArray writes up to len(dst) values to dst. Each value is a new
// allocation owned by the caller.
func (d *DeltaLengthByteArrayDecoder) DecodeByteArray(dst []ByteArray) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	n := min(len(dst), d.numValues)
	if n == 0 {
		return 0, nil
	}

	d.buffer = slices.Grow(d.buffer[:0], n)[:n]
	decoded, lengthErr := d.lengths.Decode(d.buffer)

	for i, length := range d.buffer[:decoded] {
		switch {
		case length < 0:
			return d.failAt(i, fmt.Errorf("%w: negative value length %d", ErrInvalidBuffer, length))
		case int(length) > len(d.data):
			return d.failAt(i, fmt.Errorf("value of length %d with %d bytes remaining: %w",
				length, len(d.data), io.ErrUnexpectedEOF))
		}
		dst[i] = cloneByteArray(d.data[:length])
		d.data = d.data[length:]
	}

	if lengthErr != nil {
		return d.failAt(decoded, fmt.Errorf("lengths: %w", lengthErr))
	}
	d.numValues -= n
	return n, nil
}

func (d *DeltaLengthByteArrayDecoder) failAt(written int, err error) (int, error) {
	d.numValues -= written
	return written, d.fail(err)
}

package parquet

import (
	"encoding/binary"
	"fmt"
	"io"
	"slices"
)

// DeltaByteArrayDecoder decodes DELTA_BYTE_ARRAY values.
//
// The payload is laid out as
//
//	[4-byte LE size of the prefix lengths][DELTA_BINARY_PACKED prefix lengths][PLAIN suffixes]
//
// and value i is rebuilt as value[i-1][:prefix[i]] followed by suffix[i].
type DeltaByteArrayDecoder struct {
	decoderBase
	prefixLengths *DeltaBitPackDecoder[int32]
	suffixes      *PlainByteArrayDecoder

	// lastValue is a private copy of the most recently produced value. It is
	// only read, as the prefix source of the next value.
	lastValue   []byte
	hasPrevious bool

	prefixes []int32
}

// NewDeltaByteArrayDecoder returns a DELTA_BYTE_ARRAY decoder.
func NewDeltaByteArrayDecoder() *DeltaByteArrayDecoder {
	return &DeltaByteArrayDecoder{
		decoderBase:   decoderBase{typ: ByteArrayType, enc: DeltaByteArray},
		prefixLengths: NewDeltaInt32Decoder(),
		suffixes:      NewPlainByteArrayDecoder(),
	}
}

// SetData binds the decoder to data. An empty buffer holds no values,
// whatever numValues says, and leaves the sub-decoders unbound.
func (d *DeltaByteArrayDecoder) SetData(numValues int, data []byte) error {
	d.lastValue = d.lastValue[:0]
	d.hasPrevious = false
	if err := d.reset(numValues); err != nil {
		return err
	}
	if len(data) == 0 {
		d.numValues = 0
		return nil
	}

	prefixData, suffixData, err := splitLengthPrefixed(data)
	if err != nil {
		d.numValues = 0
		return fmt.Errorf("%s: prefix lengths: %w", d.enc, err)
	}
	if err := d.prefixLengths.SetData(numValues, prefixData); err != nil {
		return err
	}
	return d.suffixes.SetData(numValues, suffixData)
}

// DecodeByteArray writes up to len(dst) values to dst. Each value is a new
// allocation owned by the caller.
func (d *DeltaByteArrayDecoder) DecodeByteArray(dst []ByteArray) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	n := min(len(dst), d.numValues)
	if n == 0 {
		return 0, nil
	}

	// Values whose prefix was decoded before a failure are still emitted.
	d.prefixes = slices.Grow(d.prefixes[:0], n)[:n]
	decoded, prefixErr := d.prefixLengths.Decode(d.prefixes)

	previous := d.lastValue
	for i, prefix := range d.prefixes[:decoded] {
		if !d.hasPrevious {
			// Nothing precedes the first value, whatever prefix is stored.
			prefix = 0
			d.hasPrevious = true
		}
		if prefix < 0 || int(prefix) > len(previous) {
			return d.failAt(i, fmt.Errorf("%w: prefix length %d out of bounds for previous value of length %d",
				ErrInvalidBuffer, prefix, len(previous)))
		}
		suffix, err := d.suffixes.next()
		if err != nil {
			return d.failAt(i, fmt.Errorf("suffix %d: %w", i, err))
		}

		value := make(ByteArray, int(prefix)+len(suffix))
		copy(value, previous[:prefix])
		copy(value[prefix:], suffix)
		dst[i] = value
		previous = value
	}

	d.lastValue = append(d.lastValue[:0], previous...)
	if prefixErr != nil {
		return d.failAt(decoded, fmt.Errorf("prefix lengths: %w", prefixErr))
	}
	d.numValues -= n
	return n, nil
}

func (d *DeltaByteArrayDecoder) failAt(written int, err error) (int, error) {
	d.numValues -= written
	return written, d.fail(err)
}

// splitLengthPrefixed splits data after the sub-stream whose size is given
// by its first 4 bytes.
func splitLengthPrefixed(data []byte) (head, tail []byte, err error) {
	if len(data) < byteArrayLengthSize {
		return nil, nil, fmt.Errorf("reading sub-stream size: %w", io.ErrUnexpectedEOF)
	}
	size := int64(int32(binary.LittleEndian.Uint32(data)))
	data = data[byteArrayLengthSize:]
	switch {
	case size < 0:
		return nil, nil, fmt.Errorf("%w: negative sub-stream size %d", ErrInvalidBuffer, size)
	case size > int64(len(data)):
		return nil, nil, fmt.Errorf("sub-stream of %d bytes with %d remaining: %w",
			size, len(data), io.ErrUnexpectedEOF)
	}
	return data[:size:size], data[size:], nil
}

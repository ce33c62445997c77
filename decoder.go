// Package parquet implements decoders for the delta family of Parquet column
// encodings.
//
// DELTA_BINARY_PACKED stores integers as a sequence of blocks. Each block
// carries a header (block size, mini-block count, value count, first value,
// minimum delta and one bit width per mini-block) followed by mini-blocks of
// bit-packed deltas from which the minimum delta has been subtracted.
// DELTA_BYTE_ARRAY stores strings as the length of the prefix shared with the
// previous value plus the remaining suffix. DELTA_LENGTH_BYTE_ARRAY and PLAIN
// byte arrays are provided as the suffix sources.
//
// Decoders are bound to a buffer with SetData and drained with the typed
// Decode methods. A decoder is not safe for concurrent use; independent
// decoders share no mutable state.
package parquet

import (
	"fmt"
)

// ByteArray is a single BYTE_ARRAY value. Values returned by decoders are
// owned by the caller.
type ByteArray []byte

// Decoder is the contract shared by every decoder of this package.
//
// The typed Decode methods write up to len(dst) values, never more than
// ValuesLeft, and return how many were written. A decoder only implements the
// methods matching its Type; the others return ErrInvalidType. Once a Decode
// method has failed the decoder keeps returning that error until SetData is
// called again.
type Decoder interface {
	// Type returns the physical type of the decoded values.
	Type() Type
	// Encoding returns the encoding the decoder reads.
	Encoding() Encoding
	// SetData binds the decoder to data holding numValues encoded values.
	// All cursor state is reset.
	SetData(numValues int, data []byte) error
	// ValuesLeft returns the number of values still to be decoded.
	ValuesLeft() int

	DecodeInt32(dst []int32) (int, error)
	DecodeInt64(dst []int64) (int, error)
	DecodeByteArray(dst []ByteArray) (int, error)
}

// NewDecoder returns a decoder of enc-encoded values of type typ.
func NewDecoder(typ Type, enc Encoding) (Decoder, error) {
	switch enc {
	case DeltaBinaryPacked:
		return NewDeltaBitPackDecoder(typ)
	case DeltaLengthByteArray:
		if typ != ByteArrayType {
			return nil, errUnsupportedType(enc, typ)
		}
		return NewDeltaLengthByteArrayDecoder(), nil
	case DeltaByteArray:
		if typ != ByteArrayType {
			return nil, errUnsupportedType(enc, typ)
		}
		return NewDeltaByteArrayDecoder(), nil
	case Plain:
		if typ == ByteArrayType {
			return NewPlainByteArrayDecoder(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s decoder for %s", ErrNotImplemented, enc, typ)
}

func errUnsupportedType(enc Encoding, typ Type) error {
	return fmt.Errorf("%w: %s cannot encode %s values", ErrInvalidType, enc, typ)
}

// decoderBase holds the state common to all decoders and rejects the typed
// Decode methods a decoder does not override.
type decoderBase struct {
	typ       Type
	enc       Encoding
	numValues int
	err       error
}

func (d *decoderBase) Type() Type { return d.typ }

func (d *decoderBase) Encoding() Encoding { return d.enc }

func (d *decoderBase) ValuesLeft() int { return d.numValues }

func (d *decoderBase) DecodeInt32([]int32) (int, error) {
	return 0, d.unsupported(Int32Type)
}

func (d *decoderBase) DecodeInt64([]int64) (int, error) {
	return 0, d.unsupported(Int64Type)
}

func (d *decoderBase) DecodeByteArray([]ByteArray) (int, error) {
	return 0, d.unsupported(ByteArrayType)
}

func (d *decoderBase) unsupported(want Type) error {
	return fmt.Errorf("%w: %s decoder of %s values cannot produce %s values",
		ErrInvalidType, d.enc, d.typ, want)
}

// reset rebinds the value count and clears a previous failure.
func (d *decoderBase) reset(numValues int) error {
	d.err = nil
	if numValues < 0 {
		d.numValues = 0
		return fmt.Errorf("%w: negative value count %d", ErrInvalidBuffer, numValues)
	}
	d.numValues = numValues
	return nil
}

// fail records err so later calls keep reporting it.
func (d *decoderBase) fail(err error) error {
	d.err = fmt.Errorf("%s: %w", d.enc, err)
	return d.err
}

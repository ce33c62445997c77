package parquet

import (
	"fmt"

	"github.com/PedroMDuarte/parquet-cpp/internal/bitutil"
)

// Integer is the set of element types produced by DeltaBitPackDecoder.
type Integer interface {
	int32 | int64
}

// DeltaBitPackDecoder decodes DELTA_BINARY_PACKED integers.
//
// The running value is accumulated as an int64. Values that do not fit in T
// wrap; a conforming encoder never produces them.
type DeltaBitPackDecoder[T Integer] struct {
	decoderBase
	reader bitutil.BitReader

	valuesPerMiniBlock     int
	valuesCurrentBlock     int // values of the current block not yet emitted
	valuesCurrentMiniBlock int
	miniBlockIdx           int
	deltaBitWidths         []byte
	deltaBitWidth          int

	minDelta  int64
	lastValue int64

	unpacked [miniBlockRun]uint64
}

// NewDeltaBitPackDecoder returns a DELTA_BINARY_PACKED decoder for typ, which
// must be Int32Type or Int64Type.
func NewDeltaBitPackDecoder(typ Type) (Decoder, error) {
	switch typ {
	case Int32Type:
		return NewDeltaInt32Decoder(), nil
	case Int64Type:
		return NewDeltaInt64Decoder(), nil
	}
	return nil, fmt.Errorf("%w: %s is only defined for integer data, got %s",
		ErrInvalidType, DeltaBinaryPacked, typ)
}

// NewDeltaInt32Decoder returns a DELTA_BINARY_PACKED decoder of INT32 values.
func NewDeltaInt32Decoder() *DeltaBitPackDecoder[int32] {
	return &DeltaBitPackDecoder[int32]{
		decoderBase: decoderBase{typ: Int32Type, enc: DeltaBinaryPacked},
	}
}

// NewDeltaInt64Decoder returns a DELTA_BINARY_PACKED decoder of INT64 values.
func NewDeltaInt64Decoder() *DeltaBitPackDecoder[int64] {
	return &DeltaBitPackDecoder[int64]{
		decoderBase: decoderBase{typ: Int64Type, enc: DeltaBinaryPacked},
	}
}

// SetData binds the decoder to data and forces the next Decode call to read
// a block header.
func (d *DeltaBitPackDecoder[T]) SetData(numValues int, data []byte) error {
	d.reader.Reset(data)
	d.valuesPerMiniBlock = 0
	d.valuesCurrentBlock = 0
	d.valuesCurrentMiniBlock = 0
	d.miniBlockIdx = 0
	d.deltaBitWidths = d.deltaBitWidths[:0]
	d.deltaBitWidth = 0
	d.minDelta = 0
	d.lastValue = 0
	return d.reset(numValues)
}

// DecodeInt32 implements Decoder for INT32 decoders.
func (d *DeltaBitPackDecoder[T]) DecodeInt32(dst []int32) (int, error) {
	if values, ok := any(dst).([]T); ok {
		return d.Decode(values)
	}
	return 0, d.unsupported(Int32Type)
}

// DecodeInt64 implements Decoder for INT64 decoders.
func (d *DeltaBitPackDecoder[T]) DecodeInt64(dst []int64) (int, error) {
	if values, ok := any(dst).([]T); ok {
		return d.Decode(values)
	}
	return 0, d.unsupported(Int64Type)
}

// Decode writes up to len(dst) values to dst and returns how many were
// written. On error, only the returned count of values is valid.
func (d *DeltaBitPackDecoder[T]) Decode(dst []T) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	n := min(len(dst), d.numValues)

	for i := 0; i < n; {
		if d.valuesCurrentBlock == 0 {
			if err := d.initBlock(); err != nil {
				return d.failAt(i, err)
			}
			// The first value of a block is stored verbatim.
			dst[i] = T(d.lastValue)
			d.valuesCurrentBlock--
			i++
			continue
		}

		if d.valuesCurrentMiniBlock == 0 {
			d.miniBlockIdx++
			if d.miniBlockIdx >= len(d.deltaBitWidths) {
				return d.failAt(i, fmt.Errorf("%w: block holds more values than its %d mini-blocks",
					ErrInvalidBuffer, len(d.deltaBitWidths)))
			}
			d.deltaBitWidth = int(d.deltaBitWidths[d.miniBlockIdx])
			d.valuesCurrentMiniBlock = d.valuesPerMiniBlock
		}

		if n-i >= miniBlockRun && d.canUnpackRun() {
			if err := d.decodeRun(dst[i : i+miniBlockRun]); err != nil {
				return d.failAt(i, err)
			}
			i += miniBlockRun
			continue
		}

		delta, err := d.reader.GetValue(d.deltaBitWidth)
		if err != nil {
			return d.failAt(i, fmt.Errorf("reading mini-block %d: %w", d.miniBlockIdx, err))
		}
		d.lastValue += int64(delta) + d.minDelta
		dst[i] = T(d.lastValue)
		d.valuesCurrentMiniBlock--
		d.valuesCurrentBlock--
		i++
	}

	d.numValues -= n
	return n, nil
}

func (d *DeltaBitPackDecoder[T]) failAt(written int, err error) (int, error) {
	d.numValues -= written
	return written, d.fail(err)
}

// canUnpackRun reports whether the next miniBlockRun deltas can be extracted
// in bulk.
func (d *DeltaBitPackDecoder[T]) canUnpackRun() bool {
	return hasRunUnpack(d.deltaBitWidth) &&
		d.valuesPerMiniBlock%miniBlockRun == 0 &&
		d.valuesCurrentMiniBlock%miniBlockRun == 0 &&
		d.valuesCurrentBlock >= miniBlockRun &&
		d.reader.IsByteAligned() &&
		d.reader.BytesLeft() >= runBytes(d.deltaBitWidth)
}

// decodeRun reconstructs miniBlockRun values into dst. Each value depends on
// the previous one, so the prefix sum stays sequential.
func (d *DeltaBitPackDecoder[T]) decodeRun(dst []T) error {
	unpackRun(&d.unpacked, d.reader.Bytes(), d.deltaBitWidth)
	for j, delta := range d.unpacked {
		d.lastValue += int64(delta) + d.minDelta
		dst[j] = T(d.lastValue)
	}
	if err := d.reader.SkipBytes(runBytes(d.deltaBitWidth)); err != nil {
		return err
	}
	d.valuesCurrentMiniBlock -= miniBlockRun
	d.valuesCurrentBlock -= miniBlockRun
	return nil
}

// initBlock skips the padding left in the previous block and parses the next
// block header. lastValue is set to the block's first value.
func (d *DeltaBitPackDecoder[T]) initBlock() error {
	if d.valuesCurrentMiniBlock > 0 {
		if err := d.reader.SkipBits(d.valuesCurrentMiniBlock * d.deltaBitWidth); err != nil {
			return fmt.Errorf("skipping mini-block padding: %w", err)
		}
		d.valuesCurrentMiniBlock = 0
	}

	blockSize, err := d.reader.GetVlqInt()
	if err != nil {
		return fmt.Errorf("reading block size: %w", err)
	}
	numMiniBlocks, err := d.reader.GetVlqInt()
	if err != nil {
		return fmt.Errorf("reading number of mini-blocks: %w", err)
	}
	valueCount, err := d.reader.GetVlqInt()
	if err != nil {
		return fmt.Errorf("reading number of values: %w", err)
	}
	firstValue, err := d.reader.GetZigZagVlqInt()
	if err != nil {
		return fmt.Errorf("reading first value: %w", err)
	}
	minDelta, err := d.reader.GetZigZagVlqInt()
	if err != nil {
		return fmt.Errorf("reading min delta: %w", err)
	}

	switch {
	case numMiniBlocks == 0:
		return fmt.Errorf("%w: block has no mini-blocks", ErrInvalidBuffer)
	case numMiniBlocks > uint64(d.reader.BytesLeft()):
		return fmt.Errorf("%w: %d mini-blocks exceed the remaining %d bytes",
			ErrInvalidBuffer, numMiniBlocks, d.reader.BytesLeft())
	case blockSize%numMiniBlocks != 0:
		return fmt.Errorf("%w: block size %d is not a multiple of the mini-block count %d",
			ErrInvalidBuffer, blockSize, numMiniBlocks)
	case valueCount == 0 || valueCount-1 > blockSize:
		return fmt.Errorf("%w: block of size %d cannot hold %d values",
			ErrInvalidBuffer, blockSize, valueCount)
	}

	if cap(d.deltaBitWidths) < int(numMiniBlocks) {
		d.deltaBitWidths = make([]byte, numMiniBlocks)
	} else {
		d.deltaBitWidths = d.deltaBitWidths[:numMiniBlocks]
	}
	for i := range d.deltaBitWidths {
		w, err := d.reader.GetAligned(1)
		if err != nil {
			return fmt.Errorf("reading bit width of mini-block %d: %w", i, err)
		}
		if w > 64 {
			return fmt.Errorf("%w: mini-block %d has bit width %d", ErrInvalidBuffer, i, w)
		}
		d.deltaBitWidths[i] = byte(w)
	}

	d.valuesPerMiniBlock = int(blockSize / numMiniBlocks)
	d.valuesCurrentBlock = int(valueCount)
	d.valuesCurrentMiniBlock = 0
	d.miniBlockIdx = -1
	d.deltaBitWidth = 0
	d.minDelta = minDelta
	d.lastValue = firstValue
	return nil
}

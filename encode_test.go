package parquet

import (
	"encoding/binary"
	"math/bits"
	"slices"

	"github.com/PedroMDuarte/parquet-cpp/internal/bitutil"
)

// bitWriter packs values least-significant bit first, the layout read by
// bitutil.BitReader. Varints and bytes are written on byte boundaries.
type bitWriter struct {
	buf    []byte
	bitPos int
}

func (w *bitWriter) putValue(v uint64, bitWidth int) {
	for k := 0; k < bitWidth; k++ {
		if w.bitPos%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if v>>uint(k)&1 != 0 {
			w.buf[w.bitPos/8] |= 1 << uint(w.bitPos%8)
		}
		w.bitPos++
	}
}

func (w *bitWriter) align() {
	w.bitPos = len(w.buf) * 8
}

func (w *bitWriter) putUvarint(u uint64) {
	w.align()
	w.buf = binary.AppendUvarint(w.buf, u)
	w.bitPos = len(w.buf) * 8
}

func (w *bitWriter) putZigZag(v int64) {
	w.putUvarint(bitutil.ZigZagEncode(v))
}

func (w *bitWriter) putByte(b byte) {
	w.align()
	w.buf = append(w.buf, b)
	w.bitPos = len(w.buf) * 8
}

// blockSpec describes a hand-built DELTA_BINARY_PACKED block. deltas holds
// the stored (bias-free) deltas of each mini-block with a body; bodies are
// padded with zeros to blockSize/len(widths) values.
type blockSpec struct {
	blockSize  int
	widths     []byte
	valueCount int
	firstValue int64
	minDelta   int64
	deltas     [][]uint64
}

func (b blockSpec) appendTo(w *bitWriter) {
	w.putUvarint(uint64(b.blockSize))
	w.putUvarint(uint64(len(b.widths)))
	w.putUvarint(uint64(b.valueCount))
	w.putZigZag(b.firstValue)
	w.putZigZag(b.minDelta)
	for _, width := range b.widths {
		w.putByte(width)
	}
	valuesPerMiniBlock := b.blockSize / len(b.widths)
	for i, deltas := range b.deltas {
		for j := 0; j < valuesPerMiniBlock; j++ {
			var v uint64
			if j < len(deltas) {
				v = deltas[j]
			}
			w.putValue(v, int(b.widths[i]))
		}
	}
}

func encodeBlocks(blocks ...blockSpec) []byte {
	w := &bitWriter{}
	for _, b := range blocks {
		b.appendTo(w)
	}
	return w.buf
}

// expectedValues replays the running sum of the given blocks.
func expectedValues(blocks ...blockSpec) []int64 {
	var values []int64
	for _, b := range blocks {
		last := b.firstValue
		values = append(values, last)
		remaining := b.valueCount - 1
		for _, deltas := range b.deltas {
			for _, d := range deltas {
				if remaining == 0 {
					break
				}
				last += int64(d) + b.minDelta
				values = append(values, last)
				remaining--
			}
		}
	}
	return values
}

// encodeDeltaBinaryPacked encodes values as blocks of blockSize deltas split
// into numMiniBlocks mini-blocks, each packed at the narrowest width.
func encodeDeltaBinaryPacked(values []int64, blockSize, numMiniBlocks int) []byte {
	w := &bitWriter{}
	valuesPerMiniBlock := blockSize / numMiniBlocks

	for start := 0; start < len(values); {
		end := min(start+1+blockSize, len(values))
		deltas := make([]int64, 0, blockSize)
		for i := start + 1; i < end; i++ {
			deltas = append(deltas, values[i]-values[i-1])
		}
		var minDelta int64
		if len(deltas) > 0 {
			minDelta = slices.Min(deltas)
		}

		block := blockSpec{
			blockSize:  blockSize,
			widths:     make([]byte, numMiniBlocks),
			valueCount: end - start,
			firstValue: values[start],
			minDelta:   minDelta,
		}
		for m := 0; m*valuesPerMiniBlock < len(deltas); m++ {
			lo := m * valuesPerMiniBlock
			hi := min(lo+valuesPerMiniBlock, len(deltas))
			stored := make([]uint64, hi-lo)
			var orAll uint64
			for k, d := range deltas[lo:hi] {
				stored[k] = uint64(d - minDelta)
				orAll |= stored[k]
			}
			block.widths[m] = byte(bits.Len64(orAll))
			block.deltas = append(block.deltas, stored)
		}
		block.appendTo(w)
		start = end
	}
	return w.buf
}

func encodeInt32s(values []int32, blockSize, numMiniBlocks int) []byte {
	wide := make([]int64, len(values))
	for i, v := range values {
		wide[i] = int64(v)
	}
	return encodeDeltaBinaryPacked(wide, blockSize, numMiniBlocks)
}

func appendLengthPrefixed(dst, data []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(data)))
	return append(dst, data...)
}

func encodePlainByteArray(values []string) []byte {
	var buf []byte
	for _, v := range values {
		buf = appendLengthPrefixed(buf, []byte(v))
	}
	return buf
}

func encodeDeltaLengthByteArray(values []string) []byte {
	lengths := make([]int64, len(values))
	var data []byte
	for i, v := range values {
		lengths[i] = int64(len(v))
		data = append(data, v...)
	}
	buf := appendLengthPrefixed(nil, encodeDeltaBinaryPacked(lengths, 128, 4))
	return append(buf, data...)
}

// encodeDeltaByteArrayWithPrefixes builds a payload from explicit prefix
// lengths and suffixes.
func encodeDeltaByteArrayWithPrefixes(prefixes []int64, suffixes []string) []byte {
	buf := appendLengthPrefixed(nil, encodeDeltaBinaryPacked(prefixes, 128, 4))
	return append(buf, encodePlainByteArray(suffixes)...)
}

func encodeDeltaByteArray(values []string) []byte {
	prefixes := make([]int64, len(values))
	suffixes := make([]string, len(values))
	last := ""
	for i, v := range values {
		p := 0
		for p < len(v) && p < len(last) && v[p] == last[p] {
			p++
		}
		prefixes[i] = int64(p)
		suffixes[i] = v[p:]
		last = v
	}
	return encodeDeltaByteArrayWithPrefixes(prefixes, suffixes)
}

// withFastUnpack forces the table-driven path on or off for one test.
func withFastUnpack(enabled bool, cleanup func(func())) {
	prev := fastUnpackEnabled
	fastUnpackEnabled = enabled
	cleanup(func() { fastUnpackEnabled = prev })
}

package parquet

import (
	"encoding/binary"
	"sync"

	"github.com/parquet-go/bitpack"
	"github.com/parquet-go/bitpack/unsafecast"
	"golang.org/x/sys/cpu"
)

const (
	// miniBlockRun is the number of values extracted by one bulk unpack.
	// 32 values of any width always end on a byte boundary.
	miniBlockRun = 32

	// maxFastUnpackBitWidth is the widest value a single 64-bit load can
	// hold once shifted by up to 7 bits.
	maxFastUnpackBitWidth = 57

	// maxTableRunBytes is the packed size of a run at the widest table width.
	maxTableRunBytes = miniBlockRun * maxFastUnpackBitWidth / 8

	// paddedRunWords sizes the scratch handed to bitpack: the widest run plus
	// the padding it may read past the end of its input.
	paddedRunWords = (miniBlockRun*64/8 + bitpack.PaddingInt64) / 8
)

// unpackOffset locates the first bit of one value within a packed run.
type unpackOffset struct {
	byteOffset uint16
	shift      uint8
}

type unpackTable [miniBlockRun]unpackOffset

// unpackTables holds one table per bit width in [1, maxFastUnpackBitWidth].
// Index 0 is unused. The tables are built on first use and never modified.
var unpackTables = sync.OnceValue(func() *[maxFastUnpackBitWidth + 1]unpackTable {
	tables := new([maxFastUnpackBitWidth + 1]unpackTable)
	for bitWidth := 1; bitWidth <= maxFastUnpackBitWidth; bitWidth++ {
		bitOffset := 0
		for i := range tables[bitWidth] {
			tables[bitWidth][i] = unpackOffset{
				byteOffset: uint16(bitOffset / 8),
				shift:      uint8(bitOffset % 8),
			}
			bitOffset += bitWidth
		}
	}
	return tables
})

// fastUnpackEnabled selects bulk unpacking of mini-block runs. bitpack reads
// the packed input as native words, which only matches the little-endian
// layout on little-endian hosts.
var fastUnpackEnabled = !cpu.IsBigEndian

// IsFastUnpackAvailable reports whether mini-block runs are unpacked in bulk
// instead of one value at a time.
func IsFastUnpackAvailable() bool {
	return fastUnpackEnabled
}

// hasFastUnpack reports whether bitWidth is covered by the offset tables.
func hasFastUnpack(bitWidth int) bool {
	return fastUnpackEnabled && bitWidth >= 1 && bitWidth <= maxFastUnpackBitWidth
}

// hasRunUnpack reports whether a run at bitWidth can be unpacked in bulk.
func hasRunUnpack(bitWidth int) bool {
	return fastUnpackEnabled && bitWidth >= 0 && bitWidth <= 64
}

// runBytes returns the packed size of a run of miniBlockRun values.
func runBytes(bitWidth int) int {
	return miniBlockRun * bitWidth / 8
}

// unpackRun extracts miniBlockRun values packed at bitWidth bits from the
// start of src, which must hold at least runBytes(bitWidth) bytes.
func unpackRun(dst *[miniBlockRun]uint64, src []byte, bitWidth int) {
	switch {
	case bitWidth == 0:
		clear(dst[:])
	case bitWidth <= maxFastUnpackBitWidth:
		unpackRunTable(dst, src, bitWidth)
	default:
		unpackRunPadded(dst, src, bitWidth)
	}
}

// unpackRunTable reads each value with one little-endian word load at the
// offset given by the table of bitWidth.
func unpackRunTable(dst *[miniBlockRun]uint64, src []byte, bitWidth int) {
	table := &unpackTables()[bitWidth]
	mask := uint64(1)<<uint(bitWidth) - 1

	// The load for the last value reads a full word past its first byte.
	if len(src) < int(table[miniBlockRun-1].byteOffset)+8 {
		var scratch [maxTableRunBytes + 8]byte
		copy(scratch[:], src[:runBytes(bitWidth)])
		src = scratch[:]
	}

	for i := 0; i < miniBlockRun; i += 4 {
		dst[i+0] = binary.LittleEndian.Uint64(src[table[i+0].byteOffset:]) >> table[i+0].shift
		dst[i+1] = binary.LittleEndian.Uint64(src[table[i+1].byteOffset:]) >> table[i+1].shift
		dst[i+2] = binary.LittleEndian.Uint64(src[table[i+2].byteOffset:]) >> table[i+2].shift
		dst[i+3] = binary.LittleEndian.Uint64(src[table[i+3].byteOffset:]) >> table[i+3].shift

		dst[i+0] &= mask
		dst[i+1] &= mask
		dst[i+2] &= mask
		dst[i+3] &= mask
	}
}

// unpackRunPadded hands the widths the tables cannot cover to bitpack. The
// run is copied into a word-aligned scratch buffer carrying the padding
// bitpack may read.
func unpackRunPadded(dst *[miniBlockRun]uint64, src []byte, bitWidth int) {
	var scratch [paddedRunWords]uint64
	buf := unsafecast.Slice[byte](scratch[:])
	copy(buf, src[:runBytes(bitWidth)])
	bitpack.Unpack(unsafecast.Slice[int64](dst[:]), buf, uint(bitWidth))
}

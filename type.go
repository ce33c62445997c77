package parquet

import "fmt"

// Type is the physical type of a column as declared in the file metadata.
type Type int32

const (
	BooleanType           Type = 0
	Int32Type             Type = 1
	Int64Type             Type = 2
	Int96Type             Type = 3
	FloatType             Type = 4
	DoubleType            Type = 5
	ByteArrayType         Type = 6
	FixedLenByteArrayType Type = 7
)

func (t Type) String() string {
	switch t {
	case BooleanType:
		return "BOOLEAN"
	case Int32Type:
		return "INT32"
	case Int64Type:
		return "INT64"
	case Int96Type:
		return "INT96"
	case FloatType:
		return "FLOAT"
	case DoubleType:
		return "DOUBLE"
	case ByteArrayType:
		return "BYTE_ARRAY"
	case FixedLenByteArrayType:
		return "FIXED_LEN_BYTE_ARRAY"
	}
	return fmt.Sprintf("Type(%d)", int32(t))
}

// Encoding identifies how the values of a page are encoded.
type Encoding int32

const (
	Plain                Encoding = 0
	PlainDictionary      Encoding = 2
	RLE                  Encoding = 3
	BitPacked            Encoding = 4
	DeltaBinaryPacked    Encoding = 5
	DeltaLengthByteArray Encoding = 6
	DeltaByteArray       Encoding = 7
	RLEDictionary        Encoding = 8
)

func (e Encoding) String() string {
	switch e {
	case Plain:
		return "PLAIN"
	case PlainDictionary:
		return "PLAIN_DICTIONARY"
	case RLE:
		return "RLE"
	case BitPacked:
		return "BIT_PACKED"
	case DeltaBinaryPacked:
		return "DELTA_BINARY_PACKED"
	case DeltaLengthByteArray:
		return "DELTA_LENGTH_BYTE_ARRAY"
	case DeltaByteArray:
		return "DELTA_BYTE_ARRAY"
	case RLEDictionary:
		return "RLE_DICTIONARY"
	}
	return fmt.Sprintf("Encoding(%d)", int32(e))
}

package parquet

import "errors"

// Truncated input is reported by wrapping io.ErrUnexpectedEOF; test for it
// with errors.Is.
var (
	// ErrInvalidType is returned when a decoder is requested, or asked to
	// produce values, for a physical type its encoding cannot represent.
	ErrInvalidType = errors.New("parquet: invalid type for encoding")

	// ErrInvalidBuffer is returned when the encoded data is malformed.
	ErrInvalidBuffer = errors.New("parquet: invalid buffer")

	// ErrNotImplemented is returned by NewDecoder for encodings this package
	// does not decode.
	ErrNotImplemented = errors.New("parquet: not implemented")
)

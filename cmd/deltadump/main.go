// Command deltadump decodes a delta-encoded Parquet page body and prints its
// values as a table.
//
//	deltadump -encoding DELTA_BINARY_PACKED -type INT32 -count 100 page.bin
//	echo 2001051401031906 | deltadump -hex -count 5
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/olekukonko/tablewriter"

	parquet "github.com/PedroMDuarte/parquet-cpp"
)

type options struct {
	encoding string
	typ      string
	count    int
	hex      bool
	batch    int
	path     string
}

func main() {
	var opts options
	flag.StringVar(&opts.encoding, "encoding", parquet.DeltaBinaryPacked.String(), "encoding of the input (DELTA_BINARY_PACKED, DELTA_BYTE_ARRAY, DELTA_LENGTH_BYTE_ARRAY, PLAIN)")
	flag.StringVar(&opts.typ, "type", parquet.Int64Type.String(), "physical type of the values (INT32, INT64, BYTE_ARRAY)")
	flag.IntVar(&opts.count, "count", 0, "number of encoded values")
	flag.BoolVar(&opts.hex, "hex", false, "read the input as hex text")
	flag.IntVar(&opts.batch, "batch", 1024, "values decoded per call")
	flag.Parse()
	opts.path = flag.Arg(0)

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	n, err := run(opts, os.Stdout)
	if err != nil {
		level.Error(logger).Log("msg", "failed to decode input", "encoding", opts.encoding, "type", opts.typ, "err", err)
		os.Exit(1)
	}
	level.Debug(logger).Log("msg", "decoded input", "values", n)
}

func run(opts options, w io.Writer) (int, error) {
	if opts.count <= 0 {
		return 0, errors.New("-count must be positive")
	}
	if opts.batch <= 0 {
		return 0, errors.New("-batch must be positive")
	}
	enc, err := parseEncoding(opts.encoding)
	if err != nil {
		return 0, err
	}
	typ, err := parseType(opts.typ)
	if err != nil {
		return 0, err
	}
	data, err := readInput(opts.path, opts.hex)
	if err != nil {
		return 0, err
	}

	d, err := parquet.NewDecoder(typ, enc)
	if err != nil {
		return 0, err
	}
	if err := d.SetData(opts.count, data); err != nil {
		return 0, err
	}
	rows, err := decodeRows(d, opts.batch)
	if err != nil {
		return len(rows), err
	}

	table := tablewriter.NewWriter(w)
	table.Header("index", "value")
	for i, v := range rows {
		if err := table.Append([]string{strconv.Itoa(i), v}); err != nil {
			return len(rows), err
		}
	}
	return len(rows), table.Render()
}

// decodeRows drains d, formatting each value as a table cell.
func decodeRows(d parquet.Decoder, batch int) ([]string, error) {
	rows := make([]string, 0, d.ValuesLeft())
	switch d.Type() {
	case parquet.Int32Type:
		buf := make([]int32, batch)
		for d.ValuesLeft() > 0 {
			n, err := d.DecodeInt32(buf)
			for _, v := range buf[:n] {
				rows = append(rows, strconv.FormatInt(int64(v), 10))
			}
			if err != nil {
				return rows, err
			}
		}
	case parquet.Int64Type:
		buf := make([]int64, batch)
		for d.ValuesLeft() > 0 {
			n, err := d.DecodeInt64(buf)
			for _, v := range buf[:n] {
				rows = append(rows, strconv.FormatInt(v, 10))
			}
			if err != nil {
				return rows, err
			}
		}
	default:
		buf := make([]parquet.ByteArray, batch)
		for d.ValuesLeft() > 0 {
			n, err := d.DecodeByteArray(buf)
			for _, v := range buf[:n] {
				rows = append(rows, strconv.Quote(string(v)))
			}
			if err != nil {
				return rows, err
			}
		}
	}
	return rows, nil
}

func readInput(path string, isHex bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if !isHex {
		return data, nil
	}
	return hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
}

func parseEncoding(name string) (parquet.Encoding, error) {
	for _, enc := range []parquet.Encoding{
		parquet.Plain,
		parquet.DeltaBinaryPacked,
		parquet.DeltaLengthByteArray,
		parquet.DeltaByteArray,
	} {
		if strings.EqualFold(name, enc.String()) {
			return enc, nil
		}
	}
	return 0, fmt.Errorf("unsupported encoding %q", name)
}

func parseType(name string) (parquet.Type, error) {
	for _, typ := range []parquet.Type{
		parquet.Int32Type,
		parquet.Int64Type,
		parquet.ByteArrayType,
	} {
		if strings.EqualFold(name, typ.String()) {
			return typ, nil
		}
	}
	return 0, fmt.Errorf("unsupported type %q", name)
}

package parquetio

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	parquet "github.com/segmentio/parquet-go"

	"github.com/wdm0006/forecastio/pkg/forecast"
)

// readBatch is how many rows Reader pulls from the file at a time.
const readBatch = 1024

// Reader yields the header and then every row of a Parquet file as string cells, so it can feed
// the same pipeline as a CSV reader. Nulls read as empty cells.
type Reader struct {
	file       *os.File
	reader     *parquet.Reader
	header     []string
	buf        []parquet.Row
	pos        int
	n          int
	sentHeader bool
	done       bool
}

// OpenReader opens the Parquet file at path.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := parquet.NewReader(f)
	cols := r.Schema().Columns()
	header := make([]string, len(cols))
	for i, path := range cols {
		header[i] = strings.Join(path, ".")
	}
	return &Reader{file: f, reader: r, header: header, buf: make([]parquet.Row, readBatch)}, nil
}

// NumRows is the number of data rows in the file.
func (r *Reader) NumRows() int64 { return r.reader.NumRows() }

// Header returns the column names in file order.
func (r *Reader) Header() []string {
	out := make([]string, len(r.header))
	copy(out, r.header)
	return out
}

// Read returns the header on the first call and one row per call after that, then io.EOF.
func (r *Reader) Read() ([]string, error) {
	if !r.sentHeader {
		r.sentHeader = true
		return r.Header(), nil
	}
	if r.pos >= r.n {
		if r.done {
			return nil, io.EOF
		}
		n, err := r.reader.ReadRows(r.buf)
		r.pos, r.n = 0, n
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, err
			}
			r.done = true
		}
		if n == 0 {
			return nil, io.EOF
		}
	}
	row := r.buf[r.pos]
	r.pos++
	cells := make([]string, len(r.header))
	for _, v := range row {
		if c := v.Column(); c >= 0 && c < len(cells) {
			cells[c] = cellString(v)
		}
	}
	return cells, nil
}

func (r *Reader) Close() error {
	_ = r.reader.Close()
	return r.file.Close()
}

// ReadAll loads the header and every row of the Parquet file at path.
func ReadAll(path string) ([][]string, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
}

func cellString(v parquet.Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return forecast.FormatFloat(float64(v.Float()))
	case parquet.Double:
		return forecast.FormatFloat(v.Double())
	default:
		return string(v.ByteArray())
	}
}

package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	iox "github.com/wdm0006/forecastio/pkg/io/ioutils"
)

type ReaderOptions struct {
	Delimiter  rune // 0 = sniff, default ','
	LazyQuotes bool
}

// Reader yields raw CSV records from a possibly gzip-compressed source. The first record is the
// header with any UTF-8 BOM removed. Records are copies and may be retained by the caller.
type Reader struct {
	r      *csv.Reader
	closer io.Closer
	first  bool
}

// Open opens a CSV file (or stdin for "-") and returns a Reader. Close releases the file.
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	r := NewReaderFrom(rc, opt)
	r.closer = rc
	return r, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe). A zero delimiter
// is sniffed from the first 4KiB.
func NewReaderFrom(src io.Reader, opt ReaderOptions) *Reader {
	comma, lazy := opt.Delimiter, opt.LazyQuotes
	if comma == 0 {
		br := bufio.NewReaderSize(src, 4096)
		sample, _ := br.Peek(4096)
		var sniffedLazy bool
		comma, sniffedLazy = sniffDelimiterAndQuotes(sample)
		lazy = lazy || sniffedLazy
		src = br
	}
	cr := csv.NewReader(src)
	cr.Comma = comma
	cr.LazyQuotes = lazy
	cr.FieldsPerRecord = -1
	return &Reader{r: cr, first: true}
}

// Read returns the next record, or io.EOF after the last one.
func (r *Reader) Read() ([]string, error) {
	rec, err := r.r.Read()
	if err != nil {
		if err != io.EOF {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		return nil, err
	}
	if r.first {
		r.first = false
		if len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
		}
	}
	return rec, nil
}

// Close closes the underlying file, if the Reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ReadAll loads every record of the CSV at path, header included.
func ReadAll(path string, opt ReaderOptions) ([][]string, error) {
	r, err := Open(path, opt)
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

// sniffDelimiterAndQuotes picks the most frequent candidate delimiter in the first line of
// sample. Unbalanced quotes switch on LazyQuotes.
func sniffDelimiterAndQuotes(sample []byte) (rune, bool) {
	if len(sample) == 0 {
		return ',', false
	}
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}
	candidates := []byte{',', '\t', ';', '|'}
	best := byte(',')
	bestCount := 0
	for _, c := range candidates {
		cnt := 0
		for _, b := range line {
			if b == c {
				cnt++
			}
		}
		if cnt > bestCount {
			bestCount = cnt
			best = c
		}
	}
	quoteCount := 0
	for _, b := range sample {
		if b == '"' {
			quoteCount++
		}
	}
	return rune(best), quoteCount%2 != 0
}

package csvio

import (
	"encoding/csv"
	"fmt"
	"io"

	iox "github.com/wdm0006/forecastio/pkg/io/ioutils"
)

type WriterOptions struct {
	Delimiter rune // default ','
	UseCRLF   bool
}

// Write writes rows to w. The first row is usually the header.
func Write(w io.Writer, rows [][]string, opt WriterOptions) error {
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	cw.UseCRLF = opt.UseCRLF
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAll writes rows to path (stdout for "-"), gzip-compressed when path ends in ".gz".
func WriteAll(path string, rows [][]string, opt WriterOptions) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Write(out, rows, opt); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

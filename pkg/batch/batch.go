// Package batch validates many forecast files concurrently. Each file runs its own independent
// pipeline; results come back in input order.
package batch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/wdm0006/forecastio/pkg/forecast"
	"github.com/wdm0006/forecastio/pkg/io/csvio"
	"github.com/wdm0006/forecastio/pkg/io/parquetio"
	"github.com/wdm0006/forecastio/pkg/quantileio"
)

// RecordSource is a record reader that owns an open file.
type RecordSource interface {
	quantileio.RecordReader
	io.Closer
}

// OpenRecords opens path as a record source: Parquet for ".parquet" files, comma-delimited CSV
// (optionally gzip-compressed) otherwise.
func OpenRecords(path string) (RecordSource, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		r, err := parquetio.OpenReader(path)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	r, err := csvio.Open(path, csvio.ReaderOptions{Delimiter: ','})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Result is the outcome for one file. Err is set for I/O and syntax failures; validation
// findings are in Messages.
type Result struct {
	Path     string
	Dict     *forecast.JSONIODict
	Messages []forecast.Message
	Err      error
}

// OK reports whether the file was read and produced no messages.
func (r Result) OK() bool { return r.Err == nil && len(r.Messages) == 0 }

// Runner validates files against one target list and option set.
type Runner struct {
	Targets []string
	Options quantileio.Options
	// Workers bounds concurrent files; <= 0 means 1.
	Workers int
	// Open overrides OpenRecords, mostly for tests.
	Open func(path string) (RecordSource, error)
}

// Run validates every path. A failing file does not stop the others; only context cancellation
// makes Run return an error.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.runOne(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) runOne(path string) Result {
	open := r.Open
	if open == nil {
		open = OpenRecords
	}
	res := Result{Path: path}
	src, err := open(path)
	if err != nil {
		res.Err = fmt.Errorf("open %s: %w", path, err)
		return res
	}
	defer func() { _ = src.Close() }()
	d, msgs, err := quantileio.FromRecords(src, r.Targets, r.Options)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", path, err)
		return res
	}
	res.Dict, res.Messages = d, msgs
	return res
}

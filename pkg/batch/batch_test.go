package batch

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/forecastio/pkg/io/csvio"
	"github.com/wdm0006/forecastio/pkg/io/parquetio"
)

var targets = []string{"1 wk ahead cum death"}

func TestRunOrderedResults(t *testing.T) {
	paths := []string{
		filepath.Join("testdata", "bad.csv"),
		filepath.Join("testdata", "good.csv"),
		filepath.Join("testdata", "missing.csv"),
	}
	r := &Runner{Targets: targets, Workers: 3}
	res, err := r.Run(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, res, 3)

	assert.Equal(t, paths[0], res[0].Path)
	require.NoError(t, res[0].Err)
	require.Len(t, res[0].Messages, 3)
	assert.Contains(t, res[0].Messages[0].Text, "invalid target name(s)")
	assert.Contains(t, res[0].Messages[1].Text, "duplicate unit/target/classes tuples")
	assert.Contains(t, res[0].Messages[2].Text, "exactly one point prediction")

	assert.True(t, res[1].OK())
	assert.Len(t, res[1].Dict.Predictions, 2)

	assert.Error(t, res[2].Err)
	assert.False(t, res[2].OK())
}

func TestRunParquet(t *testing.T) {
	rows, err := csvio.ReadAll(filepath.Join("testdata", "good.csv"), csvio.ReaderOptions{})
	require.NoError(t, err)
	p := filepath.Join(t.TempDir(), "good.parquet")
	require.NoError(t, parquetio.WriteRows(p, rows))

	res, err := (&Runner{Targets: targets}).Run(context.Background(), []string{p})
	require.NoError(t, err)
	require.NoError(t, res[0].Err)
	assert.Empty(t, res[0].Messages)
	assert.Len(t, res[0].Dict.Predictions, 2)
}

type stringSource struct {
	*csvio.Reader
	closed *atomic.Int32
}

func (s stringSource) Close() error {
	s.closed.Add(1)
	return nil
}

func TestRunCustomOpenClosesSources(t *testing.T) {
	var closed atomic.Int32
	r := &Runner{
		Targets: targets,
		Workers: 2,
		Open: func(path string) (RecordSource, error) {
			if path == "boom" {
				return nil, errors.New("boom")
			}
			body := "location,target,type,quantile,value\nUS,1 wk ahead cum death,point,NA," + path + "\n"
			return stringSource{Reader: csvio.NewReaderFrom(strings.NewReader(body), csvio.ReaderOptions{Delimiter: ','}), closed: &closed}, nil
		},
	}
	res, err := r.Run(context.Background(), []string{"1", "2", "boom", "4"})
	require.NoError(t, err)
	require.Len(t, res, 4)
	assert.True(t, res[0].OK())
	assert.ErrorContains(t, res[2].Err, "boom")
	assert.EqualValues(t, 3, closed.Load())
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Runner{Targets: targets}).Run(ctx, []string{filepath.Join("testdata", "good.csv")})
	assert.ErrorIs(t, err, context.Canceled)
}

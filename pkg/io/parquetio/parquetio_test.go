package parquetio

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quantileRows = [][]string{
	{"location", "target", "type", "quantile", "value"},
	{"04", "1 day ahead inc hosp", "point", "", "7.5"},
	{"04", "1 day ahead inc hosp", "quantile", "0.025", "1"},
	{"04", "1 day ahead inc hosp", "quantile", "0.975", "nan"},
}

func TestWriteReadRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "q.parquet")
	require.NoError(t, WriteRows(p, quantileRows))

	got, err := ReadAll(p)
	require.NoError(t, err)
	assert.Equal(t, quantileRows, got)
}

func TestReaderStreams(t *testing.T) {
	p := filepath.Join(t.TempDir(), "q.parquet")
	require.NoError(t, WriteRows(p, quantileRows))

	r, err := OpenReader(p)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	assert.EqualValues(t, 3, r.NumRows())

	n := 0
	for {
		_, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 4, n)
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestSchemaColumnsAreOptionalUTF8(t *testing.T) {
	schema, err := parquetSchemaJSON([]string{"location", "value"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Tag": "name=schema, repetitiontype=REQUIRED", "Fields": [
		{"Tag": "name=location, type=UTF8, repetitiontype=OPTIONAL"},
		{"Tag": "name=value, type=UTF8, repetitiontype=OPTIONAL"}]}`, schema)
}

func TestWriteRowsErrors(t *testing.T) {
	dir := t.TempDir()
	assert.ErrorIs(t, WriteRows(filepath.Join(dir, "a.parquet"), nil), ErrNoHeader)
	assert.Error(t, WriteRows(filepath.Join(dir, "b.parquet"), [][]string{{"a,b"}}))
	assert.Error(t, WriteRows(filepath.Join(dir, "c.parquet"), [][]string{{"a", "b"}, {"1"}}))
}

func TestHeaderOnly(t *testing.T) {
	p := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteRows(p, quantileRows[:1]))
	got, err := ReadAll(p)
	require.NoError(t, err)
	assert.Equal(t, quantileRows[:1], got)
}

func BenchmarkWriteRows(b *testing.B) {
	rows := [][]string{quantileRows[0]}
	for i := 0; i < 10000; i++ {
		rows = append(rows, quantileRows[1+i%3])
	}
	path := filepath.Join(b.TempDir(), "bench.parquet")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := WriteRows(path, rows); err != nil {
			b.Fatal(err)
		}
	}
}

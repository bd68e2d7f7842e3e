// Package parquetio stores forecast rows in Parquet files. Every column is an optional UTF-8
// string so cells keep their exact CSV text; empty cells are written as nulls.
package parquetio

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"
)

// writerParallelism is the number of marshalling goroutines of the parquet writer.
const writerParallelism = 4

var ErrNoHeader = errors.New("parquetio: rows have no header")

func parquetSchemaJSON(header []string) (string, error) {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, name := range header {
		if name == "" || strings.ContainsAny(name, ",=") {
			return "", fmt.Errorf("parquetio: unsupported column name %q", name)
		}
		sc.Fields = append(sc.Fields, field{Tag: "name=" + name + ", type=UTF8, repetitiontype=OPTIONAL"})
	}
	b, err := json.Marshal(sc)
	return string(b), err
}

// WriteRows writes rows to a Parquet file at path. rows[0] is the header and names the columns.
func WriteRows(path string, rows [][]string) (err error) {
	if len(rows) == 0 {
		return ErrNoHeader
	}
	header := rows[0]
	schema, err := parquetSchemaJSON(header)
	if err != nil {
		return err
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(schema, fw, writerParallelism)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	defer func() {
		if stopErr := writer.WriteStop(); stopErr != nil && err == nil {
			err = fmt.Errorf("parquet write stop: %w", stopErr)
		}
		if closeErr := fw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return fmt.Errorf("parquet row %d: len(header)=%d but len(row)=%d", i+1, len(header), len(row))
		}
		rec := make(map[string]string, len(header))
		for c, name := range header {
			if row[c] != "" {
				rec[name] = row[c]
			}
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := writer.Write(string(b)); err != nil {
			return fmt.Errorf("parquet write row %d: %w", i+1, err)
		}
	}
	return nil
}

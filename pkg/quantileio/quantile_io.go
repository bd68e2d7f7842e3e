// Package quantileio validates quantile CSV files and converts them to and from JSON IO dicts.
//
// A quantile CSV has the columns location, target, type, quantile and value (plus any
// project-specific required columns) in any order. Point rows carry one value; quantile rows
// carry one (quantile, value) pair of a distribution. Validation never stops at the first
// problem: every finding is returned as a forecast.Message next to a best-effort JSON IO dict.
package quantileio

import (
	"io"

	"github.com/wdm0006/forecastio/pkg/forecast"
	"github.com/wdm0006/forecastio/pkg/io/csvio"
)

// Options tunes FromQuantileCSV and FromRecords.
type Options struct {
	// RowValidator, if set, runs on every data row.
	RowValidator RowValidator
	// AdditionalRequiredColumns are required on top of the base columns.
	AdditionalRequiredColumns []string
}

// FromQuantileCSV reads a comma-delimited quantile CSV and returns its JSON IO dict and all
// validation messages. The error is reserved for read and CSV syntax failures.
func FromQuantileCSV(r io.Reader, validTargets []string, opt Options) (*forecast.JSONIODict, []forecast.Message, error) {
	return FromRecords(csvio.NewReaderFrom(r, csvio.ReaderOptions{Delimiter: ','}), validTargets, opt)
}

// FromRecords runs the validation and conversion pipeline over any record source whose first
// record is the header.
func FromRecords(rr RecordReader, validTargets []string, opt Options) (*forecast.JSONIODict, []forecast.Message, error) {
	rows, msgs, err := validatedRows(rr, validTargets, opt)
	if err != nil {
		return nil, nil, err
	}
	preds := buildPredictions(rows)
	msgs = append(msgs, ValidatePredictions(preds)...)
	return forecast.NewJSONIODict(preds), msgs, nil
}

// ValidateJSONIODict runs the prediction-level checks over an already built JSON IO dict.
func ValidateJSONIODict(d *forecast.JSONIODict) []forecast.Message {
	if d == nil {
		return nil
	}
	return ValidatePredictions(d.Predictions)
}

// QuantileRowsFromJSONIODict projects the general CSV rows of d down to the quantile CSV columns,
// keeping only point and quantile rows. The first row is the header.
func QuantileRowsFromJSONIODict(d *forecast.JSONIODict) [][]string {
	general := csvio.RowsFromJSONIODict(d)
	rows := [][]string{forecast.RequiredColumns()}
	for _, r := range general[1:] {
		class := forecast.Class(r[csvio.ColClass])
		if class != forecast.ClassPoint && class != forecast.ClassQuantile {
			continue
		}
		rows = append(rows, []string{r[csvio.ColUnit], r[csvio.ColTarget], r[csvio.ColClass], r[csvio.ColQuantile], r[csvio.ColValue]})
	}
	return rows
}

package quantileio

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/wdm0006/forecastio/pkg/forecast"
)

// RecordReader yields one CSV record per call and io.EOF at the end. *csv.Reader satisfies it.
type RecordReader interface {
	Read() ([]string, error)
}

// RowValidator runs project-specific checks on one raw row. Rows keep the file's column order;
// use the ColumnIndex to find cells.
type RowValidator func(ci ColumnIndex, row []string) []forecast.Message

// Chain runs validators in order and concatenates their messages. Nil validators are skipped.
func Chain(validators ...RowValidator) RowValidator {
	return func(ci ColumnIndex, row []string) []forecast.Message {
		var out []forecast.Message
		for _, v := range validators {
			if v == nil {
				continue
			}
			out = append(out, v(ci, row)...)
		}
		return out
	}
}

// parsedRow is one data row after extraction and classification.
type parsedRow struct {
	target   string
	unit     string
	rowType  forecast.RowType
	quantile forecast.Value
	value    forecast.Value
}

// validatedRows reads the header and every data row, returning the parsed rows and the row-level
// messages. A bad header or a row with the wrong cell count stops processing: no rows are
// returned, only the message explaining why. The error return is for read failures.
func validatedRows(rr RecordReader, validTargets []string, opt Options) ([]parsedRow, []forecast.Message, error) {
	rec, err := rr.Read()
	if errors.Is(err, io.EOF) {
		return nil, []forecast.Message{{Priority: forecast.PriorityForecastChecks, Text: "missing header row"}}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	header := cleanHeader(rec)
	ci, err := ValidateHeader(header, opt.AdditionalRequiredColumns)
	if err != nil {
		return nil, []forecast.Message{{Priority: forecast.PriorityForecastChecks, Text: err.Error()}}, nil
	}

	targets := toSet(validTargets)
	badTargets := map[string]struct{}{}
	var msgs []forecast.Message
	var rows []parsedRow
	for line := 2; ; line++ {
		row, err := rr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if len(row) != len(header) {
			return nil, []forecast.Message{forecast.Messagef(forecast.PriorityForecastChecks,
				"invalid number of items in row. len(header)=%d but len(row)=%d. row=%q", len(header), len(row), row)}, nil
		}

		unit := row[ci[forecast.ColumnLocation]]
		target := row[ci[forecast.ColumnTarget]]
		rowType := forecast.ParseRowType(row[ci[forecast.ColumnType]])
		rawQuantile := row[ci[forecast.ColumnQuantile]]
		rawValue := row[ci[forecast.ColumnValue]]

		if _, ok := targets[target]; !ok {
			badTargets[target] = struct{}{}
		}

		quantile := forecast.ParseValue(rawQuantile)
		value := forecast.ParseValue(rawValue)
		switch {
		case !rowType.IsPoint() && !validQuantile(quantile):
			msgs = append(msgs, forecast.Messagef(forecast.PriorityForecastChecks,
				"entries in the `quantile` column must be an int or float in [0, 1]: %q. row=%q", rawQuantile, row))
		case rowType.IsPoint() && !value.IsFinite():
			msgs = append(msgs, forecast.Messagef(forecast.PriorityForecastChecks,
				"entries in the `value` column must be an int or float: %q. row=%q", rawValue, row))
		}

		if opt.RowValidator != nil {
			msgs = append(msgs, opt.RowValidator(ci, row)...)
		}
		rows = append(rows, parsedRow{target: target, unit: unit, rowType: rowType, quantile: quantile, value: value})
	}

	if len(badTargets) > 0 {
		msgs = append(msgs, forecast.Messagef(forecast.PriorityForecastChecks,
			"invalid target name(s): %q", sortedKeys(badTargets)))
	}
	return rows, msgs, nil
}

func validQuantile(q forecast.Value) bool {
	if !q.IsFinite() {
		return false
	}
	x, _ := q.Number()
	return x >= 0 && x <= 1
}

// buildPredictions groups rows by (target, unit, row type). Each point row becomes its own
// element; each non-empty quantile group becomes one element with quantiles and values in
// encounter order.
func buildPredictions(rows []parsedRow) []forecast.Prediction {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.target != b.target {
			return a.target < b.target
		}
		if a.unit != b.unit {
			return a.unit < b.unit
		}
		return a.rowType < b.rowType
	})

	preds := []forecast.Prediction{}
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].target == rows[start].target &&
			rows[end].unit == rows[start].unit && rows[end].rowType == rows[start].rowType {
			end++
		}
		group := rows[start:end]
		first := group[0]
		if first.rowType.IsPoint() {
			for _, r := range group {
				preds = append(preds, forecast.NewPointPrediction(r.unit, r.target, r.value))
			}
		} else {
			quantiles := make([]forecast.Value, 0, len(group))
			values := make([]forecast.Value, 0, len(group))
			for _, r := range group {
				quantiles = append(quantiles, r.quantile)
				values = append(values, r.value)
			}
			preds = append(preds, forecast.NewQuantilePrediction(first.unit, first.target, quantiles, values))
		}
		start = end
	}
	return preds
}

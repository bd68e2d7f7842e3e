// Package golearn converts forecast quantile rows to and from
// github.com/sjwhitworth/golearn/base DenseInstances, so point and quantile forecasts can be
// handed to golearn models as a table.
package golearn

import (
	"fmt"
	"io"
	"math"

	"github.com/sjwhitworth/golearn/base"

	"github.com/wdm0006/forecastio/pkg/forecast"
	"github.com/wdm0006/forecastio/pkg/quantileio"
)

// ToDenseInstances converts the point and quantile elements of d into DenseInstances with the
// columns location, target and type (categorical) and quantile and value (float). value is the
// class attribute. Point rows get a NaN quantile; non-numeric values become NaN.
func ToDenseInstances(d *forecast.JSONIODict) (*base.DenseInstances, error) {
	rows := quantileio.QuantileRowsFromJSONIODict(d)
	header := rows[0]
	attrs := make([]base.Attribute, len(header))
	for i, name := range header {
		switch name {
		case forecast.ColumnQuantile, forecast.ColumnValue:
			attrs[i] = base.NewFloatAttribute(name)
		default:
			ca := base.NewCategoricalAttribute()
			ca.SetName(name)
			attrs[i] = ca
		}
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(len(rows) - 1); err != nil {
		return nil, err
	}

	for r, row := range rows[1:] {
		for c, cell := range row {
			if _, ok := attrs[c].(*base.FloatAttribute); ok {
				x, ok := forecast.ParseValue(cell).Number()
				if !ok {
					x = math.NaN()
				}
				inst.Set(specs[c], r, base.PackFloatToBytes(x))
				continue
			}
			inst.Set(specs[c], r, attrs[c].GetSysValFromString(cell))
		}
	}
	if err := inst.AddClassAttribute(attrs[len(attrs)-1]); err != nil {
		return nil, err
	}
	return inst, nil
}

// RowsFromDenseInstances reads a quantile CSV table (header first) back out of inst. Float
// columns are formatted like CSV cells; NaN quantiles of point rows become empty cells.
func RowsFromDenseInstances(inst *base.DenseInstances) ([][]string, error) {
	attrs := inst.AllAttributes()
	specs := make([]base.AttributeSpec, len(attrs))
	header := make([]string, len(attrs))
	for i, a := range attrs {
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", a.GetName(), err)
		}
		specs[i] = spec
		header[i] = a.GetName()
	}
	rows := [][]string{header}
	_, nrows := inst.Size()
	for r := 0; r < nrows; r++ {
		row := make([]string, len(attrs))
		for c, a := range attrs {
			raw := inst.Get(specs[c], r)
			if a.GetType() == base.Float64Type {
				x := base.UnpackBytesToFloat(raw)
				if math.IsNaN(x) && header[c] == forecast.ColumnQuantile {
					continue
				}
				row[c] = forecast.FormatFloat(x)
				continue
			}
			row[c] = a.GetStringFromSysVal(raw)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FromDenseInstances runs inst through the quantile CSV pipeline.
func FromDenseInstances(inst *base.DenseInstances, validTargets []string, opt quantileio.Options) (*forecast.JSONIODict, []forecast.Message, error) {
	rows, err := RowsFromDenseInstances(inst)
	if err != nil {
		return nil, nil, err
	}
	return quantileio.FromRecords(&sliceReader{rows: rows}, validTargets, opt)
}

type sliceReader struct {
	rows [][]string
	pos  int
}

func (s *sliceReader) Read() ([]string, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	s.pos++
	return s.rows[s.pos-1], nil
}

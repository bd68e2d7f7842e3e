package csvio

import (
	"github.com/wdm0006/forecastio/pkg/forecast"
)

// Column positions in the general CSV shape.
const (
	ColUnit = iota
	ColTarget
	ColClass
	ColValue
	ColCat
	ColProb
	ColSample
	ColQuantile
	ColFamily
	ColParam1
	ColParam2
	ColParam3
	numGeneralCols
)

var generalHeader = [numGeneralCols]string{
	"unit", "target", "class", "value", "cat", "prob", "sample", "quantile", "family", "param1", "param2", "param3",
}

// CSVHeader returns the header of the general CSV shape.
func CSVHeader() []string {
	out := make([]string, numGeneralCols)
	copy(out, generalHeader[:])
	return out
}

// RowsFromJSONIODict flattens every prediction of d into general CSV rows, header first. Bin and
// quantile elements give one row per (cat, prob) or (quantile, value) pair, samples one row per
// sample, named and point elements one row each. The meta section is ignored.
func RowsFromJSONIODict(d *forecast.JSONIODict) [][]string {
	rows := [][]string{CSVHeader()}
	if d == nil {
		return rows
	}
	for _, p := range d.Predictions {
		switch p.Class {
		case forecast.ClassBin:
			if p.Bin == nil {
				continue
			}
			for i := 0; i < min(len(p.Bin.Cat), len(p.Bin.Prob)); i++ {
				r := newRow(p)
				r[ColCat] = p.Bin.Cat[i].String()
				r[ColProb] = p.Bin.Prob[i].String()
				rows = append(rows, r)
			}
		case forecast.ClassNamed:
			if p.Named == nil {
				continue
			}
			r := newRow(p)
			r[ColFamily] = p.Named.Family
			r[ColParam1] = formatParam(p.Named.Param1)
			r[ColParam2] = formatParam(p.Named.Param2)
			r[ColParam3] = formatParam(p.Named.Param3)
			rows = append(rows, r)
		case forecast.ClassPoint:
			if p.Point == nil {
				continue
			}
			r := newRow(p)
			r[ColValue] = p.Point.Value.String()
			rows = append(rows, r)
		case forecast.ClassSample:
			if p.Sample == nil {
				continue
			}
			for _, s := range p.Sample.Sample {
				r := newRow(p)
				r[ColSample] = s.String()
				rows = append(rows, r)
			}
		case forecast.ClassQuantile:
			if p.Quantile == nil {
				continue
			}
			for i := 0; i < min(len(p.Quantile.Quantile), len(p.Quantile.Value)); i++ {
				r := newRow(p)
				r[ColQuantile] = p.Quantile.Quantile[i].String()
				r[ColValue] = p.Quantile.Value[i].String()
				rows = append(rows, r)
			}
		}
	}
	return rows
}

func newRow(p forecast.Prediction) []string {
	r := make([]string, numGeneralCols)
	r[ColUnit] = p.Unit
	r[ColTarget] = p.Target
	r[ColClass] = string(p.Class)
	return r
}

func formatParam(x *float64) string {
	if x == nil {
		return ""
	}
	return forecast.FormatFloat(*x)
}

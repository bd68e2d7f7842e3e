package csvio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/forecastio/pkg/forecast"
)

const docsPredictions = `{
  "meta": {},
  "predictions": [
    {"unit": "location1", "target": "pct next week", "class": "bin",
     "prediction": {"cat": [1.1, 2.2, 3.3], "prob": [0.3, 0.2, 0.5]}},
    {"unit": "location1", "target": "pct next week", "class": "named",
     "prediction": {"family": "norm", "param1": 1.1, "param2": 2.2}},
    {"unit": "location1", "target": "pct next week", "class": "point",
     "prediction": {"value": 2.1}},
    {"unit": "location1", "target": "pct next week", "class": "sample",
     "prediction": {"sample": [2.3, 6.5, 0.0, 10.0234, 0.0001]}},
    {"unit": "location2", "target": "pct next week", "class": "quantile",
     "prediction": {"quantile": [0.025, 0.25, 0.5, 0.75, 0.975], "value": [1.0, 2.2, 2.2, 5.0, 50.0]}},
    {"unit": "location1", "target": "season severity", "class": "point",
     "prediction": {"value": "mild"}},
    {"unit": "location1", "target": "above baseline", "class": "point",
     "prediction": {"value": true}},
    {"unit": "location2", "target": "Season peak week", "class": "point",
     "prediction": {"value": "2019-12-15"}}
  ]
}`

func TestRowsFromJSONIODict(t *testing.T) {
	var d forecast.JSONIODict
	require.NoError(t, json.Unmarshal([]byte(docsPredictions), &d))

	exp := [][]string{
		CSVHeader(),
		{"location1", "pct next week", "bin", "", "1.1", "0.3", "", "", "", "", "", ""},
		{"location1", "pct next week", "bin", "", "2.2", "0.2", "", "", "", "", "", ""},
		{"location1", "pct next week", "bin", "", "3.3", "0.5", "", "", "", "", "", ""},
		{"location1", "pct next week", "named", "", "", "", "", "", "norm", "1.1", "2.2", ""},
		{"location1", "pct next week", "point", "2.1", "", "", "", "", "", "", "", ""},
		{"location1", "pct next week", "sample", "", "", "", "2.3", "", "", "", "", ""},
		{"location1", "pct next week", "sample", "", "", "", "6.5", "", "", "", "", ""},
		{"location1", "pct next week", "sample", "", "", "", "0.0", "", "", "", "", ""},
		{"location1", "pct next week", "sample", "", "", "", "10.0234", "", "", "", "", ""},
		{"location1", "pct next week", "sample", "", "", "", "0.0001", "", "", "", "", ""},
		{"location2", "pct next week", "quantile", "1.0", "", "", "", "0.025", "", "", "", ""},
		{"location2", "pct next week", "quantile", "2.2", "", "", "", "0.25", "", "", "", ""},
		{"location2", "pct next week", "quantile", "2.2", "", "", "", "0.5", "", "", "", ""},
		{"location2", "pct next week", "quantile", "5.0", "", "", "", "0.75", "", "", "", ""},
		{"location2", "pct next week", "quantile", "50.0", "", "", "", "0.975", "", "", "", ""},
		{"location1", "season severity", "point", "mild", "", "", "", "", "", "", "", ""},
		{"location1", "above baseline", "point", "true", "", "", "", "", "", "", "", ""},
		{"location2", "Season peak week", "point", "2019-12-15", "", "", "", "", "", "", "", ""},
	}
	assert.Equal(t, exp, RowsFromJSONIODict(&d))
}

func TestRowsFromJSONIODictEmpty(t *testing.T) {
	assert.Equal(t, [][]string{CSVHeader()}, RowsFromJSONIODict(nil))
	assert.Equal(t, [][]string{CSVHeader()}, RowsFromJSONIODict(forecast.NewJSONIODict(nil)))
}

func TestRowsFromJSONIODictMismatchedBin(t *testing.T) {
	d := forecast.NewJSONIODict([]forecast.Prediction{{
		Unit: "u", Target: "t", Class: forecast.ClassBin,
		Bin: &forecast.BinPrediction{
			Cat:  []forecast.Value{forecast.String("a"), forecast.String("b")},
			Prob: []forecast.Value{forecast.Float(1)},
		},
	}})
	rows := RowsFromJSONIODict(d)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[1][ColCat])
	assert.Equal(t, "1.0", rows[1][ColProb])
}

func TestCSVHeaderIsCopy(t *testing.T) {
	h := CSVHeader()
	h[0] = "changed"
	assert.Equal(t, "unit", CSVHeader()[0])
}

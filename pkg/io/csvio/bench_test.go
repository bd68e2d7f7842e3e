package csvio

import (
	"strconv"
	"strings"
	"testing"

	"github.com/wdm0006/forecastio/pkg/forecast"
)

func benchDict(n int) *forecast.JSONIODict {
	qs := []forecast.Value{forecast.Float(0.025), forecast.Float(0.5), forecast.Float(0.975)}
	preds := make([]forecast.Prediction, 0, 2*n)
	for i := 0; i < n; i++ {
		unit := strconv.Itoa(i)
		preds = append(preds,
			forecast.NewPointPrediction(unit, "1 wk ahead inc death", forecast.Float(float64(i))),
			forecast.NewQuantilePrediction(unit, "1 wk ahead inc death", qs,
				[]forecast.Value{forecast.Int(1), forecast.Int(2), forecast.Int(3)}))
	}
	return forecast.NewJSONIODict(preds)
}

func BenchmarkRowsFromJSONIODict(b *testing.B) {
	d := benchDict(1000)
	for n := 0; n < b.N; n++ {
		if rows := RowsFromJSONIODict(d); len(rows) != 4001 {
			b.Fatalf("rows=%d", len(rows))
		}
	}
}

func BenchmarkWrite(b *testing.B) {
	rows := RowsFromJSONIODict(benchDict(1000))
	for n := 0; n < b.N; n++ {
		var sb strings.Builder
		if err := Write(&sb, rows, WriterOptions{}); err != nil {
			b.Fatal(err)
		}
	}
}

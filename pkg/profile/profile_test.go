package profile

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/forecastio/pkg/forecast"
)

func fixture() *forecast.JSONIODict {
	f := forecast.Float
	return forecast.NewJSONIODict([]forecast.Prediction{
		forecast.NewPointPrediction("location1", "pct next week", f(2.1)),
		forecast.NewPointPrediction("location2", "pct next week", forecast.Int(5)),
		forecast.NewPointPrediction("location3", "pct next week", f(math.NaN())),
		forecast.NewQuantilePrediction("location2", "pct next week",
			[]forecast.Value{f(0.025), f(0.5), f(0.975)}, []forecast.Value{f(1), f(2.2), f(50)}),
		forecast.NewPointPrediction("location1", "season severity", forecast.String("mild")),
		forecast.NewPointPrediction("location1", "above baseline", forecast.Bool(true)),
		{Unit: "location1", Target: "pct next week", Class: forecast.ClassSample,
			Sample: &forecast.SamplePrediction{Sample: []forecast.Value{f(1)}}},
	})
}

func TestCollector(t *testing.T) {
	c := NewCollector(2)
	c.ConsumeDict(fixture())
	c.ConsumeDict(nil)

	rep := c.ReportJSON()
	assert.Equal(t, 7, rep.Predictions)
	assert.Equal(t, map[forecast.Class]int{
		forecast.ClassPoint: 5, forecast.ClassQuantile: 1, forecast.ClassSample: 1,
	}, rep.Classes)
	assert.Equal(t, 3, rep.Units.Distinct)
	require.Len(t, rep.Units.Top, 2)
	assert.Equal(t, kv{"location1", 4}, rep.Units.Top[0])
	assert.Equal(t, kv{"location2", 2}, rep.Units.Top[1])

	require.NotNil(t, rep.PointNumeric)
	assert.Equal(t, 2, rep.PointNumeric.Count)
	assert.Equal(t, 1, rep.PointNumeric.Nulls)
	assert.Equal(t, 2.1, rep.PointNumeric.Min)
	assert.Equal(t, 5.0, rep.PointNumeric.Max)

	require.NotNil(t, rep.PointBool)
	assert.Equal(t, 1, rep.PointBool.True)
	require.NotNil(t, rep.PointText)
	assert.Equal(t, 1, rep.PointText.Count)

	require.NotNil(t, rep.QuantileValues)
	assert.Equal(t, 3, rep.QuantileValues.Count)
	assert.InDelta(t, 53.2, rep.QuantileValues.Sum, 1e-9)
	require.NotNil(t, rep.QuantileLevels)
	assert.Equal(t, 3, rep.QuantileLevels.Distinct)

	_, err := json.Marshal(rep)
	assert.NoError(t, err)
}

func TestReportText(t *testing.T) {
	c := NewCollector(0)
	c.ConsumeDict(fixture())
	txt := c.ReportText()
	assert.Contains(t, txt, "Profile Summary\n")
	assert.Contains(t, txt, "- predictions: 7\n")
	assert.Contains(t, txt, "  - point: 5\n")
	assert.Contains(t, txt, "- point values (numeric): count=2 nulls=1 min=2.1 max=5 mean=3.55\n")
	assert.Contains(t, txt, "- point values (bool): count=1 true=1 false=0\n")
	assert.Contains(t, txt, `  * "location1": 4`)
}

func TestEmptyReport(t *testing.T) {
	rep := NewCollector(5).ReportJSON()
	assert.Zero(t, rep.Predictions)
	assert.Nil(t, rep.PointNumeric)
	assert.Nil(t, rep.QuantileValues)
}

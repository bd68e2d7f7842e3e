package covid19

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/forecastio/pkg/forecast"
	"github.com/wdm0006/forecastio/pkg/quantileio"
)

// column layout of a typical hub submission
var hubIndex = quantileio.ColumnIndex{
	"forecast_date": 0, "target": 1, "target_end_date": 2, "location": 3, "location_name": 4,
	"type": 5, "quantile": 6, "value": 7,
}

func hubRow(forecastDate, target, targetEndDate string) []string {
	return []string{forecastDate, target, targetEndDate, "01", "Alabama", "point", "NA", "45.8"}
}

func TestTargets(t *testing.T) {
	targets := Targets()
	assert.Len(t, targets, 131+40+8)
	assert.Contains(t, targets, "0 day ahead inc hosp")
	assert.Contains(t, targets, "130 day ahead inc hosp")
	assert.Contains(t, targets, "20 wk ahead cum death")
	assert.Contains(t, targets, "8 wk ahead inc case")
	assert.NotContains(t, targets, "9 wk ahead inc case")
}

func TestQuantileSets(t *testing.T) {
	qs := Quantiles("1 wk ahead inc death")
	assert.Len(t, qs, 23)
	assert.Equal(t, 0.01, qs[0])
	assert.Contains(t, qs, 0.15)
	assert.Equal(t, 0.99, qs[22])
	assert.Equal(t, []float64{0.025, 0.1, 0.25, 0.5, 0.75, 0.9, 0.975}, Quantiles("2 wk ahead inc case"))
}

func TestLocations(t *testing.T) {
	assert.Len(t, StateLocations(), 58)
	assert.True(t, IsStateLocation("US"))
	assert.True(t, IsStateLocation("06"))
	assert.False(t, IsStateLocation("03"))
	assert.False(t, IsStateLocation("6"))
	assert.True(t, IsCountyLocation("06037"))
	assert.False(t, IsCountyLocation("03037"))
	assert.False(t, IsCountyLocation("0603"))
	assert.False(t, IsCountyLocation("06000"))
	assert.False(t, IsCountyLocation("0603x"))
}

func TestDateAlignment(t *testing.T) {
	cases := []struct {
		name          string
		forecastDate  string
		target        string
		targetEndDate string
		priority      forecast.Priority
		wantSubstring string
	}{
		{"day ahead +1", "2020-04-13", "1 day ahead inc hosp", "2020-04-14", 0, ""},
		{"day ahead +2", "2020-04-13", "2 day ahead inc hosp", "2020-04-15", 0, ""},
		{"day ahead off by one", "2020-04-13", "1 day ahead inc hosp", "2020-04-15",
			forecast.PriorityForecastChecks, "invalid target_end_date: was not 1 day(s) after forecast_date"},
		{"mon to sat", "2020-04-13", "1 wk ahead cum death", "2020-04-18", 0, ""},
		{"mon to next sat", "2020-04-13", "2 wk ahead cum death", "2020-04-25", 0, ""},
		{"sunday end", "2020-04-13", "1 wk ahead cum death", "2020-04-19",
			forecast.PriorityDateAlignment, "target_end_date was not a Saturday"},
		{"sun to sat", "2020-04-12", "1 wk ahead cum death", "2020-04-18", 0, ""},
		{"tue to this sat", "2020-04-14", "1 wk ahead cum death", "2020-04-18",
			forecast.PriorityDateAlignment, "target_end_date was not the expected Saturday"},
		{"2 wk mon to this sat", "2020-04-13", "2 wk ahead cum death", "2020-04-18",
			forecast.PriorityDateAlignment, "target_end_date was not the expected Saturday"},
		{"tue to next sat", "2020-04-14", "1 wk ahead cum death", "2020-04-25", 0, ""},
		{"2 wk tue to next sat", "2020-04-14", "2 wk ahead cum death", "2020-04-25",
			forecast.PriorityDateAlignment, "target_end_date was not the expected Saturday"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msgs := RowValidator(hubIndex, hubRow(tc.forecastDate, tc.target, tc.targetEndDate))
			if tc.wantSubstring == "" {
				assert.Empty(t, msgs)
				return
			}
			require.Len(t, msgs, 1)
			assert.Equal(t, tc.priority, msgs[0].Priority)
			assert.Contains(t, msgs[0].Text, tc.wantSubstring)
		})
	}
}

func TestDateFormat(t *testing.T) {
	msgs := RowValidator(hubIndex, hubRow("2020/04/13", "1 day ahead inc hosp", "2020-04-14"))
	require.Len(t, msgs, 1)
	assert.Equal(t, forecast.PriorityForecastChecks, msgs[0].Priority)
	assert.Contains(t, msgs[0].Text, "invalid forecast_date or target_end_date format")
}

func TestExpectedTargetEndDate(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse(forecast.DateFormat, s)
		require.NoError(t, err)
		return d
	}
	assert.Equal(t, day("2020-04-18"), ExpectedTargetEndDate(day("2020-04-12"), 1))
	assert.Equal(t, day("2020-04-25"), ExpectedTargetEndDate(day("2020-04-13"), 2))
	assert.Equal(t, day("2020-04-25"), ExpectedTargetEndDate(day("2020-04-18"), 1))
}

func TestQuantileMembership(t *testing.T) {
	row := []string{"2020-04-13", "1 day ahead inc hosp", "2020-04-14", "01", "Alabama", "quantile", "0.1", "18.04"}
	assert.Empty(t, RowValidator(hubIndex, row))

	row[6] = "0.100"
	assert.Empty(t, RowValidator(hubIndex, row))

	row[6] = "0.11"
	msgs := RowValidator(hubIndex, row)
	require.Len(t, msgs, 1)
	assert.Equal(t, forecast.PriorityForecastChecks, msgs[0].Priority)
	assert.Contains(t, msgs[0].Text, `invalid quantile for target. quantile="0.11"`)

	caseRow := []string{"2020-04-13", "1 wk ahead inc case", "2020-04-18", "01", "Alabama", "quantile", "0.05", "3"}
	msgs = RowValidator(hubIndex, caseRow)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "invalid quantile for target")
}

func TestNonNegativeValue(t *testing.T) {
	ci := quantileio.ColumnIndex{
		"forecast_date": 0, "location": 1, "location_name": 2, "target": 3, "type": 4,
		"target_end_date": 5, "quantile": 6, "value": 7,
	}
	row := []string{"2020-05-17", "01", "Alabama", "1 day ahead inc hosp", "quantile", "2020-05-18", "0.010", "-29.86"}
	msgs := RowValidator(ci, row)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "entries in the `value` column must be non-negative")

	row = []string{"2020-06-21", "2 day ahead inc hosp", "2020-06-23", "31", "Nebraska", "Point", "NA", "-0.024"}
	msgs = RowValidator(hubIndex, row)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "entries in the `value` column must be non-negative")
}

func TestLocationForTarget(t *testing.T) {
	for _, loc := range []string{"1", "001", "03"} {
		row := []string{"2020-04-13", "1 day ahead inc hosp", "2020-04-14", loc, "x", "point", "NA", "1"}
		msgs := RowValidator(hubIndex, row)
		require.Len(t, msgs, 1, loc)
		assert.Contains(t, msgs[0].Text, "invalid location for target")
	}

	county := []string{"2020-04-13", "1 wk ahead inc case", "2020-04-18", "06037", "Los Angeles", "point", "NA", "1"}
	assert.Empty(t, RowValidator(hubIndex, county))

	county[1] = "1 wk ahead inc death"
	msgs := RowValidator(hubIndex, county)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "invalid location for target")
}

func TestConfig(t *testing.T) {
	v := NewRowValidator(Config{ExtraLocations: []string{"XX"}, SkipDateAlignment: true})
	row := []string{"2020-04-13", "1 day ahead inc hosp", "2020-05-01", "XX", "x", "point", "NA", "1"}
	assert.Empty(t, v(hubIndex, row))
}

func TestWithoutDateColumns(t *testing.T) {
	ci := quantileio.ColumnIndex{"location": 0, "target": 1, "type": 2, "quantile": 3, "value": 4}
	assert.Empty(t, RowValidator(ci, []string{"US", "1 wk ahead cum death", "point", "NA", "10"}))
}

const hubCSV = `forecast_date,target,target_end_date,location,location_name,type,quantile,value
2020-04-13,1 wk ahead cum death,2020-04-18,US,US,point,NA,1000
2020-04-13,1 wk ahead cum death,2020-04-18,US,US,quantile,0.025,900
2020-04-13,1 wk ahead cum death,2020-04-18,US,US,quantile,0.5,1000
2020-04-13,1 wk ahead cum death,2020-04-18,US,US,quantile,0.975,1200
2020-04-13,1 day ahead inc hosp,2020-04-14,06,California,point,NA,45.8
`

func TestPipeline(t *testing.T) {
	d, msgs, err := quantileio.FromQuantileCSV(strings.NewReader(hubCSV), Targets(), quantileio.Options{
		RowValidator:              RowValidator,
		AdditionalRequiredColumns: AdditionalRequiredColumns(),
	})
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Len(t, d.Predictions, 3)

	bad := strings.Replace(hubCSV, "2020-04-13,1 day ahead", "2020-04-13x,1 day ahead", 1)
	_, msgs, err = quantileio.FromQuantileCSV(strings.NewReader(bad), Targets(), quantileio.Options{
		RowValidator:              RowValidator,
		AdditionalRequiredColumns: AdditionalRequiredColumns(),
	})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "invalid forecast_date or target_end_date format")
}

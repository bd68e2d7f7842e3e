// Package covid19 holds the target, quantile and location rules of the COVID-19 forecast hub
// and a row validator enforcing them.
package covid19

import (
	"fmt"
	"strings"
)

// Additional required columns of hub submission files.
const (
	ColumnForecastDate  = "forecast_date"
	ColumnTargetEndDate = "target_end_date"
	ColumnLocationName  = "location_name"
)

// AdditionalRequiredColumns returns the columns hub files carry on top of the base columns.
func AdditionalRequiredColumns() []string {
	return []string{ColumnForecastDate, ColumnTargetEndDate, ColumnLocationName}
}

const (
	maxDayAheadHosp   = 130
	maxWeekAheadDeath = 20
	maxWeekAheadCase  = 8
)

// Targets returns every valid hub target name: day-ahead hospitalizations, week-ahead deaths
// (incident and cumulative) and week-ahead incident cases.
func Targets() []string {
	out := make([]string, 0, maxDayAheadHosp+1+2*maxWeekAheadDeath+maxWeekAheadCase)
	for n := 0; n <= maxDayAheadHosp; n++ {
		out = append(out, fmt.Sprintf("%d day ahead inc hosp", n))
	}
	for n := 1; n <= maxWeekAheadDeath; n++ {
		out = append(out, fmt.Sprintf("%d wk ahead inc death", n), fmt.Sprintf("%d wk ahead cum death", n))
	}
	for n := 1; n <= maxWeekAheadCase; n++ {
		out = append(out, fmt.Sprintf("%d wk ahead inc case", n))
	}
	return out
}

// IsCaseTarget reports whether target is an incident case target.
func IsCaseTarget(target string) bool { return strings.HasSuffix(target, " inc case") }

// nonCaseQuantiles: 0.01, 0.025, 0.05 through 0.95 by 0.05, 0.975, 0.99.
var nonCaseQuantiles = func() []float64 {
	qs := []float64{0.01, 0.025}
	for i := 1; i <= 19; i++ {
		// i*5/100 keeps the steps exact (0.15, not 0.15000000000000002)
		qs = append(qs, float64(i*5)/100)
	}
	return append(qs, 0.975, 0.99)
}()

var caseQuantiles = []float64{0.025, 0.1, 0.25, 0.5, 0.75, 0.9, 0.975}

// Quantiles returns the quantiles allowed for target.
func Quantiles(target string) []float64 {
	src := nonCaseQuantiles
	if IsCaseTarget(target) {
		src = caseQuantiles
	}
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

func validQuantileFor(target string, q float64) bool {
	src := nonCaseQuantiles
	if IsCaseTarget(target) {
		src = caseQuantiles
	}
	for _, x := range src {
		if x == q {
			return true
		}
	}
	return false
}

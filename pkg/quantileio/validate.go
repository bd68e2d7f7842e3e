package quantileio

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wdm0006/forecastio/pkg/forecast"
)

// RelTolerance is the relative tolerance used when checking that quantile values do not
// decrease.
const RelTolerance = 1e-05

// maxListedTuples caps how many offending (unit, target, ...) tuples a group-level message lists.
const maxListedTuples = 10

type unitTarget struct {
	unit   string
	target string
}

// ValidatePredictions runs the quantile element checks on every quantile element and the
// cross-element checks over each (unit, target) pair.
func ValidatePredictions(preds []forecast.Prediction) []forecast.Message {
	var msgs []forecast.Message
	var order []unitTarget
	classes := map[unitTarget][]forecast.Class{}
	for _, p := range preds {
		k := unitTarget{unit: p.Unit, target: p.Target}
		if _, ok := classes[k]; !ok {
			order = append(order, k)
		}
		classes[k] = append(classes[k], p.Class)
		if p.Class == forecast.ClassQuantile && p.Quantile != nil {
			msgs = append(msgs, validateQuantilePrediction(p)...)
		}
	}

	var dups []string
	for _, k := range order {
		cs := classes[k]
		if hasDuplicateClass(cs) {
			names := make([]string, len(cs))
			for i, c := range cs {
				names[i] = string(c)
			}
			dups = append(dups, fmt.Sprintf("(%q, %q, %q)", k.unit, k.target, names))
		}
	}
	if len(dups) > 0 {
		msgs = append(msgs, forecast.Messagef(forecast.PriorityQuantilesAndValues,
			"Within a Prediction, there cannot be more than 1 Prediction Element of the same class. "+
				"Found these duplicate unit/target/classes tuples: %s", truncatedList(dups)))
	}

	var counts []string
	for _, k := range order {
		n := 0
		for _, c := range classes[k] {
			if c == forecast.ClassPoint {
				n++
			}
		}
		if n != 1 {
			counts = append(counts, fmt.Sprintf("(%q, %q, %d)", k.unit, k.target, n))
		}
	}
	if len(counts) > 0 {
		msgs = append(msgs, forecast.Messagef(forecast.PriorityQuantilesAsAGroup,
			"There must be exactly one point prediction for each location/target pair. "+
				"Found these unit, target, point counts tuples did not have exactly one point: %s", truncatedList(counts)))
	}
	return msgs
}

func validateQuantilePrediction(p forecast.Prediction) []forecast.Message {
	quantiles, values := p.Quantile.Quantile, p.Quantile.Value
	if len(quantiles) != len(values) {
		// the remaining checks pair quantiles with values by position
		return []forecast.Message{forecast.Messagef(forecast.PriorityQuantilesAndValues,
			"The number of elements in the `quantile` and `value` vectors should be identical. "+
				"|quantile|=%d, |value|=%d, unit=%q, target=%q", len(quantiles), len(values), p.Unit, p.Target)}
	}

	var msgs []forecast.Message
	if !uniqueValues(quantiles) {
		msgs = append(msgs, forecast.Messagef(forecast.PriorityQuantilesAndValues,
			"`quantile`s must be unique. quantile column=%s, unit=%q, target=%q", formatValues(quantiles), p.Unit, p.Target))
	}

	type pair struct{ q, v forecast.Value }
	pairs := make([]pair, len(quantiles))
	for i := range quantiles {
		pairs[i] = pair{quantiles[i], values[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return lessNaNLast(pairs[i].q.Float64(), pairs[j].q.Float64())
	})
	sortedValues := make([]forecast.Value, len(pairs))
	for i, pr := range pairs {
		sortedValues[i] = pr.v
	}

	isLE := make([]bool, 0, len(sortedValues))
	ok := true
	for i := 1; i < len(sortedValues); i++ {
		le := leWithTolerance(sortedValues[i-1].Float64(), sortedValues[i].Float64())
		isLE = append(isLE, le)
		ok = ok && le
	}
	if !ok {
		msgs = append(msgs, forecast.Messagef(forecast.PriorityQuantilesAndValues,
			"Entries in `value` must be non-decreasing as quantiles increase. value column=%s, is_le_values=%v, unit=%q, target=%q",
			formatValues(sortedValues), isLE, p.Unit, p.Target))
	}
	return msgs
}

// leWithTolerance is a <= b, also accepting a slightly larger a when the two are close within
// RelTolerance.
func leWithTolerance(a, b float64) bool {
	return isClose(a, b, RelTolerance) || a <= b
}

// isClose is a relative closeness test with no absolute tolerance. NaN is never close to
// anything and an infinity is only close to itself.
func isClose(a, b, relTol float64) bool {
	if a == b {
		return true
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	diff := math.Abs(b - a)
	return diff <= math.Abs(relTol*b) || diff <= math.Abs(relTol*a)
}

func lessNaNLast(a, b float64) bool {
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	return a < b
}

func uniqueValues(vs []forecast.Value) bool {
	seen := make(map[any]struct{}, len(vs))
	for _, v := range vs {
		k := valueKey(v)
		if _, ok := seen[k]; ok {
			return false
		}
		seen[k] = struct{}{}
	}
	return true
}

// valueKey makes 1 and 1.0 collide while keeping non-numbers apart from numbers.
func valueKey(v forecast.Value) any {
	if x, ok := v.Number(); ok {
		return x
	}
	return v.Kind().String() + ":" + v.String()
}

func hasDuplicateClass(cs []forecast.Class) bool {
	seen := make(map[forecast.Class]struct{}, len(cs))
	for _, c := range cs {
		if _, ok := seen[c]; ok {
			return true
		}
		seen[c] = struct{}{}
	}
	return false
}

func truncatedList(items []string) string {
	if len(items) > maxListedTuples {
		items = append(items[:maxListedTuples:maxListedTuples], "...")
	}
	return "[" + strings.Join(items, ", ") + "]"
}

func formatValues(vs []forecast.Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		if !v.IsValid() {
			parts[i] = "NA"
			continue
		}
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

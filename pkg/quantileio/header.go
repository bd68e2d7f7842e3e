package quantileio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wdm0006/forecastio/pkg/forecast"
)

// ColumnIndex maps a header column name to its position in every row of the file.
type ColumnIndex map[string]int

// Cell returns the cell of row under column name.
func (ci ColumnIndex) Cell(row []string, name string) (string, bool) {
	i, ok := ci[name]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}

// HeaderError reports a header whose column set is not exactly the required set.
type HeaderError struct {
	Diff     []string
	Header   []string
	Required []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("invalid header. did not exactly contain the required columns. diff=%q, header=%q, required_columns=%q",
		e.Diff, e.Header, e.Required)
}

// ValidateHeader checks header against the base required columns plus addlReqCols. Column order
// is free but the header must hold exactly the required set with no duplicates.
func ValidateHeader(header []string, addlReqCols []string) (ColumnIndex, error) {
	required := append(forecast.RequiredColumns(), addlReqCols...)
	reqSet := toSet(required)
	headerSet := toSet(header)
	if len(header) != len(required) || !sameSet(headerSet, reqSet) {
		return nil, &HeaderError{
			Diff:     symmetricDiff(headerSet, reqSet),
			Header:   sortedKeys(headerSet),
			Required: sortedKeys(reqSet),
		}
	}
	ci := make(ColumnIndex, len(header))
	for i, name := range header {
		if _, seen := ci[name]; !seen {
			ci[name] = i
		}
	}
	return ci, nil
}

// cleanHeader copies the header record and strips a UTF-8 BOM from the first cell.
func cleanHeader(rec []string) []string {
	out := make([]string, len(rec))
	copy(out, rec)
	if len(out) > 0 {
		out[0] = strings.TrimPrefix(out[0], "\ufeff")
	}
	return out
}

func toSet(xs []string) map[string]struct{} {
	m := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func symmetricDiff(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package quantileio

import (
	"sort"

	"github.com/wdm0006/forecastio/pkg/forecast"
)

// DefaultMaxNumDups is the number of similar messages Summarize keeps per group.
const DefaultMaxNumDups = 10

// similarPrefixLen is how many leading characters make two messages "similar".
const similarPrefixLen = 20

// Summarize orders messages by (priority, text) and keeps at most maxNumDups messages per group
// of messages sharing their first 20 characters. A group that lost messages is followed by its
// prefix plus "...". maxNumDups <= 0 means DefaultMaxNumDups.
func Summarize(msgs []forecast.Message, maxNumDups int) []string {
	if maxNumDups <= 0 {
		maxNumDups = DefaultMaxNumDups
	}
	sorted := make([]forecast.Message, len(msgs))
	copy(sorted, msgs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	var keys []string
	kept := map[string][]string{}
	total := map[string]int{}
	for _, m := range sorted {
		key := prefix(m.Text, similarPrefixLen)
		if _, ok := total[key]; !ok {
			keys = append(keys, key)
		}
		total[key]++
		if len(kept[key]) < maxNumDups {
			kept[key] = append(kept[key], m.Text)
		}
	}

	out := make([]string, 0, len(sorted))
	for _, key := range keys {
		out = append(out, kept[key]...)
		if total[key] > maxNumDups {
			out = append(out, key+"...")
		}
	}
	return out
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

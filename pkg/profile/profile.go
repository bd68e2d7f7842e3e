// Package profile summarizes the contents of JSON IO dicts.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wdm0006/forecastio/pkg/forecast"
)

type NumStats struct {
	Count int     `json:"count"`
	Nulls int     `json:"nulls"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
}

func newNumStats() *NumStats { return &NumStats{Min: math.Inf(1), Max: math.Inf(-1)} }

// add counts non-numbers and non-finite numbers as nulls.
func (s *NumStats) add(v forecast.Value) {
	x, ok := v.Number()
	if !ok || math.IsNaN(x) || math.IsInf(x, 0) {
		s.Nulls++
		return
	}
	s.Count++
	s.Min = math.Min(s.Min, x)
	s.Max = math.Max(s.Max, x)
	s.Sum += x
}

func (s *NumStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

type BoolStats struct {
	Count int `json:"count"`
	True  int `json:"true"`
	False int `json:"false"`
}

type StringStats struct {
	Count int            `json:"count"`
	Freqs map[string]int `json:"-"`
}

func newStringStats() *StringStats { return &StringStats{Freqs: make(map[string]int)} }

func (s *StringStats) add(v string) {
	s.Count++
	s.Freqs[v]++
}

type kv struct {
	K string `json:"value"`
	V int    `json:"count"`
}

// top returns the n most frequent values, ties broken by value. n <= 0 means all.
func (s *StringStats) top(n int) []kv {
	arr := make([]kv, 0, len(s.Freqs))
	for k, v := range s.Freqs {
		arr = append(arr, kv{k, v})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].V != arr[j].V {
			return arr[i].V > arr[j].V
		}
		return arr[i].K < arr[j].K
	})
	if n > 0 && n < len(arr) {
		arr = arr[:n]
	}
	return arr
}

// Collector accumulates statistics over any number of JSON IO dicts.
type Collector struct {
	topK           int
	predictions    int
	classes        map[forecast.Class]int
	units          *StringStats
	targets        *StringStats
	pointNum       *NumStats
	pointBool      *BoolStats
	pointText      *StringStats
	quantileValues *NumStats
	quantileLevels *StringStats
}

func NewCollector(topK int) *Collector {
	return &Collector{
		topK:           topK,
		classes:        make(map[forecast.Class]int),
		units:          newStringStats(),
		targets:        newStringStats(),
		pointNum:       newNumStats(),
		pointBool:      &BoolStats{},
		pointText:      newStringStats(),
		quantileValues: newNumStats(),
		quantileLevels: newStringStats(),
	}
}

func (c *Collector) ConsumeDict(d *forecast.JSONIODict) {
	if d == nil {
		return
	}
	for _, p := range d.Predictions {
		c.Consume(p)
	}
}

func (c *Collector) Consume(p forecast.Prediction) {
	c.predictions++
	c.classes[p.Class]++
	c.units.add(p.Unit)
	c.targets.add(p.Target)
	switch {
	case p.Point != nil:
		v := p.Point.Value
		switch v.Kind() {
		case forecast.KindBool:
			c.pointBool.Count++
			if v.String() == "true" {
				c.pointBool.True++
			} else {
				c.pointBool.False++
			}
		case forecast.KindString, forecast.KindDate:
			c.pointText.add(v.String())
		default:
			c.pointNum.add(v)
		}
	case p.Quantile != nil:
		for _, q := range p.Quantile.Quantile {
			c.quantileLevels.add(q.String())
		}
		for _, v := range p.Quantile.Value {
			c.quantileValues.add(v)
		}
	}
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	b.WriteString("Profile Summary\n")
	fmt.Fprintf(&b, "- predictions: %d\n", c.predictions)
	for _, cl := range c.sortedClasses() {
		fmt.Fprintf(&b, "  - %s: %d\n", cl, c.classes[cl])
	}
	c.writeFreqs(&b, "units", c.units)
	c.writeFreqs(&b, "targets", c.targets)
	writeNum(&b, "point values (numeric)", c.pointNum)
	if c.pointBool.Count > 0 {
		fmt.Fprintf(&b, "- point values (bool): count=%d true=%d false=%d\n", c.pointBool.Count, c.pointBool.True, c.pointBool.False)
	}
	if c.pointText.Count > 0 {
		c.writeFreqs(&b, "point values (text)", c.pointText)
	}
	writeNum(&b, "quantile values", c.quantileValues)
	if c.quantileLevels.Count > 0 {
		c.writeFreqs(&b, "quantile levels", c.quantileLevels)
	}
	return b.String()
}

func (c *Collector) writeFreqs(b *strings.Builder, name string, s *StringStats) {
	fmt.Fprintf(b, "- %s: count=%d distinct=%d\n", name, s.Count, len(s.Freqs))
	for _, e := range s.top(c.topK) {
		fmt.Fprintf(b, "  * %q: %d\n", e.K, e.V)
	}
}

func writeNum(b *strings.Builder, name string, s *NumStats) {
	if s.Count == 0 && s.Nulls == 0 {
		return
	}
	if s.Count == 0 {
		fmt.Fprintf(b, "- %s: count=0 nulls=%d\n", name, s.Nulls)
		return
	}
	fmt.Fprintf(b, "- %s: count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n", name, s.Count, s.Nulls, s.Min, s.Max, s.Mean())
}

func (c *Collector) sortedClasses() []forecast.Class {
	out := make([]forecast.Class, 0, len(c.classes))
	for cl := range c.classes {
		out = append(out, cl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type JSONProfile struct {
	Predictions    int                    `json:"predictions"`
	Classes        map[forecast.Class]int `json:"classes"`
	Units          JSONFreqs              `json:"units"`
	Targets        JSONFreqs              `json:"targets"`
	PointNumeric   *NumStats              `json:"point_numeric,omitempty"`
	PointBool      *BoolStats             `json:"point_bool,omitempty"`
	PointText      *JSONFreqs             `json:"point_text,omitempty"`
	QuantileValues *NumStats              `json:"quantile_values,omitempty"`
	QuantileLevels *JSONFreqs             `json:"quantile_levels,omitempty"`
}

type JSONFreqs struct {
	Count    int  `json:"count"`
	Distinct int  `json:"distinct"`
	Top      []kv `json:"top,omitempty"`
}

func (c *Collector) freqs(s *StringStats) JSONFreqs {
	return JSONFreqs{Count: s.Count, Distinct: len(s.Freqs), Top: s.top(c.topK)}
}

// ReportJSON returns the profile in a JSON-friendly shape. Empty sections are omitted; numeric
// sections without numbers report zero bounds instead of infinities.
func (c *Collector) ReportJSON() JSONProfile {
	out := JSONProfile{
		Predictions: c.predictions,
		Classes:     c.classes,
		Units:       c.freqs(c.units),
		Targets:     c.freqs(c.targets),
	}
	out.PointNumeric = jsonNum(c.pointNum)
	if c.pointBool.Count > 0 {
		out.PointBool = c.pointBool
	}
	if c.pointText.Count > 0 {
		f := c.freqs(c.pointText)
		out.PointText = &f
	}
	out.QuantileValues = jsonNum(c.quantileValues)
	if c.quantileLevels.Count > 0 {
		f := c.freqs(c.quantileLevels)
		out.QuantileLevels = &f
	}
	return out
}

func jsonNum(s *NumStats) *NumStats {
	if s.Count == 0 && s.Nulls == 0 {
		return nil
	}
	cp := *s
	if cp.Count == 0 {
		cp.Min, cp.Max = 0, 0
	}
	return &cp
}

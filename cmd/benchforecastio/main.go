package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/wdm0006/forecastio/pkg/covid19"
	"github.com/wdm0006/forecastio/pkg/forecast"
	"github.com/wdm0006/forecastio/pkg/quantileio"
)

// genSource emits a hub-shaped quantile CSV: one point row and a full quantile set per
// (location, target), with values drawn around a random level.
type genSource struct {
	header    []string
	units     []string
	targets   []string
	quantiles []float64
	fdate     time.Time
	badp      float64
	rnd       *rand.Rand

	u, t, q   int
	level     float64
	sentHead  bool
	generated int
}

func (g *genSource) Read() ([]string, error) {
	if !g.sentHead {
		g.sentHead = true
		return g.header, nil
	}
	if g.u >= len(g.units) {
		return nil, io.EOF
	}
	unit, target := g.units[g.u], g.targets[g.t]
	weeks := g.t + 1
	end := covid19.ExpectedTargetEndDate(g.fdate, weeks).Format(forecast.DateFormat)
	fd := g.fdate.Format(forecast.DateFormat)

	var row []string
	if g.q == 0 {
		g.level = 100 + g.rnd.Float64()*1000
		row = []string{unit, target, "point", "NA", strconv.FormatFloat(g.level, 'f', 2, 64), fd, end, unit}
	} else {
		qv := g.quantiles[g.q-1]
		v := g.level * (0.5 + qv)
		if g.rnd.Float64() < g.badp {
			v = -v
		}
		row = []string{unit, target, "quantile", strconv.FormatFloat(qv, 'f', -1, 64), strconv.FormatFloat(v, 'f', 2, 64), fd, end, unit}
	}
	g.generated++

	g.q++
	if g.q > len(g.quantiles) {
		g.q = 0
		g.t++
		if g.t >= len(g.targets) {
			g.t = 0
			g.u++
		}
	}
	return row, nil
}

func main() {
	var (
		weeks     = flag.Int("weeks", 4, "week-ahead inc case targets per location (1-8)")
		counties  = flag.Int("counties", 50, "county locations per state")
		validator = flag.String("row-validator", "covid19", "none|covid19")
		badp      = flag.Float64("bad", 0.0, "probability of a negative quantile value")
		jsonOut   = flag.Bool("json", false, "emit JSON summary")
		seed      = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()
	if *weeks < 1 || *weeks > 8 {
		fmt.Fprintln(os.Stderr, "weeks must be in [1, 8]")
		os.Exit(2)
	}

	var targets []string
	for w := 1; w <= *weeks; w++ {
		targets = append(targets, fmt.Sprintf("%d wk ahead inc case", w))
	}
	units := covid19.StateLocations()
	for _, state := range covid19.StateLocations() {
		if state == covid19.LocationUS {
			continue
		}
		for i := 1; i <= *counties && i < 1000; i++ {
			units = append(units, fmt.Sprintf("%s%03d", state, i))
		}
	}

	opt := quantileio.Options{AdditionalRequiredColumns: covid19.AdditionalRequiredColumns()}
	switch *validator {
	case "none":
	case "covid19":
		opt.RowValidator = covid19.RowValidator
	default:
		fmt.Fprintf(os.Stderr, "unknown row validator %q\n", *validator)
		os.Exit(2)
	}

	src := &genSource{
		header:    append(forecast.RequiredColumns(), covid19.AdditionalRequiredColumns()...),
		units:     units,
		targets:   targets,
		quantiles: covid19.Quantiles(targets[0]),
		fdate:     time.Date(2020, 4, 13, 0, 0, 0, 0, time.UTC),
		badp:      *badp,
		rnd:       rand.New(rand.NewSource(*seed)),
	}

	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()
	d, msgs, err := quantileio.FromRecords(src, covid19.Targets(), opt)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)

	rowsPerSec := float64(src.generated) / elapsed.Seconds()
	summary := map[string]any{
		"rows":                  src.generated,
		"predictions":           len(d.Predictions),
		"messages":              len(msgs),
		"elapsed_ms":            elapsed.Milliseconds(),
		"rows_per_sec":          rowsPerSec,
		"mem_alloc_bytes":       msAfter.Alloc,
		"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
		"gc_num":                msAfter.NumGC - msBefore.NumGC,
		"row_validator":         *validator,
	}

	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Rows: %d\n", src.generated)
	fmt.Printf("Predictions: %d\n", len(d.Predictions))
	fmt.Printf("Messages: %d\n", len(msgs))
	fmt.Printf("Elapsed: %s\n", elapsed)
	fmt.Printf("Throughput: %.0f rows/s\n", rowsPerSec)
	fmt.Printf("Current Alloc: %d MB\n", msAfter.Alloc/1024/1024)
	fmt.Printf("Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
	fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
}

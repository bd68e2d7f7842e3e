package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	glearn "github.com/wdm0006/forecastio/adapters/golearn"
	"github.com/wdm0006/forecastio/pkg/batch"
	"github.com/wdm0006/forecastio/pkg/covid19"
	"github.com/wdm0006/forecastio/pkg/forecast"
	"github.com/wdm0006/forecastio/pkg/io/csvio"
	iox "github.com/wdm0006/forecastio/pkg/io/ioutils"
	"github.com/wdm0006/forecastio/pkg/io/jsonio"
	"github.com/wdm0006/forecastio/pkg/io/parquetio"
	"github.com/wdm0006/forecastio/pkg/profile"
	"github.com/wdm0006/forecastio/pkg/quantileio"
)

// Export formats.
const (
	formatQuantile = "quantile"
	formatCSV      = "csv"
	formatParquet  = "parquet"
	formatGolearn  = "golearn"
	formatText     = "text"
	formatJSON     = "json"
)

func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config file (.json, .yaml, .yml or .toml)")
	return fs, configPath
}

// targets resolves the target list, falling back to the hub targets when nothing is configured.
func (e *env) targets() ([]string, error) {
	targets, err := e.cfg.Targets()
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		e.log.Debug("no targets configured; using the COVID-19 hub targets")
		targets = covid19.Targets()
	}
	return targets, nil
}

func runValidate(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("validate")
	reportPath := fs.String("report", "", "Write every message as JSON lines to this path (\"-\" for stdout)")
	workers := fs.Int("workers", 0, "Files validated concurrently (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("validate: no input files")
	}
	e, err := newEnv(*configPath)
	if err != nil {
		return err
	}
	targets, err := e.targets()
	if err != nil {
		return err
	}
	runner := &batch.Runner{
		Targets: targets,
		Options: e.cfg.QuantileOptions(),
		Workers: e.cfg.Workers,
	}
	if *workers > 0 {
		runner.Workers = *workers
	}

	e.log.WithFields(logrus.Fields{"files": fs.NArg(), "workers": runner.Workers, "targets": len(targets)}).Info("validating")
	results, err := runner.Run(ctx, fs.Args())
	if err != nil {
		return err
	}

	var report *jsonio.ReportWriter
	if *reportPath != "" {
		out, err := iox.CreateMaybeCompressed(*reportPath)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer func() { _ = out.Close() }()
		report = jsonio.NewReportWriter(out)
	}

	failed := 0
	for _, res := range results {
		log := e.log.WithField("file", res.Path)
		if res.Err != nil {
			failed++
			log.WithError(res.Err).Error("could not validate")
			continue
		}
		if report != nil {
			if err := report.Write(e.runID, res.Path, res.Messages); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
		}
		if res.OK() {
			log.WithField("predictions", len(res.Dict.Predictions)).Info("valid")
			continue
		}
		failed++
		log.WithField("messages", len(res.Messages)).Warn("invalid")
		for _, line := range quantileio.Summarize(res.Messages, e.cfg.MaxNumDups) {
			fmt.Printf("%s: %s\n", res.Path, line)
		}
	}
	if report != nil {
		e.log.WithField("records", report.Count()).Debug("report written")
	}
	if failed > 0 {
		e.log.WithField("failed", failed).Warn("validation finished with findings")
		return errFindings
	}
	return nil
}

func runConvert(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("convert")
	outPath := fs.String("o", "-", "Output JSON path (\"-\" for stdout, \".gz\" to compress)")
	indent := fs.Bool("indent", false, "Indent the JSON output")
	force := fs.Bool("force", false, "Write the JSON IO dict even when validation finds problems")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("convert: want exactly one input file, got %d", fs.NArg())
	}
	e, err := newEnv(*configPath)
	if err != nil {
		return err
	}
	targets, err := e.targets()
	if err != nil {
		return err
	}
	runner := &batch.Runner{Targets: targets, Options: e.cfg.QuantileOptions(), Workers: 1}
	results, err := runner.Run(ctx, fs.Args())
	if err != nil {
		return err
	}
	res := results[0]
	if res.Err != nil {
		return res.Err
	}
	if !res.OK() {
		for _, line := range quantileio.Summarize(res.Messages, e.cfg.MaxNumDups) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", res.Path, line)
		}
		if !*force {
			return errFindings
		}
		e.log.WithField("messages", len(res.Messages)).Warn("writing despite findings")
	}
	if err := jsonio.WriteAll(*outPath, res.Dict, *indent); err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{"in": res.Path, "out": *outPath, "predictions": len(res.Dict.Predictions)}).Info("converted")
	return nil
}

func runExport(_ context.Context, args []string) error {
	fs, configPath := newFlagSet("export")
	format := fs.String("format", "", "quantile|csv|parquet|golearn (default from the output extension, else quantile)")
	outPath := fs.String("o", "-", "Output path (\"-\" for stdout; parquet needs a file)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("export: want exactly one input file, got %d", fs.NArg())
	}
	e, err := newEnv(*configPath)
	if err != nil {
		return err
	}
	d, err := jsonio.ReadAll(fs.Arg(0))
	if err != nil {
		return err
	}
	if msgs := quantileio.ValidateJSONIODict(d); len(msgs) > 0 {
		e.log.WithField("messages", len(msgs)).Warn("input has prediction-level findings")
	}

	f := *format
	if f == "" {
		f = formatFromPath(*outPath)
	}
	var rows [][]string
	switch f {
	case formatQuantile:
		rows = quantileio.QuantileRowsFromJSONIODict(d)
		err = csvio.WriteAll(*outPath, rows, csvio.WriterOptions{})
	case formatCSV:
		rows = csvio.RowsFromJSONIODict(d)
		err = csvio.WriteAll(*outPath, rows, csvio.WriterOptions{})
	case formatParquet:
		if iox.IsStdio(*outPath) {
			return fmt.Errorf("export: parquet output needs a file path")
		}
		rows = quantileio.QuantileRowsFromJSONIODict(d)
		err = parquetio.WriteRows(*outPath, rows)
	case formatGolearn:
		rows, err = golearnRows(d)
		if err == nil {
			err = csvio.WriteAll(*outPath, rows, csvio.WriterOptions{})
		}
	default:
		return fmt.Errorf("export: %w: %q", errUnknownFormat, f)
	}
	if err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{"format": f, "out": *outPath, "rows": len(rows) - 1}).Info("exported")
	return nil
}

// golearnRows renders d the way golearn models see it: quantile and value as floats.
func golearnRows(d *forecast.JSONIODict) ([][]string, error) {
	inst, err := glearn.ToDenseInstances(d)
	if err != nil {
		return nil, fmt.Errorf("golearn instances: %w", err)
	}
	return glearn.RowsFromDenseInstances(inst)
}

var errUnknownFormat = errors.New("unknown format")

func formatFromPath(path string) string {
	p := strings.TrimSuffix(strings.ToLower(path), ".gz")
	if filepath.Ext(p) == ".parquet" {
		return formatParquet
	}
	return formatQuantile
}

func runProfile(_ context.Context, args []string) error {
	fs, configPath := newFlagSet("profile")
	format := fs.String("format", formatText, "text|json")
	topK := fs.Int("top", 10, "Most frequent values to list per column")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("profile: no input files")
	}
	e, err := newEnv(*configPath)
	if err != nil {
		return err
	}
	c := profile.NewCollector(*topK)
	for _, path := range fs.Args() {
		d, err := jsonio.ReadAll(path)
		if err != nil {
			return err
		}
		c.ConsumeDict(d)
		e.log.WithField("file", path).Debug("profiled")
	}
	switch *format {
	case formatText:
		fmt.Print(c.ReportText())
	case formatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c.ReportJSON())
	default:
		return fmt.Errorf("profile: %w: %q", errUnknownFormat, *format)
	}
	return nil
}

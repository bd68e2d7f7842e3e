package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wdm0006/forecastio/pkg/config"
)

var (
	version = "0.1.0-dev"
)

// errFindings makes the process exit 1 without printing an extra error line.
var errFindings = errors.New("validation findings")

const usage = `usage: forecastio [-version] <command> [flags] [args]

commands:
  validate   validate quantile CSV or Parquet files
  convert    convert a quantile CSV to a JSON IO dict
  export     write a JSON IO dict as quantile CSV, general CSV or Parquet
  profile    summarize a JSON IO dict
`

type command func(ctx context.Context, args []string) error

var commands = map[string]command{
	"validate": runValidate,
	"convert":  runConvert,
	"export":   runExport,
	"profile":  runProfile,
}

// env is what every command shares: settings and a logger tagged with the run id.
type env struct {
	cfg   *config.Config
	log   *logrus.Entry
	runID string
}

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if *showVersion {
		fmt.Println("forecastio", version)
		return
	}
	if flag.NArg() == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	name, args := flag.Arg(0), flag.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", name, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cmd(ctx, args)
	switch {
	case err == nil:
	case errors.Is(err, errFindings):
		stop()
		os.Exit(1)
	case errors.Is(err, flag.ErrHelp):
		stop()
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// newEnv loads the config file (may be empty) and builds the logger.
func newEnv(configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	return &env{
		cfg:   cfg,
		runID: runID,
		log:   logger.WithField("run_id", runID),
	}, nil
}

func newLogger(lc config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)
	if lc.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

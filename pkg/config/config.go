// Package config loads forecastio settings from a JSON, YAML or TOML file, overlays FORECASTIO_*
// environment variables and validates the result.
package config

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/wdm0006/forecastio/pkg/covid19"
	iox "github.com/wdm0006/forecastio/pkg/io/ioutils"
	"github.com/wdm0006/forecastio/pkg/quantileio"
)

// EnvPrefix prefixes every environment override, e.g. FORECASTIO_LOG_LEVEL.
const EnvPrefix = "FORECASTIO"

// Row validator names.
const (
	RowValidatorNone    = "none"
	RowValidatorCovid19 = "covid19"
)

var ErrUnsupportedFormat = errors.New("config: unsupported file format")

type Config struct {
	ValidTargets              []string      `json:"valid_targets" yaml:"valid_targets" toml:"valid_targets" envconfig:"VALID_TARGETS"`
	TargetsFile               string        `json:"targets_file" yaml:"targets_file" toml:"targets_file" envconfig:"TARGETS_FILE"`
	AdditionalRequiredColumns []string      `json:"additional_required_columns" yaml:"additional_required_columns" toml:"additional_required_columns" envconfig:"ADDL_REQ_COLS"`
	RowValidator              string        `json:"row_validator" yaml:"row_validator" toml:"row_validator" envconfig:"ROW_VALIDATOR" validate:"oneof=none covid19"`
	MaxNumDups                int           `json:"max_num_dups" yaml:"max_num_dups" toml:"max_num_dups" envconfig:"MAX_NUM_DUPS" validate:"gte=0"`
	Workers                   int           `json:"workers" yaml:"workers" toml:"workers" envconfig:"WORKERS" validate:"gte=1,lte=256"`
	Log                       LogConfig     `json:"log" yaml:"log" toml:"log" envconfig:"LOG"`
	Covid19                   Covid19Config `json:"covid19" yaml:"covid19" toml:"covid19" envconfig:"COVID19"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level" envconfig:"LEVEL" validate:"oneof=trace debug info warn warning error"`
	Format string `json:"format" yaml:"format" toml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
}

type Covid19Config struct {
	ExtraLocations    []string `json:"extra_locations" yaml:"extra_locations" toml:"extra_locations" envconfig:"EXTRA_LOCATIONS"`
	SkipDateAlignment bool     `json:"skip_date_alignment" yaml:"skip_date_alignment" toml:"skip_date_alignment" envconfig:"SKIP_DATE_ALIGNMENT"`
}

// Default returns the settings used when neither a file nor the environment says otherwise.
func Default() Config {
	return Config{
		RowValidator: RowValidatorNone,
		MaxNumDups:   quantileio.DefaultMaxNumDups,
		Workers:      4,
		Log:          LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds a Config from the defaults, the file at path (skipped when path is empty) and the
// environment, in that order, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		return dec.Decode(cfg)
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Validate checks field ranges and enums.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Targets resolves the valid target names: the targets file if set, else ValidTargets, else the
// hub targets when the covid19 row validator is selected.
func (c *Config) Targets() ([]string, error) {
	if c.TargetsFile != "" {
		return readTargetsFile(c.TargetsFile)
	}
	if len(c.ValidTargets) > 0 {
		return c.ValidTargets, nil
	}
	if c.RowValidator == RowValidatorCovid19 {
		return covid19.Targets(), nil
	}
	return nil, nil
}

// readTargetsFile reads one target per line. Blank lines and lines starting with '#' are skipped.
func readTargetsFile(path string) ([]string, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, fmt.Errorf("open targets file: %w", err)
	}
	defer func() { _ = rc.Close() }()
	var out []string
	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}
	return out, nil
}

// QuantileOptions builds the pipeline options for the configured row validator. The covid19
// validator brings its own additional required columns unless some are configured.
func (c *Config) QuantileOptions() quantileio.Options {
	opt := quantileio.Options{AdditionalRequiredColumns: c.AdditionalRequiredColumns}
	if c.RowValidator == RowValidatorCovid19 {
		opt.RowValidator = covid19.NewRowValidator(covid19.Config{
			ExtraLocations:    c.Covid19.ExtraLocations,
			SkipDateAlignment: c.Covid19.SkipDateAlignment,
		})
		if len(opt.AdditionalRequiredColumns) == 0 {
			opt.AdditionalRequiredColumns = covid19.AdditionalRequiredColumns()
		}
	}
	return opt
}

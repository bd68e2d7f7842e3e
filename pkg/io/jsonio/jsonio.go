// Package jsonio reads and writes JSON IO dict files and JSON-lines validation reports.
package jsonio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wdm0006/forecastio/pkg/forecast"
	iox "github.com/wdm0006/forecastio/pkg/io/ioutils"
)

// Decode reads one JSON IO dict from r. Unknown top-level keys are ignored.
func Decode(r io.Reader) (*forecast.JSONIODict, error) {
	var d forecast.JSONIODict
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode json io dict: %w", err)
	}
	if d.Meta == nil {
		d.Meta = map[string]any{}
	}
	return &d, nil
}

// Encode writes d to w, indented when indent is true.
func Encode(w io.Writer, d *forecast.JSONIODict, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if d == nil {
		d = forecast.NewJSONIODict(nil)
	}
	return enc.Encode(d)
}

// ReadAll loads a JSON IO dict from path (stdin for "-"); gzip input is detected.
func ReadAll(path string) (*forecast.JSONIODict, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return Decode(rc)
}

// WriteAll writes d to path (stdout for "-"), gzip-compressed for ".gz" paths.
func WriteAll(path string, d *forecast.JSONIODict, indent bool) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Encode(out, d, indent); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

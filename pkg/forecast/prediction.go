package forecast

import (
	"encoding/json"
	"fmt"
)

// PointPrediction holds a single value.
type PointPrediction struct {
	Value Value `json:"value"`
}

// QuantilePrediction holds parallel quantile and value vectors.
type QuantilePrediction struct {
	Quantile []Value `json:"quantile"`
	Value    []Value `json:"value"`
}

// BinPrediction holds parallel category and probability vectors.
type BinPrediction struct {
	Cat  []Value `json:"cat"`
	Prob []Value `json:"prob"`
}

// NamedPrediction is a parametric distribution.
type NamedPrediction struct {
	Family string   `json:"family"`
	Param1 *float64 `json:"param1,omitempty"`
	Param2 *float64 `json:"param2,omitempty"`
	Param3 *float64 `json:"param3,omitempty"`
}

type SamplePrediction struct {
	Sample []Value `json:"sample"`
}

// Prediction is one prediction element scoped to a (unit, target) pair. Exactly one payload,
// the one matching Class, is set.
type Prediction struct {
	Unit   string
	Target string
	Class  Class

	Point    *PointPrediction
	Quantile *QuantilePrediction
	Bin      *BinPrediction
	Named    *NamedPrediction
	Sample   *SamplePrediction
}

func NewPointPrediction(unit, target string, v Value) Prediction {
	return Prediction{Unit: unit, Target: target, Class: ClassPoint, Point: &PointPrediction{Value: v}}
}

func NewQuantilePrediction(unit, target string, quantiles, values []Value) Prediction {
	return Prediction{Unit: unit, Target: target, Class: ClassQuantile,
		Quantile: &QuantilePrediction{Quantile: quantiles, Value: values}}
}

func (p Prediction) payload() (any, error) {
	var out any
	switch p.Class {
	case ClassPoint:
		out = p.Point
	case ClassQuantile:
		out = p.Quantile
	case ClassBin:
		out = p.Bin
	case ClassNamed:
		out = p.Named
	case ClassSample:
		out = p.Sample
	default:
		return nil, fmt.Errorf("forecast: unknown prediction class %q", p.Class)
	}
	return out, nil
}

type predictionWire struct {
	Unit       string          `json:"unit"`
	Target     string          `json:"target"`
	Class      Class           `json:"class"`
	Prediction json.RawMessage `json:"prediction"`
}

func (p Prediction) MarshalJSON() ([]byte, error) {
	data, err := p.payload()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(predictionWire{Unit: p.Unit, Target: p.Target, Class: p.Class, Prediction: raw})
}

func (p *Prediction) UnmarshalJSON(b []byte) error {
	var w predictionWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	out := Prediction{Unit: w.Unit, Target: w.Target, Class: w.Class}
	var dst any
	switch w.Class {
	case ClassPoint:
		out.Point = &PointPrediction{}
		dst = out.Point
	case ClassQuantile:
		out.Quantile = &QuantilePrediction{}
		dst = out.Quantile
	case ClassBin:
		out.Bin = &BinPrediction{}
		dst = out.Bin
	case ClassNamed:
		out.Named = &NamedPrediction{}
		dst = out.Named
	case ClassSample:
		out.Sample = &SamplePrediction{}
		dst = out.Sample
	default:
		return fmt.Errorf("forecast: unknown prediction class %q (unit=%q target=%q)", w.Class, w.Unit, w.Target)
	}
	if len(w.Prediction) > 0 {
		if err := json.Unmarshal(w.Prediction, dst); err != nil {
			return fmt.Errorf("forecast: %s prediction for unit=%q target=%q: %w", w.Class, w.Unit, w.Target, err)
		}
	}
	*p = out
	return nil
}

// JSONIODict is the nested exchange shape: an opaque meta section and the prediction elements.
type JSONIODict struct {
	Meta        map[string]any `json:"meta"`
	Predictions []Prediction   `json:"predictions"`
}

func NewJSONIODict(preds []Prediction) *JSONIODict {
	if preds == nil {
		preds = []Prediction{}
	}
	return &JSONIODict{Meta: map[string]any{}, Predictions: preds}
}

// MarshalJSON always writes meta as an object and predictions as an array, never null.
func (d JSONIODict) MarshalJSON() ([]byte, error) {
	type alias JSONIODict
	a := alias(d)
	if a.Meta == nil {
		a.Meta = map[string]any{}
	}
	if a.Predictions == nil {
		a.Predictions = []Prediction{}
	}
	return json.Marshal(a)
}

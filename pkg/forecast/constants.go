package forecast

import "strings"

// Quantile CSV column names.
const (
	ColumnLocation = "location"
	ColumnTarget   = "target"
	ColumnType     = "type"
	ColumnQuantile = "quantile"
	ColumnValue    = "value"
)

var requiredColumns = [...]string{ColumnLocation, ColumnTarget, ColumnType, ColumnQuantile, ColumnValue}

// RequiredColumns returns the base columns every quantile CSV must carry, in canonical order.
func RequiredColumns() []string {
	out := make([]string, len(requiredColumns))
	copy(out, requiredColumns[:])
	return out
}

// Class names a prediction element type in a JSON IO dict.
type Class string

const (
	ClassBin      Class = "bin"
	ClassNamed    Class = "named"
	ClassPoint    Class = "point"
	ClassSample   Class = "sample"
	ClassQuantile Class = "quantile"
)

func (c Class) Valid() bool {
	switch c {
	case ClassBin, ClassNamed, ClassPoint, ClassSample, ClassQuantile:
		return true
	}
	return false
}

// RowType is the classification of a quantile CSV row. It is decided once per row.
type RowType int

const (
	RowTypeQuantile RowType = iota
	RowTypePoint
)

// ParseRowType maps a `type` cell to a RowType. Only "point" (any case) is a point row.
func ParseRowType(s string) RowType {
	if strings.EqualFold(s, string(ClassPoint)) {
		return RowTypePoint
	}
	return RowTypeQuantile
}

func (t RowType) IsPoint() bool { return t == RowTypePoint }

// Class returns the prediction class that rows of this type build.
func (t RowType) Class() Class {
	if t == RowTypePoint {
		return ClassPoint
	}
	return ClassQuantile
}

package covid19

import (
	"regexp"
	"strconv"
	"time"

	"github.com/wdm0006/forecastio/pkg/forecast"
	"github.com/wdm0006/forecastio/pkg/quantileio"
)

var (
	dayAheadRe  = regexp.MustCompile(`^(\d+) day ahead `)
	weekAheadRe = regexp.MustCompile(`^(\d+) wk ahead `)
)

// Config tunes NewRowValidator.
type Config struct {
	// ExtraLocations are accepted for every target.
	ExtraLocations []string
	// SkipDateAlignment turns off the forecast_date / target_end_date checks.
	SkipDateAlignment bool
}

// RowValidator checks one hub row with the default Config.
var RowValidator = NewRowValidator(Config{})

// NewRowValidator returns a row validator that checks, in order: the location is valid for the
// target, numeric values are non-negative, quantiles belong to the target's quantile set, and
// target_end_date lines up with forecast_date.
func NewRowValidator(cfg Config) quantileio.RowValidator {
	extra := make(map[string]struct{}, len(cfg.ExtraLocations))
	for _, l := range cfg.ExtraLocations {
		extra[l] = struct{}{}
	}
	return func(ci quantileio.ColumnIndex, row []string) []forecast.Message {
		var msgs []forecast.Message
		location, _ := ci.Cell(row, forecast.ColumnLocation)
		target, _ := ci.Cell(row, forecast.ColumnTarget)
		rowType, _ := ci.Cell(row, forecast.ColumnType)
		quantileCell, _ := ci.Cell(row, forecast.ColumnQuantile)
		valueCell, _ := ci.Cell(row, forecast.ColumnValue)

		if _, ok := extra[location]; !ok && !validLocation(location, target) {
			msgs = append(msgs, forecast.Messagef(forecast.PriorityForecastChecks,
				"invalid location for target. location=%q, target=%q. row=%q", location, target, row))
		}

		if x, ok := forecast.ParseValue(valueCell).Number(); ok && x < 0 {
			msgs = append(msgs, forecast.Messagef(forecast.PriorityForecastChecks,
				"entries in the `value` column must be non-negative. value=%q. row=%q", valueCell, row))
		}

		if !forecast.ParseRowType(rowType).IsPoint() {
			q, ok := forecast.ParseValue(quantileCell).Number()
			if ok && !validQuantileFor(target, q) {
				msgs = append(msgs, forecast.Messagef(forecast.PriorityForecastChecks,
					"invalid quantile for target. quantile=%q, target=%q. row=%q", quantileCell, target, row))
			}
		}

		if !cfg.SkipDateAlignment {
			msgs = append(msgs, dateAlignment(ci, row, target)...)
		}
		return msgs
	}
}

func validLocation(location, target string) bool {
	if IsStateLocation(location) {
		return true
	}
	return IsCountyLocation(location) && IsCaseTarget(target)
}

func dateAlignment(ci quantileio.ColumnIndex, row []string, target string) []forecast.Message {
	fdCell, ok1 := ci.Cell(row, ColumnForecastDate)
	tedCell, ok2 := ci.Cell(row, ColumnTargetEndDate)
	if !ok1 || !ok2 {
		return nil
	}
	forecastDate, err1 := time.Parse(forecast.DateFormat, fdCell)
	targetEndDate, err2 := time.Parse(forecast.DateFormat, tedCell)
	if err1 != nil || err2 != nil {
		return []forecast.Message{forecast.Messagef(forecast.PriorityForecastChecks,
			"invalid forecast_date or target_end_date format. forecast_date=%q. target_end_date=%q. row=%q",
			fdCell, tedCell, row)}
	}

	if m := dayAheadRe.FindStringSubmatch(target); m != nil {
		days, _ := strconv.Atoi(m[1])
		if !targetEndDate.Equal(forecastDate.AddDate(0, 0, days)) {
			return []forecast.Message{forecast.Messagef(forecast.PriorityForecastChecks,
				"invalid target_end_date: was not %d day(s) after forecast_date. diff=%d, forecast_date=%q, target_end_date=%q. row=%q",
				days, daysBetween(forecastDate, targetEndDate), fdCell, tedCell, row)}
		}
		return nil
	}

	if m := weekAheadRe.FindStringSubmatch(target); m != nil {
		weeks, _ := strconv.Atoi(m[1])
		if targetEndDate.Weekday() != time.Saturday {
			return []forecast.Message{forecast.Messagef(forecast.PriorityDateAlignment,
				"target_end_date was not a Saturday. target_end_date=%q. row=%q", tedCell, row)}
		}
		if exp := ExpectedTargetEndDate(forecastDate, weeks); !targetEndDate.Equal(exp) {
			return []forecast.Message{forecast.Messagef(forecast.PriorityDateAlignment,
				"target_end_date was not the expected Saturday. forecast_date=%q, target_end_date=%q, exp_target_end_date=%q. row=%q",
				fdCell, tedCell, exp.Format(forecast.DateFormat), row)}
		}
	}
	return nil
}

// ExpectedTargetEndDate is the Saturday a "weeks wk ahead" target ends on. Forecasts made on a
// Sunday or Monday count the coming Saturday as week one; forecasts made Tuesday through
// Saturday count the Saturday of the following week as week one.
func ExpectedTargetEndDate(forecastDate time.Time, weeks int) time.Time {
	// days until the Saturday on or after forecastDate
	toSat := (int(time.Saturday) - int(forecastDate.Weekday()) + 7) % 7
	firstSat := forecastDate.AddDate(0, 0, toSat)
	switch forecastDate.Weekday() {
	case time.Sunday, time.Monday:
	default:
		firstSat = firstSat.AddDate(0, 0, 7)
	}
	return firstSat.AddDate(0, 0, 7*(weeks-1))
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

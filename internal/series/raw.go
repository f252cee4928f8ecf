package series

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RawBar is an OHLCV record as it arrives from an upstream source.
// Numeric fields may be JSON numbers, numeric strings, json.Number,
// native Go integers/floats or decimal.Decimal.
type RawBar struct {
	Date   any `json:"date" yaml:"date"`
	Open   any `json:"open" yaml:"open"`
	High   any `json:"high" yaml:"high"`
	Low    any `json:"low" yaml:"low"`
	Close  any `json:"close" yaml:"close"`
	Volume any `json:"volume" yaml:"volume"`
}

var dateLayouts = []string{
	"2006-01-02",
	"20060102",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseDecimal converts one heterogeneous numeric value.
func parseDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("missing value")
	case decimal.Decimal:
		return x, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, fmt.Errorf("non-finite value %v", x)
		}
		return decimal.NewFromFloat(x), nil
	case float32:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, fmt.Errorf("non-finite value %v", x)
		}
		return decimal.NewFromFloat32(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case uint32:
		return decimal.NewFromInt(int64(x)), nil
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		if s == "" {
			return decimal.Zero, fmt.Errorf("empty value")
		}
		return decimal.NewFromString(s)
	default:
		return decimal.Zero, fmt.Errorf("unsupported numeric type %T", v)
	}
}

// maxTimestamp is the year 9999 in unix milliseconds.
var maxTimestamp = decimal.NewFromInt(253402300799999)

var maxVolume = decimal.NewFromInt(math.MaxInt64)

func parsePrice(v any) (float64, error) {
	d, err := parseDecimal(v)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	if err := checkPrice(f); err != nil {
		return 0, err
	}
	return f, nil
}

func parseVolume(v any) (int64, error) {
	d, err := parseDecimal(v)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("volume %s is not an integer", d.String())
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative volume %s", d.String())
	}
	if d.GreaterThan(maxVolume) {
		return 0, fmt.Errorf("volume %s out of range", d.String())
	}
	return d.IntPart(), nil
}

// parseDate accepts time.Time, a handful of string layouts and unix
// timestamps (seconds, or milliseconds when the value is large). Times
// keep their own zone; build reduces them to calendar dates.
func parseDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("missing date")
	case time.Time:
		if x.IsZero() {
			return time.Time{}, fmt.Errorf("zero date")
		}
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", x)
	default:
		d, err := parseDecimal(v)
		if err != nil {
			return time.Time{}, fmt.Errorf("date: %w", err)
		}
		if !d.IsInteger() || d.IsNegative() || d.GreaterThan(maxTimestamp) {
			return time.Time{}, fmt.Errorf("timestamp %s out of range", d.String())
		}
		ts := d.IntPart()
		if ts > 1e12 {
			return time.UnixMilli(ts).UTC(), nil
		}
		return time.Unix(ts, 0).UTC(), nil
	}
}

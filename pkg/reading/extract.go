package reading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Reading errors.
var (
	ErrNoReading           = errors.New("no glucose reading returned")
	ErrUnrecognizedReading = errors.New("unrecognized glucose reading")
)

// Measurement is a normalized reading.
type Measurement struct {
	Value int
	Trend Trend
}

// TrendProvider is implemented by providers that can report the current
// trend separately from the reading.
type TrendProvider interface {
	CurrentTrend(ctx context.Context) (any, error)
}

// Value accessors probed in order.
type (
	valueReading   interface{ Value() int }
	mgdlReading    interface{ MgDL() int }
	glucoseReading interface{ Glucose() int }
)

// Trend accessors probed in order.
type (
	typedTrendReading       interface{ Trend() Trend }
	trendNameReading        interface{ Trend() string }
	trendArrowReading       interface{ TrendArrow() string }
	trendDescriptionReading interface{ TrendDescription() string }
	namedTrend              interface{ Name() string }
)

var valueKeys = []string{"value", "mg_dl", "mgdl", "glucose", "Value"}

var trendMapKeys = []string{"trend", "Trend", "trend_arrow", "trend_description"}

// valueStrategy reports ok=false when it does not apply to r.
type valueStrategy func(r any) (value int, ok bool, err error)

var valueStrategies = []valueStrategy{
	numericValue,
	stringValue,
	accessorValue,
	mapValue,
}

// ExtractValue returns the glucose value carried by r.
func ExtractValue(r any) (int, error) {
	if isNil(r) {
		return 0, ErrNoReading
	}
	for _, strategy := range valueStrategies {
		v, ok, err := strategy(r)
		if err != nil {
			return 0, err
		}
		if ok {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %T", ErrUnrecognizedReading, r)
}

// isNil reports whether r is nil or a nil pointer held in an interface.
func isNil(r any) bool {
	if r == nil {
		return true
	}
	rv := reflect.ValueOf(r)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func numericValue(r any) (int, bool, error) {
	rv := reflect.ValueOf(r)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true, nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false, fmt.Errorf("%w: non-finite value", ErrUnrecognizedReading)
		}
		return int(f), true, nil
	}
	return 0, false, nil
}

func stringValue(r any) (int, bool, error) {
	var s string
	switch v := r.(type) {
	case string:
		s = v
	case json.Number:
		s = v.String()
	default:
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("%w: %q is not numeric", ErrUnrecognizedReading, s)
	}
	return int(f), true, nil
}

func accessorValue(r any) (int, bool, error) {
	switch v := r.(type) {
	case valueReading:
		return v.Value(), true, nil
	case mgdlReading:
		return v.MgDL(), true, nil
	case glucoseReading:
		return v.Glucose(), true, nil
	}
	return 0, false, nil
}

func mapValue(r any) (int, bool, error) {
	m, ok := r.(map[string]any)
	if !ok {
		return 0, false, nil
	}
	for _, key := range valueKeys {
		raw, found := m[key]
		if !found || raw == nil {
			continue
		}
		if v, ok, err := numericValue(raw); ok || err != nil {
			return v, ok, err
		}
		if v, ok, err := stringValue(raw); ok || err != nil {
			return v, ok, err
		}
	}
	return 0, false, nil
}

// ExtractTrend returns the trend for r. A provider-level trend is preferred;
// if the provider cannot report one, the reading itself is inspected.
func ExtractTrend(ctx context.Context, provider, r any) Trend {
	if tp, ok := provider.(TrendProvider); ok {
		if raw, err := tp.CurrentTrend(ctx); err == nil {
			if t := normalizeTrend(raw); t != TrendNone {
				return t
			}
		}
	}

	if isNil(r) {
		return TrendNone
	}

	switch v := r.(type) {
	case typedTrendReading:
		return v.Trend()
	case trendNameReading:
		return normalizeTrend(v.Trend())
	case trendArrowReading:
		return normalizeTrend(v.TrendArrow())
	case trendDescriptionReading:
		return normalizeTrend(v.TrendDescription())
	case map[string]any:
		for _, key := range trendMapKeys {
			if raw, found := v[key]; found && raw != nil {
				return normalizeTrend(raw)
			}
		}
	}
	return TrendNone
}

// shareTrendCodes are the numeric trend values used by older Share responses.
var shareTrendCodes = map[int]Trend{
	1: TrendDoubleUp,
	2: TrendSingleUp,
	3: TrendFortyFiveUp,
	4: TrendFlat,
	5: TrendFortyFiveDown,
	6: TrendSingleDown,
	7: TrendDoubleDown,
}

func normalizeTrend(raw any) Trend {
	switch v := raw.(type) {
	case nil:
		return TrendNone
	case Trend:
		return v
	case namedTrend:
		return ParseTrend(v.Name())
	case fmt.Stringer:
		return ParseTrend(v.String())
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return shareTrendCodes[n]
		}
		return ParseTrend(v)
	}
	if n, ok, _ := numericValue(raw); ok {
		return shareTrendCodes[n]
	}
	return TrendNone
}

// Normalize extracts the value and trend of r.
func Normalize(ctx context.Context, provider, r any) (Measurement, error) {
	v, err := ExtractValue(r)
	if err != nil {
		return Measurement{}, err
	}
	return Measurement{Value: v, Trend: ExtractTrend(ctx, provider, r)}, nil
}

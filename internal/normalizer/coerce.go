package normalizer

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errMissing = errors.New("missing value")

// toInt64 coerces an identifier. Provider ids arrive as JSON numbers or as
// zero-padded strings ("0022300001").
func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, errMissing
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return 0, fmt.Errorf("not an integer: %v", x)
		}
		return int64(x), nil
	case json.Number:
		return toInt64(string(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, errMissing
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// toFloat reports false for anything that is not a finite number
func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case float64:
		f = x
	case json.Number:
		return toFloat(string(x))
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// countOrZero fills a missing counting stat with zero. Values that do not
// fit the INTEGER column are treated as unparseable.
func countOrZero(v any) int {
	f, ok := toFloat(v)
	if !ok {
		return 0
	}
	f = math.Round(f)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

// floatOrZero fills a missing rate stat with zero
func floatOrZero(v any) float64 {
	f, _ := toFloat(v)
	return f
}

// parseMinutes keeps the whole-minute part of "MM:SS" (or a bare number).
// Anything unparseable or negative is NULL so that "no data" stays distinct from zero.
func parseMinutes(v any) sql.NullFloat64 {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if i := strings.IndexByte(s, ':'); i >= 0 {
			s = s[:i]
		}
		v = s
	}
	f, ok := toFloat(v)
	if !ok || f < 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: math.Trunc(f), Valid: true}
}

func stringValue(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func nullString(v any) sql.NullString {
	s := stringValue(v)
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

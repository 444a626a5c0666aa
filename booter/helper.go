package booter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// Int64FromCty accepts a number, or a string with an optional
// duration suffix ms, s, m or h which is converted to nanoseconds.
func Int64FromCty(value cty.Value) (int64, error) {
	switch value.Type() {
	case cty.Number:
		f := value.AsBigFloat()
		l, _ := f.Int64()
		return l, nil
	case cty.String:
		s := strings.TrimSpace(value.AsString())
		var unit time.Duration
		switch {
		case strings.HasSuffix(s, "ms"):
			s, unit = s[:len(s)-2], time.Millisecond
		case strings.HasSuffix(s, "s"):
			s, unit = s[:len(s)-1], time.Second
		case strings.HasSuffix(s, "m"):
			s, unit = s[:len(s)-1], time.Minute
		case strings.HasSuffix(s, "h"):
			s, unit = s[:len(s)-1], time.Hour
		default:
			unit = 1
		}
		l, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value is not a number-compatible, %q", value.AsString())
		}
		return l * int64(unit), nil
	default:
		return 0, fmt.Errorf("value is not a number, %s", value.Type().FriendlyName())
	}
}

func Float64FromCty(value cty.Value) (float64, error) {
	switch value.Type() {
	case cty.Number:
		f, _ := value.AsBigFloat().Float64()
		return f, nil
	case cty.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(value.AsString()), 64)
		if err != nil {
			return 0, fmt.Errorf("value is not a number-compatible, %q", value.AsString())
		}
		return f, nil
	default:
		return 0, fmt.Errorf("value is not a number, %s", value.Type().FriendlyName())
	}
}

func PriorityFromCty(value cty.Value) int {
	switch value.Type() {
	case cty.Number:
		f := value.AsBigFloat()
		l, _ := f.Int64()
		return int(l)
	default:
		return 999
	}
}

func BoolFromCty(value cty.Value) (bool, error) {
	switch value.Type() {
	case cty.Bool:
		return value.True(), nil
	case cty.String:
		s := value.AsString()
		switch strings.ToLower(s) {
		case "true", "t", "yes", "y":
			return true, nil
		case "false", "f", "no", "n":
			return false, nil
		default:
			return false, fmt.Errorf("%s is not bool compatible", s)
		}
	default:
		return false, fmt.Errorf("value is not a bool, %s", value.Type().FriendlyName())
	}
}

func StringFromCty(value cty.Value) string {
	if value.Type() != cty.String {
		return ""
	}
	return value.AsString()
}

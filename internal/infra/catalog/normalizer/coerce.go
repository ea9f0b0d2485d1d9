package normalizer

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

var (
	trueWords  = map[string]struct{}{"true": {}, "1": {}, "yes": {}, "y": {}, "on": {}}
	falseWords = map[string]struct{}{"false": {}, "0": {}, "no": {}, "n": {}, "off": {}}
)

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []any, map[string]any, []string:
		return ""
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func coerceStringList(value any) []string {
	out := []string{}
	switch v := value.(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	case []string:
		for _, item := range v {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	case []any:
		for _, item := range v {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func coerceBool(value any, present bool, fallback bool) bool {
	if !present || value == nil {
		return fallback
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		word := strings.ToLower(strings.TrimSpace(v))
		if _, ok := trueWords[word]; ok {
			return true
		}
		if _, ok := falseWords[word]; ok {
			return false
		}
	}
	return truthy(value)
}

func coerceInt(value any) int {
	switch v := value.(type) {
	case nil:
		return 0
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int(v)
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		return 0
	}
	return n
}

// truthy follows the usual loose conversion: empty or zero values are false.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	if f, err := cast.ToFloat64E(value); err == nil {
		return f != 0
	}
	return true
}

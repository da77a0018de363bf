package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ToString converts a decoded JSON value to its cell text. Nil becomes the
// empty string and whole floats lose their fraction.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool converts form and query values to bool. "1", "true" and "yes" are true.
func ToBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "1" || s == "true" || s == "yes"
	case []byte:
		return ToBool(string(v))
	default:
		return false
	}
}

// ToCells converts a decoded JSON row into raw cell values keyed by column.
func ToCells(row map[string]any) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		out[k] = ToString(v)
	}
	return out
}

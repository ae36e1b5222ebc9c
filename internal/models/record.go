// internal/models/record.go
package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// Coercion helpers for documents coming back from the record store. The store
// gives no shape guarantee: numbers may arrive as float64, int, or strings,
// timestamps as time.Time or RFC3339 strings. Invalid numerics coerce to 0
// rather than poisoning downstream arithmetic with NaN.

func AsString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func AsFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func AsInt(v interface{}) int {
	return int(AsFloat(v))
}

func AsBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	}
	return false
}

func AsTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func AsTimePtr(v interface{}) *time.Time {
	t := AsTime(v)
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeValue(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

package backfill

import (
	"fmt"
	"time"
)

// Legacy rows arrive as map[string]any from MapScan, with strings as []byte
// and numeric ids as int64 depending on the legacy column type. These
// helpers normalize them.

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return fmt.Sprintf("%d", t)
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func asNullableString(v any) *string {
	if v == nil {
		return nil
	}
	s := asString(v)
	if s == "" {
		return nil
	}
	return &s
}

func asStringDefault(v any, def string) string {
	s := asString(v)
	if s == "" {
		return def
	}
	return s
}

func asBool(v any, def bool) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case []byte:
		return string(t) == "true" || string(t) == "t" || string(t) == "1"
	case string:
		return t == "true" || t == "t" || t == "1"
	default:
		return def
	}
}

func asNullableBool(v any) *bool {
	if v == nil {
		return nil
	}
	b := asBool(v, false)
	return &b
}

func asNullableTime(v any) *time.Time {
	if t, ok := v.(time.Time); ok {
		return &t
	}
	return nil
}

func legacyIDOf(row map[string]any) string {
	return asString(row["id"])
}

func required(row map[string]any, col string) (string, error) {
	s := asString(row[col])
	if s == "" {
		return "", fmt.Errorf("missing %s", col)
	}
	return s, nil
}

package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/flowspace/internal/engine"
)

// String returns the string value under key, or "" when absent or not a string.
func String(in engine.Input, key string) string {
	if v, ok := in[key].(string); ok {
		return v
	}
	return ""
}

// StringOr returns the string value under key, or fallback when absent.
func StringOr(in engine.Input, key, fallback string) string {
	if v := String(in, key); v != "" {
		return v
	}
	return fallback
}

// RequiredString returns the string value under key or an error when missing.
func RequiredString(in engine.Input, key string) (string, error) {
	v := String(in, key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// Bool returns the boolean value under key. String values "true"/"false" are
// accepted because templated parameters always render to strings.
func Bool(in engine.Input, key string) bool {
	switch v := in[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}

// Int64 returns the integer value under key, or fallback when absent.
// TOML decoding produces int64, JSON decoding float64.
func Int64(in engine.Input, key string, fallback int64) int64 {
	switch v := in[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return fallback
}

// Time parses the RFC3339 value under key. Returns the zero time when absent.
func Time(in engine.Input, key string) (time.Time, error) {
	v := String(in, key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format: %w", key, err)
	}
	return t, nil
}

// RequiredTime parses the RFC3339 value under key or errors when missing.
func RequiredTime(in engine.Input, key string) (time.Time, error) {
	if String(in, key) == "" {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	return Time(in, key)
}

// Strings returns the value under key as a string slice. Accepts a list or a
// comma-separated string.
func Strings(in engine.Input, key string) []string {
	switch v := in[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

// Rows returns the value under key as a grid of cell strings. Accepts
// [][]string directly or the []any shape produced by decoding config files.
func Rows(in engine.Input, key string) ([][]string, error) {
	switch v := in[key].(type) {
	case nil:
		return nil, nil
	case [][]string:
		return v, nil
	case []any:
		rows := make([][]string, 0, len(v))
		for i, item := range v {
			cells, ok := item.([]any)
			if !ok {
				return nil, fmt.Errorf("%s row %d is not a list", key, i)
			}
			row := make([]string, len(cells))
			for j, cell := range cells {
				row[j] = fmt.Sprintf("%v", cell)
			}
			rows = append(rows, row)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("%s must be a list of rows", key)
}

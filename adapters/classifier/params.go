package classifier

import (
	"fmt"
	"strconv"
	"strings"
)

// Params are classifier options parsed from command-line key/value pairs.
// Values are coerced to int, then float, then left as strings.
type Params map[string]any

// ParseParams coerces raw string values
func ParseParams(raw map[string]string) Params {
	params := make(Params, len(raw))
	for k, v := range raw {
		if i, err := strconv.Atoi(v); err == nil {
			params[k] = i
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params[k] = f
			continue
		}
		params[k] = v
	}
	return params
}

// Uint64 returns an integer parameter as a seed
func (p Params) Uint64(key string) (uint64, bool, error) {
	v, ok := p[key]
	if !ok {
		return 0, false, nil
	}
	i, isInt := v.(int)
	if !isInt || i < 0 {
		return 0, true, fmt.Errorf("parameter %s must be a non-negative integer, got %v", key, v)
	}
	return uint64(i), true, nil
}

// String returns a parameter in its string form
func (p Params) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	return fmt.Sprint(v), true
}

// List splits a comma separated parameter
func (p Params) List(key string) []string {
	s, ok := p.String(key)
	if !ok || s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

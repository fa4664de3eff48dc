package config

import "strconv"

// Params holds the per-rule settings of a RuleConfig.
// Accessors return the default value if the key is missing or the value
// cannot be converted to the requested type.
type Params struct {
	data map[string]any
}

// NewParams creates Params from the given map.
// If data is nil, empty Params are returned.
func NewParams(data map[string]any) Params {
	if data == nil {
		data = make(map[string]any)
	}
	return Params{data: data}
}

// Bool returns the boolean value for key, or defaultVal if missing or invalid.
//
// Accepts:
//   - bool: used directly
//   - string: parsed with strconv.ParseBool ("true", "false", "1", "0", ...)
func (p Params) Bool(key string, defaultVal bool) bool {
	switch val := p.data[key].(type) {
	case bool:
		return val
	case string:
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// Int returns the integer value for key, or defaultVal if missing or not convertible.
//
// Accepts:
//   - int: used directly
//   - int64: converted to int
//   - float64: converted to int, only if there is no fractional part
//   - string: parsed with strconv.Atoi
func (p Params) Int(key string, defaultVal int) int {
	switch val := p.data[key].(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	case string:
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

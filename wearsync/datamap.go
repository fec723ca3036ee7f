package wearsync

import (
	"encoding/json"
	"math"
)

// DataMap is the key/value payload of a data item.
type DataMap map[string]any

// GetString returns the value for key when it holds a string.
func (m DataMap) GetString(key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// GetInt returns the value for key when it holds a whole number in the
// int32 range, the size of a data map integer. JSON decoding yields float64
// or json.Number, both are accepted.
func (m DataMap) GetInt(key string) (int, bool) {
	switch n := m[key].(type) {
	case int:
		return int32Range(int64(n))
	case int32:
		return int(n), true
	case int64:
		return int32Range(n)
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int32Range(i)
	}
	return 0, false
}

func int32Range(n int64) (int, bool) {
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, false
	}
	return int(n), true
}

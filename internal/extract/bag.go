package extract

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Bag is the open, string-keyed metadata attached to raw activity events.
// Keys are inconsistently cased (snake_case and camelCase coexist) and no key
// is ever guaranteed to be present; all access goes through the candidate-key
// helpers below.
type Bag map[string]any

// First returns the value of the first candidate key present in the bag,
// along with the key that matched.
func (b Bag) First(keys ...string) (any, string, bool) {
	if b == nil {
		return nil, "", false
	}
	for _, key := range keys {
		if val, ok := b[key]; ok && val != nil {
			return val, key, true
		}
	}
	return nil, "", false
}

// FirstString returns the first candidate key whose value is a non-empty
// string after trimming.
func (b Bag) FirstString(keys ...string) (string, string, bool) {
	if b == nil {
		return "", "", false
	}
	for _, key := range keys {
		if s, ok := asString(b[key]); ok {
			s = strings.TrimSpace(s)
			if s != "" {
				return s, key, true
			}
		}
	}
	return "", "", false
}

// FirstBool returns the first candidate key holding a boolean.
func (b Bag) FirstBool(keys ...string) (bool, bool) {
	if b == nil {
		return false, false
	}
	for _, key := range keys {
		if v, ok := b[key].(bool); ok {
			return v, true
		}
	}
	return false, false
}

// FirstInt returns the first candidate key holding a numeric value,
// truncated to an int. JSON decoding yields float64 for all numbers.
func (b Bag) FirstInt(keys ...string) (int, bool) {
	if b == nil {
		return 0, false
	}
	for _, key := range keys {
		switch v := b[key].(type) {
		case float64:
			return int(v), true
		case int:
			return v, true
		case int64:
			return int(v), true
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return int(n), true
			}
		}
	}
	return 0, false
}

// Nested returns the value under key as a Bag if it is an object.
func (b Bag) Nested(key string) Bag {
	if b == nil {
		return nil
	}
	switch v := b[key].(type) {
	case map[string]any:
		return Bag(v)
	case Bag:
		return v
	default:
		return nil
	}
}

// FirstStringList returns the first candidate key holding an array, filtered
// to its non-empty string elements.
func (b Bag) FirstStringList(keys ...string) ([]string, bool) {
	if b == nil {
		return nil, false
	}
	for _, key := range keys {
		raw, ok := b[key].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, el := range raw {
			if s, ok := asString(el); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out = append(out, s)
				}
			}
		}
		return out, true
	}
	return nil, false
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Stringify renders a bag value for search and display haystacks. Scalars
// render literally; composites fall back to compact JSON. A value that cannot
// be serialized is treated as absent.
func Stringify(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case json.Number:
		return val.String(), true
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(data), true
	}
}

package configs

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/content-prism/prism-core/internal/config"
)

func deepMergeJSON(oldVal, newVal interface{}) interface{} {
	oldMap, oldIsMap := oldVal.(map[string]interface{})
	newMap, newIsMap := newVal.(map[string]interface{})
	if oldIsMap && newIsMap {
		out := make(map[string]interface{}, len(oldMap))
		for k, v := range oldMap {
			out[k] = v
		}
		for k, v := range newMap {
			if existing, ok := out[k]; ok {
				out[k] = deepMergeJSON(existing, v)
				continue
			}
			out[k] = v
		}
		return out
	}

	// Arrays are replaced as a whole.
	return newVal
}

func normalizeOptionKey(key string) string {
	return camelToSnakeKey(key)
}

func normalizeJSONKeys(raw json.RawMessage, keyFn func(string) string) (json.RawMessage, error) {
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid json body")
	}
	normalized := convertMapKeys(data, keyFn)
	out, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func convertMapKeys(v interface{}, keyFn func(string) string) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			out[keyFn(k)] = convertMapKeys(child, keyFn)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, child := range val {
			out[i] = convertMapKeys(child, keyFn)
		}
		return out
	case *config.FullConfig:
		if val == nil {
			return nil
		}
		b, _ := json.Marshal(val)
		var m map[string]interface{}
		_ = json.Unmarshal(b, &m)
		return convertMapKeys(m, keyFn)
	case config.FullConfig:
		b, _ := json.Marshal(val)
		var m map[string]interface{}
		_ = json.Unmarshal(b, &m)
		return convertMapKeys(m, keyFn)
	default:
		return val
	}
}

func snakeToCamelKey(s string) string {
	if s == "" {
		return s
	}
	parts := strings.Split(s, "_")
	if len(parts) == 1 {
		return s
	}
	out := make([]rune, 0, len(s))
	out = append(out, []rune(parts[0])...)
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		out = append(out, runes...)
	}
	return string(out)
}

func camelToSnakeKey(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.TrimSpace(s))
	if len(runes) == 0 {
		return ""
	}
	out := make([]rune, 0, len(runes)+4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || nextLower {
					out = append(out, '_')
				}
			}
			out = append(out, unicode.ToLower(r))
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

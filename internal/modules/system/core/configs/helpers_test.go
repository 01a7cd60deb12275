package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeepMergeJSON(t *testing.T) {
	existing := map[string]interface{}{
		"workspace": map[string]interface{}{"name": "Prism Core", "description": "old"},
		"generation_options": map[string]interface{}{
			"enable_captions": true,
			"enable_summary":  true,
		},
	}
	incoming := map[string]interface{}{
		"workspace": map[string]interface{}{"description": "new"},
	}

	merged := deepMergeJSON(existing, incoming).(map[string]interface{})

	workspace := merged["workspace"].(map[string]interface{})
	assert.Equal(t, "Prism Core", workspace["name"])
	assert.Equal(t, "new", workspace["description"])

	// Untouched branches survive the merge.
	gen := merged["generation_options"].(map[string]interface{})
	assert.Equal(t, true, gen["enable_captions"])
}

func TestDeepMergeJSONReplacesNonObjects(t *testing.T) {
	assert.Equal(t, "b", deepMergeJSON("a", "b"))
	assert.Equal(t, []interface{}{"y"}, deepMergeJSON([]interface{}{"x"}, []interface{}{"y"}))
	assert.Equal(t, "scalar", deepMergeJSON(map[string]interface{}{"k": 1}, "scalar"))
}

func TestCamelToSnakeKey(t *testing.T) {
	assert.Equal(t, "bark_options", camelToSnakeKey("barkOptions"))
	assert.Equal(t, "auth_security", camelToSnakeKey("AuthSecurity"))
	assert.Equal(t, "url", camelToSnakeKey("URL"))
	assert.Equal(t, "s3_options", camelToSnakeKey("s3Options"))
	assert.Equal(t, "already_snake", camelToSnakeKey("already_snake"))
}

func TestSnakeToCamelKey(t *testing.T) {
	assert.Equal(t, "barkOptions", snakeToCamelKey("bark_options"))
	assert.Equal(t, "plain", snakeToCamelKey("plain"))
	assert.Equal(t, "", snakeToCamelKey(""))
}

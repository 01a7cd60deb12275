package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSchema(t *testing.T) {
	assert.NoError(t, validateSchema(`{"p1a": "", "p1b": ""}`))
	assert.NoError(t, validateSchema(`{"headline": {"max_chars": 80}}`))

	assert.EqualError(t, validateSchema(`[]`), "schema must be a JSON object")
	assert.EqualError(t, validateSchema(`"just a string"`), "schema must be a JSON object")
	assert.EqualError(t, validateSchema(`not json`), "schema must be a JSON object")
	assert.EqualError(t, validateSchema(`{}`), "schema must define at least one field")
}

package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func queryFor(t *testing.T, rawQuery string) Query {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return FromContext(c)
}

func TestFromContextDefaults(t *testing.T) {
	q := queryFor(t, "")
	assert.Equal(t, DefaultPage, q.Page)
	assert.Equal(t, DefaultSize, q.Size)
}

func TestFromContextClampsValues(t *testing.T) {
	assert.Equal(t, Query{Page: 3, Size: 25}, queryFor(t, "page=3&size=25"))
	assert.Equal(t, Query{Page: 1, Size: DefaultSize}, queryFor(t, "page=-1&size=0"))
	assert.Equal(t, Query{Page: 1, Size: MaxSize}, queryFor(t, "page=1&size=5000"))
	assert.Equal(t, Query{Page: DefaultPage, Size: DefaultSize}, queryFor(t, "page=abc&size=xyz"))
}

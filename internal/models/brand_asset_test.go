package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrandEntryListScanArray(t *testing.T) {
	var list BrandEntryList
	require.NoError(t, list.Scan(`[{"id":"v1","name":"Warm","description":"warm and direct"}]`))

	require.Len(t, list, 1)
	assert.Equal(t, "v1", list[0].ID)
	assert.Equal(t, "warm and direct", list[0].Description)
}

func TestBrandEntryListScanNamedObject(t *testing.T) {
	var list BrandEntryList
	require.NoError(t, list.Scan(`{"Serious":"formal tone","Casual":"relaxed tone"}`))

	// Names sort for a stable order.
	require.Len(t, list, 2)
	assert.Equal(t, "Casual", list[0].Name)
	assert.Equal(t, "relaxed tone", list[0].Description)
	assert.Equal(t, "Serious", list[1].Name)
}

func TestBrandEntryListScanBareString(t *testing.T) {
	var list BrandEntryList
	require.NoError(t, list.Scan(`"speak plainly"`))

	require.Len(t, list, 1)
	assert.Equal(t, "default", list[0].ID)
	assert.Equal(t, "speak plainly", list[0].Description)
}

func TestBrandEntryListScanEmpty(t *testing.T) {
	var list BrandEntryList
	require.NoError(t, list.Scan(nil))
	assert.Empty(t, list)

	require.NoError(t, list.Scan("null"))
	assert.Empty(t, list)

	require.NoError(t, list.Scan([]byte("")))
	assert.Empty(t, list)
}

func TestBrandEntryListValue(t *testing.T) {
	var nilList BrandEntryList
	v, err := nilList.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = BrandEntryList{{ID: "a", Name: "A", Description: "d"}}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","name":"A","description":"d"}]`, v.(string))
}

func TestBrandEntryListByID(t *testing.T) {
	list := BrandEntryList{
		{ID: "v1", Name: "One"},
		{ID: "v2", Name: "Two"},
	}

	entry := list.ByID("v2")
	require.NotNil(t, entry)
	assert.Equal(t, "Two", entry.Name)

	assert.Nil(t, list.ByID("missing"))
	assert.Nil(t, list.ByID(""))
}

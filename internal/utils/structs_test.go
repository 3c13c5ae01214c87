package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	ID      string  `db:"id"`
	Name    string  `db:"name"`
	Note    *string `db:"note"`
	Skipped string  `db:"-"`
	Plain   string
	hidden  string `db:"hidden"`
}

func TestStructTagValues(t *testing.T) {
	assert.Equal(t, []string{"id", "name", "note"}, StructTagValues(row{}))
	assert.Equal(t, []string{"name", "note"}, StructTagValues(&row{}, "id"))
}

func TestStructToMap(t *testing.T) {
	r := &row{ID: "a1", Name: "Asha", hidden: "x"}

	m := StructToMap(r, "note")
	assert.Equal(t, map[string]any{"id": "a1", "name": "Asha"}, m)
}

func TestStructTagValuesPanicsOnNonStruct(t *testing.T) {
	assert.Panics(t, func() { StructTagValues(42) })
}

func TestNullableString(t *testing.T) {
	assert.Nil(t, NullableString("  "))
	assert.Equal(t, "a@b.co", PtrString(NullableString("a@b.co")))
	assert.Equal(t, "", PtrString(nil))
}

func TestNanoID(t *testing.T) {
	id := NanoID()
	assert.Len(t, id, NanoidSize)
	assert.Regexp(t, `^[0-9a-z]+$`, id)
	assert.Len(t, NanoIDSize(8), 8)
}

func TestErrorWrapOrNil(t *testing.T) {
	assert.NoError(t, ErrorWrapOrNil(nil, "context"))
	assert.EqualError(t, ErrorWrapOrNil(assert.AnError, "context"), "context: "+assert.AnError.Error())
}

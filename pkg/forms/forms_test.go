package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormIDParts(t *testing.T) {
	id := FormID(0x0201ABCD)
	assert.Equal(t, byte(0x02), id.ModIndex())
	assert.Equal(t, FormID(0x0501ABCD), id.WithModIndex(5))
	assert.Equal(t, "0201ABCD", id.String())

	light := FormID(0xFE003801)
	assert.Equal(t, LightModIndex, light.ModIndex())
	assert.Equal(t, uint16(3), light.LightIndex())
}

func TestRef(t *testing.T) {
	assert.True(t, NoRef.IsNone())
	assert.Equal(t, FormID(0), NoRef.ID())
	_, ok := NoRef.Form()
	assert.False(t, ok)

	f := &Form{ID: 0x14, EditorID: "Player"}
	r := RefTo(f)
	got, ok := r.Form()
	require.True(t, ok)
	assert.Same(t, f, got)
	assert.Equal(t, FormID(0x14), r.ID())

	assert.True(t, RefTo(nil).IsNone())
}

func TestTable(t *testing.T) {
	tbl := NewTable()
	f := &Form{ID: 0x00012EB7, EditorID: "Gold001"}
	require.NoError(t, tbl.Add(f))
	assert.ErrorIs(t, tbl.Add(&Form{ID: 0x00012EB7}), ErrDuplicateForm)

	assert.Same(t, f, tbl.LookupFormByID(0x00012EB7))
	assert.Nil(t, tbl.LookupFormByID(0x00012EB8))
	assert.Nil(t, tbl.LookupFormByID(0))
	assert.Equal(t, 1, tbl.Len())
}

func TestResolve(t *testing.T) {
	saved := LoadOrder{
		Plugins: []string{"Skyrim.esm", "Update.esm", "Removed.esp", "Moved.esp"},
		Light:   []string{"a.esl", "b.esl"},
	}
	current := LoadOrder{
		Plugins: []string{"Skyrim.esm", "Update.esm", "New.esp", "Other.esp", "Moved.esp"},
		Light:   []string{"b.esl"},
	}

	testCases := []struct {
		name     string
		id       FormID
		expected FormID
		ok       bool
	}{
		{name: "unchanged", id: 0x00000014, expected: 0x00000014, ok: true},
		{name: "moved", id: 0x03000D62, expected: 0x04000D62, ok: true},
		{name: "removed", id: 0x02000D62, ok: false},
		{name: "out of range", id: 0x09000001, ok: false},
		{name: "runtime", id: 0xFF000810, expected: 0xFF000810, ok: true},
		{name: "light moved", id: 0xFE001805, expected: 0xFE000805, ok: true},
		{name: "light removed", id: 0xFE000805, ok: false},
		{name: "light out of range", id: 0xFE005805, ok: false},
	}

	for _, testCase := range testCases {
		testCase := testCase

		t.Run(testCase.name, func(t *testing.T) {
			got, ok := current.Resolve(saved, testCase.id)
			require.Equal(t, testCase.ok, ok)
			if ok {
				assert.Equal(t, testCase.expected, got)
			}
		})
	}
}

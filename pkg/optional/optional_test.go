package optional

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/hexscriptex/pkg/forms"
	"github.com/rawbytedev/hexscriptex/pkg/strpool"
)

var (
	testPlayer = &forms.Form{ID: 0x00000014, EditorID: "Player"}
	testGold   = &forms.Form{ID: 0x0000000F, EditorID: "Gold001"}
)

func newTestEnv(t *testing.T) (Env, *strpool.Pool) {
	t.Helper()

	pool := strpool.New()
	table := forms.NewTable()
	require.NoError(t, table.Add(testPlayer))
	require.NoError(t, table.Add(testGold))

	return Env{Strings: pool, Forms: table}, pool
}

func TestNewIsEmpty(t *testing.T) {
	env, _ := newTestEnv(t)
	o := New(env)

	assert.False(t, o.HasValue())
	assert.Equal(t, TypeNone, o.Type())
	assert.Equal(t, ClassName, o.ClassName())
	assert.Equal(t, SaveVersion, o.ClassVersion())
	assert.Equal(t, "None", o.String())
}

func TestSetGet(t *testing.T) {
	env, _ := newTestEnv(t)
	player := forms.RefTo(testPlayer)

	testCases := []struct {
		name     string
		set      func(o *Optional)
		expected Type
		check    func(t *testing.T, o *Optional)
	}{
		{
			name:     "Int",
			set:      func(o *Optional) { o.SetInt(42) },
			expected: TypeInt,
			check: func(t *testing.T, o *Optional) {
				assert.Equal(t, int32(42), o.GetInt(-1))
				assert.Equal(t, int32(42), o.IntUnchecked())
			},
		},
		{
			name:     "Float",
			set:      func(o *Optional) { o.SetFloat(2.5) },
			expected: TypeFloat,
			check: func(t *testing.T, o *Optional) {
				assert.Equal(t, float32(2.5), o.GetFloat(-1))
				assert.Equal(t, float32(2.5), o.FloatUnchecked())
			},
		},
		{
			name:     "Bool",
			set:      func(o *Optional) { o.SetBool(true) },
			expected: TypeBool,
			check: func(t *testing.T, o *Optional) {
				assert.True(t, o.GetBool(false))
				assert.True(t, o.BoolUnchecked())
			},
		},
		{
			name:     "String",
			set:      func(o *Optional) { o.SetString("hello") },
			expected: TypeString,
			check: func(t *testing.T, o *Optional) {
				assert.Equal(t, "hello", o.GetString("dflt"))
				assert.Equal(t, "hello", o.StringUnchecked())
			},
		},
		{
			name:     "Form",
			set:      func(o *Optional) { o.SetForm(player) },
			expected: TypeForm,
			check: func(t *testing.T, o *Optional) {
				assert.Equal(t, player, o.GetForm(forms.NoRef))
				assert.Equal(t, player, o.FormUnchecked())
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase

		t.Run(testCase.name, func(t *testing.T) {
			o := New(env)
			testCase.set(o)

			require.True(t, o.HasValue())
			require.Equal(t, testCase.expected, o.Type())
			testCase.check(t, o)

			// every other accessor falls back to its default
			if testCase.expected != TypeInt {
				assert.Equal(t, int32(-7), o.GetInt(-7))
				assert.Zero(t, o.IntUnchecked())
			}
			if testCase.expected != TypeFloat {
				assert.Equal(t, float32(9.9), o.GetFloat(9.9))
				assert.Zero(t, o.FloatUnchecked())
			}
			if testCase.expected != TypeBool {
				assert.True(t, o.GetBool(true))
				assert.False(t, o.GetBool(false))
			}
			if testCase.expected != TypeString {
				assert.Equal(t, "dflt", o.GetString("dflt"))
				assert.Empty(t, o.StringUnchecked())
			}
			if testCase.expected != TypeForm {
				gold := forms.RefTo(testGold)
				assert.Equal(t, gold, o.GetForm(gold))
				assert.True(t, o.FormUnchecked().IsNone())
			}
		})
	}
}

func TestSetFormNone(t *testing.T) {
	env, _ := newTestEnv(t)
	o := New(env)
	o.SetForm(forms.NoRef)

	assert.True(t, o.HasValue())
	assert.Equal(t, TypeForm, o.Type())
	assert.True(t, o.GetForm(forms.RefTo(testGold)).IsNone())
	assert.Equal(t, "Form(none)", o.String())
}

func TestResetFromEveryState(t *testing.T) {
	env, pool := newTestEnv(t)
	setters := []func(o *Optional){
		func(o *Optional) {},
		func(o *Optional) { o.SetInt(1) },
		func(o *Optional) { o.SetFloat(1) },
		func(o *Optional) { o.SetBool(true) },
		func(o *Optional) { o.SetString("text") },
		func(o *Optional) { o.SetForm(forms.RefTo(testPlayer)) },
	}

	for _, set := range setters {
		o := New(env)
		set(o)
		o.Reset()
		assert.False(t, o.HasValue())
		assert.Equal(t, TypeNone, o.Type())
		o.Reset()
		assert.Equal(t, TypeNone, o.Type())
	}
	assert.Zero(t, pool.Len())
}

func TestResetThenDefault(t *testing.T) {
	env, _ := newTestEnv(t)
	o := New(env)
	o.SetString("hello")
	o.Reset()

	assert.False(t, o.HasValue())
	assert.Equal(t, "dflt", o.GetString("dflt"))
}

func TestStringAssociationReleased(t *testing.T) {
	env, pool := newTestEnv(t)
	o := New(env)

	o.SetString("first")
	require.Equal(t, 1, pool.Refs("first"))

	o.SetString("second")
	assert.Equal(t, 0, pool.Refs("first"))
	assert.Equal(t, 1, pool.Refs("second"))

	o.SetInt(3)
	assert.Equal(t, 0, pool.Refs("second"))
	assert.Equal(t, 0, pool.Len())
	assert.Empty(t, o.StringUnchecked())

	other := New(env)
	o.SetString("shared")
	other.SetString("shared")
	assert.Equal(t, 2, pool.Refs("shared"))
	o.Release()
	assert.Equal(t, 1, pool.Refs("shared"))
	assert.Equal(t, "shared", other.GetString(""))
}

func TestFormReplaced(t *testing.T) {
	env, _ := newTestEnv(t)
	o := New(env)

	o.SetForm(forms.RefTo(testPlayer))
	o.SetBool(false)

	assert.True(t, o.FormUnchecked().IsNone())
	assert.Equal(t, forms.NoRef, o.GetForm(forms.NoRef))
	assert.False(t, o.GetBool(true))
}

func TestMissingCollaborators(t *testing.T) {
	o := New(Env{})
	o.SetString("x")
	assert.Equal(t, TypeString, o.Type())
	assert.Equal(t, "x", o.GetString("dflt"))
	assert.Equal(t, "x", o.StringUnchecked())
	assert.Equal(t, `String("x")`, o.String())
	o.SetInt(3)
	assert.Equal(t, "dflt", o.GetString("dflt"))
	o.Reset()
	assert.False(t, o.HasValue())
}

func TestIntQuick(t *testing.T) {
	env, _ := newTestEnv(t)
	o := New(env)
	condition := func(v, def int32) bool {
		o.SetInt(v)
		return o.GetInt(def) == v && o.GetFloat(float32(def)) == float32(def)
	}
	require.NoError(t, quick.Check(condition, nil))
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "Form", TypeForm.String())
	assert.Equal(t, "Type(9)", Type(9).String())
}

func TestString(t *testing.T) {
	env, _ := newTestEnv(t)
	o := New(env)

	o.SetInt(42)
	assert.Equal(t, "Int(42)", o.String())
	o.SetFloat(1.5)
	assert.Equal(t, "Float(1.5)", o.String())
	o.SetBool(true)
	assert.Equal(t, "Bool(true)", o.String())
	o.SetString("hi")
	assert.Equal(t, `String("hi")`, o.String())
	o.SetForm(forms.RefTo(testPlayer))
	assert.Equal(t, "Form(00000014)", o.String())
}

package strpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternShares(t *testing.T) {
	p := New()
	a := p.Intern("hello")
	b := p.Intern("hello")

	assert.Equal(t, "hello", a.String())
	assert.Equal(t, a, b)
	assert.Equal(t, 2, p.Refs("hello"))
	assert.Equal(t, 1, p.Len())
}

func TestReleaseForgets(t *testing.T) {
	p := New()
	a := p.Intern("hello")
	b := p.Intern("hello")

	p.Release(a)
	require.Equal(t, 1, p.Refs("hello"))
	assert.Equal(t, "hello", b.String())

	p.Release(b)
	assert.Equal(t, 0, p.Refs("hello"))
	assert.Equal(t, 0, p.Len())

	// stale handle from a dropped entry must not disturb a fresh one
	c := p.Intern("hello")
	p.Release(a)
	assert.Equal(t, 1, p.Refs("hello"))
	p.Release(c)
	assert.Equal(t, 0, p.Len())
}

func TestEmptyString(t *testing.T) {
	p := New()
	f := p.Intern("")

	assert.True(t, f.IsEmpty())
	assert.Equal(t, "", f.String())
	assert.Equal(t, 0, p.Len())

	p.Release(f)
	p.Release(FixedString{})
	assert.Equal(t, 0, p.Len())
}

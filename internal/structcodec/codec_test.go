package structcodec

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mixed struct {
	Name    string
	Stamp   int64
	Flag    bool
	Ratio   float32
	Plugins []string
	Raw     []byte
	Counts  []uint16
	hidden  int
}

func TestEncodeDecodeMixed(t *testing.T) {
	in := mixed{
		Name:    "hexscriptex",
		Stamp:   1700000000,
		Flag:    true,
		Ratio:   0.5,
		Plugins: []string{"Skyrim.esm", "Update.esm"},
		Raw:     []byte{1, 2, 3},
		Counts:  []uint16{7, 65535},
		hidden:  9,
	}
	data, err := Marshal(in)
	require.NoError(t, err)

	var out mixed
	require.NoError(t, Unmarshal(data, &out))
	require.EqualExportedValues(t, in, out)
	assert.Zero(t, out.hidden)
}

func TestEncodeDecodeQuick(t *testing.T) {
	type flat struct {
		A uint8
		B int32
		C uint64
		D string
		E []string
		F float64
	}
	c := New()
	condition := func(z flat) bool {
		data, err := c.Encode(&z)
		require.NoError(t, err)
		var res flat
		require.NoError(t, c.Decode(data, &res))
		return assert.ObjectsAreEqual(z, res)
	}
	require.NoError(t, quick.Check(condition, nil))
}

func TestDecodeFewerFields(t *testing.T) {
	type v1 struct {
		Stamp int64
		Name  string
	}
	type v2 struct {
		Stamp int64
		Name  string
		Extra []string
	}
	data, err := Marshal(v1{Stamp: 5, Name: "old"})
	require.NoError(t, err)

	var out v2
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, int64(5), out.Stamp)
	assert.Equal(t, "old", out.Name)
	assert.Nil(t, out.Extra)

	data, err = Marshal(v2{Stamp: 1})
	require.NoError(t, err)
	assert.ErrorIs(t, Unmarshal(data, &v1{}), ErrCorrupt)
}

func TestDecodeTruncated(t *testing.T) {
	data, err := Marshal(mixed{Name: "truncate me", Plugins: []string{"a", "b"}})
	require.NoError(t, err)

	for i := 0; i < len(data); i++ {
		var out mixed
		err := Unmarshal(data[:i], &out)
		require.Error(t, err, "prefix length %d", i)
	}
}

func TestUnsupported(t *testing.T) {
	_, err := Marshal(42)
	assert.ErrorIs(t, err, ErrNotStruct)

	assert.ErrorIs(t, Unmarshal([]byte{0}, mixed{}), ErrNotStructPtr)

	_, err = Marshal(struct{ M map[string]int }{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

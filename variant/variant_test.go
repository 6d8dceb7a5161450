package variant

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToString(t *testing.T) {
	tests := []struct {
		in   Variant
		want string
	}{
		{FromFloat(50000.0 / 1500.0), "33.333"},
		{FromFloat(24.2), "24.2"},
		{FromFloat(4), "4"},
		{FromFloat(-0.0001), "0"},
		{FromInt(-12), "-12"},
		{FromBool(true), "1"},
		{FromBool(false), "0"},
		{FromString("px"), "px"},
		{FromColour(color.RGBA{180, 100, 255, 255}), "#b464ff"},
		{FromColour(color.RGBA{1, 2, 3, 4}), "#01020304"},
		{FromVec2(Vec2{1.5, 2}), "1.5, 2"},
		{Variant{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.ToString(), "type %s", tt.in.Type())
	}
}

func TestToBool(t *testing.T) {
	assert.False(t, Variant{}.ToBool())
	assert.False(t, FromString("").ToBool())
	assert.False(t, FromString("false").ToBool())
	assert.False(t, FromString("0").ToBool())
	assert.False(t, FromString("0.0").ToBool())
	assert.False(t, FromFloat(0).ToBool())
	assert.True(t, FromString("foxdog").ToBool())
	assert.True(t, FromString("TRUE").ToBool())
	assert.True(t, FromInt(-1).ToBool())
}

func TestToFloat(t *testing.T) {
	f, ok := FromString(" 12.5 ").ToFloat()
	require.True(t, ok)
	assert.Equal(t, 12.5, f)

	f, ok = FromBool(true).ToFloat()
	require.True(t, ok)
	assert.Equal(t, 1.0, f)

	_, ok = FromString("inf").ToFloat()
	assert.False(t, ok)
	_, ok = FromString("0x10").ToFloat()
	assert.False(t, ok)
	_, ok = FromString("hello").ToFloat()
	assert.False(t, ok)

	i, ok := FromFloat(-3.9).ToInt()
	require.True(t, ok)
	assert.Equal(t, int64(-3), i)
}

func TestVariant_IntRange(t *testing.T) {
	for _, v := range []Variant{FromFloat(1e24), FromFloat(-1e19), FromFloat(9223372036854775808), FromString("1e30")} {
		_, ok := v.ToInt()
		assert.False(t, ok, v.ToString())
	}
	i, ok := FromFloat(-9223372036854775808).ToInt()
	require.True(t, ok)
	assert.Equal(t, int64(-1<<63), i)

	_, ok = Of(uint64(1) << 63)
	assert.False(t, ok)
	_, ok = Of(^uint(0))
	assert.False(t, ok)
	v, ok := Of(uint64(42))
	require.True(t, ok)
	assert.Equal(t, Int, v.Type())
}

func TestParseColour(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#b464ff", color.RGBA{180, 100, 255, 255}},
		{"#fff", color.RGBA{255, 255, 255, 255}},
		{"#11223344", color.RGBA{0x11, 0x22, 0x33, 0x44}},
		{"rgb(1, 2, 3)", color.RGBA{1, 2, 3, 255}},
		{"rgba(1,2,3,4)", color.RGBA{1, 2, 3, 4}},
		{"Red", color.RGBA{255, 0, 0, 255}},
	}
	for _, tt := range tests {
		got, ok := ParseColour(tt.in)
		require.True(t, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"#12", "rgb(1,2)", "rgb(300,0,0)", "notacolour"} {
		_, ok := ParseColour(bad)
		assert.False(t, ok, bad)
	}
}

func TestOfAndEqual(t *testing.T) {
	v, ok := Of(uint16(7))
	require.True(t, ok)
	assert.Equal(t, Int, v.Type())
	assert.True(t, Equal(v, FromInt(7)))
	assert.False(t, Equal(v, FromFloat(7)))

	_, ok = Of(struct{}{})
	assert.False(t, ok)

	c, ok := FromString("#000000").ToColourF()
	require.True(t, ok)
	assert.Equal(t, ColourF{0, 0, 0, 1}, c)

	vec, ok := FromString("1, 2, 3").ToVec3()
	require.True(t, ok)
	assert.Equal(t, Vec3{1, 2, 3}, vec)
}

package datamodel

import (
	"bytes"
	"image/color"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/uicore/dataexpr"
	"github.com/IvanBrykalov/uicore/variant"
)

type fun struct {
	X     int   `data:"x"`
	Magic []int `data:"magic"`
}

type testData struct {
	Valid   bool  `data:"valid"`
	Fun     fun   `data:"fun"`
	MoreFun []fun `data:"more_fun"`
	Hidden  int   `data:"-"`
	Label   string
	secret  int
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newModel(t *testing.T) (*Model, *testData) {
	t.Helper()
	d := &testData{
		Valid: true,
		Fun:   fun{X: 6, Magic: []int{3, 5, 7, 11, 13}},
		MoreFun: []fun{
			{X: 1, Magic: []int{1}},
			{X: 2, Magic: []int{2, 4, 6, 8}},
		},
		Label: "hello",
	}
	m := New(Options{Logger: quiet()})
	require.NoError(t, m.Bind("data", d))
	return m, d
}

func get(t *testing.T, m *Model, path string) (variant.Variant, bool) {
	t.Helper()
	addr, ok := m.ParseAddress(path)
	if !ok {
		return variant.Variant{}, false
	}
	return m.GetValue(addr)
}

func TestModel_GetValue(t *testing.T) {
	t.Parallel()

	m, _ := newModel(t)
	cases := map[string]string{
		"data.more_fun[1].magic[3]":   "8",
		"data.more_fun[1].magic.size": "4",
		"data.fun.x":                  "6",
		"data.valid":                  "1",
		"data.more_fun.size":          "2",
		"data.Label":                  "hello",
		"data.label":                  "hello",
		"data.label.size":             "5",
		"literal.int[42]":             "42",
	}
	for path, want := range cases {
		v, ok := get(t, m, path)
		require.True(t, ok, path)
		assert.Equal(t, want, v.ToString(), path)
	}

	for _, path := range []string{
		"data.fun.magic[8]",
		"data.nope",
		"data.Hidden",
		"data.secret",
		"data.fun.x.y",
		"data.fun[0]",
	} {
		_, ok := get(t, m, path)
		assert.False(t, ok, path)
	}
}

func TestModel_SetValue(t *testing.T) {
	t.Parallel()

	m, d := newModel(t)
	addr, ok := m.ParseAddress("data.more_fun[1].magic[1]")
	require.True(t, ok)
	require.True(t, m.SetValue(addr, variant.FromString("199")))
	assert.Equal(t, 199, d.MoreFun[1].Magic[1])
	assert.True(t, m.IsVariableDirty("data"))

	addr, _ = m.ParseAddress("data.fun.magic.size")
	assert.False(t, m.SetValue(addr, variant.FromInt(1)), "size is read-only")

	addr, _ = m.ParseAddress("data.fun.x")
	assert.False(t, m.SetValue(addr, variant.FromString("abc")))
	assert.Equal(t, 6, d.Fun.X)
}

func TestModel_ParseAddress(t *testing.T) {
	t.Parallel()

	m, _ := newModel(t)
	addr, ok := m.ParseAddress("data.more_fun[1][0].x")
	require.True(t, ok)
	assert.Equal(t, dataexpr.Address{
		{Name: "data"}, {Name: "more_fun"}, {Index: 1}, {Index: 0}, {Name: "x"},
	}, addr)

	for _, bad := range []string{"", "data.", ".data", "data..x", "[1]", "data[x]", "data[-1]", "data[1", "data[1]x", "unknown.x"} {
		_, ok := m.ParseAddress(bad)
		assert.False(t, ok, bad)
	}
}

func TestModel_BindErrors(t *testing.T) {
	t.Parallel()

	m := New(Options{Logger: quiet()})
	x := 1
	cases := []struct {
		name string
		ptr  any
		want error
	}{
		{"", &x, ErrIllegalName},
		{"1abc", &x, ErrIllegalName},
		{"a-b", &x, ErrIllegalName},
		{"size", &x, ErrReservedName},
		{"Literal", &x, ErrReservedName},
		{"IT", &x, ErrReservedName},
		{"ok", x, ErrNotPointer},
		{"ok", (*int)(nil), ErrNotPointer},
	}
	for _, tc := range cases {
		err := m.Bind(tc.name, tc.ptr)
		assert.ErrorIs(t, err, tc.want, tc.name)
		var be *BindError
		assert.ErrorAs(t, err, &be)
	}

	require.NoError(t, m.Bind("x", &x))
	assert.ErrorIs(t, m.Bind("x", &x), ErrDuplicateName)
	assert.ErrorIs(t, m.BindFunc("f", nil, nil), ErrNilFunc)
	assert.ErrorIs(t, m.RegisterTransform("to_upper", func([]variant.Variant) (variant.Variant, error) {
		return variant.Variant{}, nil
	}), ErrDuplicateName)
}

func TestModel_Kinds(t *testing.T) {
	t.Parallel()

	type mode string
	var (
		f    float32 = 1.5
		u    uint8   = 7
		md           = mode("dark")
		c            = color.RGBA{255, 0, 0, 255}
		vec          = variant.Vec2{X: 1, Y: 2}
		dyn  any     = map[string]any{"n": 1}
		tbl          = map[string][]string{"k": {"a", "b"}}
		ptr          = &fun{X: 3}
		null *fun
	)
	m := New(Options{Logger: quiet()})
	for name, p := range map[string]any{
		"f": &f, "u": &u, "md": &md, "c": &c, "vec": &vec, "iface": &dyn, "tbl": &tbl, "ptr": &ptr, "null": &null,
	} {
		require.NoError(t, m.Bind(name, p))
	}

	for path, want := range map[string]string{
		"f": "1.5", "u": "7", "md": "dark", "c": "#ff0000", "vec": "1, 2",
		"iface.n": "1", "tbl.k[1]": "b", "tbl.k.size": "2", "ptr.x": "3", "tbl.size": "1",
	} {
		v, ok := get(t, m, path)
		require.True(t, ok, path)
		assert.Equal(t, want, v.ToString(), path)
	}
	_, ok := get(t, m, "null.x")
	assert.False(t, ok)

	require.NoError(t, m.Assign("f = 2.25; u = 9; md = 'light'; c = 'blue'; vec = '3, 4'"))
	assert.Equal(t, float32(2.25), f)
	assert.Equal(t, uint8(9), u)
	assert.Equal(t, mode("light"), md)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, c)
	assert.Equal(t, variant.Vec2{X: 3, Y: 4}, vec)

	// Map values and interface contents are written back by copy.
	require.NoError(t, m.Assign("iface.n = 5; tbl.k[0] = 'z'; ptr.x = 8"))
	assert.EqualValues(t, 5, dyn.(map[string]any)["n"])
	assert.Equal(t, "z", tbl["k"][0])
	assert.Equal(t, 8, ptr.X)

	assert.Error(t, m.Assign("u = 300"), "overflow")
	assert.Error(t, m.Assign("u = -1"))
}

func TestModel_IntRange(t *testing.T) {
	t.Parallel()

	var (
		x   = int64(7)
		big = uint64(1) << 63
		u   = uint64(5)
	)
	m := New(Options{Logger: quiet()})
	require.NoError(t, m.Bind("x", &x))
	require.NoError(t, m.Bind("big", &big))
	require.NoError(t, m.Bind("u", &u))

	assert.Error(t, m.Assign("x = 100000000000000000000000"))
	assert.Equal(t, int64(7), x)
	assert.Error(t, m.Assign("u = 100000000000000000000000"))
	assert.Equal(t, uint64(5), u)

	_, ok := get(t, m, "big")
	assert.False(t, ok)
	_, err := m.Eval("big + 1")
	assert.Error(t, err)
}

func TestModel_BindFunc(t *testing.T) {
	t.Parallel()

	m := New(Options{Logger: quiet()})
	n := int64(2)
	require.NoError(t, m.BindFunc("count",
		func() variant.Variant { return variant.FromInt(n) },
		func(v variant.Variant) { n, _ = v.ToInt() },
	))
	require.NoError(t, m.BindFunc("frozen", func() variant.Variant { return variant.FromString("ice") }, nil))

	v, err := m.Eval("count * 10")
	require.NoError(t, err)
	assert.Equal(t, "20", v.ToString())

	require.NoError(t, m.Assign("count = count + 1"))
	assert.Equal(t, int64(3), n)
	assert.True(t, m.IsVariableDirty("count"))

	assert.Error(t, m.Assign("frozen = 'water'"))
	_, err = m.Eval("count.x")
	assert.Error(t, err)
}

func TestModel_Transforms(t *testing.T) {
	t.Parallel()

	m, _ := newModel(t)
	require.NoError(t, m.RegisterTransform("shout", func(a []variant.Variant) (variant.Variant, error) {
		return variant.FromString(strings.ToUpper(a[0].ToString()) + "!"), nil
	}))
	v, err := m.Eval("data.Label | shout")
	require.NoError(t, err)
	assert.Equal(t, "HELLO!", v.ToString())

	v, err = m.Eval("data.fun.magic.size > 3 ? data.fun.magic[4] : 0")
	require.NoError(t, err)
	assert.Equal(t, "13", v.ToString())
}

func TestModel_TransformNameIsNotReportedMissing(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	m := New(Options{Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))})
	require.NoError(t, m.RegisterTransform("now", func([]variant.Variant) (variant.Variant, error) {
		return variant.FromInt(1), nil
	}))

	v, err := m.Eval("now")
	require.NoError(t, err)
	assert.Equal(t, "1", v.ToString())
	assert.NotContains(t, buf.String(), "variable not found")

	_, err = m.Eval("missing")
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "variable not found")
}

func TestModel_Alias(t *testing.T) {
	t.Parallel()

	m, d := newModel(t)
	require.NoError(t, m.Alias("it", "data.more_fun[1]"))
	v, err := m.Eval("it.x + it.magic.size")
	require.NoError(t, err)
	assert.Equal(t, "6", v.ToString())

	require.NoError(t, m.Assign("it.x = 20"))
	assert.Equal(t, 20, d.MoreFun[1].X)
	assert.True(t, m.IsVariableDirty("data"), "writes through an alias dirty the real root")

	// Re-pointing the alias must not reuse the expression compiled for the
	// old target.
	require.NoError(t, m.Alias("it", "data.more_fun[0]"))
	v, err = m.Eval("it.x + it.magic.size")
	require.NoError(t, err)
	assert.Equal(t, "2", v.ToString())

	assert.True(t, m.RemoveAlias("it"))
	assert.False(t, m.RemoveAlias("it"))
	_, err = m.Eval("it.x")
	assert.Error(t, err)

	assert.ErrorIs(t, m.Alias("x", "nowhere"), ErrInvalidTarget)
}

func TestModel_Views(t *testing.T) {
	t.Parallel()

	m, d := newModel(t)
	var got []string
	id, err := m.AddView("data.fun.x * 2", func(v variant.Variant) { got = append(got, v.ToString()) })
	require.NoError(t, err)
	_, err = m.AddView("'static'", func(variant.Variant) { got = append(got, "static") })
	require.NoError(t, err)

	assert.Equal(t, 2, m.Update(), "first update runs every view")
	assert.Equal(t, []string{"12", "static"}, got)

	assert.Equal(t, 0, m.Update(), "nothing dirty")

	d.Fun.X = 10
	m.DirtyVariable("data")
	assert.Equal(t, 1, m.Update())
	assert.Equal(t, "20", got[len(got)-1])
	assert.False(t, m.IsVariableDirty("data"))

	require.NoError(t, m.Assign("data.fun.x = 1"))
	assert.Equal(t, 1, m.Update())
	assert.Equal(t, "2", got[len(got)-1])

	require.NoError(t, m.RemoveView(id))
	assert.ErrorIs(t, m.RemoveView(id), ErrUnknownView)
	m.DirtyAll()
	assert.Equal(t, 0, m.Update())

	_, err = m.AddView("(", nil)
	var pe *dataexpr.ParseError
	assert.ErrorAs(t, err, &pe)
}

// A callback that writes a variable is picked up by the next Update.
func TestModel_ViewWritesDuringUpdate(t *testing.T) {
	t.Parallel()

	m := New(Options{Logger: quiet()})
	a, b := 1, 0
	require.NoError(t, m.Bind("a", &a))
	require.NoError(t, m.Bind("b", &b))

	_, err := m.AddView("a", func(v variant.Variant) {
		require.NoError(t, m.Assign("b = a * 10"))
	})
	require.NoError(t, err)
	var seen []string
	_, err = m.AddView("b", func(v variant.Variant) { seen = append(seen, v.ToString()) })
	require.NoError(t, err)

	m.Update()
	assert.True(t, m.IsVariableDirty("b"))
	m.Update()
	assert.Equal(t, "10", seen[len(seen)-1])
}

func TestModel_ExpressionCache(t *testing.T) {
	t.Parallel()

	m, _ := newModel(t)
	for i := 0; i < 5; i++ {
		_, err := m.Eval("data.fun.x + 1")
		require.NoError(t, err)
	}
	st := m.CacheStats()
	assert.Equal(t, uint64(4), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
	assert.Equal(t, 1, st.Len)

	// Same text in assignment mode is a different entry.
	require.NoError(t, m.Assign("data.fun.x = 1"))
	assert.Equal(t, 2, m.CacheStats().Len)

	off := New(Options{Logger: quiet(), ExpressionCache: -1})
	x := 1
	require.NoError(t, off.Bind("x", &x))
	_, err := off.Eval("x")
	require.NoError(t, err)
	assert.Equal(t, 0, off.CacheStats().Len)
}

func TestCheckName(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"a", "Abc_1", "x9", "sizes", "iterator"} {
		assert.NoError(t, checkName(ok), ok)
	}
	for _, bad := range []string{"_a", "9", "a b", "ä", "True", "EV"} {
		assert.Error(t, checkName(bad), bad)
	}
}

package glyph

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"
)

// asciiFace is Face7x13 without the replacement glyph, so runes outside
// ASCII are missing.
func asciiFace() *basicfont.Face {
	f := *basicfont.Face7x13
	f.Ranges = []basicfont.Range{{Low: ' ', High: '\u007f', Offset: 0}}
	return &f
}

func nonZero(p []uint8) bool {
	for _, b := range p {
		if b != 0 {
			return true
		}
	}
	return false
}

func TestCache_GetRasterizesOnce(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	face := c.AddFace(basicfont.Face7x13)
	ctx := context.Background()

	g, err := c.Get(ctx, face, 'A')
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, -11, 6, 2), g.Bounds)
	assert.Equal(t, image.Rect(0, 0, 6, 13), g.Mask.Bounds())
	assert.Equal(t, 78, g.Size())
	assert.Equal(t, fixed.I(7), g.Advance)
	assert.True(t, nonZero(g.Mask.Pix))

	again, err := c.Get(ctx, face, 'A')
	require.NoError(t, err)
	assert.Same(t, g, again)

	sp, err := c.Get(ctx, face, ' ')
	require.NoError(t, err)
	assert.False(t, nonZero(sp.Mask.Pix))

	st := c.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(2), st.Misses)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(156), st.Cost)
}

func TestCache_Errors(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	face := c.AddFace(asciiFace())

	_, err := c.Get(context.Background(), face+1, 'a')
	assert.ErrorIs(t, err, ErrUnknownFace)

	_, err = c.Get(context.Background(), face, 'é')
	assert.ErrorIs(t, err, ErrNoGlyph)
	assert.Equal(t, 0, c.Len(), "failures are not cached")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Get(ctx, face, 'q')
	assert.True(t, errors.Is(err, context.Canceled), "%v", err)
}

func TestCache_FrameAging(t *testing.T) {
	t.Parallel()

	c := New(Options{MaxAge: 2, Shards: 1})
	face := c.AddFace(basicfont.Face7x13)
	ctx := context.Background()
	draw := func(runes ...rune) {
		for _, r := range runes {
			_, err := c.Get(ctx, face, r)
			require.NoError(t, err)
		}
	}

	c.BeginFrame()
	draw('a', 'b')
	require.Equal(t, 0, c.EndFrame())

	evicted := 0
	for i := 0; i < 3; i++ {
		c.BeginFrame()
		draw('b')
		evicted += c.EndFrame()
		if i < 2 {
			require.Equal(t, 2, c.Len(), "frame %d", i)
		}
	}
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, uint64(4), c.Frame())
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestCache_MaxBytes(t *testing.T) {
	t.Parallel()

	c := New(Options{MaxBytes: 2 * 78, Shards: 1})
	face := c.AddFace(basicfont.Face7x13)
	for _, r := range "abc" {
		_, err := c.Get(context.Background(), face, r)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(156), c.Stats().Cost)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestCache_DrawString(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	face := c.AddFace(asciiFace())
	dst := image.NewAlpha(image.Rect(0, 0, 40, 20))

	dot, err := c.DrawString(context.Background(), dst, image.Opaque, fixed.P(1, 12), face, "Hé!")
	require.NoError(t, err)
	assert.Equal(t, fixed.I(15), dot.X, "é is skipped")
	assert.Equal(t, fixed.I(12), dot.Y)
	assert.True(t, nonZero(dst.Pix))
	assert.Equal(t, 2, c.Len())

	// Nothing is drawn right of the last advance.
	for y := 0; y < 20; y++ {
		for x := 15; x < 40; x++ {
			require.Zero(t, dst.AlphaAt(x, y).A, "pixel %d,%d", x, y)
		}
	}
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := New(Options{Shards: 4})
	faces := []FaceID{c.AddFace(basicfont.Face7x13), c.AddFace(asciiFace())}

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 200; i++ {
				r := rune('!' + (i+w)%90)
				if _, err := c.Get(context.Background(), faces[i%2], r); err != nil {
					return err
				}
				if w == 0 && i%50 == 0 {
					c.BeginFrame()
					c.EndFrame()
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 180, c.Len())
}

func TestKey_Hash64(t *testing.T) {
	t.Parallel()

	a := Key{Face: 0, Rune: 'a'}.Hash64()
	assert.NotEqual(t, a, Key{Face: 1, Rune: 'a'}.Hash64())
	assert.NotEqual(t, a, Key{Face: 0, Rune: 'b'}.Hash64())
	assert.Equal(t, a, Key{Face: 0, Rune: 'a'}.Hash64())
}

// Package glyph caches rasterized glyph masks for UI text rendering.
//
// Masks are rendered on first use through a golang.org/x/image/font Face
// and kept in a sharded cache bounded by entry count, mask bytes and frame
// age. Call BeginFrame before drawing a frame and EndFrame after it; glyphs
// not drawn for MaxAge frames are dropped by EndFrame.
//
// A Cache is safe for concurrent use. Each face is used by one goroutine at
// a time, since font.Face implementations are generally not reentrant.
package glyph

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/IvanBrykalov/uicore/cache"
	"github.com/IvanBrykalov/uicore/internal/util"
	"github.com/IvanBrykalov/uicore/policy"
	"github.com/IvanBrykalov/uicore/policy/age"
)

// Defaults applied by New.
const (
	DefaultCapacity = 4096
	DefaultMaxAge   = age.DefaultMaxAge
)

var (
	// ErrUnknownFace is returned for a FaceID not produced by AddFace.
	ErrUnknownFace = errors.New("glyph: unknown face")
	// ErrNoGlyph is returned when a face has no glyph for a rune.
	ErrNoGlyph = errors.New("glyph: no glyph for rune")
)

// FaceID identifies a face registered with AddFace.
type FaceID uint32

// Key identifies a cached glyph.
type Key struct {
	Face FaceID
	Rune rune
}

// Hash64 implements util.Hasher.
func (k Key) Hash64() uint64 {
	return util.HashUint64(uint64(k.Face)<<32 | uint64(uint32(k.Rune)))
}

// Glyph is a rasterized glyph. Mask covers Bounds translated to the origin.
type Glyph struct {
	Mask *image.Alpha
	// Bounds is the glyph box relative to the dot (baseline origin).
	Bounds  image.Rectangle
	Advance fixed.Int26_6
}

// Size returns the mask size in bytes, the glyph's cost in the cache.
func (g *Glyph) Size() int { return len(g.Mask.Pix) }

// Options configures a Cache. Zero values select defaults.
type Options struct {
	// Capacity is the maximum number of glyphs. Default: 4096.
	Capacity int
	// MaxBytes bounds the total mask bytes; 0 disables the limit.
	MaxBytes int64
	// MaxAge is the number of frames a glyph may go unused before EndFrame
	// drops it. Default: 64.
	MaxAge uint32
	// Shards of the underlying cache; 0 picks a value from GOMAXPROCS.
	Shards int
	// Policy overrides the age policy built from MaxAge.
	Policy policy.Policy

	Metrics cache.Metrics
	Logger  *slog.Logger
}

type faceEntry struct {
	mu   sync.Mutex
	face font.Face
}

// Cache holds glyph masks for any number of faces.
type Cache struct {
	log *slog.Logger

	facesMu sync.RWMutex
	faces   []*faceEntry

	glyphs cache.Cache[Key, *Glyph]
	frame  atomic.Uint64
}

// New creates an empty glyph cache.
func New(opt Options) *Cache {
	if opt.Capacity <= 0 {
		opt.Capacity = DefaultCapacity
	}
	if opt.MaxAge == 0 {
		opt.MaxAge = DefaultMaxAge
	}
	c := &Cache{log: opt.Logger}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.glyphs = cache.New[Key, *Glyph](cache.Options[Key, *Glyph]{
		Capacity: opt.Capacity,
		Shards:   opt.Shards,
		MaxAge:   opt.MaxAge,
		Policy:   opt.Policy,
		Cost:     (*Glyph).Size,
		MaxCost:  opt.MaxBytes,
		Loader:   c.rasterize,
		Metrics:  opt.Metrics,
	})
	return c
}

// AddFace registers a face and returns its id.
func (c *Cache) AddFace(f font.Face) FaceID {
	c.facesMu.Lock()
	defer c.facesMu.Unlock()
	c.faces = append(c.faces, &faceEntry{face: f})
	return FaceID(len(c.faces) - 1)
}

func (c *Cache) face(id FaceID) (*faceEntry, bool) {
	c.facesMu.RLock()
	defer c.facesMu.RUnlock()
	if int(id) >= len(c.faces) {
		return nil, false
	}
	return c.faces[id], true
}

// Get returns the glyph for r in face, rasterizing it on first use.
// Concurrent misses for the same glyph rasterize once.
func (c *Cache) Get(ctx context.Context, face FaceID, r rune) (*Glyph, error) {
	if _, ok := c.face(face); !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFace, face)
	}
	return c.glyphs.GetOrLoad(ctx, Key{Face: face, Rune: r})
}

func (c *Cache) rasterize(ctx context.Context, k Key) (*Glyph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fe, ok := c.face(k.Face)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFace, k.Face)
	}
	fe.mu.Lock()
	dr, mask, maskp, advance, ok := fe.face.Glyph(fixed.Point26_6{}, k.Rune)
	if !ok {
		fe.mu.Unlock()
		return nil, fmt.Errorf("%w %q", ErrNoGlyph, k.Rune)
	}
	dst := image.NewAlpha(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	draw.Draw(dst, dst.Bounds(), mask, maskp, draw.Src)
	fe.mu.Unlock()

	c.log.Debug("glyph rasterized", "face", k.Face, "rune", string(k.Rune), "bytes", len(dst.Pix))
	return &Glyph{Mask: dst, Bounds: dr, Advance: advance}, nil
}

// Kern returns the kerning between two runes of face.
func (c *Cache) Kern(face FaceID, r0, r1 rune) fixed.Int26_6 {
	fe, ok := c.face(face)
	if !ok {
		return 0
	}
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.face.Kern(r0, r1)
}

// DrawString composites s onto dst in colour src with the baseline origin
// at dot, and returns the dot after the last glyph. Runes the face lacks
// are skipped after logging; any other error stops drawing.
func (c *Cache) DrawString(ctx context.Context, dst draw.Image, src image.Image, dot fixed.Point26_6, face FaceID, s string) (fixed.Point26_6, error) {
	prev := rune(-1)
	for _, r := range s {
		if prev >= 0 {
			dot.X += c.Kern(face, prev, r)
		}
		g, err := c.Get(ctx, face, r)
		if errors.Is(err, ErrNoGlyph) {
			c.log.Warn("missing glyph", "face", face, "rune", string(r))
			continue
		}
		if err != nil {
			return dot, err
		}
		dr := g.Bounds.Add(image.Point{X: dot.X.Round(), Y: dot.Y.Round()})
		draw.DrawMask(dst, dr, src, image.Point{}, g.Mask, image.Point{}, draw.Over)
		dot.X += g.Advance
		prev = r
	}
	return dot, nil
}

// BeginFrame advances the frame clock.
func (c *Cache) BeginFrame() {
	c.frame.Add(1)
	c.glyphs.Tick()
}

// EndFrame drops glyphs idle for longer than MaxAge frames and returns how
// many were dropped.
func (c *Cache) EndFrame() int {
	n := c.glyphs.Maintain()
	if n > 0 {
		c.log.Debug("glyphs evicted", "frame", c.frame.Load(), "count", n)
	}
	return n
}

// Frame returns the number of BeginFrame calls so far.
func (c *Cache) Frame() uint64 { return c.frame.Load() }

// Len returns the number of cached glyphs.
func (c *Cache) Len() int { return c.glyphs.Len() }

// Stats returns the underlying cache counters.
func (c *Cache) Stats() cache.Stats { return c.glyphs.Stats() }

// Clear drops all glyphs, e.g. after a DPI change.
func (c *Cache) Clear() { c.glyphs.Clear() }

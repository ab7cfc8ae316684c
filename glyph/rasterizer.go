package glyph

import (
	"image"
	"log/slog"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/kasaneapp/kasane/cache"
)

// Config holds the rasterization constants shared by every call site.
type Config struct {
	// CanvasSize is the width and height of every mask in pixels. The
	// glyph is rendered at an em size equal to the canvas, baseline
	// placed at the font ascent. Default 1024.
	CanvasSize int

	// InkThreshold is the minimum alpha coverage for a pixel to count
	// as ink. Output is strictly binary: coverage at or above the
	// threshold is ink, anything below is background. Default 128.
	InkThreshold uint8

	// CacheCapacity is the per-shard capacity of the mask memo cache.
	// Zero selects the cache package default.
	CacheCapacity int

	// Logger receives render diagnostics. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the rasterization constants used by the quiz
// artifacts: a 1024x1024 canvas with mid-point ink thresholding.
func DefaultConfig() Config {
	return Config{
		CanvasSize:   1024,
		InkThreshold: 128,
	}
}

// maskKey identifies a memoized mask. Masks are pure functions of the
// (codepoint, font key) pair.
type maskKey struct {
	r    rune
	font string
}

func hashMaskKey(k maskKey) uint64 {
	return cache.StringHasher(k.font) ^ uint64(k.r)*0x9E3779B97F4A7C15
}

// Rasterizer renders single characters into binary ink masks.
// Rendering is deterministic, so results are memoized in a bounded
// LRU keyed by (codepoint, font key). Cached masks are shared;
// callers must not mutate a returned mask.
//
// Rasterizer is safe for concurrent use.
type Rasterizer struct {
	config Config
	logger *slog.Logger
	masks  *cache.Sharded[maskKey, *Mask]
}

// NewRasterizer creates a rasterizer. Zero config fields take the
// DefaultConfig values.
func NewRasterizer(config Config) *Rasterizer {
	if config.CanvasSize <= 0 {
		config.CanvasSize = DefaultConfig().CanvasSize
	}
	if config.InkThreshold == 0 {
		config.InkThreshold = DefaultConfig().InkThreshold
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Rasterizer{
		config: config,
		logger: logger,
		masks:  cache.NewSharded[maskKey, *Mask](config.CacheCapacity, hashMaskKey),
	}
}

// CanvasSize returns the mask dimensions produced by this rasterizer.
func (z *Rasterizer) CanvasSize() int { return z.config.CanvasSize }

// CacheStats returns the mask memo cache counters.
func (z *Rasterizer) CacheStats() cache.Stats { return z.masks.Stats() }

// Render rasterizes one character with the given profile into a binary
// ink mask. Same inputs always produce bit-identical masks. A missing
// glyph or an unusable face surfaces as a RenderError.
func (z *Rasterizer) Render(r rune, p *Profile) (*Mask, error) {
	key := maskKey{r: r, font: p.Key()}
	if mask, ok := z.masks.Get(key); ok {
		return mask, nil
	}

	mask, err := z.render(r, p)
	if err != nil {
		return nil, err
	}
	z.masks.Set(key, mask)
	return mask, nil
}

func (z *Rasterizer) render(r rune, p *Profile) (*Mask, error) {
	if !p.HasGlyph(r) {
		return nil, &RenderError{Rune: r, FontKey: p.Key(), Err: ErrNoGlyph}
	}

	size := z.config.CanvasSize
	face, err := opentype.NewFace(p.otf, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, &RenderError{Rune: r, FontKey: p.Key(), Err: err}
	}
	defer face.Close()

	// Grayscale coverage first, then thresholding: the canvas origin is
	// the glyph box top-left, baseline at the ascent.
	canvas := image.NewAlpha(image.Rect(0, 0, size, size))
	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: face.Metrics().Ascent},
	}
	drawer.DrawString(string(r))

	mask := NewMask(size, size)
	for y := range size {
		row := canvas.Pix[y*canvas.Stride : y*canvas.Stride+size]
		for x, alpha := range row {
			if alpha >= z.config.InkThreshold {
				mask.Set(x, y)
			}
		}
	}

	z.logger.Debug("glyph rendered", "rune", string(r), "font", p.Key(), "ink", mask.Count())
	return mask, nil
}

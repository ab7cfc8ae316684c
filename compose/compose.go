package compose

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/bits"

	"github.com/kasaneapp/kasane/glyph"
)

// Intersection renders the pixels inked by both masks in the palette
// ink color. This is the quiz question for a two-character word.
// Both masks must share dimensions.
func Intersection(p Palette, a, b *glyph.Mask) *image.RGBA {
	m := a.Clone()
	m.And(b)
	return flat(p, m)
}

// Union renders the pixels inked by any of the masks in the palette
// ink color. The reduction is a strict logical OR over aligned
// coordinates, so the result is identical for any ordering of the
// masks. At least one mask is required; all must share dimensions.
func Union(p Palette, masks ...*glyph.Mask) *image.RGBA {
	return flat(p, UnionMask(masks...))
}

// UnionMask returns the OR-reduction of the masks as a new mask. The
// inputs are not modified.
func UnionMask(masks ...*glyph.Mask) *glyph.Mask {
	if len(masks) == 0 {
		panic("compose: union of zero masks")
	}
	m := masks[0].Clone()
	for _, o := range masks[1:] {
		m.Or(o)
	}
	return m
}

// Difference renders the three-way classification of a two-character
// word: pixels inked by both masks in the shared color, first-only
// pixels in the first color, second-only in the second color,
// background elsewhere. This is the answer-reveal artifact.
func Difference(p Palette, a, b *glyph.Mask) *image.RGBA {
	img := newBackground(p, a.Bounds())
	width := a.Width()

	aBits, bBits := a.Bits(), b.Bits()
	for i, aw := range aBits {
		bw := bBits[i]
		if aw|bw == 0 {
			continue
		}
		base := i * 64
		setRun(img, width, base, aw&bw, p.Shared)
		setRun(img, width, base, aw&^bw, p.First)
		setRun(img, width, base, bw&^aw, p.Second)
	}
	return img
}

// EncodePNG encodes a raster to PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("compose: encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// flat renders a mask as ink-on-background.
func flat(p Palette, m *glyph.Mask) *image.RGBA {
	img := newBackground(p, m.Bounds())
	width := m.Width()
	for i, w := range m.Bits() {
		if w == 0 {
			continue
		}
		setRun(img, width, i*64, w, p.Ink)
	}
	return img
}

// newBackground allocates a raster filled with the background color.
func newBackground(p Palette, bounds image.Rectangle) *image.RGBA {
	img := image.NewRGBA(bounds)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = p.Background.R
		img.Pix[i+1] = p.Background.G
		img.Pix[i+2] = p.Background.B
		img.Pix[i+3] = p.Background.A
	}
	return img
}

// setRun colors every set bit of one bitset word. base is the flat
// pixel index of the word's least significant bit. Bits past the last
// pixel (bitset padding) are ignored.
func setRun(img *image.RGBA, width, base int, word uint64, c color.RGBA) {
	height := img.Bounds().Dy()
	for word != 0 {
		i := base + bits.TrailingZeros64(word)
		word &= word - 1
		x, y := i%width, i/width
		if y >= height {
			break
		}
		img.SetRGBA(x, y, c)
	}
}

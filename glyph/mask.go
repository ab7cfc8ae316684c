// Package glyph loads font profiles and rasterizes single characters
// into fixed-size binary ink masks.
package glyph

import (
	"image"
	"math/bits"
)

// Mask is a fixed-size binary raster distinguishing ink from background
// for one rendered character. Pixels are stored as a flat bitset in
// row-major order, which makes the boolean combinations used by the
// quiz artifacts cheap word-wise operations.
//
// A Mask is strictly binary: a pixel is either ink or background,
// never gray.
type Mask struct {
	width  int
	height int
	bits   []uint64
}

// NewMask creates an all-background mask of the given dimensions.
func NewMask(width, height int) *Mask {
	if width <= 0 || height <= 0 {
		panic("glyph: mask dimensions must be positive")
	}
	n := width * height
	return &Mask{
		width:  width,
		height: height,
		bits:   make([]uint64, (n+63)/64),
	}
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.height }

// Bounds returns the mask's pixel rectangle.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// At reports whether the pixel at (x, y) is ink. Coordinates outside
// the mask are background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return false
	}
	i := y*m.width + x
	return m.bits[i>>6]&(1<<(i&63)) != 0
}

// Set marks the pixel at (x, y) as ink. Out-of-range coordinates are
// ignored.
func (m *Mask) Set(x, y int) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	i := y*m.width + x
	m.bits[i>>6] |= 1 << (i & 63)
}

// Clone returns an independent copy of the mask.
func (m *Mask) Clone() *Mask {
	c := &Mask{
		width:  m.width,
		height: m.height,
		bits:   make([]uint64, len(m.bits)),
	}
	copy(c.bits, m.bits)
	return c
}

// Or merges o into m: every ink pixel of o becomes ink in m. Both
// masks must have identical dimensions.
func (m *Mask) Or(o *Mask) {
	m.checkDims(o)
	for i, w := range o.bits {
		m.bits[i] |= w
	}
}

// And intersects m with o: only pixels that are ink in both masks
// remain ink in m. Both masks must have identical dimensions.
func (m *Mask) And(o *Mask) {
	m.checkDims(o)
	for i, w := range o.bits {
		m.bits[i] &= w
	}
}

// Count returns the number of ink pixels.
func (m *Mask) Count() int {
	total := 0
	for _, w := range m.bits {
		total += bits.OnesCount64(w)
	}
	return total
}

// Equal reports whether two masks have identical dimensions and ink.
func (m *Mask) Equal(o *Mask) bool {
	if m.width != o.width || m.height != o.height {
		return false
	}
	for i, w := range m.bits {
		if w != o.bits[i] {
			return false
		}
	}
	return true
}

// Contains reports whether every ink pixel of o is also ink in m.
func (m *Mask) Contains(o *Mask) bool {
	if m.width != o.width || m.height != o.height {
		return false
	}
	for i, w := range o.bits {
		if w&^m.bits[i] != 0 {
			return false
		}
	}
	return true
}

// Bits exposes the underlying bitset, least significant bit first in
// row-major order. Shared storage, not a copy; callers must treat it
// as read-only.
func (m *Mask) Bits() []uint64 {
	return m.bits
}

func (m *Mask) checkDims(o *Mask) {
	if m.width != o.width || m.height != o.height {
		panic("glyph: mask dimensions differ")
	}
}

// Package compose combines character ink masks into quiz rasters:
// intersection, colored difference and union, rendered through a fixed
// palette and encoded as PNG.
package compose

import "image/color"

// Palette enumerates the colors a quiz raster may contain. Artifacts
// use these exact values with no blending, so tests can assert RGB per
// category.
type Palette struct {
	// Ink colors flat artifacts (intersection, union).
	Ink color.RGBA

	// Shared marks pixels inked by both characters of a difference.
	Shared color.RGBA

	// First marks pixels inked only by the first character.
	First color.RGBA

	// Second marks pixels inked only by the second character.
	Second color.RGBA

	// Background fills everything else.
	Background color.RGBA
}

// DefaultPalette returns the classic quiz colors: black ink on white,
// purple for shared strokes, blue for first-only, red for second-only.
func DefaultPalette() Palette {
	return Palette{
		Ink:        color.RGBA{A: 255},
		Shared:     color.RGBA{R: 70, G: 20, B: 190, A: 255},
		First:      color.RGBA{R: 70, G: 65, B: 225, A: 255},
		Second:     color.RGBA{R: 230, G: 70, B: 70, A: 255},
		Background: color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// IsZero reports whether the palette is entirely unset, which callers
// treat as "use DefaultPalette".
func (p Palette) IsZero() bool {
	return p == Palette{}
}

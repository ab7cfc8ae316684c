package glyph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the glyph package.
var (
	// ErrNoGlyph is returned (wrapped in a RenderError) when a font has
	// no glyph for the requested codepoint.
	ErrNoGlyph = errors.New("glyph: font has no glyph for codepoint")

	// ErrNoUsableFont is returned by NewRegistry when neither the
	// configured fonts nor the fallback candidates could be loaded.
	ErrNoUsableFont = errors.New("glyph: no usable font")
)

// UnknownFontError is returned when a font key is malformed or does not
// resolve against the registry.
type UnknownFontError struct {
	// Key is the offending font key.
	Key string

	// Known lists the keys the registry would accept.
	Known []string
}

func (e *UnknownFontError) Error() string {
	return fmt.Sprintf("glyph: unknown font %q (known: %s)", e.Key, strings.Join(e.Known, ", "))
}

// RenderError is returned when a font profile cannot produce a glyph
// mask for a codepoint.
type RenderError struct {
	// Rune is the codepoint that failed to render.
	Rune rune

	// FontKey is the profile the render was attempted with.
	FontKey string

	// Err is the underlying cause.
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("glyph: rendering %q with font %q: %v", e.Rune, e.FontKey, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

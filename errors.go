package kasane

import (
	"github.com/kasaneapp/kasane/glyph"
	"github.com/kasaneapp/kasane/video"
)

// The engine's error surface, re-exported so collaborators match
// against one package:
//
//   - InvalidWordLengthError: word length outside the kind's band
//   - UnknownFontError: malformed or unregistered font key
//   - RenderError: a glyph could not be rasterized
//   - EncodingError: the external video encoder failed or is missing
//
// Validation errors are detected before any rendering; render and
// encoding failures are deterministic for given inputs and are not
// retried automatically. A failed request never leaves a partial
// artifact behind.
type (
	UnknownFontError = glyph.UnknownFontError
	RenderError      = glyph.RenderError
	EncodingError    = video.EncodingError
)

// Package kasane renders kanji words into overlap-quiz artifacts.
//
// # Overview
//
// kasane rasterizes each character of a short word into a fixed-size
// binary ink mask and combines the masks with set algebra: the
// intersection of two characters is the quiz question, the three-way
// colored difference is the answer reveal, and the union stacks every
// character of the word. For longer words the engine assembles a short
// video from progressively accumulated unions. Every artifact is cached
// on disk and served unchanged on repeat requests.
//
// # Quick Start
//
//	import (
//		"github.com/kasaneapp/kasane"
//		"github.com/kasaneapp/kasane/glyph"
//	)
//
//	fonts, err := glyph.LoadRegistry("fonts.yaml")
//	if err != nil { ... }
//
//	engine, err := kasane.New(kasane.Config{
//		Fonts:    fonts,
//		CacheDir: "images",
//	})
//	if err != nil { ... }
//
//	// The first call renders and caches; later calls are cache hits.
//	png, hit, err := engine.GenerateArtifact(ctx, "空朝", "default", kasane.KindIntersection)
//
// # Architecture
//
// The library is organized into:
//   - Public API: Engine, Kind, the error types
//   - glyph: font registry and glyph-to-mask rasterization
//   - compose: pixel-wise mask algebra and palette rendering
//   - video: incremental-union frame staging and mp4 encoding
//   - store: keyed artifact byte store with single-flight generation
//   - cache: generic sharded LRU used for mask memoization
//
// Video encoding shells out to ffmpeg; everything else is pure Go.
package kasane

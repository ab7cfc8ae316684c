package kasane

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kasaneapp/kasane/compose"
	"github.com/kasaneapp/kasane/glyph"
	"github.com/kasaneapp/kasane/store"
	"github.com/kasaneapp/kasane/video"
)

// Config assembles an Engine. Fonts is required; every other field has
// a working default.
type Config struct {
	// Fonts resolves font keys to profiles.
	Fonts *glyph.Registry

	// Store persists generated artifacts. Nil selects a directory
	// backend under CacheDir.
	Store store.Backend

	// CacheDir is the artifact directory used when Store is nil.
	// Default "images".
	CacheDir string

	// Raster holds the shared rasterization constants.
	Raster glyph.Config

	// Palette holds the artifact colors. The zero value selects
	// compose.DefaultPalette.
	Palette compose.Palette

	// Video holds the video assembly policy.
	Video video.Config

	// Logger receives engine diagnostics. Nil selects the package
	// logger (see SetLogger).
	Logger *slog.Logger
}

// Engine renders quiz artifacts on demand and serves repeated requests
// from its artifact store. It is safe for concurrent use; per artifact
// identity at most one generation runs at a time, while distinct
// identities generate in parallel.
type Engine struct {
	fonts     *glyph.Registry
	rast      *glyph.Rasterizer
	palette   compose.Palette
	assembler *video.Assembler
	artifacts *store.Manager
	logger    *slog.Logger
}

// New builds an Engine from the config.
func New(config Config) (*Engine, error) {
	if config.Fonts == nil {
		return nil, errors.New("kasane: Config.Fonts is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = Logger()
	}

	backend := config.Store
	if backend == nil {
		dir := config.CacheDir
		if dir == "" {
			dir = "images"
		}
		var err error
		backend, err = store.NewDir(dir)
		if err != nil {
			return nil, err
		}
	}

	palette := config.Palette
	if palette.IsZero() {
		palette = compose.DefaultPalette()
	}

	raster := config.Raster
	if raster.Logger == nil {
		raster.Logger = logger
	}
	videoConfig := config.Video
	if videoConfig.Logger == nil {
		videoConfig.Logger = logger
	}

	return &Engine{
		fonts:     config.Fonts,
		rast:      glyph.NewRasterizer(raster),
		palette:   palette,
		assembler: video.NewAssembler(videoConfig),
		artifacts: store.NewManager(backend, logger),
		logger:    logger,
	}, nil
}

// GenerateOptions tunes a single artifact request.
type GenerateOptions struct {
	// ForceRegenerate regenerates the artifact and atomically replaces
	// any cached entry.
	ForceRegenerate bool
}

// GenerateArtifact returns the artifact bytes for (word, fontKey,
// kind), generating and caching them on first request. The hit flag
// reports whether the bytes came from the cache.
func (e *Engine) GenerateArtifact(ctx context.Context, word, fontKey string, kind Kind) ([]byte, bool, error) {
	return e.GenerateArtifactOpts(ctx, word, fontKey, kind, GenerateOptions{})
}

// GenerateArtifactOpts is GenerateArtifact with per-request options.
//
// Validation runs before any rendering: a word length outside the
// kind's band is an InvalidWordLengthError, an unresolvable font key
// an UnknownFontError, and neither caches anything.
func (e *Engine) GenerateArtifactOpts(ctx context.Context, word, fontKey string, kind Kind, opts GenerateOptions) ([]byte, bool, error) {
	runes, err := validateWord(word, kind)
	if err != nil {
		return nil, false, err
	}
	profile, err := e.fonts.Resolve(fontKey)
	if err != nil {
		return nil, false, err
	}

	key := artifactKey(kind, runes, profile.Key())
	data, hit, err := e.artifacts.GetOrGenerate(ctx, key, opts.ForceRegenerate,
		func(ctx context.Context) ([]byte, error) {
			return e.generate(ctx, runes, profile, kind, opts.ForceRegenerate)
		})
	if err != nil {
		return nil, false, err
	}

	e.logger.Debug("artifact served", "word", word, "font", profile.Key(), "kind", kind.String(), "hit", hit)
	return data, hit, nil
}

// FontKeys lists the selectable font keys, "default" first.
func (e *Engine) FontKeys() []string {
	return e.fonts.Keys()
}

// generate renders the requested artifact. For video kinds the frame
// ladder is built once and both the video and its preview are
// committed, under their own identities.
func (e *Engine) generate(ctx context.Context, runes []rune, profile *glyph.Profile, kind Kind, force bool) ([]byte, error) {
	masks, err := e.renderMasks(runes, profile)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindIntersection:
		return compose.EncodePNG(compose.Intersection(e.palette, masks[0], masks[1]))
	case KindDifference:
		return compose.EncodePNG(compose.Difference(e.palette, masks[0], masks[1]))
	case KindUnion:
		return compose.EncodePNG(compose.Union(e.palette, masks...))
	case KindVideo, KindVideoPreview:
		videoBytes, preview, err := e.assembler.Build(ctx, e.palette, masks)
		if err != nil {
			return nil, err
		}
		if kind == KindVideo {
			e.commitSibling(KindVideoPreview, runes, profile.Key(), preview, force)
			return videoBytes, nil
		}
		e.commitSibling(KindVideo, runes, profile.Key(), videoBytes, force)
		return preview, nil
	default:
		return nil, fmt.Errorf("kasane: unsupported artifact kind %v", kind)
	}
}

// renderMasks rasterizes every character of the word in order.
func (e *Engine) renderMasks(runes []rune, profile *glyph.Profile) ([]*glyph.Mask, error) {
	masks := make([]*glyph.Mask, len(runes))
	for i, r := range runes {
		mask, err := e.rast.Render(r, profile)
		if err != nil {
			return nil, err
		}
		masks[i] = mask
	}
	return masks, nil
}

// commitSibling stores the byproduct artifact of a video generation.
// Failure is logged, not surfaced: the requested artifact is intact
// and the sibling will be regenerated on demand.
func (e *Engine) commitSibling(kind Kind, runes []rune, fontKey string, data []byte, force bool) {
	key := artifactKey(kind, runes, fontKey)
	var err error
	if force {
		err = e.artifacts.Backend().ForceSet(key, data)
	} else {
		err = e.artifacts.Backend().PutIfAbsent(key, data)
	}
	if err != nil {
		e.logger.Warn("committing sibling artifact", "key", key, "error", err)
	}
}

// artifactKey is the stable cache identity of (word, font, kind). The
// word is hex-encoded so arbitrary Unicode, including multi-byte
// ideographs, can never collide with the separator or the font key.
func artifactKey(kind Kind, runes []rune, fontKey string) string {
	return fmt.Sprintf("%s_%x_%s%s", kind.code(), string(runes), fontKey, kind.ext())
}

// QuizSet bundles the artifacts a quiz round needs: question, answer
// and union stills for two-character words; union, video and preview
// for longer words.
type QuizSet struct {
	Question []byte
	Answer   []byte
	Union    []byte
	Video    []byte
	Preview  []byte
}

// QuizSet generates the artifact bundle for a word in one call.
func (e *Engine) QuizSet(ctx context.Context, word, fontKey string) (*QuizSet, error) {
	runes, err := validateWord(word, KindUnion)
	if err != nil {
		return nil, err
	}

	set := &QuizSet{}
	if set.Union, _, err = e.GenerateArtifact(ctx, word, fontKey, KindUnion); err != nil {
		return nil, err
	}

	if len(runes) == MinWordLength {
		if set.Question, _, err = e.GenerateArtifact(ctx, word, fontKey, KindIntersection); err != nil {
			return nil, err
		}
		if set.Answer, _, err = e.GenerateArtifact(ctx, word, fontKey, KindDifference); err != nil {
			return nil, err
		}
		return set, nil
	}

	if set.Video, _, err = e.GenerateArtifact(ctx, word, fontKey, KindVideo); err != nil {
		return nil, err
	}
	if set.Preview, _, err = e.GenerateArtifact(ctx, word, fontKey, KindVideoPreview); err != nil {
		return nil, err
	}
	return set, nil
}

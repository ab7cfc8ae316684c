package glyph

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"gopkg.in/yaml.v3"
)

// DefaultKey is the font key that always resolves. It maps to the first
// loadable fallback candidate of the registry configuration.
const DefaultKey = "default"

// keyPattern is the accepted shape of a font key: 2-10 alphanumerics.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9]{2,10}$`)

// FontEntry names one selectable font in a registry configuration.
type FontEntry struct {
	// Key is the short identifier callers select the font by.
	Key string `yaml:"key"`

	// Path is the TTF/OTF file to load.
	Path string `yaml:"path"`
}

// RegistryConfig describes the fonts a Registry is built from.
type RegistryConfig struct {
	// Fonts lists the selectable fonts in listing order. Entries whose
	// file is missing or unparseable are skipped with a warning, so one
	// broken font path does not take the whole process down.
	Fonts []FontEntry `yaml:"fonts"`

	// Fallbacks are candidate paths for the "default" profile, tried in
	// order. If none loads, the first loaded Fonts entry serves as the
	// default instead.
	Fallbacks []string `yaml:"fallbacks"`

	// Logger receives load diagnostics. Nil discards them.
	Logger *slog.Logger `yaml:"-"`
}

// Profile is one named rendering configuration: a parsed font plus its
// registry key. Profiles are built once at registry construction and
// read-only afterwards.
//
// The font data is parsed by two backends: golang.org/x/image/font
// drives rasterization, go-text/typesetting provides the family
// description and cmap coverage lookups.
type Profile struct {
	key  string
	name string
	otf  *opentype.Font
	cov  *gotext.Font
}

// Key returns the registry key of the profile.
func (p *Profile) Key() string { return p.key }

// Name returns the font family name, or "" if the font does not
// declare one.
func (p *Profile) Name() string { return p.name }

// HasGlyph reports whether the font's cmap covers the codepoint.
func (p *Profile) HasGlyph(r rune) bool {
	_, ok := p.cov.Cmap.Lookup(r)
	return ok
}

// Registry resolves font keys to profiles. It is built once at startup
// and immutable afterwards, so it is safe for concurrent use without
// locking.
type Registry struct {
	profiles map[string]*Profile
	keys     []string // listing order: DefaultKey first
}

// NewRegistry loads every configured font and builds an immutable
// registry. It fails with ErrNoUsableFont only when nothing at all
// could be loaded.
func NewRegistry(config RegistryConfig) (*Registry, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := &Registry{
		profiles: make(map[string]*Profile),
		keys:     []string{DefaultKey},
	}

	for _, entry := range config.Fonts {
		if !keyPattern.MatchString(entry.Key) || entry.Key == DefaultKey {
			return nil, fmt.Errorf("glyph: invalid font key %q in configuration", entry.Key)
		}
		p, err := loadProfile(entry.Key, entry.Path)
		if err != nil {
			logger.Warn("skipping unloadable font", "key", entry.Key, "path", entry.Path, "error", err)
			continue
		}
		logger.Info("font loaded", "key", entry.Key, "family", p.name)
		r.profiles[entry.Key] = p
		r.keys = append(r.keys, entry.Key)
	}

	for _, path := range config.Fallbacks {
		p, err := loadProfile(DefaultKey, path)
		if err != nil {
			logger.Warn("skipping default font candidate", "path", path, "error", err)
			continue
		}
		logger.Info("default font selected", "path", path, "family", p.name)
		r.profiles[DefaultKey] = p
		break
	}

	if r.profiles[DefaultKey] == nil {
		// Fall back to the first configured font, preserving the
		// invariant that "default" always resolves.
		for _, key := range r.keys[1:] {
			p := *r.profiles[key]
			p.key = DefaultKey
			r.profiles[DefaultKey] = &p
			break
		}
	}
	if r.profiles[DefaultKey] == nil {
		return nil, ErrNoUsableFont
	}
	return r, nil
}

// LoadRegistry reads a YAML registry configuration and builds the
// registry from it.
//
// Configuration shape:
//
//	fonts:
//	  - key: mincho
//	    path: /app/.fonts/Honoka_Shin_Mincho_L.otf
//	  - key: dejavu
//	    path: /usr/share/fonts/truetype/dejavu/DejaVuSans.ttf
//	fallbacks:
//	  - /app/.fonts/Honoka_Shin_Mincho_L.otf
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("glyph: reading registry config: %w", err)
	}
	var config RegistryConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("glyph: parsing registry config %s: %w", path, err)
	}
	return NewRegistry(config)
}

// NewRegistryFromData builds a registry from a single in-memory font,
// registered both under key and as the default profile. Intended for
// embedded fonts and tests.
func NewRegistryFromData(key string, data []byte) (*Registry, error) {
	if !keyPattern.MatchString(key) || key == DefaultKey {
		return nil, fmt.Errorf("glyph: invalid font key %q", key)
	}
	p, err := parseProfile(key, data)
	if err != nil {
		return nil, err
	}
	def := *p
	def.key = DefaultKey
	return &Registry{
		profiles: map[string]*Profile{key: p, DefaultKey: &def},
		keys:     []string{DefaultKey, key},
	}, nil
}

// Keys returns the selectable font keys in listing order, starting
// with "default". The returned slice is a copy.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Normalize maps a request's font key to its canonical form: the empty
// key becomes "default", anything malformed or unregistered is an
// UnknownFontError.
func (r *Registry) Normalize(key string) (string, error) {
	if key == "" {
		return DefaultKey, nil
	}
	if !keyPattern.MatchString(key) {
		return "", &UnknownFontError{Key: key, Known: r.Keys()}
	}
	if _, ok := r.profiles[key]; !ok {
		return "", &UnknownFontError{Key: key, Known: r.Keys()}
	}
	return key, nil
}

// Resolve normalizes a font key and returns its profile.
func (r *Registry) Resolve(key string) (*Profile, error) {
	normalized, err := r.Normalize(key)
	if err != nil {
		return nil, err
	}
	return r.profiles[normalized], nil
}

func loadProfile(key, path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseProfile(key, data)
}

func parseProfile(key string, data []byte) (*Profile, error) {
	otf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("glyph: parsing font for key %q: %w", key, err)
	}
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("glyph: parsing font cmap for key %q: %w", key, err)
	}

	name, _ := otf.Name(nil, sfnt.NameIDFamily)
	return &Profile{
		key:  key,
		name: name,
		otf:  otf,
		cov:  face.Font,
	}, nil
}

package glyph

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// writeTestFont writes an embedded Go font to a temp file and returns
// its path.
func writeTestFont(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "font.ttf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing test font: %v", err)
	}
	return path
}

// testRegistry builds a registry with goregular under "goreg" (also
// the default) and goitalic under "goital".
func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(RegistryConfig{
		Fonts: []FontEntry{
			{Key: "goreg", Path: writeTestFont(t, goregular.TTF)},
			{Key: "goital", Path: writeTestFont(t, goitalic.TTF)},
		},
		Fallbacks: []string{writeTestFont(t, goregular.TTF)},
	})
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}
	return reg
}

func TestRegistryKeys(t *testing.T) {
	reg := testRegistry(t)

	want := []string{"default", "goreg", "goital"}
	if got := reg.Keys(); !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestRegistryNormalize(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{"empty maps to default", "", "default", false},
		{"default passes through", "default", "default", false},
		{"registered key", "goreg", "goreg", false},
		{"unregistered key", "nosuch", "", true},
		{"too short", "a", "", true},
		{"too long", "abcdefghijk", "", true},
		{"non alphanumeric", "go-reg", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.Normalize(tt.key)
			if tt.wantErr {
				var unknown *UnknownFontError
				if !errors.As(err, &unknown) {
					t.Fatalf("Normalize(%q) error = %v, want UnknownFontError", tt.key, err)
				}
				if unknown.Key != tt.key {
					t.Errorf("error key = %q, want %q", unknown.Key, tt.key)
				}
				if len(unknown.Known) == 0 {
					t.Error("error should list known keys")
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) unexpected error: %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := testRegistry(t)

	p, err := reg.Resolve("default")
	if err != nil {
		t.Fatalf("resolving default: %v", err)
	}
	if p.Key() != "default" {
		t.Errorf("profile key = %q, want default", p.Key())
	}
	if p.Name() == "" {
		t.Error("expected a family name for the default profile")
	}

	if _, err := reg.Resolve("nosuch"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestRegistrySkipsUnloadableFonts(t *testing.T) {
	reg, err := NewRegistry(RegistryConfig{
		Fonts: []FontEntry{
			{Key: "broken", Path: filepath.Join(t.TempDir(), "missing.ttf")},
			{Key: "goreg", Path: writeTestFont(t, goregular.TTF)},
		},
	})
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}

	if _, err := reg.Resolve("broken"); err == nil {
		t.Error("unloadable font should stay unregistered")
	}
	// Without fallbacks, the first loaded font backs "default".
	if _, err := reg.Resolve("default"); err != nil {
		t.Errorf("default should resolve via first loaded font: %v", err)
	}
}

func TestRegistryNoUsableFont(t *testing.T) {
	_, err := NewRegistry(RegistryConfig{
		Fonts: []FontEntry{
			{Key: "broken", Path: filepath.Join(t.TempDir(), "missing.ttf")},
		},
	})
	if !errors.Is(err, ErrNoUsableFont) {
		t.Errorf("expected ErrNoUsableFont, got %v", err)
	}
}

func TestRegistryRejectsBadConfigKey(t *testing.T) {
	for _, key := range []string{"default", "x", "has space"} {
		_, err := NewRegistry(RegistryConfig{
			Fonts: []FontEntry{{Key: key, Path: "ignored.ttf"}},
		})
		if err == nil {
			t.Errorf("config key %q should be rejected", key)
		}
	}
}

func TestLoadRegistry(t *testing.T) {
	fontPath := writeTestFont(t, goregular.TTF)
	configPath := filepath.Join(t.TempDir(), "fonts.yaml")
	config := "fonts:\n" +
		"  - key: goreg\n" +
		"    path: " + fontPath + "\n" +
		"fallbacks:\n" +
		"  - " + fontPath + "\n"
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	reg, err := LoadRegistry(configPath)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if _, err := reg.Resolve("goreg"); err != nil {
		t.Errorf("resolving goreg: %v", err)
	}
}

func TestProfileHasGlyph(t *testing.T) {
	reg := testRegistry(t)
	p, err := reg.Resolve("goreg")
	if err != nil {
		t.Fatalf("resolving goreg: %v", err)
	}

	if !p.HasGlyph('A') {
		t.Error("goregular should cover 'A'")
	}
	// Go fonts carry no CJK glyphs.
	if p.HasGlyph('漢') {
		t.Error("goregular should not cover CJK ideographs")
	}
}

func TestNewRegistryFromData(t *testing.T) {
	reg, err := NewRegistryFromData("goreg", goregular.TTF)
	if err != nil {
		t.Fatalf("NewRegistryFromData: %v", err)
	}
	for _, key := range []string{"goreg", "default"} {
		if _, err := reg.Resolve(key); err != nil {
			t.Errorf("resolving %q: %v", key, err)
		}
	}
}

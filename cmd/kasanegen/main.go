// kasanegen generates a single quiz artifact from the command line.
//
// It loads a font registry from a YAML configuration, renders the
// requested artifact (generating it into the cache directory on a
// miss, serving it unchanged on a hit) and writes the bytes to a file
// or stdout.
//
// Example:
//
//	kasanegen --fonts fonts.yaml --word 空朝 --kind difference --out answer.png
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/kasaneapp/kasane"
	"github.com/kasaneapp/kasane/glyph"
	"github.com/kasaneapp/kasane/video"
)

// usageError marks a bad invocation, reported with exit code 2.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "kasanegen: %v\n", err)
		var usage *usageError
		if errors.As(err, &usage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	var (
		word     string
		fontKey  string
		kindName string
		fontsCfg string
		cacheDir string
		outPath  string
		ffmpeg   string
		force    bool
		verbose  bool
	)

	flagSet := pflag.NewFlagSet("kasanegen", pflag.ContinueOnError)
	flagSet.StringVar(&word, "word", "", "quiz word (2-8 characters)")
	flagSet.StringVar(&fontKey, "font", "default", "font key from the registry")
	flagSet.StringVar(&kindName, "kind", "intersection", "artifact kind: intersection, difference, union, preview, video")
	flagSet.StringVar(&fontsCfg, "fonts", "fonts.yaml", "font registry configuration file")
	flagSet.StringVar(&cacheDir, "cache-dir", "images", "artifact cache directory")
	flagSet.StringVar(&outPath, "out", "-", "output file, or - for stdout")
	flagSet.StringVar(&ffmpeg, "ffmpeg", "ffmpeg", "video encoder binary")
	flagSet.BoolVar(&force, "force", false, "regenerate even if the artifact is cached")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return &usageError{msg: err.Error()}
	}
	if word == "" {
		flagSet.Usage()
		return &usageError{msg: "--word is required"}
	}

	if verbose {
		kasane.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	kind, err := kasane.ParseKind(kindName)
	if err != nil {
		return err
	}
	fonts, err := glyph.LoadRegistry(fontsCfg)
	if err != nil {
		return err
	}
	engine, err := kasane.New(kasane.Config{
		Fonts:    fonts,
		CacheDir: cacheDir,
		Video:    video.Config{FFmpegPath: ffmpeg},
	})
	if err != nil {
		return err
	}

	// Ctrl-C cancels an in-flight video encode; staged frames are
	// cleaned up either way.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	data, hit, err := engine.GenerateArtifactOpts(ctx, word, fontKey, kind,
		kasane.GenerateOptions{ForceRegenerate: force})
	if err != nil {
		return err
	}
	kasane.Logger().Info("artifact ready", "kind", kind.String(), "bytes", len(data), "cache_hit", hit)

	if outPath == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}

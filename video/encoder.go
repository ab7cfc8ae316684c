// Package video assembles incremental-union frame sequences into short
// videos via an external encoder.
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/kasaneapp/kasane/compose"
	"github.com/kasaneapp/kasane/glyph"
)

// RunFunc executes the external encoder binary. The last argument is
// always the output file the encoder must produce. Implementations
// return captured stderr alongside any error. The default runs the
// command with os/exec; tests inject fakes so they need no encoder.
type RunFunc func(ctx context.Context, bin string, args []string) (stderr []byte, err error)

// Config holds the video assembly policy.
type Config struct {
	// FFmpegPath is the encoder binary. Default "ffmpeg" ($PATH lookup).
	FFmpegPath string

	// FrameRate is frames per second of the output; each frame is
	// displayed for 1/FrameRate seconds. Default 1.
	FrameRate int

	// StartLength is the prefix length of the first frame. The default
	// 2 yields N-1 frames for an N-character word: frame 0 unions the
	// first two characters, each later frame adds one more.
	StartLength int

	// Run overrides encoder invocation. Nil uses os/exec.
	Run RunFunc

	// Logger receives encode diagnostics. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the quiz video policy: 1 fps, accumulation
// starting at the two-character prefix.
func DefaultConfig() Config {
	return Config{
		FFmpegPath:  "ffmpeg",
		FrameRate:   1,
		StartLength: 2,
	}
}

// EncodingError is returned when the external encoder fails or is
// unavailable.
type EncodingError struct {
	// Unavailable distinguishes "encoder binary missing or unstartable"
	// from "encoder rejected the frame data".
	Unavailable bool

	// Stderr holds the encoder's captured diagnostics, if any.
	Stderr string

	// Err is the underlying cause.
	Err error
}

func (e *EncodingError) Error() string {
	if e.Unavailable {
		return fmt.Sprintf("video: encoder unavailable: %v", e.Err)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("video: encoder failed: %v: %s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("video: encoder failed: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Assembler builds incremental-union videos from per-character masks.
//
// Assembler is safe for concurrent use; every Build call stages its
// frames in its own scoped temporary directory.
type Assembler struct {
	config Config
	logger *slog.Logger
	run    RunFunc
}

// NewAssembler creates an assembler. Zero config fields take the
// DefaultConfig values.
func NewAssembler(config Config) *Assembler {
	defaults := DefaultConfig()
	if config.FFmpegPath == "" {
		config.FFmpegPath = defaults.FFmpegPath
	}
	if config.FrameRate <= 0 {
		config.FrameRate = defaults.FrameRate
	}
	if config.StartLength < 1 {
		config.StartLength = defaults.StartLength
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	run := config.Run
	if run == nil {
		run = execRun
	}
	return &Assembler{config: config, logger: logger, run: run}
}

// FrameCount returns the number of frames Build produces for a word of
// the given length.
func (a *Assembler) FrameCount(wordLength int) int {
	return wordLength - a.config.StartLength + 1
}

// Ladder returns the ordered frame masks for the word's character
// masks: frame i is the union of the first StartLength+i masks. Frame
// ink is therefore non-decreasing. The inputs are not modified.
func (a *Assembler) Ladder(masks []*glyph.Mask) []*glyph.Mask {
	start := a.config.StartLength
	if len(masks) < start {
		return nil
	}
	frames := make([]*glyph.Mask, 0, len(masks)-start+1)
	acc := compose.UnionMask(masks[:start]...)
	frames = append(frames, acc.Clone())
	for _, m := range masks[start:] {
		acc.Or(m)
		frames = append(frames, acc.Clone())
	}
	return frames
}

// Build assembles the word's masks into a video plus its preview
// frame. The preview is the final frame of the sequence, the full
// union of every character.
//
// Frames are staged as PNG files in a temporary directory that is
// removed on every exit path, including cancellation and encoder
// failure. On failure nothing is committed anywhere.
func (a *Assembler) Build(ctx context.Context, palette compose.Palette, masks []*glyph.Mask) (video, preview []byte, err error) {
	frames := a.Ladder(masks)
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("video: need at least %d masks, got %d", a.config.StartLength, len(masks))
	}

	staging, err := os.MkdirTemp("", "kasane-frames-*")
	if err != nil {
		return nil, nil, fmt.Errorf("video: creating staging directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(staging); rmErr != nil {
			a.logger.Warn("removing frame staging directory", "dir", staging, "error", rmErr)
		}
	}()

	var lastFrame []byte
	for i, frame := range frames {
		img := renderFrame(palette, frame)
		data, err := compose.EncodePNG(img)
		if err != nil {
			return nil, nil, err
		}
		name := filepath.Join(staging, "frame_"+fmt.Sprintf("%03d", i)+".png")
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return nil, nil, fmt.Errorf("video: staging frame %d: %w", i, err)
		}
		lastFrame = data
	}

	outPath := filepath.Join(staging, "out.mp4")
	args := []string{
		"-y",
		"-framerate", strconv.Itoa(a.config.FrameRate),
		"-i", filepath.Join(staging, "frame_%03d.png"),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		outPath,
	}

	a.logger.Debug("encoding video", "frames", len(frames), "fps", a.config.FrameRate)
	stderr, err := a.run(ctx, a.config.FFmpegPath, args)
	if err != nil {
		return nil, nil, classifyEncodeError(err, stderr)
	}

	video, err = os.ReadFile(outPath)
	if err != nil {
		return nil, nil, &EncodingError{Stderr: string(stderr), Err: fmt.Errorf("reading encoder output: %w", err)}
	}
	if len(video) == 0 {
		return nil, nil, &EncodingError{Stderr: string(stderr), Err: errors.New("encoder produced empty output")}
	}

	a.logger.Info("video assembled", "frames", len(frames), "bytes", len(video))
	return video, lastFrame, nil
}

// renderFrame draws a frame mask as ink-on-background.
func renderFrame(palette compose.Palette, frame *glyph.Mask) image.Image {
	return compose.Union(palette, frame)
}

// execRun is the default RunFunc: it executes the encoder binary and
// captures stderr.
func execRun(ctx context.Context, bin string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}

// classifyEncodeError maps a run failure onto the EncodingError
// taxonomy: lookup/start failures are "unavailable", everything else
// (nonzero exit, cancellation) is an encode failure.
func classifyEncodeError(err error, stderr []byte) *EncodingError {
	var execErr *exec.Error
	unavailable := errors.As(err, &execErr) ||
		errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission)
	return &EncodingError{
		Unavailable: unavailable,
		Stderr:      string(stderr),
		Err:         err,
	}
}

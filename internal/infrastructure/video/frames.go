package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
)

// ExtractorConfig controls frame sampling.
type ExtractorConfig struct {
	TargetFPS   int // sampled frames per second of video
	MaxFrames   int // hard cap on frames per video
	ScaleHeight int // output frame height, aspect preserved
}

func (c ExtractorConfig) withDefaults() ExtractorConfig {
	if c.TargetFPS <= 0 {
		c.TargetFPS = 1
	}
	if c.MaxFrames <= 0 {
		c.MaxFrames = 10
	}
	if c.ScaleHeight <= 0 {
		c.ScaleHeight = 720
	}
	return c
}

// FrameExtractor samples JPEG frames from a video file with ffmpeg.
// ffmpeg has no Go bindings; it is driven as a subprocess.
type FrameExtractor struct {
	config ExtractorConfig
	log    zerolog.Logger
}

// NewFrameExtractor creates an extractor with the given sampling config.
func NewFrameExtractor(config ExtractorConfig, log zerolog.Logger) *FrameExtractor {
	return &FrameExtractor{config: config.withDefaults(), log: log}
}

// ExtractFrames writes sampled frames into a fresh temp directory and
// returns their paths ordered by time. The caller owns cleanup of the
// returned files.
func (e *FrameExtractor) ExtractFrames(ctx context.Context, videoPath string) ([]string, error) {
	outDir, err := os.MkdirTemp("", "framecart-frames-")
	if err != nil {
		return nil, fmt.Errorf("create frame directory: %w", err)
	}

	pattern := filepath.Join(outDir, "frame_%04d.jpg")
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%d,scale=-2:%d", e.config.TargetFPS, e.config.ScaleHeight),
		"-frames:v", fmt.Sprintf("%d", e.config.MaxFrames),
		"-q:v", "2",
		pattern,
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(outDir)
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, string(output))
	}

	frames, err := filepath.Glob(filepath.Join(outDir, "frame_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	sort.Strings(frames)

	e.log.Debug().Str("video", videoPath).Int("frames", len(frames)).Msg("frames extracted")
	return frames, nil
}

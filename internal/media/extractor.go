// Package media shells out to ffmpeg for audio extraction.
package media

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/purposeful/coach/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Extractor interface {
	// ExtractAudio produces an mp3 next to the given video file and
	// returns its path.
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
}

var Module = fx.Module("media",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Extractor {
	return NewFFmpeg(cfg.FFmpegPath, log)
}

type FFmpeg struct {
	binary string
	log    *zap.Logger
}

func NewFFmpeg(binary string, log *zap.Logger) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{binary: binary, log: log.Named("media.ffmpeg")}
}

func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	audioPath := audioPathFor(videoPath)

	cmd := exec.CommandContext(ctx, f.binary,
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		"-y",
		audioPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		f.log.Error("ffmpeg failed",
			zap.String("video", videoPath),
			zap.ByteString("output", out),
			zap.Error(err),
		)
		return "", fmt.Errorf("extract audio from %s: %w", videoPath, err)
	}
	return audioPath, nil
}

func audioPathFor(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return strings.TrimSuffix(videoPath, ext) + ".mp3"
}

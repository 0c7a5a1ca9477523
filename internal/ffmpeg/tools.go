package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/mediapress/internal/media"
)

// Tools drives the resolved binaries. All operations accept an Input so
// videos and image sequences share one call surface.
type Tools struct {
	set Toolset
	run *Runner
	log *slog.Logger
}

// NewTools resolves the binaries and returns a ready toolset. configDir
// optionally pins a directory holding the binaries.
func NewTools(configDir string, log *slog.Logger) (*Tools, error) {
	set, err := LocateToolset(configDir)
	if err != nil {
		return nil, err
	}
	log.Debug("resolved binaries",
		"ffmpeg", set.FFmpeg, "ffprobe", set.FFprobe, "ffplay", set.FFplay)
	return &Tools{set: set, run: NewRunner(log), log: log}, nil
}

// Thumbnail extracts the first frame as a JPEG scaled to the given pixel
// height, preserving aspect ratio. The image is returned in memory.
func (t *Tools) Thumbnail(ctx context.Context, in Input, height int) ([]byte, error) {
	args := []string{"-v", "0", "-ss", "0", "-noaccurate_seek"}
	args = append(args, in.Args(true)...)
	args = append(args,
		"-frames", "1",
		"-vf", fmt.Sprintf("scale=-1:%d", height),
		"-f", "singlejpeg",
		"-y", "-",
	)

	out, err := t.run.Run(ctx, t.set.FFmpeg, args...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty thumbnail for %s", in.Path)
	}
	return out, nil
}

// SpawnEncode starts a ProRes encode of the input and returns the running
// child. The caller streams progress from Proc.Stderr and reaps it.
func (t *Tools) SpawnEncode(ctx context.Context, in Input, profile media.Profile, outpath string) (*Proc, error) {
	args := in.Args(true)
	args = append(args, profile.Args()...)
	args = append(args, "-codec:a", "copy")
	args = append(args, "-y", outpath)
	return t.run.Spawn(ctx, t.set.FFmpeg, args...)
}

// SpawnPreview starts ffplay on the input and returns without waiting.
// ffplay takes its input positionally, so the input flag is elided.
func (t *Tools) SpawnPreview(ctx context.Context, in Input) (*Proc, error) {
	if t.set.FFplay == "" {
		return nil, fmt.Errorf("ffplay not found, preview unavailable")
	}

	var args []string
	inArgs := in.Args(true)
	for i := 0; i < len(inArgs); i++ {
		if inArgs[i] == "-i" {
			continue
		}
		args = append(args, inArgs[i])
	}
	return t.run.Spawn(ctx, t.set.FFplay, args...)
}

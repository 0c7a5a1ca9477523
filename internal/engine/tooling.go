package engine

import (
	"context"
	"io"

	"github.com/jmylchreest/mediapress/internal/ffmpeg"
	"github.com/jmylchreest/mediapress/internal/media"
)

// Process is a running child owned by the worker.
type Process interface {
	PID() int
	Stderr() io.Reader
	Wait() error
	Kill()
}

// Tooling is the worker's view of the media binaries. Tests substitute
// fakes; production wires ffmpeg.Tools through NewFFmpegTooling.
type Tooling interface {
	Probe(ctx context.Context, in ffmpeg.Input) (ffmpeg.Metadata, error)
	Thumbnail(ctx context.Context, in ffmpeg.Input, height int) ([]byte, error)
	SpawnEncode(ctx context.Context, in ffmpeg.Input, profile media.Profile, outpath string) (Process, error)
	SpawnPreview(ctx context.Context, in ffmpeg.Input) (Process, error)
}

type ffmpegTooling struct {
	tools *ffmpeg.Tools
}

// NewFFmpegTooling adapts the real toolset to the Tooling interface.
func NewFFmpegTooling(tools *ffmpeg.Tools) Tooling {
	return &ffmpegTooling{tools: tools}
}

func (f *ffmpegTooling) Probe(ctx context.Context, in ffmpeg.Input) (ffmpeg.Metadata, error) {
	return f.tools.Probe(ctx, in)
}

func (f *ffmpegTooling) Thumbnail(ctx context.Context, in ffmpeg.Input, height int) ([]byte, error) {
	return f.tools.Thumbnail(ctx, in, height)
}

func (f *ffmpegTooling) SpawnEncode(ctx context.Context, in ffmpeg.Input, profile media.Profile, outpath string) (Process, error) {
	return f.tools.SpawnEncode(ctx, in, profile, outpath)
}

func (f *ffmpegTooling) SpawnPreview(ctx context.Context, in ffmpeg.Input) (Process, error) {
	return f.tools.SpawnPreview(ctx, in)
}

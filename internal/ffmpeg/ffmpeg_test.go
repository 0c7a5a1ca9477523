package ffmpeg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/mediapress/internal/media"
)

func TestInputArgsVideo(t *testing.T) {
	in := Input{Path: "/media/clip.mov"}
	assert.Equal(t, []string{"-i", "/media/clip.mov"}, in.Args(true))
	assert.Equal(t, []string{"-i", "/media/clip.mov"}, in.Args(false))
}

func TestInputArgsSequenceUntagged(t *testing.T) {
	in := Input{
		Path:        "/shoot/frame_%04d.png",
		Sequence:    true,
		Framerate:   media.Rational{Num: 24000, Den: 1001},
		StartNumber: 7,
	}

	assert.Equal(t, []string{
		"-framerate", "24000:1001",
		"-color_primaries", "bt709",
		"-color_trc", "bt709",
		"-colorspace", "bt709",
		"-start_number", "7",
		"-i", "/shoot/frame_%04d.png",
	}, in.Args(true))

	// Probing must see the source untagged.
	assert.Equal(t, []string{
		"-framerate", "24000:1001",
		"-start_number", "7",
		"-i", "/shoot/frame_%04d.png",
	}, in.Args(false))
}

func TestInputArgsSequenceTagged(t *testing.T) {
	in := Input{
		Path:        "/shoot/frame_%04d.png",
		Sequence:    true,
		Framerate:   media.Rational{Num: 25, Den: 1},
		StartNumber: 1,
		Colorspace:  "bt2020nc",
	}
	assert.NotContains(t, in.Args(true), "-color_primaries")
}

func TestProgressParser(t *testing.T) {
	var p ProgressParser

	p.Feed([]byte("Input #0, mov,mp4,m4a\n  Duration: 00:01:40.00, start: 0.000000\n"))
	assert.Equal(t, 100.0, p.Duration())
	assert.Equal(t, 0.0, p.Fraction())

	p.Feed([]byte("frame=  100 fps=50 time=00:00:25.00 bitrate=x speed=1x\r"))
	assert.Equal(t, 25.0, p.Elapsed())
	assert.InDelta(t, 0.25, p.Fraction(), 1e-9)

	p.Feed([]byte("frame=  400 fps=50 time=00:01:40.00 bitrate=x speed=1x\r"))
	assert.Equal(t, 1.0, p.Fraction())
}

func TestProgressParserByteWise(t *testing.T) {
	var p ProgressParser
	for _, b := range []byte("Duration: 00:00:10.50, start\ntime=00:00:05.25 \r") {
		p.Feed([]byte{b})
	}
	assert.Equal(t, 10.5, p.Duration())
	assert.InDelta(t, 0.5, p.Fraction(), 1e-9)
}

func TestProgressParserClampsOvershoot(t *testing.T) {
	var p ProgressParser
	p.Feed([]byte("Duration: 00:00:10.00\ntime=00:00:12.00\r"))
	assert.Equal(t, 1.0, p.Fraction())
}

func TestProgressParserNoDuration(t *testing.T) {
	var p ProgressParser
	p.Feed([]byte("time=00:00:12.00\r"))
	assert.Equal(t, 0.0, p.Fraction())
}

func TestProgressParserLastLine(t *testing.T) {
	var p ProgressParser
	p.Feed([]byte("something\nConversion failed!"))
	p.Flush()
	assert.Equal(t, "Conversion failed!", p.LastLine())
}

func TestProgressParserLongHours(t *testing.T) {
	var p ProgressParser
	p.Feed([]byte("Duration: 100:00:00.00\n"))
	assert.Equal(t, 360000.0, p.Duration())
}

func TestParseMetadata(t *testing.T) {
	out := []byte(`{"streams": [{
		"codec_name": "h264",
		"codec_type": "video",
		"width": 1920,
		"height": 1080,
		"pix_fmt": "yuv420p",
		"color_space": "bt709",
		"r_frame_rate": "30000/1001",
		"duration": "12.512500"
	}]}`)

	meta, err := parseMetadata(out, "/media/clip.mov")
	require.NoError(t, err)
	assert.Equal(t, "h264", meta.Codec)
	assert.Equal(t, "yuv420p", meta.PixFmt)
	assert.Equal(t, "bt709", meta.Colorspace)
	assert.Equal(t, media.Resolution{Width: 1920, Height: 1080}, meta.Resolution)
	assert.Equal(t, media.Rational{Num: 30000, Den: 1001}, meta.Framerate)
	assert.InDelta(t, 12.5125, meta.Duration, 1e-9)
}

func TestParseMetadataZeroFramerate(t *testing.T) {
	out := []byte(`{"streams": [{"codec_name": "png", "r_frame_rate": "0/0"}]}`)
	meta, err := parseMetadata(out, "x")
	require.NoError(t, err)
	assert.True(t, meta.Framerate.IsZero())
}

func TestParseMetadataSkipsAudioStreams(t *testing.T) {
	out := []byte(`{"streams": [
		{"codec_name": "aac", "codec_type": "audio"},
		{"codec_name": "prores", "codec_type": "video", "width": 2048, "height": 858}
	]}`)
	meta, err := parseMetadata(out, "x")
	require.NoError(t, err)
	assert.Equal(t, "prores", meta.Codec)
}

func TestParseMetadataNoStreams(t *testing.T) {
	_, err := parseMetadata([]byte(`{"streams": []}`), "/media/readme.txt")
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, -1, ExitCode(os.ErrClosed))
}

func TestLocatePrefersConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, exeName("ffmpeg"))
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))

	path, err := locate("ffmpeg", dir)
	require.NoError(t, err)
	assert.Equal(t, bin, path)
}

func TestLocateConfiguredDirMissingBinary(t *testing.T) {
	_, err := locate("ffmpeg", t.TempDir())
	assert.Error(t, err)
}

package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jmylchreest/mediapress/internal/media"
)

// ProbeStream is one stream entry of ffprobe's JSON output. Only the
// fields the catalogue carries are decoded.
type ProbeStream struct {
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	PixFmt     string `json:"pix_fmt"`
	ColorSpace string `json:"color_space"`
	RFrameRate string `json:"r_frame_rate"`
	Duration   string `json:"duration"`
}

// ProbeResult is the decoded ffprobe output.
type ProbeResult struct {
	Streams []ProbeStream `json:"streams"`
}

// Metadata is the probed description of an input, in catalogue terms.
type Metadata struct {
	Codec      string
	PixFmt     string
	Colorspace string
	Resolution media.Resolution
	Duration   float64
	Framerate  media.Rational
}

// Probe runs ffprobe against the input and extracts metadata from its
// first video stream. The input is probed without the bt709 declaration
// so an untagged source reports an empty colour space.
func (t *Tools) Probe(ctx context.Context, in Input) (Metadata, error) {
	args := []string{"-v", "0", "-show_streams", "-print_format", "json"}
	args = append(args, in.Args(false)...)

	out, err := t.run.Run(ctx, t.set.FFprobe, args...)
	if err != nil {
		return Metadata{}, err
	}
	return parseMetadata(out, in.Path)
}

func parseMetadata(out []byte, path string) (Metadata, error) {
	var result ProbeResult
	if err := json.Unmarshal(out, &result); err != nil {
		return Metadata{}, fmt.Errorf("decoding ffprobe output: %w", err)
	}

	stream, ok := firstVideoStream(result.Streams)
	if !ok {
		return Metadata{}, fmt.Errorf("no video stream in %s", path)
	}

	meta := Metadata{
		Codec:      stream.CodecName,
		PixFmt:     stream.PixFmt,
		Colorspace: stream.ColorSpace,
		Resolution: media.Resolution{Width: stream.Width, Height: stream.Height},
	}
	if stream.Duration != "" {
		if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
			meta.Duration = d
		}
	}
	if stream.RFrameRate != "" {
		rate, err := media.ParseRational(stream.RFrameRate)
		if err != nil {
			return Metadata{}, fmt.Errorf("parsing r_frame_rate of %s: %w", path, err)
		}
		meta.Framerate = rate
	}
	return meta, nil
}

func firstVideoStream(streams []ProbeStream) (ProbeStream, bool) {
	for _, s := range streams {
		if s.CodecType == "" || s.CodecType == "video" {
			return s, true
		}
	}
	return ProbeStream{}, false
}

package ffmpeg

import (
	"strconv"

	"github.com/jmylchreest/mediapress/internal/media"
)

// Input describes one media input to ffmpeg: either a concrete video file
// or an image-sequence path template.
type Input struct {
	// Path is the file path, or for sequences the printf-style template.
	Path string
	// Sequence selects image-sequence demuxing.
	Sequence bool
	// Framerate is the rate image frames are read at. Sequences only.
	Framerate media.Rational
	// StartNumber is the first frame index. Sequences only.
	StartNumber int
	// Colorspace is the probed colour space, empty when the source carries
	// no tag. Untagged sequences are declared bt709 on input.
	Colorspace string
}

// Args returns the ffmpeg input arguments. withColor controls the bt709
// declaration for untagged sequences; probing passes false so the probe
// sees the source as-is.
func (in Input) Args(withColor bool) []string {
	if !in.Sequence {
		return []string{"-i", in.Path}
	}

	args := []string{"-framerate", in.Framerate.Spec()}
	if withColor && in.Colorspace == "" {
		args = append(args,
			"-color_primaries", "bt709",
			"-color_trc", "bt709",
			"-colorspace", "bt709",
		)
	}
	args = append(args,
		"-start_number", strconv.Itoa(in.StartNumber),
		"-i", in.Path,
	)
	return args
}

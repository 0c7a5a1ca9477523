package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/mediapress/internal/ffmpeg"
	"github.com/jmylchreest/mediapress/internal/media"
	"github.com/jmylchreest/mediapress/internal/observability"
	"github.com/jmylchreest/mediapress/internal/sequence"
)

var probeFramerate string

var probeCmd = &cobra.Command{
	Use:   "probe <path>",
	Short: "Probe a file or sequence template and print its metadata",
	Long: `Probe runs ffprobe against a video file or an image-sequence template
such as "frame_%04d.png" and prints the stream metadata the scanner
would catalogue.`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().StringVar(&probeFramerate, "framerate", "fps_30",
		"framerate preset used when probing a sequence template")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	log := observability.WithComponent(slog.Default(), "probe")
	tools, err := ffmpeg.NewTools(appCfg.Engine.FFmpegPath, log)
	if err != nil {
		return err
	}

	in, err := probeInput(args[0])
	if err != nil {
		return err
	}

	meta, err := tools.Probe(cmd.Context(), in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "codec:      %s\n", meta.Codec)
	fmt.Fprintf(out, "resolution: %s\n", meta.Resolution)
	fmt.Fprintf(out, "framerate:  %s\n", meta.Framerate)
	fmt.Fprintf(out, "pix_fmt:    %s\n", meta.PixFmt)
	if meta.Colorspace != "" {
		fmt.Fprintf(out, "colorspace: %s\n", meta.Colorspace)
	}
	fmt.Fprintf(out, "duration:   %.3fs\n", meta.Duration)
	return nil
}

// probeInput treats paths with a printf placeholder in the basename as
// sequence templates, plain paths as video files.
func probeInput(path string) (ffmpeg.Input, error) {
	if !strings.Contains(filepath.Base(path), "%") {
		return ffmpeg.Input{Path: path}, nil
	}

	col, err := sequence.Parse(path)
	if err != nil {
		return ffmpeg.Input{}, err
	}
	rate, err := media.LookupFramerate(probeFramerate)
	if err != nil {
		return ffmpeg.Input{}, err
	}

	start := 1
	if len(col.Indexes) > 0 {
		start = col.First()
	}
	return ffmpeg.Input{
		Path:        col.Template(),
		Sequence:    true,
		Framerate:   rate,
		StartNumber: start,
	}, nil
}

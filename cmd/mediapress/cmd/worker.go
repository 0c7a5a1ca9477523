package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/mediapress/internal/engine"
	"github.com/jmylchreest/mediapress/internal/ffmpeg"
	"github.com/jmylchreest/mediapress/internal/observability"
)

// workerCmd runs the engine half of the pipe. The viewer spawns it with
// stdin/stdout connected; it is hidden because users never start it by
// hand.
var workerCmd = &cobra.Command{
	Use:    "worker",
	Short:  "Run the transcoding engine worker",
	Hidden: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := observability.WithComponent(slog.Default(), "worker")

		tools, err := ffmpeg.NewTools(appCfg.Engine.FFmpegPath, log)
		if err != nil {
			return err
		}

		return engine.RunWorker(cmd.Context(), appCfg, engine.NewFFmpegTooling(tools),
			os.Stdin, os.Stdout, log)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/mediapress/internal/engine"
	"github.com/jmylchreest/mediapress/internal/media"
	"github.com/jmylchreest/mediapress/internal/observability"
)

var scanFramerate string

var scanCmd = &cobra.Command{
	Use:   "scan <path>...",
	Short: "Discover and probe media under the given paths",
	Long: `Scan walks the given files and directories, catalogues video files and
numbered image sequences, probes them with ffprobe and extracts
thumbnails. Interrupt with Ctrl-C to cancel the scan.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFramerate, "framerate", "fps_30",
		"framerate preset assigned to image sequences")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	rate, err := media.LookupFramerate(scanFramerate)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log := observability.WithComponent(slog.Default(), "ui")
	proxy, err := engine.SpawnWorker(cmd.Context(), log)
	if err != nil {
		return err
	}

	if err := proxy.ScanPaths(args, rate); err != nil {
		return err
	}

	proj := engine.NewProjection()
	if err := driveScan(ctx, proxy, proj); err != nil {
		_ = proxy.Join()
		return err
	}

	renderItems(cmd.OutOrStdout(), proj, appCfg.UI.DetailsStyle)
	return proxy.Join()
}

// driveScan pumps events into the projection until the scan finishes. An
// interrupted context sends cancel_scan and keeps pumping until the
// worker acknowledges.
func driveScan(ctx context.Context, proxy *engine.Proxy, proj *engine.Projection) error {
	cancelled := false
	for {
		if ctx.Err() != nil && !cancelled {
			cancelled = true
			fmt.Fprintln(os.Stderr, "\ncancelling scan...")
			if err := proxy.CancelScan(); err != nil {
				return err
			}
		}

		evt := proxy.Poll()
		if evt == nil {
			time.Sleep(appCfg.UI.EnginePollInterval)
			continue
		}
		proj.Apply(evt)

		switch evt.Name {
		case engine.EvtScanUpdate:
			if len(evt.Args) == 2 {
				fmt.Fprintf(os.Stderr, "\rscanning: %v dirs, %v files ", evt.Args[0], evt.Args[1])
			}
		case engine.EvtScanComplete:
			fmt.Fprintf(os.Stderr, "\rscan complete: %d items\n", proj.Len())
			return nil
		case engine.EvtScanCancelled:
			fmt.Fprintln(os.Stderr, "scan cancelled")
			return nil
		}
	}
}

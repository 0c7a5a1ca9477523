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

var (
	encodeProfile   string
	encodeFramerate string
)

var encodeCmd = &cobra.Command{
	Use:   "encode <path>...",
	Short: "Scan the given paths and transcode everything to ProRes",
	Long: `Encode scans the given files and directories and then transcodes every
discovered item to Apple ProRes, one at a time. Outputs are written next
to their sources with the configured suffix. Interrupt with Ctrl-C to
cancel; the item being encoded returns to ready.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().StringVar(&encodeProfile, "profile", "prores_422",
		"encoding profile (prores_422_proxy, prores_422_lt, prores_422, prores_422_hq, prores_4444, prores_4444_xq)")
	encodeCmd.Flags().StringVar(&encodeFramerate, "framerate", "fps_30",
		"framerate preset for image sequences")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	if _, err := media.LookupProfile(encodeProfile); err != nil {
		return err
	}
	rate, err := media.LookupFramerate(encodeFramerate)
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
	if ctx.Err() != nil {
		return proxy.Join()
	}

	if err := proxy.EncodeItems(nil, encodeProfile, encodeFramerate); err != nil {
		_ = proxy.Join()
		return err
	}
	if err := driveEncode(ctx, proxy, proj); err != nil {
		_ = proxy.Join()
		return err
	}

	failed := summarizeEncode(cmd, proj)
	if err := proxy.Join(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d encode(s) failed", failed)
	}
	return nil
}

// driveEncode pumps events until the batch finishes, rendering per-item
// progress as it goes.
func driveEncode(ctx context.Context, proxy *engine.Proxy, proj *engine.Projection) error {
	cancelled := false
	for {
		if ctx.Err() != nil && !cancelled {
			cancelled = true
			fmt.Fprintln(os.Stderr, "\ncancelling encode...")
			if err := proxy.CancelEncode(); err != nil {
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
		case engine.EvtMediaUpdate:
			item := proj.Lookup(evt.ID())
			if item != nil && fieldString(item, media.FieldState) == string(media.StateEncoding) {
				fmt.Fprintf(os.Stderr, "\r%s %3.0f%% ",
					fieldString(item, media.FieldDisplayname),
					100*fieldFloat(item, media.FieldProgress))
			}
		case engine.EvtEncodeComplete:
			fmt.Fprintln(os.Stderr)
			return nil
		case engine.EvtEncodeCancelled:
			fmt.Fprintln(os.Stderr, "encode cancelled")
			return nil
		}
	}
}

// summarizeEncode prints per-item results and returns the failure count.
func summarizeEncode(cmd *cobra.Command, proj *engine.Projection) int {
	out := cmd.OutOrStdout()
	failed := 0
	for _, id := range proj.IDs() {
		item := proj.Lookup(id)
		display := fieldString(item, media.FieldDisplayname)

		switch fieldString(item, media.FieldState) {
		case string(media.StateDone):
			fmt.Fprintf(out, "done   %s -> %s\n", display, fieldString(item, media.FieldOutpath))
		case string(media.StateError):
			fmt.Fprintf(out, "failed %s\n", display)
			failed++
		default:
			fmt.Fprintf(out, "%-6s %s\n", fieldString(item, media.FieldState), display)
		}
	}
	return failed
}

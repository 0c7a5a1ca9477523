package engine

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/jmylchreest/mediapress/internal/catalogue"
	"github.com/jmylchreest/mediapress/internal/config"
	"github.com/jmylchreest/mediapress/internal/media"
)

// Worker is the engine process state. It is single-threaded by design:
// commands are dispatched one at a time from the main loop, and the long
// operations (scanning, encoding) drain pending commands cooperatively at
// their suspension points. That keeps the catalogue free of locks while
// still letting a cancel land mid-scan or mid-encode.
type Worker struct {
	cfg   *config.Config
	log   *slog.Logger
	tools Tooling
	ctx   context.Context

	cat *catalogue.Catalogue
	out *json.Encoder

	commands chan Command

	scanning      bool
	scanQueue     []string
	scanCancelled bool
	seqRate       media.Rational

	encoding        bool
	encodeCancelled bool

	joining bool
}

// RunWorker runs the engine over the given command input and event
// output until a join command (or input EOF) arrives. Events are written
// as JSON lines; commands are read as JSON values.
func RunWorker(ctx context.Context, cfg *config.Config, tools Tooling, in io.Reader, out io.Writer, log *slog.Logger) error {
	w := &Worker{
		cfg:      cfg,
		log:      log,
		tools:    tools,
		ctx:      ctx,
		out:      json.NewEncoder(out),
		commands: make(chan Command, 64),
	}
	w.cat = catalogue.New(w)

	w.logStartup(ctx)

	go w.readCommands(in)

	for !w.joining {
		select {
		case cmd, ok := <-w.commands:
			if !ok {
				w.requestJoin()
				continue
			}
			w.dispatch(cmd)
		case <-ctx.Done():
			w.requestJoin()
		}
	}

	w.log.Debug("worker exiting")
	return nil
}

// readCommands decodes the command stream and feeds the channel. EOF or a
// decode failure closes the channel, which the loops treat as a join.
func (w *Worker) readCommands(in io.Reader) {
	dec := json.NewDecoder(in)
	for {
		var cmd Command
		if err := dec.Decode(&cmd); err != nil {
			if err != io.EOF {
				w.log.Error("command stream broken", "error", err)
			}
			close(w.commands)
			return
		}
		w.commands <- cmd
	}
}

// pollCommands drains and dispatches every pending command without
// blocking. Scanning and encoding call this at their suspension points so
// cancels and queue extensions take effect mid-operation.
func (w *Worker) pollCommands() {
	for {
		select {
		case cmd, ok := <-w.commands:
			if !ok {
				w.requestJoin()
				return
			}
			w.dispatch(cmd)
		default:
			return
		}
	}
}

func (w *Worker) dispatch(cmd Command) {
	log := w.log
	if cmd.CID != "" {
		log = log.With("cid", cmd.CID)
	}
	log.Debug("received command", "command", cmd.Name)

	switch cmd.Name {
	case CmdScanPaths:
		var args ScanPathsArgs
		if !w.decodeKwargs(cmd, &args) {
			return
		}
		w.scanPaths(args)
	case CmdCancelScan:
		w.scanCancelled = true
	case CmdEncodeItems:
		var args EncodeItemsArgs
		if !w.decodeKwargs(cmd, &args) {
			return
		}
		w.encodeItems(args)
	case CmdCancelEncode:
		// A cancel with no batch running is a no-op. Latching the flag
		// while idle would silently swallow the next encode_items.
		if w.encoding {
			w.encodeCancelled = true
		}
	case CmdRemoveItems:
		var args RemoveItemsArgs
		if !w.decodeKwargs(cmd, &args) {
			return
		}
		w.removeItems(args.IDs)
	case CmdPreviewItem:
		var args PreviewItemArgs
		if !w.decodeKwargs(cmd, &args) {
			return
		}
		w.previewItem(args)
	case CmdJoin:
		w.requestJoin()
	default:
		log.Warn("unknown command", "command", cmd.Name)
	}
}

func (w *Worker) decodeKwargs(cmd Command, into any) bool {
	if len(cmd.Kwargs) == 0 {
		return true
	}
	if err := json.Unmarshal(cmd.Kwargs, into); err != nil {
		w.log.Error("bad command kwargs", "command", cmd.Name, "error", err)
		return false
	}
	return true
}

// requestJoin cancels any in-flight scan and encode and arranges for the
// loops to unwind back to RunWorker.
func (w *Worker) requestJoin() {
	w.scanCancelled = true
	w.encodeCancelled = true
	w.joining = true
}

// emit writes one event line. A write failure means the proxy is gone, so
// the worker winds down.
func (w *Worker) emit(name string, args ...any) {
	if err := w.out.Encode(Event{Name: name, Args: args}); err != nil {
		w.log.Error("event write failed", "event", name, "error", err)
		w.requestJoin()
	}
}

// MediaUpdate implements catalogue.Notifier.
func (w *Worker) MediaUpdate(id string, fields media.Fields) {
	w.emit(EvtMediaUpdate, id, fields)
}

// MediaDelete implements catalogue.Notifier.
func (w *Worker) MediaDelete(id string) {
	w.emit(EvtMediaDelete, id)
}

// removeItems deletes catalogued items. Items still being discovered or
// encoded are skipped; the rest are removed regardless of queue state.
func (w *Worker) removeItems(ids []string) {
	for _, id := range ids {
		item := w.cat.Lookup(id)
		if item == nil {
			continue
		}
		switch item.State() {
		case media.StateNew, media.StateEncoding:
			continue
		}
		w.cat.Delete(id)
	}
}

// previewItem spawns ffplay on the item: the encoded output for done
// items, the source otherwise. The player is reaped in the background and
// never blocks the engine.
func (w *Worker) previewItem(args PreviewItemArgs) {
	item := w.cat.Lookup(args.ID)
	if item == nil {
		return
	}

	in := inputForItem(item, media.Rational{})
	if item.State() == media.StateDone && item.Outpath() != "" {
		in = inputForPath(item.Outpath())
	} else if args.Framerate != "" {
		rate, err := media.LookupFramerate(args.Framerate)
		if err != nil {
			w.log.Warn("preview ignoring framerate", "error", err)
		} else if item.Kind() == media.KindSequence {
			in.Framerate = rate
		}
	}

	proc, err := w.tools.SpawnPreview(w.ctx, in)
	if err != nil {
		w.log.Error("preview failed", "id", args.ID, "error", err)
		return
	}
	w.log.Info("preview spawned", "id", args.ID, "pid", proc.PID())

	go func() {
		_, _ = io.Copy(io.Discard, proc.Stderr())
		if err := proc.Wait(); err != nil {
			w.log.Debug("preview exited", "id", args.ID, "error", err)
		}
	}()
}

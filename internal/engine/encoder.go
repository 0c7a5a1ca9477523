package engine

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/mediapress/internal/ffmpeg"
	"github.com/jmylchreest/mediapress/internal/media"
	"github.com/jmylchreest/mediapress/internal/sequence"
)

type encodeJob struct {
	id        string
	profile   string
	framerate string
}

// encodeItems queues the selected items and encodes them one after
// another. One child process runs at a time; progress, cancellation and
// queue refunds all flow through the catalogue.
func (w *Worker) encodeItems(args EncodeItemsArgs) {
	if w.encodeCancelled {
		// A cancel is still unwinding; don't grow the queue behind it.
		return
	}
	if w.encoding {
		w.log.Debug("encode already running, ignoring", "ids", len(args.IDs))
		return
	}
	w.encoding = true
	defer func() { w.encoding = false }()

	ids := args.IDs
	if len(ids) == 0 {
		ids = w.cat.InState(media.StateReady)
	}

	log := w.log.With("batch", ulid.Make().String())
	log.Info("encode batch started", "items", len(ids), "profile", args.Profile)

	queue := make([]encodeJob, 0, len(ids))
	for _, id := range ids {
		if !w.cat.Contains(id) {
			log.Warn("skipping unknown item", "id", id)
			continue
		}
		w.cat.Update(id, media.Fields{media.FieldState: media.StateQueued})
		queue = append(queue, encodeJob{id: id, profile: args.Profile, framerate: args.Framerate})
	}

	for len(queue) > 0 && !w.encodeCancelled {
		job := queue[0]
		queue = queue[1:]
		w.encodeItem(log, job)
	}

	if w.encodeCancelled {
		for _, job := range queue {
			w.cat.Update(job.id, media.Fields{media.FieldState: media.StateReady})
		}
		w.emit(EvtEncodeCancelled)
		w.encodeCancelled = false
		log.Info("encode batch cancelled", "refunded", len(queue))
	} else {
		w.emit(EvtEncodeComplete)
		log.Info("encode batch complete")
	}
}

// encodeItem runs one encode child to completion, streaming progress from
// its stderr. Commands are polled on every progress step so a cancel
// lands mid-encode and kills the child.
func (w *Worker) encodeItem(log *slog.Logger, job encodeJob) {
	item := w.cat.Lookup(job.id)
	if item == nil {
		log.Warn("encode item vanished", "id", job.id)
		return
	}

	profile, err := media.LookupProfile(job.profile)
	if err != nil {
		log.Error("encode failed", "id", job.id, "error", err)
		w.cat.Update(job.id, media.Fields{
			media.FieldProgress: 0.0,
			media.FieldState:    media.StateError,
		})
		return
	}

	rate, err := media.LookupFramerate(job.framerate)
	if err != nil {
		log.Warn("ignoring framerate override", "id", job.id, "error", err)
		rate = media.Rational{}
	}

	outpath := defaultOutpath(item, w.cfg.Engine.OutputSuffix)
	if _, err := os.Stat(outpath); err == nil {
		log.Warn("overwriting existing output", "id", job.id, "outpath", outpath)
	}

	w.cat.Update(job.id, media.Fields{media.FieldState: media.StateEncoding})

	proc, err := w.tools.SpawnEncode(w.ctx, inputForItem(item, rate), profile, outpath)
	if err != nil {
		log.Error("encode spawn failed", "id", job.id, "error", err)
		w.cat.Update(job.id, media.Fields{
			media.FieldProgress: 0.0,
			media.FieldState:    media.StateError,
		})
		return
	}
	log.Info("encode started", "id", job.id, "pid", proc.PID(), "outpath", outpath)

	monitor, _ := ffmpeg.NewProcMonitor(proc.PID())

	var parser ffmpeg.ProgressParser
	stderr := proc.Stderr()
	buf := make([]byte, 4096)
	lastProgress := -1.0
	lastSample := time.Now()

	for {
		n, readErr := stderr.Read(buf)
		if n > 0 {
			parser.Feed(buf[:n])

			if f := parser.Fraction(); f > 0 && f != lastProgress {
				lastProgress = f
				w.cat.Update(job.id, media.Fields{media.FieldProgress: f})
			}
			if monitor != nil && time.Since(lastSample) >= 2*time.Second {
				lastSample = time.Now()
				if s, err := monitor.Sample(); err == nil {
					log.Debug("encode stats", "id", job.id,
						"cpu_percent", s.CPUPercent, "rss_bytes", s.RSSBytes)
				}
			}
			// Poll on every chunk, not just on progress steps, so a
			// cancel lands even when the child reports no duration.
			w.pollCommands()
		}
		if readErr != nil || w.encodeCancelled {
			break
		}
	}
	parser.Flush()

	if w.encodeCancelled {
		log.Warn("encode cancelled, killing child", "id", job.id, "pid", proc.PID())
		proc.Kill()
	}

	rc := ffmpeg.ExitCode(proc.Wait())
	switch {
	case rc == 0:
		w.cat.Update(job.id, media.Fields{
			media.FieldProgress: 1.0,
			media.FieldState:    media.StateDone,
			media.FieldOutpath:  outpath,
		})
	case w.encodeCancelled:
		w.cat.Update(job.id, media.Fields{
			media.FieldProgress: 0.0,
			media.FieldState:    media.StateReady,
		})
	default:
		log.Error("encode failed", "id", job.id, "exit_code", rc, "last_line", parser.LastLine())
		w.cat.Update(job.id, media.Fields{
			media.FieldProgress: 0.0,
			media.FieldState:    media.StateError,
		})
	}
}

// defaultOutpath derives the encode target next to the source. Sequences
// collapse their placeholder to zeros first, so frame_%04d.png becomes
// frame_0000_prores.mov.
func defaultOutpath(item *media.Item, suffix string) string {
	path := item.Path()
	if item.Kind() == media.KindSequence {
		if col, err := sequence.Parse(path); err == nil {
			path = filepath.Join(col.Dir, col.Head+strings.Repeat("0", col.Padding)+col.Tail)
		}
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}

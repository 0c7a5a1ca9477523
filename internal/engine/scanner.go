package engine

import (
	"image"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/mediapress/internal/ffmpeg"
	"github.com/jmylchreest/mediapress/internal/media"
	"github.com/jmylchreest/mediapress/internal/sequence"

	// Decoders for the sequence resolution hint.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

var videoExts = map[string]bool{
	"avi": true, "mov": true, "mp4": true, "m4v": true, "mkv": true, "webm": true,
}

var imageExts = map[string]bool{
	"png": true, "tif": true, "tiff": true, "jpg": true, "jpeg": true,
	"dpx": true, "exr": true,
}

// scanPaths discovers media under the given paths. When a scan is already
// running the paths join its queue and the outer scan picks them up; the
// call arrived through pollCommands in that case.
func (w *Worker) scanPaths(args ScanPathsArgs) {
	w.scanQueue = append(w.scanQueue, args.Paths...)
	if w.scanning {
		return
	}
	w.scanning = true
	defer func() { w.scanning = false }()

	w.scanCancelled = false
	w.seqRate = args.SequenceFramerate
	if w.seqRate.IsZero() {
		w.seqRate = media.Rational{Num: 30, Den: 1}
	}

	run := &scanRun{
		w:          w,
		log:        w.log.With("scan", ulid.Make().String()),
		lastUpdate: time.Now(),
		visited:    make(map[string]bool),
	}
	run.log.Info("scan started", "paths", len(w.scanQueue), "framerate", w.seqRate.String())

	for len(w.scanQueue) > 0 {
		path := w.scanQueue[0]
		w.scanQueue = w.scanQueue[1:]

		abs, err := filepath.Abs(path)
		if err != nil {
			run.log.Warn("skipping path", "path", path, "error", err)
			continue
		}
		info, err := os.Stat(abs)
		switch {
		case err != nil:
			run.log.Warn("skipping path", "path", abs, "error", err)
		case info.IsDir():
			run.walkDir(abs)
			run.assemble()
		default:
			run.addFile(abs)
		}
	}

	run.ingestPending()

	if w.scanCancelled {
		w.emit(EvtScanCancelled)
		w.scanCancelled = false
		swept := w.cat.SweepState(media.StateNew)
		run.log.Info("scan cancelled", "swept", len(swept))
	} else {
		w.emit(EvtScanComplete)
		run.log.Info("scan complete", "dirs", run.dirs, "files", run.files)
	}
}

// scanRun is the per-scan working state.
type scanRun struct {
	w   *Worker
	log *slog.Logger

	videos    []string
	images    []string
	sequences []sequence.Collection

	dirs, files int
	lastUpdate  time.Time
	visited     map[string]bool
}

// scanUpdate counts progress and, at most once per configured interval,
// emits a scan_update, ingests pending discoveries and polls for commands
// so a cancel can land mid-walk.
func (r *scanRun) scanUpdate(dirs, files int) {
	r.dirs += dirs
	r.files += files

	now := time.Now()
	if now.Sub(r.lastUpdate) < r.w.cfg.Engine.ScanUpdateInterval {
		return
	}
	r.lastUpdate = now

	r.w.emit(EvtScanUpdate, r.dirs, r.files)
	r.ingestPending()
	r.w.pollCommands()

	if r.w.scanCancelled {
		r.w.scanQueue = nil
	}
}

// walkDir recurses into a directory, following symlinks. Resolved paths
// are tracked so a symlink cycle terminates.
func (r *scanRun) walkDir(dir string) {
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		if r.visited[resolved] {
			return
		}
		r.visited[resolved] = true
	}

	r.log.Debug("scan dir", "path", dir)
	r.scanUpdate(1, 0)

	entries, err := os.ReadDir(dir)
	if err != nil {
		r.log.Warn("unreadable directory", "path", dir, "error", err)
		return
	}

	for _, entry := range entries {
		if r.w.scanCancelled {
			return
		}

		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			r.walkDir(path)
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				r.walkDir(path)
				continue
			}
		}
		r.addFile(path)
	}
}

// addFile classifies one file by extension.
func (r *scanRun) addFile(path string) {
	r.scanUpdate(0, 1)

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch {
	case videoExts[ext]:
		r.videos = append(r.videos, path)
	case imageExts[ext]:
		r.images = append(r.images, path)
	}
}

// assemble clusters the images collected so far into sequences.
func (r *scanRun) assemble() {
	if len(r.images) == 0 {
		return
	}
	start := time.Now()
	cols := sequence.Assemble(r.images, r.w.cfg.Clique.MinimumItems, r.w.cfg.Clique.ContiguousOnly)
	r.sequences = append(r.sequences, cols...)
	r.images = nil
	r.log.Debug("assembled sequences", "count", len(cols), "elapsed", time.Since(start))
}

// ingestPending catalogues the discovered videos and sequences. Files the
// encoder itself produced are skipped so outputs never re-enter the pool.
func (r *scanRun) ingestPending() {
	videos, seqs := r.videos, r.sequences
	r.videos, r.sequences = nil, nil

	for _, path := range videos {
		if strings.HasSuffix(path, r.w.cfg.Engine.OutputSuffix) {
			r.log.Info("scan ignoring encoder output", "path", path)
			continue
		}
		r.addItem(media.KindVideo, path, sequence.Collection{})
	}
	for _, col := range seqs {
		r.addItem(media.KindSequence, col.String(), col)
	}
}

// addItem catalogues one item and runs it through the probe and thumbnail
// pipeline. Items that fail either step are deleted again.
func (r *scanRun) addItem(kind media.Kind, path string, col sequence.Collection) {
	w := r.w
	id := media.ID(path)

	fields := media.Fields{
		media.FieldKind:     kind,
		media.FieldPath:     path,
		media.FieldDirpath:  filepath.Dir(path),
		media.FieldFilename: filepath.Base(path),
		media.FieldState:    media.StateNew,
	}
	if kind == media.KindSequence {
		fields[media.FieldDisplayname] = col.Display()
		fields[media.FieldFramerate] = w.seqRate
		if res, ok := resolutionHint(col); ok {
			fields[media.FieldResolution] = res
		}
	} else {
		fields[media.FieldDisplayname] = filepath.Base(path)
	}
	w.cat.Update(id, fields)

	if w.scanCancelled {
		return
	}
	if w.probeItem(id) && w.thumbnailItem(id) {
		w.cat.Update(id, media.Fields{media.FieldState: media.StateReady})
	} else {
		w.cat.Delete(id)
	}
	w.pollCommands()
}

// resolutionHint decodes the header of the first frame so the viewer can
// show a size before the probe finishes. Best effort: formats outside the
// registered decoders just skip the hint.
func resolutionHint(col sequence.Collection) (media.Resolution, bool) {
	if len(col.Indexes) == 0 {
		return media.Resolution{}, false
	}
	f, err := os.Open(col.FormatFrame(col.First()))
	if err != nil {
		return media.Resolution{}, false
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return media.Resolution{}, false
	}
	return media.Resolution{Width: cfg.Width, Height: cfg.Height}, true
}

// probeItem fills in stream metadata and the file size. Reports false
// when ffprobe rejects the item.
func (w *Worker) probeItem(id string) bool {
	item := w.cat.Lookup(id)
	in := inputForItem(item, media.Rational{})

	meta, err := w.tools.Probe(w.ctx, in)
	if err != nil {
		w.log.Warn("probe failed", "id", id, "path", item.Path(), "error", err)
		return false
	}

	pixfmt := meta.PixFmt
	if pixfmt == "" {
		pixfmt = "unknown"
	}
	patch := media.Fields{
		media.FieldCodec:      meta.Codec,
		media.FieldResolution: meta.Resolution,
		media.FieldPixfmt:     pixfmt,
		media.FieldDuration:   meta.Duration,
		media.FieldColorspace: meta.Colorspace,
	}
	// Sequences keep the rate chosen at scan time; the probe only echoes
	// the rate it was handed.
	if item.Kind() != media.KindSequence {
		patch[media.FieldFramerate] = meta.Framerate
	}
	w.cat.Update(id, patch)

	w.cat.Update(id, media.Fields{media.FieldFilesize: itemFilesize(item)})
	return true
}

// itemFilesize sums the on-disk bytes of the item: the file itself for
// videos, every member frame for sequences.
func itemFilesize(item *media.Item) int64 {
	if item.Kind() == media.KindSequence {
		col, err := sequence.Parse(item.Path())
		if err != nil {
			return 0
		}
		var total int64
		for _, p := range col.Paths() {
			if info, err := os.Stat(p); err == nil {
				total += info.Size()
			}
		}
		return total
	}

	info, err := os.Stat(item.Path())
	if err != nil {
		return 0
	}
	return info.Size()
}

// thumbnailItem extracts the poster-frame JPEG into the item. Reports
// false on failure.
func (w *Worker) thumbnailItem(id string) bool {
	item := w.cat.Lookup(id)
	in := inputForItem(item, media.Rational{})

	thumb, err := w.tools.Thumbnail(w.ctx, in, w.cfg.Engine.ThumbnailHeight)
	if err != nil {
		w.log.Warn("thumbnail failed", "id", id, "path", item.Path(), "error", err)
		return false
	}
	w.cat.Update(id, media.Fields{media.FieldThumbnail: thumb})
	return true
}

// inputForItem builds the ffmpeg input for a catalogued item. A non-zero
// rateOverride replaces a sequence's stored rate.
func inputForItem(item *media.Item, rateOverride media.Rational) ffmpeg.Input {
	if item.Kind() != media.KindSequence {
		return ffmpeg.Input{Path: item.Path()}
	}

	col, err := sequence.Parse(item.Path())
	if err != nil || len(col.Indexes) == 0 {
		return ffmpeg.Input{Path: item.Path()}
	}

	rate := item.Framerate()
	if !rateOverride.IsZero() {
		rate = rateOverride
	}
	return ffmpeg.Input{
		Path:        col.Template(),
		Sequence:    true,
		Framerate:   rate,
		StartNumber: col.First(),
		Colorspace:  item.Colorspace(),
	}
}

// inputForPath builds a plain file input.
func inputForPath(path string) ffmpeg.Input {
	return ffmpeg.Input{Path: path}
}

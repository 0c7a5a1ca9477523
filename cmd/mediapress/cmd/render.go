package cmd

import (
	"fmt"
	"io"

	"github.com/jmylchreest/mediapress/internal/engine"
	"github.com/jmylchreest/mediapress/internal/media"
)

// formatBytes renders a byte count in binary units.
func formatBytes(n float64) string {
	const unit = 1024.0
	if n < unit {
		return fmt.Sprintf("%.0f B", n)
	}
	div, exp := unit, 0
	for n/div >= unit && exp < 4 {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", n/div, "KMGTP"[exp])
}

// formatClock renders seconds as h:mm:ss.s.
func formatClock(secs float64) string {
	h := int(secs) / 3600
	m := (int(secs) % 3600) / 60
	s := secs - float64(h*3600) - float64(m*60)
	return fmt.Sprintf("%d:%02d:%04.1f", h, m, s)
}

// fieldString fetches a string field from projected item fields.
func fieldString(f media.Fields, key string) string {
	s, _ := f[key].(string)
	return s
}

// fieldFloat fetches a numeric field. JSON numbers decode as float64.
func fieldFloat(f media.Fields, key string) float64 {
	v, _ := f[key].(float64)
	return v
}

// fieldPair fetches a two-element numeric array field such as resolution
// or framerate.
func fieldPair(f media.Fields, key string) (int, int, bool) {
	arr, ok := f[key].([]any)
	if !ok || len(arr) != 2 {
		return 0, 0, false
	}
	a, okA := arr[0].(float64)
	b, okB := arr[1].(float64)
	if !okA || !okB {
		return 0, 0, false
	}
	return int(a), int(b), true
}

// renderItems prints the projected catalogue. The long style shows probe
// details and paths; the short style is one line per item.
func renderItems(w io.Writer, proj *engine.Projection, style string) {
	for _, id := range proj.IDs() {
		item := proj.Lookup(id)

		display := fieldString(item, media.FieldDisplayname)
		state := fieldString(item, media.FieldState)
		kind := fieldString(item, media.FieldKind)
		size := formatBytes(fieldFloat(item, media.FieldFilesize))

		if style == "short" {
			fmt.Fprintf(w, "%s  %-8s  %s  (%s)\n", id, state, display, size)
			continue
		}

		fmt.Fprintf(w, "%s  %-8s  %-8s  %s\n", id, state, kind, display)

		details := ""
		if width, height, ok := fieldPair(item, media.FieldResolution); ok {
			details += fmt.Sprintf("%dx%d  ", width, height)
		}
		if num, den, ok := fieldPair(item, media.FieldFramerate); ok && den != 0 {
			details += fmt.Sprintf("%.3g fps  ", float64(num)/float64(den))
		}
		if codec := fieldString(item, media.FieldCodec); codec != "" {
			details += fmt.Sprintf("%s/%s  ", codec, fieldString(item, media.FieldPixfmt))
		}
		details += fmt.Sprintf("%s  %s", formatClock(fieldFloat(item, media.FieldDuration)), size)

		fmt.Fprintf(w, "          %s\n", details)
		fmt.Fprintf(w, "          %s\n", fieldString(item, media.FieldPath))
	}
}

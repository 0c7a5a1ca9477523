package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/mediapress/internal/engine"
	"github.com/jmylchreest/mediapress/internal/media"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KiB", formatBytes(1024))
	assert.Equal(t, "4.2 MiB", formatBytes(4.2*1024*1024))
	assert.Equal(t, "2.0 GiB", formatBytes(2*1024*1024*1024))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00:12.5", formatClock(12.5))
	assert.Equal(t, "1:02:03.0", formatClock(3723))
}

func TestFieldPair(t *testing.T) {
	fields := media.Fields{"resolution": []any{1920.0, 1080.0}}
	w, h, ok := fieldPair(fields, "resolution")
	assert.True(t, ok)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	_, _, ok = fieldPair(fields, "missing")
	assert.False(t, ok)
}

func TestRenderItemsShort(t *testing.T) {
	proj := engine.NewProjection()
	proj.Apply(&engine.Event{Name: engine.EvtMediaUpdate, Args: []any{
		"aabbccdd", map[string]any{
			"displayname": "clip.mov",
			"state":       "ready",
			"kind":        "video",
			"filesize":    2048.0,
		},
	}})

	var sb strings.Builder
	renderItems(&sb, proj, "short")
	assert.Equal(t, "aabbccdd  ready     clip.mov  (2.0 KiB)\n", sb.String())
}

func TestRenderItemsLong(t *testing.T) {
	proj := engine.NewProjection()
	proj.Apply(&engine.Event{Name: engine.EvtMediaUpdate, Args: []any{
		"aabbccdd", map[string]any{
			"displayname": "frame_####.png (1-300)",
			"state":       "ready",
			"kind":        "sequence",
			"path":        "/shoot/frame_%04d.png [1-300]",
			"resolution":  []any{2048.0, 858.0},
			"framerate":   []any{24.0, 1.0},
			"codec":       "png",
			"pixfmt":      "rgb24",
			"duration":    12.5,
			"filesize":    1024.0,
		},
	}})

	var sb strings.Builder
	renderItems(&sb, proj, "long")
	out := sb.String()
	assert.Contains(t, out, "frame_####.png (1-300)")
	assert.Contains(t, out, "2048x858")
	assert.Contains(t, out, "24 fps")
	assert.Contains(t, out, "png/rgb24")
	assert.Contains(t, out, "/shoot/frame_%04d.png [1-300]")
}

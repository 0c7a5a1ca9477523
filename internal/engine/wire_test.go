package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/mediapress/internal/media"
)

func TestEventMarshalPositional(t *testing.T) {
	evt := Event{Name: EvtScanUpdate, Args: []any{12, 345}}
	data, err := json.Marshal(evt)
	require.NoError(t, err)
	assert.Equal(t, `["scan_update",12,345]`, string(data))

	data, err = json.Marshal(Event{Name: EvtScanComplete})
	require.NoError(t, err)
	assert.Equal(t, `["scan_complete"]`, string(data))
}

func TestEventRoundTrip(t *testing.T) {
	in := Event{Name: EvtMediaUpdate, Args: []any{
		"aabbccdd",
		media.Fields{media.FieldState: media.StateReady, media.FieldProgress: 0.5},
	}}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Event
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, EvtMediaUpdate, out.Name)
	assert.Equal(t, "aabbccdd", out.ID())

	fields := out.Fields()
	require.NotNil(t, fields)
	assert.Equal(t, "ready", fields[media.FieldState])
	assert.Equal(t, 0.5, fields[media.FieldProgress])
}

func TestEventUnmarshalRejectsEmpty(t *testing.T) {
	var evt Event
	assert.Error(t, json.Unmarshal([]byte(`[]`), &evt))
	assert.Error(t, json.Unmarshal([]byte(`{}`), &evt))
}

func TestCommandRoundTrip(t *testing.T) {
	kwargs, err := json.Marshal(ScanPathsArgs{
		Paths:             []string{"/media"},
		SequenceFramerate: media.Rational{Num: 24, Den: 1},
	})
	require.NoError(t, err)

	data, err := json.Marshal(Command{Name: CmdScanPaths, CID: "c-1", Kwargs: kwargs})
	require.NoError(t, err)

	var cmd Command
	require.NoError(t, json.Unmarshal(data, &cmd))
	assert.Equal(t, CmdScanPaths, cmd.Name)
	assert.Equal(t, "c-1", cmd.CID)

	var args ScanPathsArgs
	require.NoError(t, json.Unmarshal(cmd.Kwargs, &args))
	assert.Equal(t, []string{"/media"}, args.Paths)
	assert.Equal(t, media.Rational{Num: 24, Den: 1}, args.SequenceFramerate)
}

func TestProjectionMergesLikeCatalogue(t *testing.T) {
	proj := NewProjection()

	proj.Apply(&Event{Name: EvtMediaUpdate, Args: []any{
		"id1", map[string]any{"path": "/a", "state": "new"},
	}})
	proj.Apply(&Event{Name: EvtMediaUpdate, Args: []any{
		"id1", map[string]any{"state": "ready"},
	}})

	item := proj.Lookup("id1")
	require.NotNil(t, item)
	assert.Equal(t, "/a", item["path"])
	assert.Equal(t, "ready", item["state"])

	proj.Apply(&Event{Name: EvtMediaDelete, Args: []any{"id1"}})
	assert.Nil(t, proj.Lookup("id1"))
	assert.Equal(t, 0, proj.Len())
}

func TestProjectionOrderAndUnknownEvents(t *testing.T) {
	proj := NewProjection()
	proj.Apply(&Event{Name: EvtMediaUpdate, Args: []any{"b", map[string]any{}}})
	proj.Apply(&Event{Name: EvtMediaUpdate, Args: []any{"a", map[string]any{}}})
	proj.Apply(&Event{Name: EvtScanComplete})
	proj.Apply(&Event{Name: EvtMediaDelete, Args: []any{"missing"}})

	assert.Equal(t, []string{"b", "a"}, proj.IDs())
}

func TestDefaultOutpathVideo(t *testing.T) {
	item := media.NewItem("x")
	item.Apply(media.Fields{
		media.FieldKind: media.KindVideo,
		media.FieldPath: "/media/clip.mov",
	})
	assert.Equal(t, "/media/clip_prores.mov", defaultOutpath(item, "_prores.mov"))
}

func TestDefaultOutpathSequence(t *testing.T) {
	item := media.NewItem("x")
	item.Apply(media.Fields{
		media.FieldKind: media.KindSequence,
		media.FieldPath: "/shoot/frame_%04d.png [1-300]",
	})
	assert.Equal(t, "/shoot/frame_0000_prores.mov", defaultOutpath(item, "_prores.mov"))
}

func TestInputForItemSequence(t *testing.T) {
	item := media.NewItem("x")
	item.Apply(media.Fields{
		media.FieldKind:      media.KindSequence,
		media.FieldPath:      "/shoot/frame_%04d.png [7-9]",
		media.FieldFramerate: media.Rational{Num: 25, Den: 1},
	})

	in := inputForItem(item, media.Rational{})
	assert.True(t, in.Sequence)
	assert.Equal(t, "/shoot/frame_%04d.png", in.Path)
	assert.Equal(t, 7, in.StartNumber)
	assert.Equal(t, media.Rational{Num: 25, Den: 1}, in.Framerate)

	// A preset override replaces the stored rate.
	in = inputForItem(item, media.Rational{Num: 60, Den: 1})
	assert.Equal(t, media.Rational{Num: 60, Den: 1}, in.Framerate)
}

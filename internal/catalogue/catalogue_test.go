package catalogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/mediapress/internal/media"
)

type recordedEvent struct {
	kind   string
	id     string
	fields media.Fields
}

type recorder struct {
	events []recordedEvent
}

func (r *recorder) MediaUpdate(id string, fields media.Fields) {
	r.events = append(r.events, recordedEvent{"update", id, fields})
}

func (r *recorder) MediaDelete(id string) {
	r.events = append(r.events, recordedEvent{"delete", id, nil})
}

func TestUpdateCreatesWithDefaults(t *testing.T) {
	rec := &recorder{}
	cat := New(rec)

	cat.Update("aabbccdd", media.Fields{
		media.FieldPath:  "/media/clip.mov",
		media.FieldState: media.StateNew,
	})

	item := cat.Lookup("aabbccdd")
	require.NotNil(t, item)
	assert.Equal(t, "/media/clip.mov", item.Path())
	assert.Equal(t, media.StateNew, item.State())
	// Template defaults survive a partial patch.
	assert.Equal(t, media.Rational{Num: 30, Den: 1}, item.Framerate())

	require.Len(t, rec.events, 1)
	assert.Equal(t, "update", rec.events[0].kind)
	// The event carries the patch, not the merged item.
	assert.Len(t, rec.events[0].fields, 2)
}

func TestUpdateMergesShallow(t *testing.T) {
	rec := &recorder{}
	cat := New(rec)

	cat.Update("id1", media.Fields{media.FieldPath: "/a", media.FieldCodec: "h264"})
	cat.Update("id1", media.Fields{media.FieldCodec: "prores"})

	item := cat.Lookup("id1")
	assert.Equal(t, "/a", item.Path())
	assert.Equal(t, "prores", item.Fields[media.FieldCodec])
	assert.Len(t, rec.events, 2)
}

func TestDeleteEmitsOnce(t *testing.T) {
	rec := &recorder{}
	cat := New(rec)

	cat.Update("id1", media.Fields{})
	cat.Delete("id1")
	cat.Delete("id1")

	assert.Nil(t, cat.Lookup("id1"))
	assert.False(t, cat.Contains("id1"))
	require.Len(t, rec.events, 2)
	assert.Equal(t, "delete", rec.events[1].kind)
}

func TestIDsInsertionOrder(t *testing.T) {
	cat := New(&recorder{})
	for _, id := range []string{"c", "a", "b"} {
		cat.Update(id, media.Fields{})
	}
	assert.Equal(t, []string{"c", "a", "b"}, cat.IDs())

	cat.Delete("a")
	assert.Equal(t, []string{"c", "b"}, cat.IDs())
	assert.Equal(t, 2, cat.Len())
}

func TestSweepState(t *testing.T) {
	rec := &recorder{}
	cat := New(rec)

	cat.Update("n1", media.Fields{media.FieldState: media.StateNew})
	cat.Update("r1", media.Fields{media.FieldState: media.StateReady})
	cat.Update("n2", media.Fields{media.FieldState: media.StateNew})

	swept := cat.SweepState(media.StateNew)
	assert.Equal(t, []string{"n1", "n2"}, swept)
	assert.Equal(t, []string{"r1"}, cat.IDs())
}

func TestInState(t *testing.T) {
	cat := New(&recorder{})
	cat.Update("q1", media.Fields{media.FieldState: media.StateQueued})
	cat.Update("r1", media.Fields{media.FieldState: media.StateReady})
	cat.Update("q2", media.Fields{media.FieldState: media.StateQueued})

	assert.Equal(t, []string{"q1", "q2"}, cat.InState(media.StateQueued))
	assert.Empty(t, cat.InState(media.StateError))
}

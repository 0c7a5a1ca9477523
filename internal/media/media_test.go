package media

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRational(t *testing.T) {
	r, err := ParseRational("30000/1001")
	require.NoError(t, err)
	assert.Equal(t, Rational{30000, 1001}, r)

	r, err = ParseRational("25")
	require.NoError(t, err)
	assert.Equal(t, Rational{25, 1}, r)

	// ffprobe reports 0/0 for still-image inputs.
	r, err = ParseRational("0/0")
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	_, err = ParseRational("")
	assert.Error(t, err)
	_, err = ParseRational("abc/1")
	assert.Error(t, err)
}

func TestRationalForms(t *testing.T) {
	r := Rational{24000, 1001}
	assert.Equal(t, "24000:1001", r.Spec())
	assert.Equal(t, "24000/1001", r.String())
	assert.InDelta(t, 23.976, r.Float(), 0.001)
	assert.Equal(t, 0.0, Rational{}.Float())
}

func TestRationalJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Rational{30, 1})
	require.NoError(t, err)
	assert.Equal(t, "[30,1]", string(data))

	var r Rational
	require.NoError(t, json.Unmarshal(data, &r))
	assert.Equal(t, Rational{30, 1}, r)
}

func TestResolutionJSON(t *testing.T) {
	data, err := json.Marshal(Resolution{1920, 1080})
	require.NoError(t, err)
	assert.Equal(t, "[1920,1080]", string(data))
	assert.Equal(t, "1920x1080", Resolution{1920, 1080}.String())
}

func TestIDStableAndCanonical(t *testing.T) {
	abs, err := filepath.Abs("testdata/clip.mov")
	require.NoError(t, err)

	id := ID(abs)
	assert.Len(t, id, 8)
	// Relative spellings of the same path share the id.
	assert.Equal(t, id, ID("testdata/clip.mov"))
	assert.Equal(t, id, ID("testdata/../testdata/clip.mov"))
	assert.NotEqual(t, id, ID(abs+"2"))
}

func TestNewItemDefaults(t *testing.T) {
	item := NewItem("aabbccdd")
	assert.Equal(t, Rational{30, 1}, item.Framerate())
	assert.Equal(t, 0.0, item.Fields[FieldProgress])
	assert.Equal(t, State(""), item.State())
}

func TestItemApplyPreservesUnpatchedFields(t *testing.T) {
	item := NewItem("x")
	item.Apply(Fields{FieldPath: "/a", FieldState: StateNew})
	item.Apply(Fields{FieldState: StateReady})

	assert.Equal(t, "/a", item.Path())
	assert.Equal(t, StateReady, item.State())
}

func TestItemGettersTolerateWireTypes(t *testing.T) {
	// Fields that travelled through JSON come back as plain strings.
	item := NewItem("x")
	item.Apply(Fields{FieldKind: "sequence", FieldState: "queued"})
	assert.Equal(t, KindSequence, item.Kind())
	assert.Equal(t, StateQueued, item.State())
}

func TestStateTransitions(t *testing.T) {
	assert.True(t, StateNew.CanTransition(StateReady))
	assert.True(t, StateReady.CanTransition(StateQueued))
	assert.True(t, StateQueued.CanTransition(StateEncoding))
	assert.True(t, StateQueued.CanTransition(StateReady))
	// A rejected profile fails the item straight out of the queue.
	assert.True(t, StateQueued.CanTransition(StateError))
	assert.True(t, StateEncoding.CanTransition(StateDone))
	assert.True(t, StateEncoding.CanTransition(StateError))
	assert.True(t, StateEncoding.CanTransition(StateReady))

	assert.False(t, StateNew.CanTransition(StateQueued))
	assert.False(t, StateDone.CanTransition(StateEncoding))
	assert.False(t, StateError.CanTransition(StateDone))

	assert.True(t, StateDone.Terminal())
	assert.True(t, StateError.Terminal())
	assert.False(t, StateReady.Terminal())
}

func TestProfiles(t *testing.T) {
	require.Len(t, Profiles, 6)

	p, err := LookupProfile("prores_422_hq")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-codec:v", "prores_ks",
		"-profile:v", "3",
		"-vendor", "ap10",
		"-pix_fmt", "yuv422p10",
	}, p.Args())

	p, err = LookupProfile("prores_4444_xq")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Index)
	assert.Equal(t, "yuva444p10", p.PixFmt)

	_, err = LookupProfile("dnxhd")
	assert.Error(t, err)
}

func TestFrameratePresets(t *testing.T) {
	r, err := LookupFramerate("fps_23_98")
	require.NoError(t, err)
	assert.Equal(t, Rational{24000, 1001}, r)

	// Empty key means "keep the item's own rate".
	r, err = LookupFramerate("")
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	_, err = LookupFramerate("fps_48")
	assert.Error(t, err)
}

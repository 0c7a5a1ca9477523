// Package media defines the catalogued media item model shared between the
// worker engine and the viewer.
package media

import (
	"crypto/sha1"
	"encoding/hex"
	"maps"
	"path/filepath"
)

// Kind classifies a catalogued item.
type Kind string

const (
	// KindVideo is a single container file (mov, mp4, ...).
	KindVideo Kind = "video"
	// KindSequence is a numbered image sequence addressed by a path template.
	KindSequence Kind = "sequence"
)

// State is the lifecycle state of a catalogued item.
type State string

const (
	// StateNew marks an item that has been discovered but not yet probed.
	StateNew State = "new"
	// StateReady marks an item with complete metadata and thumbnail.
	StateReady State = "ready"
	// StateQueued marks an item waiting in the encode queue.
	StateQueued State = "queued"
	// StateEncoding marks the single item currently being encoded.
	StateEncoding State = "encoding"
	// StateDone marks a successfully encoded item.
	StateDone State = "done"
	// StateError marks an item whose encode failed.
	StateError State = "error"
)

// transitions is the item state machine. An absent source state admits no
// transitions. Deletion is legal from new (failed probe, scan cancel) and
// from ready/done/error (remove_items); it is not modelled here.
// Queued items error without ever encoding when their profile is rejected
// at dequeue.
var transitions = map[State][]State{
	StateNew:      {StateReady},
	StateReady:    {StateQueued},
	StateQueued:   {StateEncoding, StateReady, StateError},
	StateEncoding: {StateDone, StateError, StateReady},
}

// CanTransition reports whether moving from s to next is a legal step in
// the item lifecycle.
func (s State) CanTransition(next State) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the state admits no further encode activity
// without first being re-queued.
func (s State) Terminal() bool {
	return s == StateDone || s == StateError
}

// Well-known field keys. Events carry exactly the changed fields keyed by
// these names; the viewer's projection merges them the same way the
// catalogue does.
const (
	FieldKind        = "kind"
	FieldPath        = "path"
	FieldDirpath     = "dirpath"
	FieldFilename    = "filename"
	FieldDisplayname = "displayname"
	FieldDuration    = "duration"
	FieldFramerate   = "framerate"
	FieldResolution  = "resolution"
	FieldCodec       = "codec"
	FieldPixfmt      = "pixfmt"
	FieldColorspace  = "colorspace"
	FieldFilesize    = "filesize"
	FieldThumbnail   = "thumbnail"
	FieldProgress    = "progress"
	FieldState       = "state"
	FieldOutpath     = "outpath"
)

// Fields is a shallow field patch: the unit of catalogue mutation and of
// media_update events.
type Fields map[string]any

// Clone returns a copy of the patch.
func (f Fields) Clone() Fields {
	c := make(Fields, len(f))
	maps.Copy(c, f)
	return c
}

// Item is one catalogued unit of media. Apart from the immutable ID it is
// a bag of fields so that patch application and event emission stay
// symmetric with the wire format.
type Item struct {
	ID     string
	Fields Fields
}

// NewItem returns an item with the template defaults applied.
func NewItem(id string) *Item {
	return &Item{
		ID: id,
		Fields: Fields{
			FieldKind:        "",
			FieldPath:        "",
			FieldDirpath:     "",
			FieldFilename:    "",
			FieldDisplayname: "",
			FieldDuration:    0.0,
			FieldFramerate:   Rational{30, 1},
			FieldResolution:  Resolution{},
			FieldCodec:       "",
			FieldPixfmt:      "",
			FieldProgress:    0.0,
		},
	}
}

// Apply merges a field patch into the item. Fields absent from the patch
// are preserved.
func (it *Item) Apply(patch Fields) {
	maps.Copy(it.Fields, patch)
}

// Kind returns the item kind.
func (it *Item) Kind() Kind {
	if k, ok := it.Fields[FieldKind].(Kind); ok {
		return k
	}
	if s, ok := it.Fields[FieldKind].(string); ok {
		return Kind(s)
	}
	return ""
}

// State returns the item lifecycle state.
func (it *Item) State() State {
	if s, ok := it.Fields[FieldState].(State); ok {
		return s
	}
	if s, ok := it.Fields[FieldState].(string); ok {
		return State(s)
	}
	return ""
}

// Path returns the item path (for sequences, the path template).
func (it *Item) Path() string {
	s, _ := it.Fields[FieldPath].(string)
	return s
}

// Displayname returns the human-readable item name.
func (it *Item) Displayname() string {
	s, _ := it.Fields[FieldDisplayname].(string)
	return s
}

// Framerate returns the item framerate.
func (it *Item) Framerate() Rational {
	if r, ok := it.Fields[FieldFramerate].(Rational); ok {
		return r
	}
	return Rational{}
}

// Colorspace returns the probed colour space, empty when the probe did not
// report one.
func (it *Item) Colorspace() string {
	s, _ := it.Fields[FieldColorspace].(string)
	return s
}

// Outpath returns the encode output path, set once the item is done.
func (it *Item) Outpath() string {
	s, _ := it.Fields[FieldOutpath].(string)
	return s
}

// ID derives the stable catalogue identifier for a path: the first 8 hex
// characters of SHA-1 over the canonical absolute path. Two logically
// equivalent relative spellings of the same path share one id.
func ID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	sum := sha1.Sum([]byte(abs))
	return hex.EncodeToString(sum[:])[:8]
}

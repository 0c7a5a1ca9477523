// Package engine implements the transcoding worker and the proxy that the
// viewer drives it through. The two halves speak JSON lines over the
// worker's stdin and stdout: commands down as {"command": ..., "kwargs":
// ...} objects, events up as positional arrays such as
// ["media_update", "<id>", {...}].
package engine

import (
	"encoding/json"
	"fmt"

	"github.com/jmylchreest/mediapress/internal/media"
)

// Command names accepted by the worker.
const (
	CmdScanPaths    = "scan_paths"
	CmdCancelScan   = "cancel_scan"
	CmdEncodeItems  = "encode_items"
	CmdCancelEncode = "cancel_encode"
	CmdRemoveItems  = "remove_items"
	CmdPreviewItem  = "preview_item"
	CmdJoin         = "join"
)

// Event names emitted by the worker.
const (
	EvtMediaUpdate     = "media_update"
	EvtMediaDelete     = "media_delete"
	EvtScanUpdate      = "scan_update"
	EvtScanComplete    = "scan_complete"
	EvtScanCancelled   = "scan_cancelled"
	EvtEncodeComplete  = "encode_complete"
	EvtEncodeCancelled = "encode_cancelled"
)

// Command is one request from the proxy to the worker. CID is a
// correlation id carried through to the worker's logs.
type Command struct {
	Name   string          `json:"command"`
	CID    string          `json:"cid,omitempty"`
	Kwargs json.RawMessage `json:"kwargs,omitempty"`
}

// ScanPathsArgs are the kwargs of scan_paths.
type ScanPathsArgs struct {
	Paths []string `json:"paths"`
	// SequenceFramerate is assigned to discovered image sequences, which
	// carry no intrinsic rate. Zero means the 30/1 default.
	SequenceFramerate media.Rational `json:"sequence_framerate"`
}

// EncodeItemsArgs are the kwargs of encode_items.
type EncodeItemsArgs struct {
	// IDs selects the items to encode. Empty means every ready item.
	IDs []string `json:"ids"`
	// Profile is an encoding-profile key such as "prores_422_hq".
	Profile string `json:"profile"`
	// Framerate is an optional preset key overriding sequence rates.
	Framerate string `json:"framerate"`
}

// RemoveItemsArgs are the kwargs of remove_items.
type RemoveItemsArgs struct {
	IDs []string `json:"ids"`
}

// PreviewItemArgs are the kwargs of preview_item.
type PreviewItemArgs struct {
	ID        string `json:"id"`
	Framerate string `json:"framerate"`
}

// Event is one notification from the worker. The wire form is a JSON
// array with the name first and the arguments following positionally.
type Event struct {
	Name string
	Args []any
}

// MarshalJSON encodes the event as [name, args...].
func (e Event) MarshalJSON() ([]byte, error) {
	arr := make([]any, 0, len(e.Args)+1)
	arr = append(arr, e.Name)
	arr = append(arr, e.Args...)
	return json.Marshal(arr)
}

// UnmarshalJSON decodes the positional array form.
func (e *Event) UnmarshalJSON(data []byte) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) == 0 {
		return fmt.Errorf("empty event")
	}
	if err := json.Unmarshal(arr[0], &e.Name); err != nil {
		return fmt.Errorf("decoding event name: %w", err)
	}
	e.Args = nil
	for _, raw := range arr[1:] {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		e.Args = append(e.Args, v)
	}
	return nil
}

// ID returns the item id argument of media events, empty otherwise.
func (e Event) ID() string {
	if len(e.Args) >= 1 {
		if s, ok := e.Args[0].(string); ok {
			return s
		}
	}
	return ""
}

// Fields returns the field patch of media_update events, nil otherwise.
func (e Event) Fields() media.Fields {
	if len(e.Args) >= 2 {
		if m, ok := e.Args[1].(map[string]any); ok {
			return media.Fields(m)
		}
	}
	return nil
}

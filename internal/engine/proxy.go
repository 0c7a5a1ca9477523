package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/google/uuid"

	"github.com/jmylchreest/mediapress/internal/media"
)

// Proxy is the viewer's handle on a worker. Commands go down the worker's
// stdin; events come back on stdout and are buffered so the UI thread can
// drain them with non-blocking polls.
type Proxy struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	enc    *json.Encoder
	events chan Event
	log    *slog.Logger
}

// SpawnWorker starts this executable again in worker mode and connects a
// proxy to it. The worker inherits stderr so its logs interleave with the
// viewer's.
func SpawnWorker(ctx context.Context, log *slog.Logger, extraArgs ...string) (*Proxy, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating executable: %w", err)
	}

	args := append([]string{"worker"}, extraArgs...)
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting worker: %w", err)
	}
	log.Debug("worker spawned", "pid", cmd.Process.Pid)

	p := newProxy(stdin, stdout, log)
	p.cmd = cmd
	return p, nil
}

// NewPipeProxy connects a proxy over raw streams, typically to a worker
// running in-process on the other end of a pipe.
func NewPipeProxy(in io.WriteCloser, out io.Reader, log *slog.Logger) *Proxy {
	return newProxy(in, out, log)
}

func newProxy(in io.WriteCloser, out io.Reader, log *slog.Logger) *Proxy {
	p := &Proxy{
		stdin:  in,
		enc:    json.NewEncoder(in),
		events: make(chan Event, 256),
		log:    log,
	}
	go p.readEvents(out)
	return p
}

func (p *Proxy) readEvents(out io.Reader) {
	dec := json.NewDecoder(out)
	for {
		var evt Event
		if err := dec.Decode(&evt); err != nil {
			if err != io.EOF {
				p.log.Error("event stream broken", "error", err)
			}
			close(p.events)
			return
		}
		p.events <- evt
	}
}

// Poll returns the next pending event, or nil when none is queued. It
// never blocks.
func (p *Proxy) Poll() *Event {
	select {
	case evt, ok := <-p.events:
		if !ok {
			return nil
		}
		return &evt
	default:
		return nil
	}
}

// ScanPaths asks the worker to discover media under the given paths.
func (p *Proxy) ScanPaths(paths []string, sequenceFramerate media.Rational) error {
	return p.send(CmdScanPaths, ScanPathsArgs{
		Paths:             paths,
		SequenceFramerate: sequenceFramerate,
	})
}

// CancelScan aborts the running scan.
func (p *Proxy) CancelScan() error {
	return p.send(CmdCancelScan, nil)
}

// EncodeItems queues items for encoding. Empty ids means every ready item.
func (p *Proxy) EncodeItems(ids []string, profile, framerate string) error {
	return p.send(CmdEncodeItems, EncodeItemsArgs{
		IDs:       ids,
		Profile:   profile,
		Framerate: framerate,
	})
}

// CancelEncode aborts the running encode and refunds the queue.
func (p *Proxy) CancelEncode() error {
	return p.send(CmdCancelEncode, nil)
}

// RemoveItems drops items from the catalogue.
func (p *Proxy) RemoveItems(ids []string) error {
	return p.send(CmdRemoveItems, RemoveItemsArgs{IDs: ids})
}

// PreviewItem opens a player on the item.
func (p *Proxy) PreviewItem(id, framerate string) error {
	return p.send(CmdPreviewItem, PreviewItemArgs{ID: id, Framerate: framerate})
}

// Join tells the worker to cancel everything and exit, then waits for it.
func (p *Proxy) Join() error {
	if err := p.send(CmdJoin, nil); err != nil {
		return err
	}
	_ = p.stdin.Close()
	if p.cmd != nil {
		return p.cmd.Wait()
	}
	return nil
}

func (p *Proxy) send(name string, kwargs any) error {
	cmd := Command{Name: name, CID: uuid.NewString()}
	if kwargs != nil {
		raw, err := json.Marshal(kwargs)
		if err != nil {
			return fmt.Errorf("encoding %s kwargs: %w", name, err)
		}
		cmd.Kwargs = raw
	}

	p.log.Debug("sending command", "command", name, "cid", cmd.CID)
	if err := p.enc.Encode(cmd); err != nil {
		return fmt.Errorf("sending %s: %w", name, err)
	}
	return nil
}

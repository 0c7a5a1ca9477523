// Package catalogue holds the worker's in-memory media item store. Every
// mutation emits exactly one event through the notifier so the viewer's
// projection can be rebuilt by replaying the stream.
package catalogue

import (
	"github.com/jmylchreest/mediapress/internal/media"
)

// Notifier receives one notification per catalogue mutation.
type Notifier interface {
	// MediaUpdate carries the changed fields only, never the whole item.
	MediaUpdate(id string, fields media.Fields)
	MediaDelete(id string)
}

// Catalogue maps item ids to items, preserving insertion order.
type Catalogue struct {
	items map[string]*media.Item
	order []string
	sink  Notifier
}

// New creates an empty catalogue emitting through sink.
func New(sink Notifier) *Catalogue {
	return &Catalogue{
		items: make(map[string]*media.Item),
		sink:  sink,
	}
}

// Lookup returns the item, or nil when unknown.
func (c *Catalogue) Lookup(id string) *media.Item {
	return c.items[id]
}

// Contains reports whether the id is catalogued.
func (c *Catalogue) Contains(id string) bool {
	_, ok := c.items[id]
	return ok
}

// IDs returns all item ids in insertion order.
func (c *Catalogue) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of catalogued items.
func (c *Catalogue) Len() int {
	return len(c.items)
}

// Update merges a field patch into the item, creating it with template
// defaults when absent, and emits the patch.
func (c *Catalogue) Update(id string, patch media.Fields) {
	item, ok := c.items[id]
	if !ok {
		item = media.NewItem(id)
		c.items[id] = item
		c.order = append(c.order, id)
	}
	item.Apply(patch)
	c.sink.MediaUpdate(id, patch)
}

// Delete removes the item and emits the deletion. Unknown ids are ignored
// silently so repeated removal is harmless.
func (c *Catalogue) Delete(id string) {
	if _, ok := c.items[id]; !ok {
		return
	}
	delete(c.items, id)
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.sink.MediaDelete(id)
}

// SweepState deletes every item in the given state and returns the
// removed ids. A cancelled scan sweeps its half-discovered items this way.
func (c *Catalogue) SweepState(state media.State) []string {
	var swept []string
	for _, id := range c.IDs() {
		if c.items[id].State() == state {
			c.Delete(id)
			swept = append(swept, id)
		}
	}
	return swept
}

// InState returns the ids of all items in the given state, in insertion
// order.
func (c *Catalogue) InState(state media.State) []string {
	var out []string
	for _, id := range c.order {
		if c.items[id].State() == state {
			out = append(out, id)
		}
	}
	return out
}

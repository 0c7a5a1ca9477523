package engine

import (
	"github.com/jmylchreest/mediapress/internal/media"
)

// Projection is the viewer's mirror of the worker catalogue, rebuilt by
// replaying the event stream. Updates merge shallowly, exactly like the
// catalogue applies them, so both sides converge on the same item state.
type Projection struct {
	items map[string]media.Fields
	order []string
}

// NewProjection returns an empty projection.
func NewProjection() *Projection {
	return &Projection{items: make(map[string]media.Fields)}
}

// Apply folds one event into the projection. Non-media events pass
// through untouched.
func (p *Projection) Apply(evt *Event) {
	switch evt.Name {
	case EvtMediaUpdate:
		id := evt.ID()
		if id == "" {
			return
		}
		item, ok := p.items[id]
		if !ok {
			item = make(media.Fields)
			p.items[id] = item
			p.order = append(p.order, id)
		}
		for k, v := range evt.Fields() {
			item[k] = v
		}
	case EvtMediaDelete:
		id := evt.ID()
		if _, ok := p.items[id]; !ok {
			return
		}
		delete(p.items, id)
		for i, o := range p.order {
			if o == id {
				p.order = append(p.order[:i], p.order[i+1:]...)
				break
			}
		}
	}
}

// IDs returns the item ids in discovery order.
func (p *Projection) IDs() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Lookup returns the item's merged fields, nil when unknown.
func (p *Projection) Lookup(id string) media.Fields {
	return p.items[id]
}

// Len returns the number of projected items.
func (p *Projection) Len() int {
	return len(p.items)
}

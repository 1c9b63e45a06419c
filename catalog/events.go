package catalog

import (
	"slices"

	"github.com/poiesic/launchpad/core"
)

// EventKind identifies what happened to the catalog.
type EventKind int

const (
	// EventReloadStarted is sent before a reload reads the source.
	EventReloadStarted EventKind = iota + 1
	// EventPublished carries a newly published entry set.
	EventPublished
	// EventUnchanged means a reload found the published set still current.
	EventUnchanged
	// EventReloadFailed carries the reload error; Set is the set still in effect.
	EventReloadFailed
)

func (k EventKind) String() string {
	switch k {
	case EventReloadStarted:
		return "reload-started"
	case EventPublished:
		return "published"
	case EventUnchanged:
		return "unchanged"
	case EventReloadFailed:
		return "reload-failed"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers, synchronously and in subscription order, from
// the goroutine running the reload. Handlers must not call Load or ForceReload.
type Event struct {
	Kind EventKind
	Set  *core.EntrySet
	Err  error
}

// Subscribe registers fn for catalog events and returns a function that removes it.
func (c *Catalog) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	c.subMu.Unlock()

	var once bool
	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		if once {
			return
		}
		once = true
		delete(c.subscribers, id)
	}
}

func (c *Catalog) emit(ev Event) {
	c.subMu.Lock()
	ids := make([]int, 0, len(c.subscribers))
	for id := range c.subscribers {
		ids = append(ids, id)
	}
	handlers := make([]func(Event), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		handlers = append(handlers, c.subscribers[id])
	}
	c.subMu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

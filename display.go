package gfx

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
)

// EventType identifies a display event.
type EventType uint8

// Display events.
const (
	EventDisplayModified EventType = iota
	EventQuit
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case EventDisplayModified:
		return "DisplayModified"
	case EventQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Event is delivered to subscribed handlers.
type Event struct {
	Type  EventType
	Attrs DisplayAttrs
}

// EventHandler receives display events. Handlers run on the goroutine that
// calls ProcessSystemEvents.
type EventHandler func(Event)

// HandlerID identifies a subscription.
type HandlerID int

// displayManager tracks the window size and quit requests and fans events
// out to subscribers.
type displayManager struct {
	window gpucontext.WindowProvider

	mu        sync.Mutex
	attrs     DisplayAttrs
	handlers  map[HandlerID]EventHandler
	nextID    HandlerID
	resized   bool
	resizeW   int
	resizeH   int
	polledW   int
	polledH   int
	quitSent  bool
	quitFlag  atomic.Bool
	presented atomic.Uint64
}

func newDisplayManager(o *options) *displayManager {
	w := o.window
	if w == nil {
		w = gpucontext.NullWindowProvider{W: o.width, H: o.height}
	}
	d := &displayManager{
		window:   w,
		handlers: make(map[HandlerID]EventHandler),
		attrs: DisplayAttrs{
			SampleCount: o.sampleCount,
			ColorFormat: o.colorFormat,
			DepthFormat: o.depthFormat,
		},
	}
	d.polledW, d.polledH = w.Size()
	d.attrs = d.measure(d.attrs, d.polledW, d.polledH)
	if o.events != nil {
		d.attach(o.events)
	}
	return d
}

// measure fills the window and framebuffer sizes for a w x h window.
// A window that reports no size keeps the previous sizes.
func (d *displayManager) measure(a DisplayAttrs, w, h int) DisplayAttrs {
	if w <= 0 || h <= 0 {
		return a
	}
	a.ScaleFactor = d.window.ScaleFactor()
	a.WindowWidth, a.WindowHeight = w, h
	a.FramebufferWidth = int(float64(w) * a.ScaleFactor)
	a.FramebufferHeight = int(float64(h) * a.ScaleFactor)
	return a
}

func (d *displayManager) attach(src gpucontext.EventSource) {
	src.OnKeyPress(func(key gpucontext.Key, mods gpucontext.Modifiers) {
		if key == gpucontext.KeyEscape || (key == gpucontext.KeyQ && mods.HasControl()) {
			d.requestQuit()
		}
	})
	src.OnResize(func(w, h int) {
		d.mu.Lock()
		d.resized, d.resizeW, d.resizeH = true, w, h
		d.mu.Unlock()
	})
}

func (d *displayManager) requestQuit() {
	d.quitFlag.Store(true)
}

func (d *displayManager) quitRequested() bool {
	return d.quitFlag.Load()
}

func (d *displayManager) displayAttrs() DisplayAttrs {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attrs
}

func (d *displayManager) subscribe(h EventHandler) HandlerID {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.handlers[d.nextID] = h
	return d.nextID
}

func (d *displayManager) unsubscribe(id HandlerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, id)
}

// processEvents polls the window and notifies subscribers of size changes
// and of a pending quit request. It reports whether the display changed.
func (d *displayManager) processEvents() bool {
	d.mu.Lock()
	prev := d.attrs
	next := prev
	// Provider size applies only when it changed since the last poll; a
	// pending resize event overrides it.
	if w, h := d.window.Size(); w != d.polledW || h != d.polledH {
		d.polledW, d.polledH = w, h
		next = d.measure(next, w, h)
	}
	if d.resized {
		next = d.measure(next, d.resizeW, d.resizeH)
		d.resized = false
	}
	d.attrs = next
	var events []Event
	if next != prev {
		events = append(events, Event{Type: EventDisplayModified, Attrs: next})
	}
	if d.quitFlag.Load() && !d.quitSent {
		d.quitSent = true
		events = append(events, Event{Type: EventQuit, Attrs: next})
	}
	handlers := d.sortedHandlers()
	d.mu.Unlock()

	for _, e := range events {
		for _, h := range handlers {
			h(e)
		}
	}
	return next != prev
}

// sortedHandlers returns handlers in subscription order. d.mu must be held.
func (d *displayManager) sortedHandlers() []EventHandler {
	ids := make([]HandlerID, 0, len(d.handlers))
	for id := range d.handlers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]EventHandler, len(ids))
	for i, id := range ids {
		out[i] = d.handlers[id]
	}
	return out
}

// present asks the host to show the finished frame.
func (d *displayManager) present() {
	d.presented.Add(1)
	d.window.RequestRedraw()
}

func (d *displayManager) discard() {
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.handlers)
}
